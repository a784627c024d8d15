package model

import "time"

// Shared defaults used by both the service and CLI binaries.
const (
	DefaultSkin          = "default"
	DefaultBindHost      = "127.0.0.1"
	DefaultAPIPort       = 3000
	DefaultTCPPort       = 4000
	DefaultSessionTTL    = 30 * time.Minute
	DefaultSweepInterval = time.Minute
	DefaultMaxSessions   = 1024
	DefaultMaxLineSize   = 4096 // bytes per TCP keypad line
)
