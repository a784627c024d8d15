package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tinytelemetry/tally/internal/httpserver"
	"github.com/tinytelemetry/tally/internal/session"
	"github.com/tinytelemetry/tally/internal/tcpserver"
	"golang.org/x/sync/errgroup"
)

// services are the running front-ends sharing one session store.
type services struct {
	store *session.Store
	api   *httpserver.Server
	tcp   *tcpserver.Server
}

// startServices starts every enabled front-end. On error, whatever was
// already started is stopped again.
func startServices(cfg appConfig) (*services, error) {
	svc := &services{
		store: session.NewStore(session.Config{
			TTL:         cfg.SessionTTL,
			MaxSessions: cfg.MaxSessions,
		}),
	}

	if cfg.APIEnabled {
		svc.api = httpserver.NewServer(cfg.APIAddr, svc.store)
		if err := svc.api.Start(); err != nil {
			svc.api = nil
			return nil, fmt.Errorf("failed to start API server: %w", err)
		}
	}

	if cfg.TCPEnabled {
		svc.tcp = tcpserver.NewServer(cfg.TCPAddr, tcpserver.ServerConfig{MaxLineSize: cfg.MaxLineSize})
		if err := svc.tcp.Start(); err != nil {
			svc.tcp = nil
			svc.stop()
			return nil, fmt.Errorf("failed to start TCP keypad: %w", err)
		}
	}

	return svc, nil
}

func (s *services) stop() {
	if s.tcp != nil {
		if err := s.tcp.Stop(); err != nil {
			log.Printf("server: tcp stop: %v", err)
		}
	}
	if s.api != nil {
		if err := s.api.Stop(); err != nil {
			log.Printf("server: api stop: %v", err)
		}
	}
}

// runServer starts the keypad service and blocks until SIGINT/SIGTERM.
func runServer(cfg appConfig) error {
	cleanupLogger := configureRuntimeLogger(cfg.LogFile)
	defer cleanupLogger()

	svc, err := startServices(cfg)
	if err != nil {
		return err
	}
	defer svc.stop()

	// Set up context and signal handling before errgroup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		os.Exit(1)
	}()

	printStartupBanner(cfg)
	log.Printf("server: started (api=%v tcp=%v)", cfg.APIEnabled, cfg.TCPEnabled)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svc.store.Run(gctx, cfg.SweepInterval)
	})

	// Wait for context cancellation (from signal handler) in the errgroup
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("server: errgroup exited with error: %v", err)
	}

	signal.Stop(sigCh)
	log.Printf("server: stopped")
	return nil
}

func configureRuntimeLogger(path string) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if path == "" {
		log.SetOutput(os.Stderr)
		return func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}
}

func printStartupBanner(cfg appConfig) {
	fmt.Println(renderStartupBanner(cfg))
}

func renderStartupBanner(cfg appConfig) string {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	orange := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	logo := orange.Bold(true).Render(`
    ╔╦╗╔═╗╦  ╦  ╦ ╦
     ║ ╠═╣║  ║  ╚╦╝
     ╩ ╩ ╩╩═╝╩═╝ ╩ `)

	var lines []string
	lines = append(lines, "", logo, "    "+dim.Render("v"+version), "")

	separator := dim.Render("    ─────────────────────────────────")
	lines = append(lines, separator, "")

	lines = append(lines, bold.Render("    Keypads"), "")
	if cfg.APIEnabled {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", check, orange.Render(cfg.APIAddr)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  HTTP API       %s", dot, dim.Render("disabled")))
	}
	if cfg.TCPEnabled {
		lines = append(lines, fmt.Sprintf("    %s  TCP Keypad     %s", check, orange.Render(cfg.TCPAddr)))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  TCP Keypad     %s", dot, dim.Render("disabled")))
	}
	lines = append(lines, "")

	lines = append(lines, bold.Render("    Sessions"), "")
	if cfg.SessionTTL > 0 {
		lines = append(lines, fmt.Sprintf("    %s  Idle Expiry    %s", check, dim.Render(cfg.SessionTTL.String())))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Idle Expiry    %s", dot, dim.Render("never")))
	}
	limit := "unlimited"
	if cfg.MaxSessions > 0 {
		limit = fmt.Sprintf("%d", cfg.MaxSessions)
	}
	lines = append(lines, fmt.Sprintf("    %s  Limit          %s", check, dim.Render(limit)), "")

	lines = append(lines, bold.Render("    Config"), "")
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}
	if cfg.LogFile != "" {
		lines = append(lines, fmt.Sprintf("    %s  Log File       %s", check, dim.Render(shortenPath(cfg.LogFile))))
	}

	lines = append(lines, "", separator, "")
	lines = append(lines, "    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"), "")

	return strings.Join(lines, "\n")
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
