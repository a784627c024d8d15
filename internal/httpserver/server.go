package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/tally/internal/calc"
	"github.com/tinytelemetry/tally/internal/session"
)

// SessionStore is the narrow registry contract required by the HTTP API.
type SessionStore interface {
	Create() (session.Session, error)
	Get(id string) (session.Session, error)
	Press(id string, keys []calc.Key) ([]string, session.Session, error)
	Delete(id string) error
	Len() int
}

// Server provides an HTTP API for driving keypad sessions.
type Server struct {
	addr      string
	store     SessionStore
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, store SessionStore) *Server {
	if addr == "" {
		addr = "127.0.0.1:3000"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:   addr,
		store:  store,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Handler builds the gin router serving the API.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	s.routes(r)
	return r
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/api/health", s.handleHealth)
	r.POST("/api/eval", s.handleEval)
	r.POST("/api/sessions", s.handleCreate)
	r.GET("/api/sessions/:id", s.handleGet)
	r.POST("/api/sessions/:id/keys", s.handlePress)
	r.DELETE("/api/sessions/:id", s.handleDelete)
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)
	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()

	go s.server.Serve(listener)
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the active listen address.
// Before Start, it returns the configured address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// keysRequest accepts either "keys": "7 + 3 =" or "keys": ["7","+","3","="].
type keysRequest struct {
	Keys json.RawMessage `json:"keys" binding:"required"`
}

var errNoKeys = errors.New("keys must name at least one key")

// parse rejects null and blank input so a request always presses something.
func (r keysRequest) parse() ([]calc.Key, error) {
	var line string
	if err := json.Unmarshal(r.Keys, &line); err != nil {
		var tokens []string
		if err := json.Unmarshal(r.Keys, &tokens); err != nil {
			return nil, errors.New("keys must be a string or an array of strings")
		}
		line = strings.Join(tokens, " ")
	}
	keys, err := calc.ParseKeys(line)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, errNoKeys
	}
	return keys, nil
}

func (s *Server) bindKeys(c *gin.Context) ([]calc.Key, bool) {
	var req keysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body or missing keys field"})
		return nil, false
	}
	keys, err := req.parse()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return keys, true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"uptime":   time.Since(s.startTime).String(),
		"sessions": s.store.Len(),
	})
}

func (s *Server) handleEval(c *gin.Context) {
	keys, ok := s.bindKeys(c)
	if !ok {
		return
	}

	e := calc.New()
	displays := e.ApplyAll(keys...)
	c.JSON(http.StatusOK, gin.H{
		"display":  e.Display(),
		"displays": displays,
		"state":    e.Snapshot(),
	})
}

func (s *Server) handleCreate(c *gin.Context) {
	sess, err := s.store.Create()
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": sess})
}

func (s *Server) handleGet(c *gin.Context) {
	sess, err := s.store.Get(c.Param("id"))
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": sess})
}

func (s *Server) handlePress(c *gin.Context) {
	keys, ok := s.bindKeys(c)
	if !ok {
		return
	}

	displays, sess, err := s.store.Press(c.Param("id"), keys)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"displays": displays,
		"session":  sess,
	})
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.store.Delete(c.Param("id")); err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
	case errors.Is(err, session.ErrLimit):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many sessions"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
