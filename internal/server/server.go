// Package server carries the page agent's WebSocket channel to mover
// sessions. Each connection gets its own session and is served by one
// goroutine, so frames from one agent are applied strictly in order.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/1broseidon/zenmover/internal/mover"
)

// Options configures the listener and per-connection limits.
type Options struct {
	Listen         string
	Path           string
	FrameRate      float64
	FrameBurst     int
	ReadLimit      int64
	OriginPatterns []string
}

// SessionFactory creates the session for a new connection.
type SessionFactory func(id string) *mover.Session

// Server accepts page agent connections.
type Server struct {
	newSession SessionFactory
	logger     *slog.Logger

	mu       sync.Mutex
	opts     Options
	httpSrv  *http.Server
	listener net.Listener

	conns atomic.Int64
}

// New creates a server. Call ListenAndServe to start it, or mount Handler.
func New(opts Options, newSession SessionFactory, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &Server{
		newSession: newSession,
		logger:     logger.With("component", "websocket"),
		opts:       opts,
	}
}

// Handler returns the HTTP handler serving the WebSocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.options().Path, s.handleWS)
	return mux
}

// SetFrameLimit changes the frame rate limit for connections accepted from
// now on.
func (s *Server) SetFrameLimit(perSecond float64, burst int) {
	s.mu.Lock()
	s.opts.FrameRate = perSecond
	s.opts.FrameBurst = burst
	s.mu.Unlock()
}

// SetOriginPatterns changes the accepted origins for new connections.
func (s *Server) SetOriginPatterns(patterns []string) {
	s.mu.Lock()
	s.opts.OriginPatterns = append([]string(nil), patterns...)
	s.mu.Unlock()
}

func (s *Server) options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	opts := s.opts
	opts.OriginPatterns = append([]string(nil), s.opts.OriginPatterns...)
	return opts
}

// Connections returns the number of open agent connections.
func (s *Server) Connections() int {
	return int(s.conns.Load())
}

// Addr returns the bound address once listening.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	opts := s.options()
	ln, err := net.Listen("tcp", opts.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.Listen, err)
	}

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.listener = ln
	s.httpSrv = httpSrv
	s.mu.Unlock()

	s.logger.Info("listening for page agents", "addr", ln.Addr().String(), "path", opts.Path)

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			httpSrv.Close()
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	opts := s.options()
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: opts.OriginPatterns,
	})
	if err != nil {
		s.logger.Warn("websocket accept failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.CloseNow()
	if opts.ReadLimit > 0 {
		conn.SetReadLimit(opts.ReadLimit)
	}

	id := uuid.New().String()[:8]
	logger := s.logger.With("session", id)
	session := s.newSession(id)

	n := s.conns.Add(1)
	defer s.conns.Add(-1)
	logger.Info("page agent connected", "remote", r.RemoteAddr, "origin", r.Header.Get("Origin"), "connections", n)

	limit := rate.Inf
	if opts.FrameRate > 0 {
		limit = rate.Limit(opts.FrameRate)
	}
	limiter := rate.NewLimiter(limit, max(opts.FrameBurst, 1))
	err = s.serve(r.Context(), conn, session, limiter, logger)

	switch status := websocket.CloseStatus(err); {
	case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
		logger.Info("page agent disconnected")
	case errors.Is(err, context.Canceled):
		logger.Info("page agent disconnected", "reason", "shutdown")
		conn.Close(websocket.StatusGoingAway, "server shutting down")
	default:
		logger.Warn("page agent connection lost", "error", err)
	}
}

// serve reads frames until the connection ends. Frames are never dropped:
// an agent exceeding the frame rate is slowed down instead.
func (s *Server) serve(ctx context.Context, conn *websocket.Conn, session *mover.Session, limiter *rate.Limiter, logger *slog.Logger) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			logger.Debug("ignoring non-text frame", "type", typ.String(), "bytes", len(data))
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		reply, send := session.Handle(string(data))
		if !send {
			continue
		}
		if err := conn.Write(ctx, websocket.MessageText, []byte(reply)); err != nil {
			return err
		}
	}
}
