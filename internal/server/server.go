// Package server exposes mosque boards and settings over HTTP and streams
// boards to screens over WebSocket.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/masjid-display/internal/board"
	"github.com/smokyabdulrahman/masjid-display/internal/config"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
	"github.com/smokyabdulrahman/masjid-display/internal/store"
)

// Options configures a Server.
type Options struct {
	Store  store.Store
	Source prayer.Source
	// Token guards requests that change state. Empty disables the check.
	Token string
	// PublicBaseURL is encoded in QR codes. Defaults to the request host.
	PublicBaseURL string
	// Sinks returns extra sinks for a newly started mosque runner.
	Sinks func(id string) []board.Sink
	// Now overrides the runners' clock.
	Now func() time.Time
}

// Server serves every mosque in its store. A runner is started for a mosque
// the first time it is requested.
type Server struct {
	opts   Options
	hub    *Hub
	engine *gin.Engine

	ctx     context.Context
	mu      sync.Mutex
	runners map[string]*board.Runner
}

// New builds a server whose runners live until ctx is done.
func New(ctx context.Context, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		opts:    opts,
		hub:     NewHub(),
		ctx:     ctx,
		runners: map[string]*board.Runner{},
	}
	if opts.Token == "" {
		log.Warn().Msg("API_BEARER_TOKEN not set, write endpoints are unauthenticated")
	}
	s.engine = s.routes()
	return s
}

// Engine returns the HTTP handler.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods:    []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:   []string{"Content-Length"},
	}))

	r.GET("/healthz", s.health)
	r.GET("/ws", s.websocket)

	v1 := r.Group("/api/v1")
	v1.GET("/methods", s.methods)

	mosque := v1.Group("/mosques/:id")
	mosque.GET("/board", s.board)
	mosque.GET("/times", s.times)
	mosque.GET("/settings", s.settings)
	mosque.GET("/qr.png", s.qr)

	write := mosque.Group("", bearer(s.opts.Token))
	write.PUT("/settings", s.putSettings)
	write.POST("/dismiss", s.dismiss)
	return r
}

// Runner returns the runner for mosque id, starting it if needed. Ids other
// than store.DefaultID must have stored settings.
func (s *Server) Runner(ctx context.Context, id string) (*board.Runner, error) {
	if err := store.ValidateID(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.runners[id]; ok {
		return r, nil
	}

	settings, found, err := store.Load(ctx, s.opts.Store, id)
	if err != nil {
		return nil, err
	}
	if !found && id != store.DefaultID {
		return nil, store.ErrNotFound
	}
	return s.startLocked(id, settings)
}

func (s *Server) startLocked(id string, settings *config.Settings) (*board.Runner, error) {
	r, err := board.NewRunner(id, s.opts.Source, settings)
	if err != nil {
		return nil, err
	}
	r.Now = s.opts.Now
	r.Sinks = []board.Sink{s.hub.Sink(id)}
	if s.opts.Sinks != nil {
		r.Sinks = append(r.Sinks, s.opts.Sinks(id)...)
	}
	if _, err := r.Tick(s.ctx); err != nil {
		return nil, err
	}

	s.runners[id] = r
	go r.Run(s.ctx)
	return r, nil
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// requestLogger logs each request through zerolog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
