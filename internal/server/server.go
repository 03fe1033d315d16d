// Package server exposes the checklist workflow over a REST API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/crewbase/gangplank/internal/directory"
	"github.com/crewbase/gangplank/internal/notify"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StartOpts holds configuration for the API server.
type StartOpts struct {
	DB      *gorm.DB
	Port    int
	Dir     directory.Directory
	Emitter notify.Emitter
	Store   *notify.Store
}

// Start launches the API server. It blocks until ctx is cancelled, then shuts
// down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("server: db is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}
	if opts.Dir == nil {
		opts.Dir = directory.NewStore(opts.DB)
	}
	if opts.Emitter == nil {
		opts.Emitter = notify.Discard{}
	}
	if opts.Store == nil {
		opts.Store = notify.NewStore(opts.DB)
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	slog.Info("api listening", "port", opts.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// NewRouter builds the Gin router with all API routes registered.
func NewRouter(opts StartOpts) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())

	a := &api{
		db:    opts.DB,
		dir:   opts.Dir,
		em:    opts.Emitter,
		store: opts.Store,
	}
	a.registerRoutes(router)
	return router, nil
}

// api bundles the collaborators the handlers need.
type api struct {
	db    *gorm.DB
	dir   directory.Directory
	em    notify.Emitter
	store *notify.Store
}
