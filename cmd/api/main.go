// Command api runs the datalens HTTP server together with its ops listener.
package main

import (
	"context"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"datalens/internal/config"
	"datalens/internal/container"
	"datalens/ui"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}

	if err := c.StartMaintenance(); err != nil {
		log.Fatalf("Could not start maintenance jobs: %v", err)
	}

	server := ui.NewServer(cfg, ui.Deps{
		Datasets:  c.Datasets,
		Analysis:  c.Analysis,
		Training:  c.Training,
		Assistant: c.Assistant,
		Models:    c.ModelRepo,
		Settings:  c.SettingsRepo,
		Logger:    c.Logger,
	})

	// No WriteTimeout: SSE replies stay open for the length of a completion.
	apiServer := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     server.Router(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		c.Logger.Info("Starting datalens API on http://localhost:%s", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	opsServer := &http.Server{
		Addr:    ":" + cfg.Server.OpsPort,
		Handler: opsRouter(c),
	}
	go func() {
		c.Logger.Info("Ops endpoints on http://localhost:%s", cfg.Server.OpsPort)
		if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			c.Logger.Error("Ops server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	c.Logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		c.Logger.Error("API server forced to shut down: %v", err)
	}
	if err := opsServer.Shutdown(ctx); err != nil {
		c.Logger.Error("Ops server forced to shut down: %v", err)
	}

	if err := c.Shutdown(ctx); err != nil {
		c.Logger.Error("Shutdown error: %v", err)
	}
	c.Logger.Info("Server exited")
}

// opsRouter serves liveness and profiling endpoints on a port that is never
// exposed publicly.
func opsRouter(c *container.Container) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if c.Config.Server.OpsDebug {
		r.HandleFunc("/debug/pprof/", pprof.Index)
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/debug/pprof/profile", pprof.Profile)
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	return r
}
