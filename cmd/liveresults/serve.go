package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/liveresults/liveresults/internal/api"
	"github.com/liveresults/liveresults/internal/auth"
	"github.com/liveresults/liveresults/internal/config"
	"github.com/liveresults/liveresults/internal/cycle"
	"github.com/liveresults/liveresults/internal/diff"
	"github.com/liveresults/liveresults/internal/hub"
	"github.com/liveresults/liveresults/internal/poller"
	"github.com/liveresults/liveresults/internal/results"
	"github.com/liveresults/liveresults/internal/store"
	"github.com/liveresults/liveresults/internal/ws"
)

const shutdownTimeout = 5 * time.Second

var serveFlags struct {
	configPath string
	envFile    string
	uiDir      string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the timing source and serve live updates",
	Long: `Starts the polling loop and the HTTP server. Viewers connect to /ws;
the admin API lives under /api/v1/ and Prometheus metrics at /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	f := serveCmd.Flags()
	f.StringVarP(&serveFlags.configPath, "config", "c", "", "path to config file (defaults and environment only when empty)")
	f.StringVar(&serveFlags.envFile, "env-file", ".env", "dotenv file loaded before the config; missing is fine")
	f.StringVar(&serveFlags.uiDir, "ui-dir", "", "serve the viewer's static files from this directory; empty disables")
}

func runServe(ctx context.Context) error {
	level := setupLogger(slog.LevelInfo)

	slog.Info("liveresults starting", "config", serveFlags.configPath)

	if err := config.LoadEnvFile(serveFlags.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(serveFlags.configPath)
	if err != nil {
		return err
	}
	level.Set(cfg.Log.SlogLevel())

	slog.Info("config loaded",
		"source_url", cfg.Source.URL,
		"interval", cfg.Source.Interval,
		"http_port", cfg.Server.HTTPPort,
		"admin_auth", cfg.Server.AdminAuth.Mode,
		"suppress_untimed_repeats", cfg.Broadcast.SuppressUntimedRepeats,
	)

	st := store.New()
	status := func() results.StatusInfo {
		return results.StatusInfo{
			DataSourceURL:      cfg.Source.URL,
			DataSourceInterval: cfg.Source.Interval.Seconds(),
		}
	}
	registry := hub.New(st, status, cfg.Broadcast.Workers)

	wsHandler := ws.NewHandler(registry, cfg.Broadcast.SendBuffer)
	go wsHandler.Run(ctx)

	coord := cycle.New(poller.New(cfg.Source), registry, st, cfg.Source.Interval)
	coord.SetOptions(diff.Options{SuppressUntimedRepeats: cfg.Broadcast.SuppressUntimedRepeats})
	go coord.Run(ctx)

	// Hot reload covers the log level and the diff policy; source and
	// listener changes need a restart.
	if serveFlags.configPath != "" {
		go func() {
			err := config.Watch(ctx, serveFlags.configPath, func(updated *config.Config) {
				level.Set(updated.Log.SlogLevel())
				coord.SetOptions(diff.Options{SuppressUntimedRepeats: updated.Broadcast.SuppressUntimedRepeats})
				if updated.Source != cfg.Source || updated.Server != cfg.Server {
					slog.Warn("config: source or server settings changed, restart to apply")
				}
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	adminHandler := api.New(api.Deps{Store: st, Hub: registry, Cycle: coord, Status: status})

	mux := http.NewServeMux()
	mux.Handle("/ws", wsHandler)
	mux.Handle("/api/", auth.APIKeyMiddleware(
		cfg.Server.AdminAuth.Mode,
		cfg.Server.AdminAuth.EffectiveHeader(),
		cfg.Server.AdminAuth.Key(),
		adminHandler,
	))
	mux.Handle("/metrics", adminHandler)
	if serveFlags.uiDir != "" {
		mux.Handle("/", spaHandler(serveFlags.uiDir))
		slog.Info("serving UI static files", "dir", serveFlags.uiDir)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	slog.Info("liveresults shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// spaHandler serves files from dir and falls back to index.html for unknown
// paths so client-side routes resolve.
func spaHandler(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
		if _, err := os.Stat(path); os.IsNotExist(err) {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	})
}
