package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avelasco/bizpulse/internal/auth"
	"github.com/avelasco/bizpulse/internal/cache"
	"github.com/avelasco/bizpulse/internal/config"
	"github.com/avelasco/bizpulse/internal/news"
	"github.com/avelasco/bizpulse/internal/newsclient"
	"github.com/avelasco/bizpulse/internal/server"
	"github.com/avelasco/bizpulse/internal/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	if cfg.APIKey() == "" {
		log.Warnw("no upstream API key configured, responses will fall back to placeholders",
			"env", "BIZPULSE_API_KEY")
	}
	secret := cfg.JWTSecret()
	if secret == "" {
		return errors.New("no JWT secret configured: set auth.jwt_secret or BIZPULSE_JWT_SECRET")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.CachePath()), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	c, err := cache.Open(cfg.CachePath())
	if err != nil {
		return fmt.Errorf("opening article cache: %w", err)
	}
	defer c.Close()

	st, err := store.Open(cfg.StorePath())
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	client := newsclient.New(cfg.NewsAPI.BaseURL, cfg.APIKey(), cfg.NewsAPI.RequestsPerMinute)
	svc := news.NewService(client, c, cfg.RetentionDuration(), log)
	am := auth.NewManager(secret, cfg.TokenTTL())
	srv := server.New(svc, st, am, log)

	sched := cron.New()
	_, err = sched.AddFunc(fmt.Sprintf("@every %s", cfg.RefreshDuration()), func() {
		if err := svc.RefreshNewsCache(context.Background()); err != nil {
			log.Errorw("scheduled cache refresh failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling cache refresh: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening", "addr", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Infow("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}
