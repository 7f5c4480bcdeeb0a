package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/avelasco/bizpulse/internal/cache"
	"github.com/avelasco/bizpulse/internal/config"
	"github.com/avelasco/bizpulse/internal/news"
	"github.com/avelasco/bizpulse/internal/newsclient"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Prune stale cached articles and record the refresh time",
	RunE:  runRefresh,
}

func runRefresh(cmd *cobra.Command, args []string) error {
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

	c, err := cache.Open(cfg.CachePath())
	if err != nil {
		return fmt.Errorf("opening article cache: %w", err)
	}
	defer c.Close()

	client := newsclient.New(cfg.NewsAPI.BaseURL, cfg.APIKey(), cfg.NewsAPI.RequestsPerMinute)
	svc := news.NewService(client, c, cfg.RetentionDuration(), log)

	if err := svc.RefreshNewsCache(cmd.Context()); err != nil {
		return fmt.Errorf("refreshing cache: %w", err)
	}

	if last := c.LastRefresh(); !last.IsZero() {
		fmt.Printf("cache refreshed at %s\n", last.Format("2006-01-02 15:04:05"))
	}
	return nil
}
