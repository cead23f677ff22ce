package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/salmaanit26/Query-Management-System/internal/repository"
	"github.com/salmaanit26/Query-Management-System/internal/service"
	"github.com/salmaanit26/Query-Management-System/pkg/cache"
	"github.com/salmaanit26/Query-Management-System/pkg/config"
	"github.com/salmaanit26/Query-Management-System/pkg/logger"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "History cache maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Drop every cached status history entry",
		Args:  cobra.NoArgs,
		RunE:  runCachePurge,
	})
	return cmd
}

func runCachePurge(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.Redis.Enabled {
		fmt.Fprintln(cmd.OutOrStdout(), "redis disabled, nothing to purge")
		return nil
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	repo := repository.NewCacheRepository(client, logr)
	defer repo.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()
	if err := repo.DeleteByPattern(ctx, service.HistoryCachePattern); err != nil {
		return fmt.Errorf("purge history cache: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "history cache purged")
	return nil
}
