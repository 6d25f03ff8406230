package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Result cache subcommands",
}

var cacheFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Remove every cached result",
	Long:  "Flushes the configured cache backend. Only useful with the redis backend; the memory cache lives inside the server process.",
	RunE:  runCacheFlush,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheFlushCmd)
}

func runCacheFlush(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c, err := buildCache(cfg)
	if err != nil {
		return err
	}
	if closer, ok := c.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	if err := c.FlushAll(cmd.Context()); err != nil {
		return fmt.Errorf("flush cache: %w", err)
	}
	logger.Info("cache flushed", "backend", cfg.Cache.Backend)
	return nil
}
