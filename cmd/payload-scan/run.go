package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"Go2PayloadScan/internal/config"
	"Go2PayloadScan/internal/engine/manager"
	"Go2PayloadScan/internal/model"
	"Go2PayloadScan/internal/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// parseRunArgs validates "<file.pcap> <workers> [tcp|udp]".
func parseRunArgs(args []string) (path string, workers int, mode model.Mode, err error) {
	if len(args) < 2 || len(args) > 3 {
		return "", 0, model.ModeUDP, fmt.Errorf("expected <file.pcap> <workers> [tcp|udp], got %d argument(s)", len(args))
	}
	path = args[0]
	workers, err = strconv.Atoi(args[1])
	if err != nil || workers < 1 {
		return "", 0, model.ModeUDP, fmt.Errorf("worker count must be a positive integer, got '%s'", args[1])
	}
	if len(args) == 3 {
		mode, err = model.ParseMode(args[2])
		if err != nil {
			return "", 0, model.ModeUDP, err
		}
	}
	return path, workers, mode, nil
}

// loadConfig reads the config file, if any, and applies the flags the user set explicitly.
func loadConfig(cmd *cobra.Command, g *globalFlags, override func(cfg *config.Config)) (*config.Config, error) {
	cfg := config.Default()
	if g.configPath != "" {
		var err error
		cfg, err = config.LoadConfig(g.configPath)
		if err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if flags.Changed("format") {
		cfg.Output.Format = g.format
	}
	if flags.Changed("backend") {
		cfg.Capture.Backend = g.backend
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// runStrategy is the shared body of every subcommand.
func runStrategy(cmd *cobra.Command, args []string, g *globalFlags, strategy string, stdout io.Writer, override func(cfg *config.Config)) error {
	path, workers, mode, err := parseRunArgs(args)
	if err != nil {
		return usageFailure(cmd, err)
	}

	cfg, err := loadConfig(cmd, g, override)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()
	logger.Debug("configuration loaded", zap.String("file", g.configPath), zap.Strings("patterns", cfg.Patterns))

	writer, err := report.New(cfg.Output.Format)
	if err != nil {
		return err
	}
	m, err := manager.NewManager(cfg, strategy, logger)
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := m.Run(ctx, path, workers, mode)
	if err != nil {
		return err
	}
	return writer.Write(stdout, rep)
}
