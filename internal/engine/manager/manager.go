package manager

import (
	"context"
	"fmt"
	"os"
	"time"

	"Go2PayloadScan/internal/config"
	_ "Go2PayloadScan/internal/engine/impl/pipeline" // Registers the pipeline strategy
	_ "Go2PayloadScan/internal/engine/impl/scan"     // Registers the scan strategy
	_ "Go2PayloadScan/internal/engine/impl/scatter"  // Registers the scatter strategy
	"Go2PayloadScan/internal/factory"
	"Go2PayloadScan/internal/model"
	"Go2PayloadScan/pkg/pcap"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// Manager runs one distribution strategy over a capture file and assembles the report.
type Manager struct {
	cfg      *config.Config
	strategy model.Strategy
	logger   *zap.Logger
}

// NewManager creates a Manager for the strategy registered under name.
func NewManager(cfg *config.Config, name string, logger *zap.Logger) (*Manager, error) {
	strategy, err := factory.Create(name, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, strategy: strategy, logger: logger}, nil
}

// Run scans the capture at path with the given number of workers. The elapsed time covers
// opening, distribution and matching. A capture that cannot be opened is the only error
// coming from the data itself; it is returned as a *model.CaptureOpenError.
func (m *Manager) Run(ctx context.Context, path string, workers int, mode model.Mode) (*model.Report, error) {
	opts := model.RunOptions{
		Workers:  workers,
		Mode:     mode,
		Patterns: append([]string(nil), m.cfg.Patterns...),
	}
	open := func() (model.Source, error) {
		r, err := pcap.Open(path, m.cfg.Capture.Backend)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	m.logger.Info("starting run",
		zap.String("strategy", m.strategy.Name()),
		zap.String("capture", path),
		zap.Int("workers", workers),
		zap.Stringer("mode", mode))

	start := time.Now()
	res, err := m.strategy.Run(ctx, open, opts)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%s run failed: %w", m.strategy.Name(), err)
	}

	stats := res.Stats
	stats.RSSBytes = sampleRSS(m.logger)
	m.logger.Info("run complete",
		zap.Duration("elapsed", elapsed),
		zap.Int64("packets", stats.Packets),
		zap.Int64("valid", stats.Valid),
		zap.Int64("invalid", stats.InvalidTotal()),
		zap.Int("units", stats.Units),
		zap.Uint64("rss_bytes", stats.RSSBytes))

	return &model.Report{
		Strategy: m.strategy.Name(),
		Mode:     mode,
		Patterns: opts.Patterns,
		Counts:   res.Counts,
		Lines:    res.Lines,
		Stats:    stats,
		Elapsed:  elapsed,
	}, nil
}

// sampleRSS returns the resident set size of this process, or 0 if it cannot be read.
func sampleRSS(logger *zap.Logger) uint64 {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Debug("failed to inspect own process", zap.Error(err))
		return 0
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		logger.Debug("failed to sample RSS", zap.Error(err))
		return 0
	}
	return mem.RSS
}
