// Package scan implements the shared-memory data-parallel strategy. The capture is read
// into memory, then extraction and matching each run as a parallel loop over packet
// indexes with guided (shrinking) chunks.
package scan

import (
	"context"
	"fmt"

	"Go2PayloadScan/internal/config"
	"Go2PayloadScan/internal/engine/aggregator"
	"Go2PayloadScan/internal/engine/matcher"
	"Go2PayloadScan/internal/engine/partition"
	"Go2PayloadScan/internal/engine/protocol"
	"Go2PayloadScan/internal/factory"
	"Go2PayloadScan/internal/model"
	"Go2PayloadScan/pkg/pcap"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Name is the registry name of this strategy.
const Name = "scan"

func init() {
	factory.RegisterStrategy(Name, func(cfg *config.Config, logger *zap.Logger) (model.Strategy, error) {
		return New(cfg.Scan.MinChunk, logger), nil
	})
}

// Strategy is the data-parallel scan strategy.
type Strategy struct {
	minChunk int
	logger   *zap.Logger
}

// New creates a scan strategy whose guided chunks never drop below minChunk packets.
func New(minChunk int, logger *zap.Logger) *Strategy {
	return &Strategy{minChunk: minChunk, logger: logger}
}

func (s *Strategy) Name() string {
	return Name
}

func (s *Strategy) Run(ctx context.Context, open model.SourceOpener, opts model.RunOptions) (*model.Result, error) {
	if opts.Workers < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", opts.Workers)
	}
	set := matcher.CompileSet(opts.Patterns)

	src, err := open()
	if err != nil {
		return nil, err
	}
	records := pcap.ReadAll(src, s.logger)
	src.Close()
	s.logger.Info("capture loaded", zap.Int("packets", len(records)), zap.Int("threads", opts.Workers),
		zap.Strings("patterns", set.Patterns()))

	payloads, err := s.extract(ctx, records, opts)
	if err != nil {
		return nil, err
	}
	global, err := s.match(ctx, set, payloads, opts.Workers)
	if err != nil {
		return nil, err
	}
	return &model.Result{Counts: global.Counts(), Stats: global.Stats()}, nil
}

// extract fills one payload slot per record. Each slot is written by exactly one worker.
func (s *Strategy) extract(ctx context.Context, records []model.PacketRecord, opts model.RunOptions) ([]model.Payload, error) {
	payloads := make([]model.Payload, len(records))
	sched := partition.NewGuided(len(records), opts.Workers, s.minChunk)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < opts.Workers; w++ {
		g.Go(func() error {
			for {
				start, end, ok := sched.Next()
				if !ok {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				for i := start; i < end; i++ {
					payloads[i] = protocol.Extract(records[i].Data, records[i].CaptureLength, opts.Mode)
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extraction interrupted: %w", err)
	}
	return payloads, nil
}

// match counts pattern occurrences. Every worker tallies privately and merges once at the end.
func (s *Strategy) match(ctx context.Context, set *matcher.Set, payloads []model.Payload, workers int) (*aggregator.Global, error) {
	global := aggregator.NewGlobal(set.Len())
	sched := partition.NewGuided(len(payloads), workers, s.minChunk)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			partial := aggregator.NewPartial(set.Len())
			for {
				start, end, ok := sched.Next()
				if !ok {
					break
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				for i := start; i < end; i++ {
					if !payloads[i].Valid() {
						s.logger.Debug("no payload", zap.Int("index", i), zap.Stringer("reason", payloads[i].Reason),
							zap.Bool("truncated", payloads[i].Reason.IsTruncated()))
					}
					partial.Match(set, payloads[i])
				}
			}
			global.Merge(partial)
			s.logger.Debug("worker merged", zap.Int("worker", w), zap.Int64("packets", partial.Packets))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("matching interrupted: %w", err)
	}
	return global, nil
}
