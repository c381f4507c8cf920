// Package scatter implements the message-passing strategy: a coordinator reads the whole
// capture, splits it into one contiguous partition per rank and ships each partition over
// a transport. Ranks extract payloads and emit them; they do not match patterns.
package scatter

import (
	"context"
	"fmt"

	"Go2PayloadScan/internal/config"
	"Go2PayloadScan/internal/engine/aggregator"
	"Go2PayloadScan/internal/engine/partition"
	"Go2PayloadScan/internal/engine/protocol"
	"Go2PayloadScan/internal/factory"
	"Go2PayloadScan/internal/model"
	"Go2PayloadScan/internal/transport"
	"Go2PayloadScan/pkg/pcap"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Name is the registry name of this strategy.
const Name = "scatter"

// --- Factory Registration ---

func init() {
	factory.RegisterStrategy(Name, func(cfg *config.Config, logger *zap.Logger) (model.Strategy, error) {
		scatterCfg := cfg.Scatter
		return New(func() (transport.Transport, error) {
			return transport.New(scatterCfg, logger)
		}, logger), nil
	})
}

// Strategy is the scatter distribution strategy. A new transport is created for every run.
type Strategy struct {
	newTransport func() (transport.Transport, error)
	logger       *zap.Logger
}

// New creates a scatter strategy.
func New(newTransport func() (transport.Transport, error), logger *zap.Logger) *Strategy {
	return &Strategy{newTransport: newTransport, logger: logger}
}

func (s *Strategy) Name() string {
	return Name
}

type rankOutput struct {
	lines   [][]byte
	partial *aggregator.Partial
}

// Run scatters the capture across opts.Workers ranks. Sending a partition blocks until the
// rank has received it, so returning from the send loop means every rank holds its data.
// If the capture cannot be opened, every rank is told to abort and the open error is returned.
func (s *Strategy) Run(ctx context.Context, open model.SourceOpener, opts model.RunOptions) (*model.Result, error) {
	if opts.Workers < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", opts.Workers)
	}

	tr, err := s.newTransport()
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}
	defer tr.Close()
	if err := tr.Bind(opts.Workers); err != nil {
		return nil, fmt.Errorf("failed to bind ranks: %w", err)
	}

	outputs := make([]rankOutput, opts.Workers)
	g, gctx := errgroup.WithContext(ctx)
	for rank := 0; rank < opts.Workers; rank++ {
		rank := rank
		g.Go(func() error {
			records, err := tr.Receive(gctx, rank)
			if err != nil {
				return err
			}
			outputs[rank] = s.process(rank, records, opts.Mode)
			return nil
		})
	}
	s.logger.Info("ranks started", zap.Int("ranks", opts.Workers))

	src, err := open()
	if err != nil {
		s.abort(ctx, tr, err)
		g.Wait()
		return nil, err
	}
	records := pcap.ReadAll(src, s.logger)
	src.Close()
	s.logger.Info("capture loaded", zap.Int("packets", len(records)))

	ranges, err := partition.Static(len(records), opts.Workers)
	if err != nil {
		s.abort(ctx, tr, err)
		g.Wait()
		return nil, err
	}
	for _, r := range ranges {
		if err := tr.Send(gctx, r.Owner, records[r.Start:r.End]); err != nil {
			s.abort(ctx, tr, err)
			g.Wait()
			return nil, fmt.Errorf("failed to send partition to rank %d: %w", r.Owner, err)
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rank failed: %w", err)
	}

	global := aggregator.NewGlobal(0)
	var lines [][]byte
	for _, out := range outputs {
		lines = append(lines, out.lines...)
		global.Merge(out.partial)
	}
	return &model.Result{Lines: lines, Stats: global.Stats()}, nil
}

// abort releases every rank still waiting for a partition.
func (s *Strategy) abort(ctx context.Context, tr transport.Transport, cause error) {
	if err := tr.Abort(ctx, cause); err != nil {
		s.logger.Warn("failed to broadcast abort", zap.NamedError("cause", cause), zap.Error(err))
	}
}

func (s *Strategy) process(rank int, records []model.PacketRecord, mode model.Mode) rankOutput {
	out := rankOutput{partial: aggregator.NewPartial(0)}
	for i, rec := range records {
		p := protocol.Extract(rec.Data, rec.CaptureLength, mode)
		out.partial.Observe(p)
		if !p.Valid() {
			s.logger.Debug("no payload", zap.Int("rank", rank), zap.Int("index", i),
				zap.Stringer("reason", p.Reason), zap.Bool("truncated", p.Reason.IsTruncated()))
			continue
		}
		out.lines = append(out.lines, Printable(p.Data))
	}
	s.logger.Debug("rank done", zap.Int("rank", rank), zap.Int("packets", len(records)), zap.Int("lines", len(out.lines)))
	return out
}

// Printable returns a copy of payload with every byte outside the printable ASCII range
// replaced by '.', so a payload always renders as a single line.
func Printable(payload []byte) []byte {
	line := make([]byte, len(payload))
	for i, b := range payload {
		if b >= 0x20 && b < 0x7f {
			line[i] = b
		} else {
			line[i] = '.'
		}
	}
	return line
}
