// Package pipeline implements the bounded-batch producer/consumer strategy. A single
// producer reads and extracts fixed-size batches while a pool of consumers matches them.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"Go2PayloadScan/internal/config"
	"Go2PayloadScan/internal/engine/aggregator"
	"Go2PayloadScan/internal/engine/matcher"
	"Go2PayloadScan/internal/engine/protocol"
	"Go2PayloadScan/internal/factory"
	"Go2PayloadScan/internal/model"

	"go.uber.org/zap"
)

// Name is the registry name of this strategy.
const Name = "pipeline"

func init() {
	factory.RegisterStrategy(Name, func(cfg *config.Config, logger *zap.Logger) (model.Strategy, error) {
		return New(cfg.Pipeline.BatchSize, cfg.Pipeline.QueueSize, logger), nil
	})
}

type batchState uint8

const (
	stateFilling batchState = iota
	stateDispatched
	stateMerged
)

// batch is owned by the producer while filling and by exactly one consumer once dispatched.
type batch struct {
	id       int
	payloads []model.Payload
	state    batchState
}

// Strategy is the bounded-batch pipeline strategy.
type Strategy struct {
	batchSize int
	queueSize int
	logger    *zap.Logger
}

// New creates a pipeline strategy. queueSize bounds how many dispatched batches may wait for a consumer.
func New(batchSize, queueSize int, logger *zap.Logger) *Strategy {
	if batchSize < 1 {
		batchSize = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Strategy{batchSize: batchSize, queueSize: queueSize, logger: logger}
}

func (s *Strategy) Name() string {
	return Name
}

// Run streams the capture in batches. A batch shorter than the batch size, possibly
// empty, marks the end of the capture; it is still dispatched and merged.
func (s *Strategy) Run(ctx context.Context, open model.SourceOpener, opts model.RunOptions) (*model.Result, error) {
	if opts.Workers < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", opts.Workers)
	}
	set := matcher.CompileSet(opts.Patterns)

	src, err := open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	global := aggregator.NewGlobal(set.Len())
	queue := make(chan *batch, s.queueSize)

	var wg sync.WaitGroup
	wg.Add(opts.Workers)
	for w := 0; w < opts.Workers; w++ {
		go s.consume(w, set, queue, global, &wg)
	}
	s.logger.Info("consumers started", zap.Int("threads", opts.Workers), zap.Int("batch_size", s.batchSize),
		zap.Strings("patterns", set.Patterns()))

	produceErr := s.produce(ctx, src, opts.Mode, queue)

	// Wait for every dispatched batch to be merged.
	close(queue)
	wg.Wait()
	s.logger.Debug("consumers done", zap.Int("batches", global.Merges()))

	if produceErr != nil {
		return nil, produceErr
	}
	return &model.Result{Counts: global.Counts(), Stats: global.Stats()}, nil
}

func (s *Strategy) produce(ctx context.Context, src model.Source, mode model.Mode, queue chan<- *batch) error {
	for id := 0; ; id++ {
		b := &batch{id: id, payloads: make([]model.Payload, 0, s.batchSize), state: stateFilling}
		for len(b.payloads) < s.batchSize {
			rec, err := src.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					s.logger.Warn("capture read stopped early", zap.Int("batch", id), zap.Error(err))
				}
				break
			}
			b.payloads = append(b.payloads, protocol.Extract(rec.Data, rec.CaptureLength, mode))
		}

		last := len(b.payloads) < s.batchSize
		b.state = stateDispatched
		select {
		case queue <- b:
		case <-ctx.Done():
			return fmt.Errorf("pipeline interrupted at batch %d: %w", id, ctx.Err())
		}
		if last {
			s.logger.Debug("final batch dispatched", zap.Int("batch", id), zap.Int("size", len(b.payloads)))
			return nil
		}
	}
}

func (s *Strategy) consume(worker int, set *matcher.Set, queue <-chan *batch, global *aggregator.Global, wg *sync.WaitGroup) {
	defer wg.Done()
	partial := aggregator.NewPartial(set.Len())
	for b := range queue {
		for i, p := range b.payloads {
			if !p.Valid() {
				s.logger.Debug("no payload", zap.Int("batch", b.id), zap.Int("index", i),
					zap.Stringer("reason", p.Reason), zap.Bool("truncated", p.Reason.IsTruncated()))
			}
			partial.Match(set, p)
		}
		global.Merge(partial)
		partial.Reset()
		b.state = stateMerged
		s.logger.Debug("batch merged", zap.Int("worker", worker), zap.Int("batch", b.id), zap.Int("size", len(b.payloads)))
	}
}
