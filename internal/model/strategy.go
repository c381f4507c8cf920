package model

import "context"

// Source supplies packet records sequentially. Next returns io.EOF once the capture is exhausted.
// A Source is not safe for concurrent use.
type Source interface {
	Next() (PacketRecord, error)
	Close()
}

// SourceOpener opens the capture. Strategies call it exactly once per run.
type SourceOpener func() (Source, error)

// RunOptions carries the per-run parameters shared by all strategies.
type RunOptions struct {
	Workers  int
	Mode     Mode
	Patterns []string
}

// Strategy defines one way of distributing extraction and matching work across workers.
// This is the interface for the "execution layer".
type Strategy interface {
	Name() string
	Run(ctx context.Context, open SourceOpener, opts RunOptions) (*Result, error)
}
