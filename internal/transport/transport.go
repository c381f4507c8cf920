// Package transport moves scatter partitions from the coordinator to its ranks.
package transport

import (
	"context"
	"errors"
	"fmt"

	"Go2PayloadScan/internal/config"
	"Go2PayloadScan/internal/model"

	"go.uber.org/zap"
)

// ErrAborted is returned by Receive once the coordinator has broadcast an abort.
var ErrAborted = errors.New("run aborted by coordinator")

// Transport is a point-to-point link between one coordinator and a fixed number of ranks.
type Transport interface {
	// Bind prepares the endpoints of ranks 0..ranks-1. It must be called before Send or Receive.
	Bind(ranks int) error
	// Send delivers a partition to a rank and returns once the rank has received all of it.
	Send(ctx context.Context, rank int, records []model.PacketRecord) error
	// Receive blocks until the rank's partition arrives or the run is aborted.
	Receive(ctx context.Context, rank int) ([]model.PacketRecord, error)
	// Abort tells every rank that no partition will follow.
	Abort(ctx context.Context, cause error) error
	Close() error
}

// New creates the transport selected by the scatter configuration.
func New(cfg config.ScatterConfig, logger *zap.Logger) (Transport, error) {
	switch cfg.Transport {
	case "", "chan":
		return NewChan(), nil
	case "nats":
		return NewNATS(cfg.NATSURL, cfg.SubjectPrefix, logger)
	default:
		return nil, fmt.Errorf("unknown scatter transport '%s'", cfg.Transport)
	}
}

func abortError(reason string) error {
	return fmt.Errorf("%w: %s", ErrAborted, reason)
}

func checkRank(rank, ranks int) error {
	if rank < 0 || rank >= ranks {
		return fmt.Errorf("rank %d out of range [0, %d)", rank, ranks)
	}
	return nil
}
