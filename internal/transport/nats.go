package transport

import (
	"context"
	"errors"
	"fmt"

	"Go2PayloadScan/internal/model"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// rankQueueLen is the delivery buffer of one rank. Frames are sent one at a time per
// rank, so only a data frame and an abort can be pending together.
const rankQueueLen = 8

// NATS carries partitions over a NATS server. Every frame is a request that the
// receiving rank answers, so Send returns only after the rank has the whole partition.
//
// Subjects are scoped by a per-run ID:
//
//	<prefix>.<run>.rank.<n>   partition frames for rank n
//	<prefix>.<run>.abort      abort broadcast
type NATS struct {
	nc     *nats.Conn
	logger *zap.Logger
	runID  string
	prefix string

	subs  []*nats.Subscription
	inbox []chan *nats.Msg
}

// NewNATS connects to the server at url.
func NewNATS(url, prefix string, logger *zap.Logger) (*NATS, error) {
	nc, err := nats.Connect(url, nats.Name("payload-scan"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	runID := uuid.NewString()
	logger.Info("connected to NATS", zap.String("url", url), zap.String("run", runID))
	return &NATS{nc: nc, logger: logger, runID: runID, prefix: prefix}, nil
}

func (t *NATS) rankSubject(rank int) string {
	return fmt.Sprintf("%s.%s.rank.%d", t.prefix, t.runID, rank)
}

func (t *NATS) abortSubject() string {
	return fmt.Sprintf("%s.%s.abort", t.prefix, t.runID)
}

func (t *NATS) Bind(ranks int) error {
	if ranks < 1 {
		return errors.New("at least one rank is required")
	}
	t.inbox = make([]chan *nats.Msg, ranks)
	for rank := range t.inbox {
		ch := make(chan *nats.Msg, rankQueueLen)
		for _, subject := range []string{t.rankSubject(rank), t.abortSubject()} {
			sub, err := t.nc.ChanSubscribe(subject, ch)
			if err != nil {
				return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
			}
			t.subs = append(t.subs, sub)
		}
		t.inbox[rank] = ch
	}
	// Make sure the server knows every subscription before the first request goes out.
	if err := t.nc.Flush(); err != nil {
		return fmt.Errorf("failed to flush subscriptions: %w", err)
	}
	t.logger.Debug("ranks bound", zap.Int("ranks", ranks), zap.String("run", t.runID))
	return nil
}

func (t *NATS) Send(ctx context.Context, rank int, records []model.PacketRecord) error {
	if err := checkRank(rank, len(t.inbox)); err != nil {
		return err
	}
	subject := t.rankSubject(rank)
	frames := SplitFrames(rank, records, int(t.nc.MaxPayload()))
	for i, f := range frames {
		if _, err := t.nc.RequestWithContext(ctx, subject, EncodeFrame(f)); err != nil {
			return fmt.Errorf("failed to send frame %d/%d to rank %d: %w", i+1, len(frames), rank, err)
		}
	}
	t.logger.Debug("partition sent", zap.Int("rank", rank), zap.Int("records", len(records)), zap.Int("frames", len(frames)))
	return nil
}

func (t *NATS) Receive(ctx context.Context, rank int) ([]model.PacketRecord, error) {
	if err := checkRank(rank, len(t.inbox)); err != nil {
		return nil, err
	}
	var records []model.PacketRecord
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg := <-t.inbox[rank]:
			f, err := DecodeFrame(msg.Data)
			if err != nil {
				return nil, fmt.Errorf("rank %d: %w", rank, err)
			}
			if f.Abort != "" {
				return nil, abortError(f.Abort)
			}
			records = append(records, f.Records...)
			if err := msg.Respond(nil); err != nil {
				return nil, fmt.Errorf("rank %d failed to acknowledge frame: %w", rank, err)
			}
			if f.Last {
				return records, nil
			}
		}
	}
}

func (t *NATS) Abort(_ context.Context, cause error) error {
	if err := t.nc.Publish(t.abortSubject(), EncodeFrame(Frame{Abort: cause.Error()})); err != nil {
		return fmt.Errorf("failed to publish abort: %w", err)
	}
	return t.nc.Flush()
}

func (t *NATS) Close() error {
	var firstErr error
	for _, sub := range t.subs {
		if err := sub.Unsubscribe(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	t.subs = nil
	t.nc.Close()
	t.logger.Debug("NATS connection closed", zap.String("run", t.runID))
	return firstErr
}
