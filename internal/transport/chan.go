package transport

import (
	"context"
	"errors"
	"sync"

	"Go2PayloadScan/internal/model"
)

// Chan is an in-process transport. Each rank has an unbuffered channel, so a
// completed send is also the receipt acknowledgement.
type Chan struct {
	inbox []chan []model.PacketRecord

	abortOnce sync.Once
	aborted   chan struct{}
	abortErr  error
}

// NewChan creates an unbound in-process transport.
func NewChan() *Chan {
	return &Chan{aborted: make(chan struct{})}
}

func (c *Chan) Bind(ranks int) error {
	if ranks < 1 {
		return errors.New("at least one rank is required")
	}
	c.inbox = make([]chan []model.PacketRecord, ranks)
	for i := range c.inbox {
		c.inbox[i] = make(chan []model.PacketRecord)
	}
	return nil
}

func (c *Chan) Send(ctx context.Context, rank int, records []model.PacketRecord) error {
	if err := checkRank(rank, len(c.inbox)); err != nil {
		return err
	}
	select {
	case c.inbox[rank] <- records:
		return nil
	case <-c.aborted:
		return c.abortErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Chan) Receive(ctx context.Context, rank int) ([]model.PacketRecord, error) {
	if err := checkRank(rank, len(c.inbox)); err != nil {
		return nil, err
	}
	select {
	case records := <-c.inbox[rank]:
		return records, nil
	case <-c.aborted:
		return nil, c.abortErr
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Chan) Abort(_ context.Context, cause error) error {
	c.abortOnce.Do(func() {
		c.abortErr = abortError(cause.Error())
		close(c.aborted)
	})
	return nil
}

func (c *Chan) Close() error {
	return nil
}
