package transport

import (
	"context"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Handler receives inbound deliveries. The vault's inbound entry point
// satisfies this.
type Handler func(msg Inbound) error

// Loopback is a simulated remote venue: every accepted send is echoed back as
// an inbound credit of the same token and amount after a fixed delay. It
// deliberately provides no ordering or correlation, matching the real
// channel's guarantees.
type Loopback struct {
	delay   time.Duration
	handler Handler
	logger  *zap.Logger

	mu sync.Mutex
	wg sync.WaitGroup
}

func NewLoopback(delay time.Duration, logger *zap.Logger) *Loopback {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loopback{delay: delay, logger: logger}
}

// SetHandler wires the inbound delivery target. Must be set before Send.
func (l *Loopback) SetHandler(h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = h
}

func (l *Loopback) Send(ctx context.Context, msg Outbound) error {
	l.mu.Lock()
	handler := l.handler
	l.mu.Unlock()

	l.logger.Info("loopback send accepted",
		zap.Uint64("chain_selector", msg.ChainSelector),
		zap.String("receiver", msg.Receiver.Hex()),
		zap.String("amount", msg.Amount.String()),
	)

	if handler == nil {
		return nil
	}

	echo := Inbound{
		SourceChainSelector: msg.ChainSelector,
		Sender:              msg.Receiver,
		Token:               msg.Token,
		Amount:              new(big.Int).Set(msg.Amount),
		Data:                msg.Recipient.Bytes(),
	}

	l.wg.Add(1)
	time.AfterFunc(l.delay, func() {
		defer l.wg.Done()
		if err := handler(echo); err != nil {
			l.logger.Warn("loopback delivery rejected", zap.Error(err))
		}
	})
	return nil
}

// Wait blocks until all pending deliveries have fired. Test helper.
func (l *Loopback) Wait() {
	l.wg.Wait()
}
