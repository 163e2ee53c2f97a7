package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier wraps a Sender with the delivery policy the handlers use:
// Deliver blocks and reports failure, Dispatch is fire-and-forget.
type Notifier struct {
	sender  Sender
	log     *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotifier(sender Sender, log *zap.Logger) *Notifier {
	return &Notifier{sender: sender, log: log, timeout: 30 * time.Second}
}

// Deliver sends m within the notifier's timeout and reports the outcome.
func (n *Notifier) Deliver(ctx context.Context, m Message) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	return n.sender.Send(ctx, m)
}

// Dispatch sends m in the background. A failed render (err != nil) or send
// is logged and dropped.
func (n *Notifier) Dispatch(m Message, err error) {
	if err != nil {
		n.log.Error("email render failed", zap.Error(err))
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.Deliver(context.Background(), m); err != nil {
			n.log.Error("email delivery failed", zap.String("to", m.To), zap.String("subject", m.Subject), zap.Error(err))
		}
	}()
}

// Wait blocks until every dispatched email has been attempted.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
