package nakama

import (
	"context"
	"sync"
	"time"

	"wolfbot/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"golang.org/x/sync/errgroup"
)

// NotificationSender is the part of runtime.NakamaModule that delivers notifications.
type NotificationSender interface {
	NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error
}

const (
	notifyParallelism = 8
	notifyTimeout     = 10 * time.Second
)

// NakamaNotifierAdapter implements ports.NotifierPort. Delivery runs in the
// background; failures are logged and never reach the caller.
type NakamaNotifierAdapter struct {
	nk       NotificationSender
	logger   runtime.Logger
	inflight sync.WaitGroup
}

// NewNakamaNotifierAdapter creates a new notifier adapter.
func NewNakamaNotifierAdapter(nk NotificationSender, logger runtime.Logger) *NakamaNotifierAdapter {
	return &NakamaNotifierAdapter{nk: nk, logger: logger}
}

// Notify sends n to each recipient as a persistent notification.
func (a *NakamaNotifierAdapter) Notify(ctx context.Context, n ports.Notification) {
	if len(n.Recipients) == 0 {
		return
	}
	recipients := append([]string(nil), n.Recipients...)

	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		var g errgroup.Group
		g.SetLimit(notifyParallelism)
		for _, userID := range recipients {
			userID := userID
			g.Go(func() error {
				if err := a.nk.NotificationSend(sendCtx, userID, n.Subject, n.Content, n.Code, "", true); err != nil {
					a.logger.Warn("Notifier: Failed to notify %s: %v", userID, err)
					return err
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			a.logger.Warn("Notifier: %q delivered with failures", n.Subject)
			return
		}
		a.logger.Debug("Notifier: %q delivered to %d users", n.Subject, len(recipients))
	}()
}

// Wait blocks until every notification handed to Notify has been attempted.
func (a *NakamaNotifierAdapter) Wait() {
	a.inflight.Wait()
}

var _ ports.NotifierPort = (*NakamaNotifierAdapter)(nil)
