package nakama

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"wolfbot/internal/ports"
)

type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	fails map[string]bool
}

func (f *fakeSender) NotificationSend(ctx context.Context, userID, subject string, content map[string]interface{}, code int, sender string, persistent bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails[userID] {
		return errors.New("user offline")
	}
	if code != NotifyCodeGameOpen || !persistent {
		return errors.New("unexpected notification")
	}
	f.sent = append(f.sent, userID)
	return nil
}

func TestNotifierDeliversToEveryRecipient(t *testing.T) {
	sender := &fakeSender{fails: map[string]bool{"u2": true}}
	a := NewNakamaNotifierAdapter(sender, noopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	a.Notify(ctx, ports.Notification{
		Subject:    "A new game is forming",
		Code:       NotifyCodeGameOpen,
		Content:    map[string]interface{}{"match_id": "m1"},
		Recipients: []string{"u1", "u2", "u3"},
	})
	// Delivery outlives the caller's context.
	cancel()
	a.Wait()

	sort.Strings(sender.sent)
	if len(sender.sent) != 2 || sender.sent[0] != "u1" || sender.sent[1] != "u3" {
		t.Fatalf("sent = %v, want [u1 u3]", sender.sent)
	}
}

func TestNotifierSkipsEmptyRecipients(t *testing.T) {
	sender := &fakeSender{}
	a := NewNakamaNotifierAdapter(sender, noopLogger{})
	a.Notify(context.Background(), ports.Notification{Subject: "nobody", Code: NotifyCodeGameOpen})
	a.Wait()
	if len(sender.sent) != 0 {
		t.Fatalf("sent = %v, want none", sender.sent)
	}
}
