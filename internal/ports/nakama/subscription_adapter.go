package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"wolfbot/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

type subscriberRecord struct {
	Users []string `json:"users"`
}

// NakamaSubscriptionAdapter implements ports.SubscriptionPort with a single
// system-owned object listing every subscriber.
type NakamaSubscriptionAdapter struct {
	st Storage
}

// NewNakamaSubscriptionAdapter creates a new subscription adapter.
func NewNakamaSubscriptionAdapter(st Storage) *NakamaSubscriptionAdapter {
	return &NakamaSubscriptionAdapter{st: st}
}

func (a *NakamaSubscriptionAdapter) IsSubscribed(ctx context.Context, userID string) (bool, error) {
	rec, _, err := a.load(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(rec.Users, userID) >= 0, nil
}

// Subscribe adds userID and reports whether the list changed.
func (a *NakamaSubscriptionAdapter) Subscribe(ctx context.Context, userID string) (bool, error) {
	return a.update(ctx, userID, func(users []string) ([]string, bool) {
		if indexOf(users, userID) >= 0 {
			return users, false
		}
		users = append(users, userID)
		sort.Strings(users)
		return users, true
	})
}

// Unsubscribe removes userID and reports whether the list changed.
func (a *NakamaSubscriptionAdapter) Unsubscribe(ctx context.Context, userID string) (bool, error) {
	return a.update(ctx, userID, func(users []string) ([]string, bool) {
		i := indexOf(users, userID)
		if i < 0 {
			return users, false
		}
		return append(users[:i], users[i+1:]...), true
	})
}

// Subscribers returns every subscribed user id in ascending order.
func (a *NakamaSubscriptionAdapter) Subscribers(ctx context.Context) ([]string, error) {
	rec, _, err := a.load(ctx)
	if err != nil {
		return nil, err
	}
	return rec.Users, nil
}

func (a *NakamaSubscriptionAdapter) update(ctx context.Context, userID string, change func([]string) ([]string, bool)) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		rec, obj, err := a.load(ctx)
		if err != nil {
			return false, err
		}
		users, changed := change(rec.Users)
		if !changed {
			return false, nil
		}

		value, err := json.Marshal(subscriberRecord{Users: users})
		if err != nil {
			return false, fmt.Errorf("failed to marshal subscribers: %w", err)
		}
		_, err = a.st.StorageWrite(ctx, []*runtime.StorageWrite{{
			Collection:      notifyCollection,
			Key:             notifySubscriberKey,
			Value:           string(value),
			Version:         versionOf(obj),
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		}})
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to write subscribers: %w", err)
		}
		return true, nil
	}
	return false, fmt.Errorf("failed to update subscribers: too many concurrent updates")
}

func (a *NakamaSubscriptionAdapter) load(ctx context.Context) (subscriberRecord, *api.StorageObject, error) {
	var rec subscriberRecord
	obj, err := readOne(ctx, a.st, notifyCollection, notifySubscriberKey, "")
	if err != nil {
		return rec, nil, fmt.Errorf("failed to read subscribers: %w", err)
	}
	if obj == nil {
		return rec, nil, nil
	}
	if err := json.Unmarshal([]byte(obj.GetValue()), &rec); err != nil {
		return rec, nil, fmt.Errorf("failed to unmarshal subscribers: %w", err)
	}
	return rec, obj, nil
}

func indexOf(users []string, userID string) int {
	for i, u := range users {
		if u == userID {
			return i
		}
	}
	return -1
}

var _ ports.SubscriptionPort = (*NakamaSubscriptionAdapter)(nil)
