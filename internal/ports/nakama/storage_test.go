package nakama

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// fakeStorage is an in-memory storage engine that enforces object versions
// the way Nakama does.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string]*api.StorageObject
	next    int
	// conflicts makes that many upcoming writes fail as if another writer won.
	conflicts int
	writes    int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]*api.StorageObject)}
}

func storageKey(collection, key, userID string) string {
	return collection + "/" + key + "/" + userID
}

func (f *fakeStorage) StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*api.StorageObject
	for _, r := range reads {
		if obj, ok := f.objects[storageKey(r.Collection, r.Key, r.UserID)]; ok {
			copied := *obj
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeStorage) StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.conflicts > 0 {
		f.conflicts--
		return nil, runtime.ErrStorageRejectedVersion
	}

	acks := make([]*api.StorageObjectAck, 0, len(writes))
	for _, w := range writes {
		k := storageKey(w.Collection, w.Key, w.UserID)
		current, exists := f.objects[k]
		switch {
		case w.Version == "*" && exists:
			return nil, runtime.ErrStorageRejectedVersion
		case w.Version != "" && w.Version != "*" && (!exists || current.Version != w.Version):
			return nil, runtime.ErrStorageRejectedVersion
		}
		f.next++
		version := strconv.Itoa(f.next)
		f.objects[k] = &api.StorageObject{
			Collection: w.Collection,
			Key:        w.Key,
			UserId:     w.UserID,
			Value:      w.Value,
			Version:    version,
		}
		acks = append(acks, &api.StorageObjectAck{Collection: w.Collection, Key: w.Key, UserId: w.UserID, Version: version})
	}
	return acks, nil
}

func (f *fakeStorage) StorageList(ctx context.Context, callerID, userID, collection string, limit int, cursor string) ([]*api.StorageObject, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k, obj := range f.objects {
		if obj.Collection == collection && (userID == "" || obj.UserId == userID) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if cursor != "" {
		var err error
		if start, err = strconv.Atoi(cursor); err != nil {
			return nil, "", fmt.Errorf("bad cursor %q", cursor)
		}
	}
	end := start + limit
	if end > len(keys) {
		end = len(keys)
	}
	var out []*api.StorageObject
	for _, k := range keys[start:end] {
		copied := *f.objects[k]
		out = append(out, &copied)
	}
	next := ""
	if end < len(keys) {
		next = strconv.Itoa(end)
	}
	return out, next, nil
}

func TestPenaltyAdapterAddAndGet(t *testing.T) {
	ctx := context.Background()
	st := newFakeStorage()
	a := NewNakamaPenaltyAdapter(st)

	if got, err := a.GetPenalty(ctx, "u1"); err != nil || got != 0 {
		t.Fatalf("GetPenalty() = %d, %v, want 0, nil", got, err)
	}
	if got, err := a.AddPenalty(ctx, "u1", 1); err != nil || got != 1 {
		t.Fatalf("AddPenalty() = %d, %v, want 1, nil", got, err)
	}

	st.conflicts = 2
	if got, err := a.AddPenalty(ctx, "u1", 2); err != nil || got != 3 {
		t.Fatalf("AddPenalty() after conflicts = %d, %v, want 3, nil", got, err)
	}
	if got, _ := a.GetPenalty(ctx, "u1"); got != 3 {
		t.Fatalf("GetPenalty() = %d, want 3", got)
	}
}

func TestPenaltyAdapterGivesUpAfterRepeatedConflicts(t *testing.T) {
	st := newFakeStorage()
	st.conflicts = maxWriteAttempts
	a := NewNakamaPenaltyAdapter(st)

	if _, err := a.AddPenalty(context.Background(), "u1", 1); err == nil {
		t.Fatal("AddPenalty() succeeded despite every write conflicting")
	}
	if st.writes != maxWriteAttempts {
		t.Fatalf("writes = %d, want %d", st.writes, maxWriteAttempts)
	}
}

func TestPenaltyAdapterRejectsBadInput(t *testing.T) {
	a := NewNakamaPenaltyAdapter(newFakeStorage())
	tests := []struct {
		name   string
		userID string
		amount int
	}{
		{name: "NoUser", userID: "", amount: 1},
		{name: "ZeroAmount", userID: "u1", amount: 0},
		{name: "NegativeAmount", userID: "u1", amount: -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.AddPenalty(context.Background(), tt.userID, tt.amount); err == nil {
				t.Fatal("AddPenalty() error = nil")
			}
		})
	}
}

func TestPenaltyAdapterServePenalties(t *testing.T) {
	ctx := context.Background()
	a := NewNakamaPenaltyAdapter(newFakeStorage())
	_, _ = a.AddPenalty(ctx, "u1", 2)
	_, _ = a.AddPenalty(ctx, "u2", 1)

	served, err := a.ServePenalties(ctx)
	if err != nil || served != 2 {
		t.Fatalf("ServePenalties() = %d, %v, want 2, nil", served, err)
	}
	if got, _ := a.GetPenalty(ctx, "u1"); got != 1 {
		t.Fatalf("u1 penalty = %d, want 1", got)
	}
	if got, _ := a.GetPenalty(ctx, "u2"); got != 0 {
		t.Fatalf("u2 penalty = %d, want 0", got)
	}

	served, _ = a.ServePenalties(ctx)
	if served != 1 {
		t.Fatalf("second ServePenalties() = %d, want 1", served)
	}
}

func TestPenaltyAdapterServesEveryPage(t *testing.T) {
	ctx := context.Background()
	a := NewNakamaPenaltyAdapter(newFakeStorage())
	for i := 0; i < 250; i++ {
		if _, err := a.AddPenalty(ctx, fmt.Sprintf("user-%03d", i), 1); err != nil {
			t.Fatalf("AddPenalty() error: %v", err)
		}
	}

	served, err := a.ServePenalties(ctx)
	if err != nil || served != 250 {
		t.Fatalf("ServePenalties() = %d, %v, want 250, nil", served, err)
	}
}

func TestSubscriptionAdapter(t *testing.T) {
	ctx := context.Background()
	st := newFakeStorage()
	a := NewNakamaSubscriptionAdapter(st)

	if added, err := a.Subscribe(ctx, "u2"); err != nil || !added {
		t.Fatalf("Subscribe(u2) = %v, %v, want true, nil", added, err)
	}
	st.conflicts = 1
	if added, err := a.Subscribe(ctx, "u1"); err != nil || !added {
		t.Fatalf("Subscribe(u1) = %v, %v, want true, nil", added, err)
	}
	if added, _ := a.Subscribe(ctx, "u1"); added {
		t.Fatal("Subscribe() twice reported a change")
	}

	users, err := a.Subscribers(ctx)
	if err != nil || len(users) != 2 || users[0] != "u1" || users[1] != "u2" {
		t.Fatalf("Subscribers() = %v, %v, want [u1 u2]", users, err)
	}

	if removed, _ := a.Unsubscribe(ctx, "u2"); !removed {
		t.Fatal("Unsubscribe(u2) reported no change")
	}
	if removed, _ := a.Unsubscribe(ctx, "u2"); removed {
		t.Fatal("Unsubscribe() twice reported a change")
	}
	if ok, _ := a.IsSubscribed(ctx, "u2"); ok {
		t.Fatal("IsSubscribed(u2) = true after unsubscribe")
	}
	if ok, _ := a.IsSubscribed(ctx, "u1"); !ok {
		t.Fatal("IsSubscribed(u1) = false")
	}
}
