package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"wolfbot/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

type penaltyRecord struct {
	Games int `json:"games"`
}

// NakamaPenaltyAdapter implements ports.PenaltyPort with one storage object
// per user. Writes are guarded by the object version.
type NakamaPenaltyAdapter struct {
	st Storage
}

// NewNakamaPenaltyAdapter creates a new penalty adapter.
func NewNakamaPenaltyAdapter(st Storage) *NakamaPenaltyAdapter {
	return &NakamaPenaltyAdapter{st: st}
}

// GetPenalty returns the number of games userID still has to sit out.
func (a *NakamaPenaltyAdapter) GetPenalty(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("userID is required")
	}
	obj, err := readOne(ctx, a.st, stasisCollection, stasisKey, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to read penalty: %w", err)
	}
	rec, err := decodePenalty(obj)
	if err != nil {
		return 0, err
	}
	return rec.Games, nil
}

// AddPenalty adds amount games to userID's penalty and returns the new total.
func (a *NakamaPenaltyAdapter) AddPenalty(ctx context.Context, userID string, amount int) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("userID is required")
	}
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		obj, err := readOne(ctx, a.st, stasisCollection, stasisKey, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to read penalty: %w", err)
		}
		rec, err := decodePenalty(obj)
		if err != nil {
			return 0, err
		}
		rec.Games += amount

		err = a.write(ctx, userID, rec, versionOf(obj))
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			continue
		}
		if err != nil {
			return 0, err
		}
		return rec.Games, nil
	}
	return 0, fmt.Errorf("failed to add penalty for %s: too many concurrent updates", userID)
}

// ServePenalties takes one game off every outstanding penalty and returns how
// many users were served. Objects changed concurrently are left for the next
// game.
func (a *NakamaPenaltyAdapter) ServePenalties(ctx context.Context) (int, error) {
	served := 0
	cursor := ""
	for {
		objects, next, err := a.st.StorageList(ctx, "", "", stasisCollection, 100, cursor)
		if err != nil {
			return served, fmt.Errorf("failed to list penalties: %w", err)
		}
		for _, obj := range objects {
			rec, err := decodePenalty(obj)
			if err != nil || rec.Games <= 0 {
				continue
			}
			rec.Games--
			err = a.write(ctx, obj.GetUserId(), rec, obj.GetVersion())
			if errors.Is(err, runtime.ErrStorageRejectedVersion) {
				continue
			}
			if err != nil {
				return served, err
			}
			served++
		}
		if next == "" || len(objects) == 0 {
			return served, nil
		}
		cursor = next
	}
}

func (a *NakamaPenaltyAdapter) write(ctx context.Context, userID string, rec penaltyRecord, version string) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal penalty: %w", err)
	}
	_, err = a.st.StorageWrite(ctx, []*runtime.StorageWrite{{
		Collection:      stasisCollection,
		Key:             stasisKey,
		UserID:          userID,
		Value:           string(value),
		Version:         version,
		PermissionRead:  runtime.STORAGE_PERMISSION_OWNER_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}})
	if err != nil && !errors.Is(err, runtime.ErrStorageRejectedVersion) {
		return fmt.Errorf("failed to write penalty: %w", err)
	}
	return err
}

func decodePenalty(obj *api.StorageObject) (penaltyRecord, error) {
	var rec penaltyRecord
	if obj == nil {
		return rec, nil
	}
	if err := json.Unmarshal([]byte(obj.GetValue()), &rec); err != nil {
		return rec, fmt.Errorf("failed to unmarshal penalty: %w", err)
	}
	return rec, nil
}

var _ ports.PenaltyPort = (*NakamaPenaltyAdapter)(nil)
