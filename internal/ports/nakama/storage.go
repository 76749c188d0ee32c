package nakama

import (
	"context"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// Storage is the part of runtime.NakamaModule the storage-backed stores use.
type Storage interface {
	StorageRead(ctx context.Context, reads []*runtime.StorageRead) ([]*api.StorageObject, error)
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
	StorageList(ctx context.Context, callerID, userID, collection string, limit int, cursor string) ([]*api.StorageObject, string, error)
}

// maxWriteAttempts bounds optimistic read-modify-write retries.
const maxWriteAttempts = 5

// readOne returns the object stored under collection/key for userID, or nil.
func readOne(ctx context.Context, st Storage, collection, key, userID string) (*api.StorageObject, error) {
	objects, err := st.StorageRead(ctx, []*runtime.StorageRead{{
		Collection: collection,
		Key:        key,
		UserID:     userID,
	}})
	if err != nil {
		return nil, err
	}
	for _, obj := range objects {
		if obj.GetKey() == key && obj.GetUserId() == userID {
			return obj, nil
		}
	}
	return nil, nil
}

// versionOf returns the write precondition for replacing obj: its version,
// or "*" (must not exist) when there is no object yet.
func versionOf(obj *api.StorageObject) string {
	if obj == nil {
		return "*"
	}
	return obj.GetVersion()
}
