package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Identity is one bot profile from the identities file.
type Identity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Level       string `json:"level"` // "easy", "smart"
}

// AccountProvisioner is the part of the Nakama module needed to create bot accounts.
type AccountProvisioner interface {
	AuthenticateDevice(ctx context.Context, id, username string, create bool) (string, string, bool, error)
	AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error
}

// Roster is the pool of bot identities a match seats from.
type Roster struct {
	mu         sync.RWMutex
	identities []Identity
	byUser     map[string]Identity
}

// NewRoster builds a roster from identities that already have user ids or
// will receive them from Provision.
func NewRoster(identities []Identity) *Roster {
	r := &Roster{identities: identities, byUser: make(map[string]Identity)}
	for _, id := range identities {
		if id.UserID != "" {
			r.byUser[id.UserID] = id
		}
	}
	return r
}

// LoadRoster reads bot profiles from path.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bot identities: %w", err)
	}
	var identities []Identity
	if err := json.Unmarshal(data, &identities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bot identities: %w", err)
	}
	return NewRoster(identities), nil
}

// Provision makes sure every identity with a device id has a Nakama account
// flagged as a bot. It returns the number of ready identities.
func (r *Roster) Provision(ctx context.Context, nk AccountProvisioner, logger runtime.Logger) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	ready := 0
	for i := range r.identities {
		identity := &r.identities[i]
		if identity.DeviceID == "" {
			continue
		}
		userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
		if err != nil {
			logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
			continue
		}
		identity.UserID = userID
		identity.Username = username

		metadata := map[string]interface{}{
			"is_bot": true,
			"level":  identity.Level,
		}
		if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
			logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
		}
		r.byUser[userID] = *identity
		ready++
		logger.Info("ProvisionBots: Bot %s (%s) is ready. Level: %s", identity.DisplayName, userID, identity.Level)
	}
	return ready
}

// Len returns the size of the pool.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.identities)
}

// Identity returns the identity at index, wrapping around the pool. An empty
// pool yields synthetic identities.
func (r *Roster) Identity(index int) Identity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.identities) == 0 {
		return Identity{
			UserID:      fmt.Sprintf("bot-%d", index),
			Username:    fmt.Sprintf("bot%d", index),
			DisplayName: fmt.Sprintf("Bot %d", index),
		}
	}
	return r.identities[index%len(r.identities)]
}

// IsBot reports whether userID belongs to the pool.
func (r *Roster) IsBot(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUser[userID]
	return ok
}
