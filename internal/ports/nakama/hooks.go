package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// AfterAuthenticateDevice is triggered after an account is authenticated.
// New accounts are subscribed to new-game notifications when AutoSubscribe is on.
func (m *Module) AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	if !out.Created || !m.deps.Config.AutoSubscribe || m.deps.Subscriptions == nil {
		return nil
	}

	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		resolvedID, err := extractUserIDFromToken(out.Token)
		if err != nil {
			logger.Error("AfterAuthenticateDevice: Failed to extract user ID from token: %v", err)
			return err
		}
		userID = resolvedID
	}
	if m.deps.Roster != nil && m.deps.Roster.IsBot(userID) {
		return nil
	}

	if _, err := m.deps.Subscriptions.Subscribe(ctx, userID); err != nil {
		// The account exists either way; the player can subscribe later.
		logger.Warn("AfterAuthenticateDevice: Failed to subscribe user %s: %v", userID, err)
		return nil
	}
	logger.Info("AfterAuthenticateDevice: Subscribed new user %s to game notifications", userID)
	return nil
}

// extractUserIDFromToken reads the uid claim of a Nakama session token. The
// token was just issued by the server, so the signature is not checked.
func extractUserIDFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}
	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return "", fmt.Errorf("token claims missing uid")
	}
	return uid, nil
}
