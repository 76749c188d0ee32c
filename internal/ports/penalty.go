//go:generate mockgen -destination=mocks/mock_ports.go -package=mocks wolfbot/internal/ports NotifierPort,PenaltyPort,SubscriptionPort

package ports

import "context"

// PenaltyPort stores the number of games a player has to sit out after
// walking out of a running game.
type PenaltyPort interface {
	// GetPenalty returns the outstanding penalty for userID, 0 if none.
	GetPenalty(ctx context.Context, userID string) (int, error)

	// AddPenalty raises the penalty for userID by amount and returns the new total.
	AddPenalty(ctx context.Context, userID string, amount int) (int, error)

	// ServePenalties lowers every outstanding penalty by one. It is called
	// once per started game and returns how many players were affected.
	ServePenalties(ctx context.Context) (int, error)
}
