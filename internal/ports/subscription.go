package ports

import "context"

// SubscriptionPort keeps the list of players who want to hear about new games.
type SubscriptionPort interface {
	IsSubscribed(ctx context.Context, userID string) (bool, error)

	// Subscribe adds userID. Returns added=false when already subscribed.
	Subscribe(ctx context.Context, userID string) (bool, error)

	// Unsubscribe removes userID. Returns removed=false when not subscribed.
	Unsubscribe(ctx context.Context, userID string) (bool, error)

	// Subscribers returns every subscribed user id in subscription order.
	Subscribers(ctx context.Context) ([]string, error)
}
