package ports

import "context"

// Notification is an out-of-match message for a set of users.
type Notification struct {
	Subject    string
	Code       int
	Content    map[string]interface{}
	Recipients []string
}

// NotifierPort delivers notifications on a best-effort basis.
type NotifierPort interface {
	// Notify hands n off for delivery and returns immediately. Delivery
	// failures are the notifier's concern and never reach the caller.
	Notify(ctx context.Context, n Notification)
}
