package port

import "context"

// EventPublisher announces that dispatch state changed after a mutating
// operation. Fire-and-forget: there is no payload contract and delivery
// failures never fail the operation that triggered them.
type EventPublisher interface {
	StateChanged(ctx context.Context)
}
