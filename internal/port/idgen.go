package port

import "time"

// IDGenerator produces collision-resistant identifiers, injected so tests can
// substitute a deterministic sequence.
type IDGenerator interface {
	OrderID(now time.Time) string
	DriverID(now time.Time) string
	BatchID(now time.Time) string
	PayoutID(now time.Time) string
}
