package domain

// Driver is a delivery driver record. Drivers are never deleted; only the
// Active flag changes. Batches and payouts embed a Driver by value, so edits
// made after assignment never rewrite earnings history.
type Driver struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Zone    string `json:"zone"`
	Active  bool   `json:"active"`
}
