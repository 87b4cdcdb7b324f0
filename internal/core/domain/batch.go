package domain

import "time"

type BatchStatus string

const (
	BatchStatusAssigned  BatchStatus = "assigned"
	BatchStatusCompleted BatchStatus = "completed"
)

// Batch is one delivery run: a cluster of orders handed to a single driver.
// The batch owns its order-ID list, not the order records themselves. Driver
// is a snapshot taken at assignment time.
type Batch struct {
	ID             string      `json:"id"`
	Zone           string      `json:"zone"`
	ClusterKey     string      `json:"cluster_key"`
	Driver         Driver      `json:"driver"`
	OrderIDs       []string    `json:"order_ids"`
	FeePerOrder    float64     `json:"fee_per_order"`
	DriverEarnings int64       `json:"driver_earnings"`
	PlatformMargin int64       `json:"platform_margin"`
	Status         BatchStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	CompletedAt    time.Time   `json:"completed_at,omitzero"`
}
