package domain

import "time"

type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "pending"
	PayoutStatusPaid    PayoutStatus = "paid"
)

// Payout is one driver's aggregated earnings for one Monday-Sunday week.
type Payout struct {
	ID         string       `json:"id"`
	WeekLabel  string       `json:"week_label"`
	WeekStart  time.Time    `json:"week_start"`
	WeekEnd    time.Time    `json:"week_end"`
	Driver     Driver       `json:"driver"`
	Earnings   int64        `json:"earnings"`
	OrderCount int          `json:"order_count"`
	BatchCount int          `json:"batch_count"`
	Status     PayoutStatus `json:"status"`
	Reference  string       `json:"reference"`
	CreatedAt  time.Time    `json:"created_at"`
}
