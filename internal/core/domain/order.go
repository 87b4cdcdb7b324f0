package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	OrderStatusPaid            OrderStatus = "paid"
	OrderStatusAssigned        OrderStatus = "assigned"
	OrderStatusDelivered       OrderStatus = "delivered"
	// OrderStatusReviewRequired is set by intake when fraud screening flags an
	// order. Reviewed orders re-enter the flow through a manual status update.
	OrderStatusReviewRequired OrderStatus = "review_required"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAwaitingPayment, OrderStatusPaid,
		OrderStatusAssigned, OrderStatusDelivered, OrderStatusReviewRequired:
		return true
	}
	return false
}

type OrderItem struct {
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Quantity  int     `json:"qty"`
	UnitPrice float64 `json:"price"`
}

// Order is a customer order. BatchID stays empty until the assigner puts the
// order into a batch; once set it never changes (an order joins at most one
// batch, ever). Orders are never deleted.
type Order struct {
	ID            string      `json:"id"`
	Zone          string      `json:"zone"`
	Address       string      `json:"address"`
	CustomerName  string      `json:"customer_name"`
	CustomerPhone string      `json:"customer_phone"`
	Items         []OrderItem `json:"items"`
	DeliveryFee   float64     `json:"delivery_fee"`
	RushFee       float64     `json:"rush_fee"`
	PaymentMethod string      `json:"payment_method"`
	Status        OrderStatus `json:"status"`
	BatchID       string      `json:"batch_id,omitempty"`
	FraudScore    float64     `json:"fraud_score"`
	FraudFlags    []string    `json:"fraud_flags,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

func (o Order) Subtotal() float64 {
	var sum float64
	for _, it := range o.Items {
		sum += float64(it.Quantity) * it.UnitPrice
	}
	return sum
}

func (o Order) Total() float64 {
	return o.Subtotal() + o.DeliveryFee + o.RushFee
}
