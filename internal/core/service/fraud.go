package service

import (
	"time"

	"github.com/yithume/dispatch/internal/core/domain"
)

// Rule-based fraud screening applied at intake. Scores are additive, clamped
// to 1.0; at or above the review threshold the order is parked for manual
// review instead of entering the payment flow.
const (
	FraudReviewThreshold = 0.75

	fraudVelocityWindow  = time.Hour
	fraudVelocityOrders  = 3
	fraudDuplicateWindow = 10 * time.Minute
	fraudDefaultAvgTotal = 50.0
)

type FraudReport struct {
	Score float64
	Flags []string
}

// ScoreOrder runs the fraud heuristics for candidate against the existing
// order history: same-phone velocity in the last hour, a near-duplicate (same
// phone and subtotal) in the last ten minutes, and a total more than three
// times the running average basket.
func ScoreOrder(candidate domain.Order, history map[string]domain.Order, now time.Time) FraudReport {
	var report FraudReport

	if candidate.CustomerPhone != "" {
		recentSamePhone := 0
		duplicate := false
		for _, h := range history {
			if h.CustomerPhone != candidate.CustomerPhone {
				continue
			}
			age := now.Sub(h.CreatedAt)
			if age <= fraudVelocityWindow {
				recentSamePhone++
			}
			if age <= fraudDuplicateWindow && h.Subtotal() == candidate.Subtotal() {
				duplicate = true
			}
		}
		if recentSamePhone >= fraudVelocityOrders {
			report.Flags = append(report.Flags, "phone_velocity")
			report.Score += 0.4
		}
		if duplicate {
			report.Flags = append(report.Flags, "duplicate_order")
			report.Score += 0.3
		}
	}

	avg := fraudDefaultAvgTotal
	if len(history) > 0 {
		var sum float64
		for _, h := range history {
			sum += h.Total()
		}
		avg = sum / float64(len(history))
	}
	if candidate.Total() > avg*3 {
		report.Flags = append(report.Flags, "high_value")
		report.Score += 0.2
	}

	if report.Score > 1.0 {
		report.Score = 1.0
	}
	return report
}
