package service

import "math"

// Default revenue shares: the driver keeps the full fee for the first stop in
// a cluster and 40% of the fee for each additional stop on the same run.
const (
	DefaultFirstShare = 1.00
	DefaultNextShare  = 0.40
)

type ClusterEarnings struct {
	DriverTotal    int64
	PlatformMargin int64
}

// SplitClusterEarnings divides a cluster's delivery revenue between driver and
// platform. All orders in the cluster share one fee. Outputs are whole
// currency units, rounded half-up; the rounded components always sum back to
// the rounded cluster total, so no value is lost or created.
func SplitClusterEarnings(orderCount int, feePerOrder, firstShare, nextShare float64) ClusterEarnings {
	extra := orderCount - 1
	if extra < 0 {
		extra = 0
	}
	driver := roundHalfUp(feePerOrder*firstShare + float64(extra)*feePerOrder*nextShare)
	margin := roundHalfUp(float64(orderCount)*feePerOrder - float64(driver))
	return ClusterEarnings{DriverTotal: driver, PlatformMargin: margin}
}

func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
