package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yithume/dispatch/internal/adapter/idgen"
	"github.com/yithume/dispatch/internal/adapter/storage"
	"github.com/yithume/dispatch/internal/audit"
	"github.com/yithume/dispatch/internal/core/domain"
	"github.com/yithume/dispatch/internal/core/service"
)

const (
	redisAddr   = "localhost:6379"
	totalOrders = 40
	payRatio    = 0.8
)

var zones = []string{"PA", "KH", "MB"}

var addresses = []string{
	"12 Main Road", "12  MAIN   road", "7 Church Street", "",
	"3 Station Ave", "3 station ave",
}

func main() {
	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	// Clear previous simulation data
	rdb.Del(ctx, "dispatch:orders", "dispatch:drivers", "dispatch:batches", "dispatch:payouts")

	zlog := zap.NewNop()
	store := storage.NewRedisStore(rdb, zlog)
	events := storage.NewRedisPublisher(rdb, zlog)
	ids := idgen.New()
	sink := audit.NopSink{}

	directory := service.NewDirectory(store.Drivers(), ids, time.Now, sink)
	assigner := service.NewAssigner(
		store.Orders(), store.Batches(), directory,
		service.DefaultAssignerConfig(), ids, time.Now, events, sink, zlog,
	)
	lifecycle := service.NewLifecycle(store.Orders(), store.Batches(), time.Now, events, sink, zlog)
	aggregator := service.NewPayoutAggregator(store.Batches(), store.Payouts(), ids, time.Now, events, sink, zlog, true)
	intake := service.NewIntake(store.Orders(), ids, time.Now, events, sink, zlog)

	// One driver per zone
	for i, zone := range zones {
		if _, err := directory.AddDriver(ctx, domain.Driver{
			Name:    fmt.Sprintf("driver-%d", i+1),
			Contact: fmt.Sprintf("+27-00%d", i+1),
			Zone:    zone,
		}); err != nil {
			log.Fatalf("failed to add driver: %v", err)
		}
	}

	// Concurrent order intake
	var submitted, paid, flagged atomic.Int32
	var mu sync.Mutex
	var orderIDs []string

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalOrders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			order, err := intake.SubmitOrder(ctx, service.OrderDraft{
				Zone:          zones[n%len(zones)],
				Address:       addresses[n%len(addresses)],
				CustomerName:  fmt.Sprintf("customer-%d", n),
				CustomerPhone: fmt.Sprintf("+27-%04d", n),
				Items: []domain.OrderItem{
					{SKU: "bread", Name: "Bread", Quantity: 1 + n%3, UnitPrice: 18},
				},
				DeliveryFee: 20,
			})
			if err != nil {
				log.Printf("submit failed: %v", err)
				return
			}
			submitted.Add(1)
			if order.Status == domain.OrderStatusReviewRequired {
				flagged.Add(1)
				return
			}

			mu.Lock()
			orderIDs = append(orderIDs, order.ID)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	// Pay most of them
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for _, id := range orderIDs {
		if rng.Float64() > payRatio {
			continue
		}
		if _, err := intake.UpdateOrderStatus(ctx, id, domain.OrderStatusPaid); err != nil {
			log.Printf("pay failed for %s: %v", id, err)
			continue
		}
		paid.Add(1)
	}

	batches, err := assigner.AutoAssign(ctx)
	if err != nil {
		log.Fatalf("assignment failed: %v", err)
	}

	var driverTotal, marginTotal int64
	for _, b := range batches {
		driverTotal += b.DriverEarnings
		marginTotal += b.PlatformMargin
		if _, err := lifecycle.CompleteBatch(ctx, b.ID); err != nil {
			log.Fatalf("completion failed for %s: %v", b.ID, err)
		}
	}

	payouts, err := aggregator.GenerateWeeklyPayouts(ctx, time.Now())
	if err != nil {
		log.Fatalf("payout run failed: %v", err)
	}

	elapsed := time.Since(start)

	fmt.Println("========== DISPATCH SIMULATION ==========")
	fmt.Printf("Orders Submitted:  %d\n", submitted.Load())
	fmt.Printf("Fraud Flagged:     %d\n", flagged.Load())
	fmt.Printf("Orders Paid:       %d\n", paid.Load())
	fmt.Printf("Batches Created:   %d\n", len(batches))
	fmt.Printf("Driver Earnings:   %d\n", driverTotal)
	fmt.Printf("Platform Margin:   %d\n", marginTotal)
	fmt.Printf("Weekly Payouts:    %d\n", len(payouts))
	fmt.Printf("Duration:          %v\n", elapsed)
	fmt.Println("=========================================")

	// Every paid order must land in exactly one batch.
	orders, err := store.Orders().All(ctx)
	if err != nil {
		log.Fatalf("failed to load orders: %v", err)
	}
	assigned := 0
	for _, o := range orders {
		if o.BatchID != "" {
			assigned++
		}
	}
	if int32(assigned) == paid.Load() {
		fmt.Printf("PASS: all %d paid orders assigned to batches\n", assigned)
	} else {
		fmt.Printf("FAIL: %d paid orders but %d assigned\n", paid.Load(), assigned)
	}

	var payoutTotal int64
	for _, p := range payouts {
		payoutTotal += p.Earnings
	}
	if payoutTotal == driverTotal {
		fmt.Printf("PASS: payouts match driver earnings (%d)\n", payoutTotal)
	} else {
		fmt.Printf("FAIL: payouts %d, batch earnings %d\n", payoutTotal, driverTotal)
	}
}
