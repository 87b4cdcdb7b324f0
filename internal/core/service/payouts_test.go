package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yithume/dispatch/internal/core/domain"
)

var (
	weekStart = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	weekEnd   = time.Date(2026, time.January, 11, 23, 59, 59, 999000000, time.UTC)
)

func TestWeekWindow(t *testing.T) {
	refs := []time.Time{
		weekStart,                // Monday
		testNow,                  // Wednesday
		weekEnd,                  // Sunday, last millisecond
		weekStart.Add(13 * time.Hour),
	}
	for _, ref := range refs {
		start, end := WeekWindow(ref)
		assert.Equal(t, weekStart, start, "ref %v", ref)
		assert.Equal(t, weekEnd, end, "ref %v", ref)
	}
}

func TestWeekLabel(t *testing.T) {
	assert.Equal(t, "2026-W02", WeekLabel(weekStart))
	// ISO year differs from the calendar year at the boundary.
	assert.Equal(t, "2026-W01", WeekLabel(time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC)))
}

func completedBatch(id, driverID string, earnings int64, orders int, completedAt time.Time) domain.Batch {
	ids := make([]string, orders)
	for i := range ids {
		ids[i] = id + "-o" + string(rune('1'+i))
	}
	return domain.Batch{
		ID:             id,
		Zone:           "PA",
		Driver:         domain.Driver{ID: driverID, Name: "Driver " + driverID},
		OrderIDs:       ids,
		DriverEarnings: earnings,
		Status:         domain.BatchStatusCompleted,
		CompletedAt:    completedAt,
	}
}

func TestGenerateWeeklyPayouts_SingleDriverSingleBatch(t *testing.T) {
	f := newEngineFixture(false)
	f.batches.put("b1", completedBatch("b1", "d1", 180, 3, testNow))

	payouts, err := f.aggregator.GenerateWeeklyPayouts(context.Background(), testNow)
	require.NoError(t, err)
	require.Len(t, payouts, 1)

	po := payouts[0]
	assert.Equal(t, "2026-W02", po.WeekLabel)
	assert.Equal(t, weekStart, po.WeekStart)
	assert.Equal(t, weekEnd, po.WeekEnd)
	assert.Equal(t, int64(180), po.Earnings)
	assert.Equal(t, 3, po.OrderCount)
	assert.Equal(t, 1, po.BatchCount)
	assert.Equal(t, domain.PayoutStatusPending, po.Status)
	assert.Equal(t, "2026-W02-D1", po.Reference)
	assert.Equal(t, "d1", po.Driver.ID)
	assert.Equal(t, 1, f.events.fired)
}

func TestGenerateWeeklyPayouts_GroupsByDriver(t *testing.T) {
	f := newEngineFixture(false)
	f.batches.put("b1", completedBatch("b1", "d1", 100, 2, testNow))
	f.batches.put("b2", completedBatch("b2", "d1", 50, 1, testNow.Add(time.Hour)))
	f.batches.put("b3", completedBatch("b3", "d2", 75, 3, testNow))

	payouts, err := f.aggregator.GenerateWeeklyPayouts(context.Background(), testNow)
	require.NoError(t, err)
	require.Len(t, payouts, 2)

	byDriver := map[string]domain.Payout{}
	for _, po := range payouts {
		byDriver[po.Driver.ID] = po
	}
	assert.Equal(t, int64(150), byDriver["d1"].Earnings)
	assert.Equal(t, 2, byDriver["d1"].BatchCount)
	assert.Equal(t, 3, byDriver["d1"].OrderCount)
	assert.Equal(t, int64(75), byDriver["d2"].Earnings)
	assert.Equal(t, 1, byDriver["d2"].BatchCount)
}

func TestGenerateWeeklyPayouts_WindowIsInclusive(t *testing.T) {
	f := newEngineFixture(false)
	f.batches.put("b1", completedBatch("b1", "d1", 10, 1, weekStart))                     // Monday 00:00
	f.batches.put("b2", completedBatch("b2", "d1", 20, 1, weekEnd))                       // Sunday 23:59:59.999
	f.batches.put("b3", completedBatch("b3", "d1", 40, 1, weekStart.Add(-time.Millisecond))) // previous week
	f.batches.put("b4", completedBatch("b4", "d1", 80, 1, weekEnd.Add(time.Millisecond)))    // next week
	b5 := completedBatch("b5", "d1", 160, 1, testNow)
	b5.Status = domain.BatchStatusAssigned // not yet completed
	f.batches.put("b5", b5)

	payouts, err := f.aggregator.GenerateWeeklyPayouts(context.Background(), testNow)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, int64(30), payouts[0].Earnings)
	assert.Equal(t, 2, payouts[0].BatchCount)
}

func TestGenerateWeeklyPayouts_SubMillisecondSundayIsPaidOnce(t *testing.T) {
	f := newEngineFixture(false)
	// Sunday 23:59:59.9995, past the displayed week end but before Monday.
	lastInstant := weekEnd.Add(500 * time.Microsecond)
	f.batches.put("b1", completedBatch("b1", "d1", 90, 1, lastInstant))

	payouts, err := f.aggregator.GenerateWeeklyPayouts(context.Background(), testNow)
	require.NoError(t, err)
	require.Len(t, payouts, 1)
	assert.Equal(t, int64(90), payouts[0].Earnings)

	next, err := f.aggregator.GenerateWeeklyPayouts(context.Background(), testNow.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Empty(t, next)
}

func TestGenerateWeeklyPayouts_EmptyWindow(t *testing.T) {
	f := newEngineFixture(false)
	payouts, err := f.aggregator.GenerateWeeklyPayouts(context.Background(), testNow)
	require.NoError(t, err)
	assert.Empty(t, payouts)
	assert.Equal(t, 0, f.events.fired)
}

func TestGenerateWeeklyPayouts_AppendModeDuplicates(t *testing.T) {
	f := newEngineFixture(false)
	f.batches.put("b1", completedBatch("b1", "d1", 180, 3, testNow))

	_, err := f.aggregator.GenerateWeeklyPayouts(context.Background(), testNow)
	require.NoError(t, err)
	_, err = f.aggregator.GenerateWeeklyPayouts(context.Background(), testNow)
	require.NoError(t, err)

	all, err := f.payouts.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2) // legacy behavior: re-running a week appends
}

func TestGenerateWeeklyPayouts_UpsertModeRecomputes(t *testing.T) {
	f := newEngineFixture(true)
	f.batches.put("b1", completedBatch("b1", "d1", 100, 2, testNow))

	first, err := f.aggregator.GenerateWeeklyPayouts(context.Background(), testNow)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A correction lands before the week is re-run.
	f.batches.put("b2", completedBatch("b2", "d1", 50, 1, testNow.Add(time.Hour)))

	second, err := f.aggregator.GenerateWeeklyPayouts(context.Background(), testNow)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, int64(150), second[0].Earnings)

	all, err := f.payouts.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGenerateWeeklyPayouts_UpsertKeepsPaidStatus(t *testing.T) {
	f := newEngineFixture(true)
	f.batches.put("b1", completedBatch("b1", "d1", 100, 2, testNow))

	first, err := f.aggregator.GenerateWeeklyPayouts(context.Background(), testNow)
	require.NoError(t, err)

	paid := f.payouts.get(first[0].ID)
	paid.Status = domain.PayoutStatusPaid
	f.payouts.put(paid.ID, paid)

	second, err := f.aggregator.GenerateWeeklyPayouts(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusPaid, second[0].Status)
}
