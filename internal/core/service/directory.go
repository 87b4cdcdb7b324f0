package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yithume/dispatch/internal/core/domain"
	"github.com/yithume/dispatch/internal/port"
)

var ErrDriverNotFound = errors.New("no driver available")

// Directory holds driver records and resolves which driver takes a zone.
type Directory struct {
	drivers port.DriverRepository
	idgen   port.IDGenerator
	now     func() time.Time
	audit   port.AuditSink
}

func NewDirectory(drivers port.DriverRepository, idgen port.IDGenerator, now func() time.Time, audit port.AuditSink) *Directory {
	return &Directory{drivers: drivers, idgen: idgen, now: now, audit: audit}
}

// ResolveDriverForZone returns the first active driver matching the zone, and
// falls back to the first driver in the directory regardless of zone so that
// delivery is never blocked purely by a zone mismatch. ErrDriverNotFound only
// when the directory is empty. The caller receives a copy; storing it in a
// batch freezes the driver record as of assignment time.
func (d *Directory) ResolveDriverForZone(ctx context.Context, zone string) (domain.Driver, error) {
	drivers, err := d.drivers.All(ctx)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("load drivers: %w", err)
	}
	ids := sortedKeys(drivers)
	for _, id := range ids {
		drv := drivers[id]
		if drv.Active && drv.Zone == zone {
			return drv, nil
		}
	}
	if len(ids) > 0 {
		return drivers[ids[0]], nil
	}
	return domain.Driver{}, ErrDriverNotFound
}

func (d *Directory) AddDriver(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	if driver.ID == "" {
		driver.ID = d.idgen.DriverID(d.now())
	}
	driver.Active = true
	err := d.drivers.Update(ctx, func(drivers map[string]domain.Driver) error {
		if _, exists := drivers[driver.ID]; exists {
			return fmt.Errorf("driver %s already exists", driver.ID)
		}
		drivers[driver.ID] = driver
		return nil
	})
	if err != nil {
		return domain.Driver{}, err
	}
	detail, _ := json.Marshal(driver)
	_ = d.audit.Record(ctx, domain.AuditEntry{
		Entity:   "drivers",
		EntityID: driver.ID,
		Action:   "create_driver",
		Detail:   string(detail),
		Actor:    "system",
		At:       d.now(),
	})
	return driver, nil
}

func (d *Directory) ListDrivers(ctx context.Context, activeOnly bool) ([]domain.Driver, error) {
	drivers, err := d.drivers.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load drivers: %w", err)
	}
	out := make([]domain.Driver, 0, len(drivers))
	for _, id := range sortedKeys(drivers) {
		drv := drivers[id]
		if activeOnly && !drv.Active {
			continue
		}
		out = append(out, drv)
	}
	return out, nil
}
