package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yithume/dispatch/internal/core/domain"
)

func TestResolveDriverForZone_PrefersActiveZoneMatch(t *testing.T) {
	f := newEngineFixture(false)
	f.drivers.put("d1", domain.Driver{ID: "d1", Name: "Aya", Zone: "KN", Active: true})
	f.drivers.put("d2", domain.Driver{ID: "d2", Name: "Bonga", Zone: "PA", Active: true})

	drv, err := f.directory.ResolveDriverForZone(context.Background(), "PA")
	require.NoError(t, err)
	assert.Equal(t, "d2", drv.ID)
}

func TestResolveDriverForZone_SkipsInactiveZoneMatch(t *testing.T) {
	f := newEngineFixture(false)
	f.drivers.put("d1", domain.Driver{ID: "d1", Zone: "PA", Active: false})
	f.drivers.put("d2", domain.Driver{ID: "d2", Zone: "KN", Active: true})

	// Inactive zone match loses to the permissive fallback.
	drv, err := f.directory.ResolveDriverForZone(context.Background(), "PA")
	require.NoError(t, err)
	assert.Equal(t, "d1", drv.ID) // fallback is first by ID, zone ignored
}

func TestResolveDriverForZone_FallsBackWhenZoneUnmatched(t *testing.T) {
	f := newEngineFixture(false)
	f.drivers.put("d5", domain.Driver{ID: "d5", Zone: "KN", Active: true})
	f.drivers.put("d9", domain.Driver{ID: "d9", Zone: "KN", Active: true})

	drv, err := f.directory.ResolveDriverForZone(context.Background(), "BT")
	require.NoError(t, err)
	assert.Equal(t, "d5", drv.ID)
}

func TestResolveDriverForZone_EmptyDirectory(t *testing.T) {
	f := newEngineFixture(false)
	_, err := f.directory.ResolveDriverForZone(context.Background(), "PA")
	assert.ErrorIs(t, err, ErrDriverNotFound)
}

func TestAddDriver_GeneratesIDAndActivates(t *testing.T) {
	f := newEngineFixture(false)
	drv, err := f.directory.AddDriver(context.Background(), domain.Driver{Name: "Thabo", Zone: "PA"})
	require.NoError(t, err)
	assert.Equal(t, "DRV-1", drv.ID)
	assert.True(t, drv.Active)
	assert.Equal(t, "Thabo", f.drivers.get("DRV-1").Name)
}

func TestAddDriver_RejectsDuplicateID(t *testing.T) {
	f := newEngineFixture(false)
	_, err := f.directory.AddDriver(context.Background(), domain.Driver{ID: "d1", Name: "A"})
	require.NoError(t, err)
	_, err = f.directory.AddDriver(context.Background(), domain.Driver{ID: "d1", Name: "B"})
	assert.Error(t, err)
	assert.Equal(t, "A", f.drivers.get("d1").Name)
}

func TestListDrivers_ActiveFilter(t *testing.T) {
	f := newEngineFixture(false)
	f.drivers.put("d1", domain.Driver{ID: "d1", Active: true})
	f.drivers.put("d2", domain.Driver{ID: "d2", Active: false})
	f.drivers.put("d3", domain.Driver{ID: "d3", Active: true})

	all, err := f.directory.ListDrivers(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := f.directory.ListDrivers(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "d1", active[0].ID)
	assert.Equal(t, "d3", active[1].ID)
}
