package service

import (
	"context"
	"testing"

	"github.com/fieldworks/workorder-service/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMaterialDerivesTotalCost(t *testing.T) {
	clock := clockAt(t, "2024-06-01T09:00")
	svc, materials, _ := newTestServices(t, clock)
	ctx := context.Background()

	wo, err := svc.Create(ctx, admin, validCreateInput())
	require.NoError(t, err)

	m, err := materials.Add(ctx, admin, wo.ID, AddMaterialInput{
		Name:     "Copper pipe",
		Quantity: 2.5,
		Unit:     "m",
		UnitCost: floatPtr(12.4),
	})
	require.NoError(t, err)
	require.NotNil(t, m.TotalCost)
	assert.InDelta(t, 31, *m.TotalCost, 1e-9)

	// No unit cost: total stays null, not zero.
	m, err = materials.Add(ctx, admin, wo.ID, AddMaterialInput{
		Name:     "Sealant",
		Quantity: 1,
	})
	require.NoError(t, err)
	assert.Nil(t, m.TotalCost)
}

func TestAddMaterialValidation(t *testing.T) {
	clock := clockAt(t, "2024-06-01T09:00")
	svc, materials, _ := newTestServices(t, clock)
	ctx := context.Background()

	wo, err := svc.Create(ctx, admin, validCreateInput())
	require.NoError(t, err)

	_, err = materials.Add(ctx, admin, wo.ID, AddMaterialInput{Name: "Pipe", Quantity: -1})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = materials.Add(ctx, admin, wo.ID, AddMaterialInput{Name: "Pipe", Quantity: 0})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = materials.Add(ctx, admin, wo.ID, AddMaterialInput{Name: "  ", Quantity: 1})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = materials.Add(ctx, admin, wo.ID, AddMaterialInput{Name: "Pipe", Quantity: 1, UnitCost: floatPtr(-5)})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = materials.Add(ctx, admin, 9999, AddMaterialInput{Name: "Pipe", Quantity: 1})
	assert.ErrorIs(t, err, errs.ErrWorkOrderNotFound)
}

func TestMaterialsLedgerTotal(t *testing.T) {
	clock := clockAt(t, "2024-06-01T09:00")
	svc, materials, _ := newTestServices(t, clock)
	ctx := context.Background()

	wo, err := svc.Create(ctx, admin, validCreateInput())
	require.NoError(t, err)

	total, err := materials.TotalCost(ctx, admin, wo.ID)
	require.NoError(t, err)
	assert.Zero(t, total)

	first, err := materials.Add(ctx, admin, wo.ID, AddMaterialInput{Name: "Pipe", Quantity: 2, UnitCost: floatPtr(15)})
	require.NoError(t, err)
	_, err = materials.Add(ctx, admin, wo.ID, AddMaterialInput{Name: "Fittings", Quantity: 4, UnitCost: floatPtr(2.25)})
	require.NoError(t, err)
	// Unknown cost contributes 0 to the total.
	_, err = materials.Add(ctx, admin, wo.ID, AddMaterialInput{Name: "Shop supplies", Quantity: 1})
	require.NoError(t, err)

	total, err = materials.TotalCost(ctx, admin, wo.ID)
	require.NoError(t, err)
	assert.InDelta(t, 39, total, 1e-9)

	items, err := materials.List(ctx, admin, wo.ID)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	require.NoError(t, materials.Remove(ctx, admin, first.ID))

	total, err = materials.TotalCost(ctx, admin, wo.ID)
	require.NoError(t, err)
	assert.InDelta(t, 9, total, 1e-9)

	items, err = materials.List(ctx, admin, wo.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRemoveMaterialErrors(t *testing.T) {
	clock := clockAt(t, "2024-06-01T09:00")
	svc, materials, _ := newTestServices(t, clock)
	ctx := context.Background()

	err := materials.Remove(ctx, admin, 42)
	assert.ErrorIs(t, err, errs.ErrMaterialNotFound)

	in := validCreateInput()
	in.AssignedTo = staffSeven.ID
	wo, err := svc.Create(ctx, admin, in)
	require.NoError(t, err)
	m, err := materials.Add(ctx, staffSeven, wo.ID, AddMaterialInput{Name: "Pipe", Quantity: 1})
	require.NoError(t, err)

	err = materials.Remove(ctx, staffNine, m.ID)
	assert.ErrorIs(t, err, errs.ErrAccessDenied)

	// Still there after the rejected removal.
	items, err := materials.List(ctx, admin, wo.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMaterialAccess(t *testing.T) {
	clock := clockAt(t, "2024-06-01T09:00")
	svc, materials, _ := newTestServices(t, clock)
	ctx := context.Background()

	in := validCreateInput()
	in.AssignedTo = staffSeven.ID
	wo, err := svc.Create(ctx, admin, in)
	require.NoError(t, err)

	_, err = materials.Add(ctx, staffNine, wo.ID, AddMaterialInput{Name: "Pipe", Quantity: 1})
	assert.ErrorIs(t, err, errs.ErrAccessDenied)

	_, err = materials.Add(ctx, client, wo.ID, AddMaterialInput{Name: "Pipe", Quantity: 1})
	assert.ErrorIs(t, err, errs.ErrAccessDenied)

	_, err = materials.List(ctx, client, wo.ID)
	assert.ErrorIs(t, err, errs.ErrAccessDenied)

	_, err = materials.Add(ctx, staffSeven, wo.ID, AddMaterialInput{Name: "Pipe", Quantity: 1})
	require.NoError(t, err)
}
