package service

import (
	"context"
	"testing"

	"github.com/fieldworks/workorder-service/internal/errs"
	"github.com/fieldworks/workorder-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSignatureStampsFromClock(t *testing.T) {
	clock := clockAt(t, "2024-06-01T16:45")
	svc, _, signatures := newTestServices(t, clock)
	ctx := context.Background()

	wo, err := svc.Create(ctx, admin, validCreateInput())
	require.NoError(t, err)

	sig, err := signatures.Record(ctx, admin, wo.ID, RecordSignatureInput{
		SignerType:  model.SignerTLCorpRep,
		SignerName:  "J. Ruiz",
		SignerTitle: "Field Technician",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", sig.SignedDate)
	assert.Equal(t, "16:45", sig.SignedTime)
	assert.Equal(t, "J. Ruiz", sig.SignerName)
}

func TestRecordSignatureAppendOnce(t *testing.T) {
	clock := clockAt(t, "2024-06-01T16:45")
	svc, _, signatures := newTestServices(t, clock)
	ctx := context.Background()

	wo, err := svc.Create(ctx, admin, validCreateInput())
	require.NoError(t, err)

	first, err := signatures.Record(ctx, admin, wo.ID, RecordSignatureInput{
		SignerType: model.SignerBuildingRep,
		SignerName: "M. Okafor",
	})
	require.NoError(t, err)

	clock.Set(t, "2024-06-01T17:10")
	_, err = signatures.Record(ctx, admin, wo.ID, RecordSignatureInput{
		SignerType: model.SignerBuildingRep,
		SignerName: "Someone Else",
	})
	assert.ErrorIs(t, err, errs.ErrDuplicateSignature)

	// First record survives untouched.
	got, err := signatures.List(ctx, admin, wo.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, "M. Okafor", got[0].SignerName)
	assert.Equal(t, "16:45", got[0].SignedTime)
}

func TestRecordSignatureValidation(t *testing.T) {
	clock := clockAt(t, "2024-06-01T16:45")
	svc, _, signatures := newTestServices(t, clock)
	ctx := context.Background()

	wo, err := svc.Create(ctx, admin, validCreateInput())
	require.NoError(t, err)

	_, err = signatures.Record(ctx, admin, wo.ID, RecordSignatureInput{
		SignerType: model.SignerType("janitor"),
		SignerName: "J. Ruiz",
	})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = signatures.Record(ctx, admin, wo.ID, RecordSignatureInput{
		SignerType: model.SignerTLCorpRep,
		SignerName: "   ",
	})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = signatures.Record(ctx, admin, 9999, RecordSignatureInput{
		SignerType: model.SignerTLCorpRep,
		SignerName: "J. Ruiz",
	})
	assert.ErrorIs(t, err, errs.ErrWorkOrderNotFound)
}

func TestSignatureAccess(t *testing.T) {
	clock := clockAt(t, "2024-06-01T16:45")
	svc, _, signatures := newTestServices(t, clock)
	ctx := context.Background()

	in := validCreateInput()
	in.AssignedTo = staffSeven.ID
	wo, err := svc.Create(ctx, admin, in)
	require.NoError(t, err)

	input := RecordSignatureInput{SignerType: model.SignerTLCorpRep, SignerName: "J. Ruiz"}

	_, err = signatures.Record(ctx, staffNine, wo.ID, input)
	assert.ErrorIs(t, err, errs.ErrAccessDenied)

	_, err = signatures.Record(ctx, client, wo.ID, input)
	assert.ErrorIs(t, err, errs.ErrAccessDenied)

	_, err = signatures.Record(ctx, staffSeven, wo.ID, input)
	require.NoError(t, err)
}

func TestFullySigned(t *testing.T) {
	clock := clockAt(t, "2024-06-01T16:45")
	svc, _, signatures := newTestServices(t, clock)
	ctx := context.Background()

	wo, err := svc.Create(ctx, admin, validCreateInput())
	require.NoError(t, err)

	full, err := signatures.IsFullySigned(ctx, wo.ID)
	require.NoError(t, err)
	assert.False(t, full)

	_, err = signatures.Record(ctx, admin, wo.ID, RecordSignatureInput{
		SignerType: model.SignerTLCorpRep,
		SignerName: "J. Ruiz",
	})
	require.NoError(t, err)

	has, err := signatures.Has(ctx, wo.ID, model.SignerTLCorpRep)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = signatures.Has(ctx, wo.ID, model.SignerBuildingRep)
	require.NoError(t, err)
	assert.False(t, has)

	full, err = signatures.IsFullySigned(ctx, wo.ID)
	require.NoError(t, err)
	assert.False(t, full)

	_, err = signatures.Record(ctx, admin, wo.ID, RecordSignatureInput{
		SignerType: model.SignerBuildingRep,
		SignerName: "M. Okafor",
	})
	require.NoError(t, err)

	full, err = signatures.IsFullySigned(ctx, wo.ID)
	require.NoError(t, err)
	assert.True(t, full)
}
