package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/core/apperror"
	"stockbook/internal/core/id"
)

func TestTypeDelta(t *testing.T) {
	assert.Equal(t, int64(10), TypeIn.Delta(10))
	assert.Equal(t, int64(-10), TypeOut.Delta(10))
}

func TestTypeValid(t *testing.T) {
	assert.True(t, TypeIn.Valid())
	assert.True(t, TypeOut.Valid())
	assert.False(t, Type("TRANSFER").Valid())
	assert.False(t, Type("").Valid())
}

func TestNew_DefaultsDate(t *testing.T) {
	before := time.Now().UTC()
	tr := New("GRN-001", TypeIn, time.Time{}, "")
	after := time.Now().UTC()

	assert.False(t, tr.Date.Before(before))
	assert.False(t, tr.Date.After(after))
	assert.False(t, id.IsNil(tr.ID))
	assert.Equal(t, 1, tr.Version)
}

func TestNew_KeepsExplicitDate(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	tr := New("GRN-001", TypeIn, date, "backdated receipt")

	assert.Equal(t, date, tr.Date)
	assert.Equal(t, "backdated receipt", tr.Notes)
}

func TestTransactionValidate(t *testing.T) {
	ctx := context.Background()

	valid := New("GRN-001", TypeIn, time.Now(), "")
	assert.NoError(t, valid.Validate(ctx))

	noCode := New("", TypeIn, time.Now(), "")
	err := noCode.Validate(ctx)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	badType := New("GRN-001", "TRANSFER", time.Now(), "")
	err = badType.Validate(ctx)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestDetailValidate(t *testing.T) {
	ctx := context.Background()
	tr := New("GRN-001", TypeIn, time.Now(), "")

	valid := NewDetail(tr.ID, id.New(), 5)
	assert.NoError(t, valid.Validate(ctx))

	noProduct := NewDetail(tr.ID, id.Nil(), 5)
	err := noProduct.Validate(ctx)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))

	zeroQty := NewDetail(tr.ID, id.New(), 0)
	err = zeroQty.Validate(ctx)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidQuantity))
}

func TestMovementSignedQuantity(t *testing.T) {
	in := Movement{Type: TypeIn, Quantity: 7}
	out := Movement{Type: TypeOut, Quantity: 7}

	assert.Equal(t, int64(7), in.SignedQuantity())
	assert.Equal(t, int64(-7), out.SignedQuantity())
}
