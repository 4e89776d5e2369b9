package customers

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/inventra/pos-backend/pkg/errors"
)

func TestCreateTypeValidation(t *testing.T) {
	conn := setupCustomersTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name  string
		input TypeInput
	}{
		{"empty name", TypeInput{DiscountPercent: decimal.NewFromInt(10)}},
		{"negative discount", TypeInput{Name: "Bad", DiscountPercent: decimal.NewFromInt(-1)}},
		{"discount above 100", TypeInput{Name: "Bad", DiscountPercent: decimal.NewFromInt(101)}},
	}

	for _, tt := range tests {
		_, err := svc.CreateType(ctx, tt.input)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "%s: expected typed error", tt.name)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code(), tt.name)
	}
}

func TestCreateTypeDuplicateNameConflicts(t *testing.T) {
	conn := setupCustomersTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	input := TypeInput{Name: "Regular", DiscountPercent: decimal.NewFromInt(5)}
	_, err = svc.CreateType(ctx, input)
	require.NoError(t, err)

	_, err = svc.CreateType(ctx, input)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestCreateTypeBoundaryDiscounts(t *testing.T) {
	conn := setupCustomersTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	zero, err := svc.CreateType(ctx, TypeInput{Name: "Walk-in", DiscountPercent: decimal.Zero})
	require.NoError(t, err)
	assert.True(t, zero.DiscountPercent.IsZero())

	full, err := svc.CreateType(ctx, TypeInput{Name: "Comp", DiscountPercent: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.True(t, full.DiscountPercent.Equal(decimal.NewFromInt(100)))
}
