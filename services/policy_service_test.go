package services

import (
	"backoffice/models"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyPaymentStatusToggle(t *testing.T) {
	db := newTestDB(t)
	policies := NewPolicyService(db)
	ctx := context.Background()

	p, err := policies.Create(ctx, alice, PolicyRequest{
		PolicyNumber: "Q1", HolderName: "Quarterly", PaymentMode: "quarterly", NextPremiumDate: "2024-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusDue, p.PaymentStatus)

	paid, err := policies.SetPaymentStatus(ctx, alice, p.ID, PaymentStatusRequest{PaymentStatus: "paid"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, "2024-05-01", paid.NextPremiumDate)

	// Повторная установка не сдвигает дату
	again, err := policies.SetPaymentStatus(ctx, alice, p.ID, PaymentStatusRequest{PaymentStatus: "paid"})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", again.NextPremiumDate)

	due, err := policies.SetPaymentStatus(ctx, alice, p.ID, PaymentStatusRequest{PaymentStatus: "due"})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", due.NextPremiumDate)

	stored, err := policies.Get(ctx, alice, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusDue, stored.PaymentStatus)
	assert.Equal(t, "2024-02-01", stored.NextPremiumDate)
}

func TestPolicyAccess(t *testing.T) {
	db := newTestDB(t)
	policies := NewPolicyService(db)
	ctx := context.Background()

	p, err := policies.Create(ctx, alice, PolicyRequest{PolicyNumber: "A1", HolderName: "Owner", PaymentMode: "yearly"})
	require.NoError(t, err)

	_, err = policies.Get(ctx, bob, p.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = policies.Get(ctx, admin, p.ID)
	assert.NoError(t, err)

	_, err = policies.Get(ctx, alice, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := policies.List(ctx, bob, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPolicyValidation(t *testing.T) {
	db := newTestDB(t)
	policies := NewPolicyService(db)

	_, err := policies.Create(context.Background(), alice, PolicyRequest{PolicyNumber: "V1", HolderName: "Bad", PaymentMode: "weekly"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "payment_mode")
}

func TestShiftPremiumDate(t *testing.T) {
	tests := []struct {
		date, mode string
		forward    bool
		want       string
	}{
		{"2024-01-15", "monthly", true, "2024-02-15"},
		{"2024-01-15", "half-yearly", true, "2024-07-15"},
		{"2024-01-15", "yearly", false, "2023-01-15"},
		{"", "monthly", true, ""},
		{"2024-01-15", "weekly", true, "2024-01-15"},
	}
	for _, tt := range tests {
		t.Run(tt.mode+"/"+tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, shiftPremiumDate(tt.date, tt.mode, tt.forward))
		})
	}
}
