package services

import (
	"backoffice/schedule"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerListFiltersByOwner(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	ctx := context.Background()

	mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "A1", Name: "Asha", Amount: 10000, EMIAmount: 1000})
	mustCustomer(t, customers, bob, CustomerRequest{CustomerCode: "B1", Name: "Bala", Amount: 5000, EMIAmount: 500})

	own, err := customers.List(ctx, alice, CustomerFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "A1", own[0].CustomerCode)

	all, err := customers.List(ctx, admin, CustomerFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = customers.Get(ctx, bob, own[0].ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCustomerListSearchAndStatus(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	ctx := context.Background()

	mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "C-100", Name: "Ravi Kumar"})
	mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "C-200", Name: "Meena", Status: "closed"})

	found, err := customers.List(ctx, alice, CustomerFilter{Query: "ravi"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "C-100", found[0].CustomerCode)

	closed, err := customers.List(ctx, alice, CustomerFilter{Status: "closed"})
	require.NoError(t, err)
	require.Len(t, closed, 1)
	assert.Equal(t, "Meena", closed[0].Name)
}

func TestCustomerProgressAndPending(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	deposits := NewDepositService(db)
	ctx := context.Background()

	c := mustCustomer(t, customers, alice, CustomerRequest{
		CustomerCode: "P1", Name: "Priya", Amount: 12000, EMIAmount: 1000, StartDate: "2024-01-01",
	})
	mustDeposit(t, deposits, alice, "P1", 3000, "2024-01-02")
	mustDeposit(t, deposits, alice, "P1", 2000, "2024-01-04")

	dto, err := customers.Get(ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, dto.TotalReceived)
	assert.Equal(t, 7000.0, dto.PendingAmount)
	assert.Equal(t, int64(5), dto.InstallmentsPaid)
	assert.Equal(t, "2024-01-06", dto.NextDueDate.String())

	progress, err := customers.Progress(ctx, alice, "P1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-06", progress.Days.NextDueDate.String())
	assert.Equal(t, "2024-06-01", progress.Months.NextDueDate.String())
	assert.Equal(t, schedule.IntervalDay, progress.Interval)
}

func TestCustomerPendingNeverNegative(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	deposits := NewDepositService(db)

	c := mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "O1", Name: "Over", Amount: 1000, EMIAmount: 1000})
	mustDeposit(t, deposits, alice, "O1", 1500, "2024-02-01")

	dto, err := customers.Get(context.Background(), alice, c.ID)
	require.NoError(t, err)
	assert.Zero(t, dto.PendingAmount)
	assert.Equal(t, schedule.NotApplicable, dto.NextDueDate.String())
}

func TestCustomerDuplicateCode(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)

	mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "D1", Name: "First"})
	_, err := customers.Create(context.Background(), bob, CustomerRequest{CustomerCode: "D1", Name: "Second"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "customer_code")
}

func TestCustomerUpdateMovesDeposits(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	deposits := NewDepositService(db)
	ctx := context.Background()

	c := mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "OLD", Name: "Code Change"})
	mustDeposit(t, deposits, alice, "OLD", 100, "2024-03-01")

	_, err := customers.Update(ctx, alice, c.ID, CustomerRequest{CustomerCode: "NEW", Name: "Code Change"})
	require.NoError(t, err)

	moved, err := deposits.List(ctx, alice, DepositFilter{CustomerCode: "NEW"})
	require.NoError(t, err)
	assert.Len(t, moved, 1)

	_, err = customers.Update(ctx, bob, c.ID, CustomerRequest{CustomerCode: "NEW", Name: "Hijack"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCustomerDeleteRemovesDeposits(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	deposits := NewDepositService(db)
	ctx := context.Background()

	c := mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "X1", Name: "Gone"})
	mustDeposit(t, deposits, alice, "X1", 100, "2024-03-01")

	require.ErrorIs(t, customers.Delete(ctx, bob, c.ID), ErrForbidden)
	require.NoError(t, customers.Delete(ctx, alice, c.ID))

	left, err := deposits.List(ctx, admin, DepositFilter{})
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = customers.Get(ctx, alice, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDepositRequiresKnownCustomer(t *testing.T) {
	db := newTestDB(t)
	deposits := NewDepositService(db)

	_, err := deposits.Create(context.Background(), alice, DepositRequest{CustomerCode: "NOPE", Amount: 10, DepositDate: "2024-01-01"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = deposits.Create(context.Background(), alice, DepositRequest{CustomerCode: "NOPE", Amount: 0, DepositDate: "2024-01-01"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "amount")
}

func TestDepositOnForeignCustomer(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	deposits := NewDepositService(db)
	ctx := context.Background()

	mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "A1", Name: "Alice's", Amount: 5000, EMIAmount: 1000, StartDate: "2024-01-01"})
	mustCustomer(t, customers, bob, CustomerRequest{CustomerCode: "B1", Name: "Bob's"})

	_, err := deposits.Create(ctx, bob, DepositRequest{CustomerCode: "A1", Amount: 5000, DepositDate: "2024-01-02"})
	assert.ErrorIs(t, err, ErrForbidden)

	own := mustDeposit(t, deposits, bob, "B1", 100, "2024-01-02")
	_, err = deposits.Update(ctx, bob, own.ID, DepositRequest{CustomerCode: "A1", Amount: 100, DepositDate: "2024-01-02"})
	assert.ErrorIs(t, err, ErrForbidden)

	progress, err := customers.Progress(ctx, alice, "A1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), progress.Days.InstallmentsPaid)

	// администратор может провести взнос по любому клиенту
	mustDeposit(t, deposits, admin, "A1", 1000, "2024-01-02")
}

func TestDepositListDateRange(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	deposits := NewDepositService(db)

	mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "R1", Name: "Range"})
	mustDeposit(t, deposits, alice, "R1", 100, "2024-01-31")
	mustDeposit(t, deposits, alice, "R1", 200, "2024-02-15")
	mustDeposit(t, deposits, alice, "R1", 300, "2024-03-01")

	got, err := deposits.List(context.Background(), alice, DepositFilter{From: "2024-02-01", To: "2024-03-01"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-03-01", got[0].DepositDate)
	assert.Equal(t, "2024-02-15", got[1].DepositDate)
}
