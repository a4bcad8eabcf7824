package services

import (
	"backoffice/schedule"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(date string) func() time.Time {
	return func() time.Time {
		t, _ := time.ParseInLocation(schedule.DateLayout, date, time.UTC)
		return t.Add(15 * time.Hour)
	}
}

func TestDueScanLoans(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalMonth)
	deposits := NewDepositService(db)

	mustCustomer(t, customers, alice, CustomerRequest{
		CustomerCode: "EMI1", Name: "Kiran", Mobile: "9876543210", EMIAmount: 1000, StartDate: "2024-01-01",
	})
	mustDeposit(t, deposits, alice, "EMI1", 5000, "2024-01-05")

	// Стратегия сканирования не зависит от стратегии списка клиентов
	scan := NewDueScanService(db, customers, schedule.IntervalDay, time.UTC)

	items, err := scan.WithClock(fixedClock("2024-01-06")).Loans(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "EMI1", items[0].Reference)
	assert.Equal(t, "2024-01-06", items[0].DueDate)
	assert.Equal(t, LabelDueToday, items[0].StatusLabel)
	assert.Equal(t, 1000.0, items[0].Amount)

	items, err = scan.WithClock(fixedClock("2024-01-05")).Loans(context.Background(), alice)
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = scan.WithClock(fixedClock("2024-02-01")).Loans(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, LabelOverdue, items[0].StatusLabel)

	// Чужие клиенты не видны
	items, err = scan.WithClock(fixedClock("2024-02-01")).Loans(context.Background(), bob)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDueScanSkipsCustomersWithoutProgress(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	deposits := NewDepositService(db)

	mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "Z0", Name: "No EMI", StartDate: "2024-01-01"})
	mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "Z1", Name: "Short", EMIAmount: 1000, StartDate: "2024-01-01"})
	mustDeposit(t, deposits, alice, "Z0", 500, "2024-01-02")
	mustDeposit(t, deposits, alice, "Z1", 999, "2024-01-02")

	scan := NewDueScanService(db, customers, schedule.IntervalDay, time.UTC).WithClock(fixedClock("2030-01-01"))
	items, err := scan.Loans(context.Background(), admin)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDueScanOrdering(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	deposits := NewDepositService(db)

	for _, c := range []struct{ code, name, start string }{
		{"S1", "Zara", "2024-01-01"},
		{"S2", "Anil", "2024-01-01"},
		{"S3", "Bina", "2023-12-30"},
	} {
		mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: c.code, Name: c.name, EMIAmount: 100, StartDate: c.start})
		mustDeposit(t, deposits, alice, c.code, 100, "2024-01-01")
	}

	scan := NewDueScanService(db, customers, schedule.IntervalDay, time.UTC).WithClock(fixedClock("2024-01-02"))
	items, err := scan.Loans(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"Bina", "Anil", "Zara"}, []string{items[0].DisplayName, items[1].DisplayName, items[2].DisplayName})
}

func TestDueScanPolicies(t *testing.T) {
	db := newTestDB(t)
	policies := NewPolicyService(db)
	customers := NewCustomerService(db, schedule.IntervalDay)
	ctx := context.Background()

	lic := alice
	for _, p := range []PolicyRequest{
		{PolicyNumber: "L1", HolderName: "Due Today", PaymentMode: "monthly", NextPremiumDate: "2024-05-10"},
		{PolicyNumber: "L2", HolderName: "Overdue", PaymentMode: "yearly", NextPremiumDate: "2024-04-01"},
		{PolicyNumber: "L3", HolderName: "Future", PaymentMode: "monthly", NextPremiumDate: "2024-05-11"},
		{PolicyNumber: "L4", HolderName: "Paid", PaymentMode: "monthly", NextPremiumDate: "2024-05-01", PaymentStatus: "paid"},
		{PolicyNumber: "L5", HolderName: "No Date", PaymentMode: "monthly"},
	} {
		_, err := policies.Create(ctx, lic, p)
		require.NoError(t, err)
	}

	scan := NewDueScanService(db, customers, schedule.IntervalDay, time.UTC).WithClock(fixedClock("2024-05-10"))
	report, err := scan.Scan(ctx, lic)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10", report.Date)
	assert.Empty(t, report.Loans)
	require.Len(t, report.Policies, 2)
	assert.Equal(t, "L2", report.Policies[0].Reference)
	assert.Equal(t, LabelOverdue, report.Policies[0].StatusLabel)
	assert.Equal(t, "L1", report.Policies[1].Reference)
	assert.Equal(t, LabelDueToday, report.Policies[1].StatusLabel)
}

func TestDueScanUsesLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	scan := NewDueScanService(nil, nil, schedule.IntervalDay, kolkata).WithClock(func() time.Time {
		return time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC)
	})
	assert.Equal(t, "2024-01-06", scan.today().Format(schedule.DateLayout))
}
