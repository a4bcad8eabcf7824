package services

import (
	"backoffice/schedule"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardSummaryEmpty(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	dashboard := NewDashboardService(db, customers, schedule.IntervalMonth)

	summary, err := dashboard.Summary(context.Background(), alice, ReportFilter{})
	require.NoError(t, err)

	raw, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"totals": {"customers": 0, "active_customers": 0, "loan_amount": 0, "deposits": 0,
			"deposit_count": 0, "penalty": 0, "pending": 0},
		"by_month": {},
		"by_category": {}
	}`, string(raw))
}

func TestDashboardSummary(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	deposits := NewDepositService(db)
	dashboard := NewDashboardService(db, customers, schedule.IntervalMonth)
	ctx := context.Background()

	mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "M1", Name: "One", Amount: 10000, EMIAmount: 1000})
	mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "M2", Name: "Two", Amount: 3000, EMIAmount: 1000, Status: "closed"})
	mustCustomer(t, customers, bob, CustomerRequest{CustomerCode: "B1", Name: "Other", Amount: 99999})

	mustDeposit(t, deposits, alice, "M1", 1000, "2024-01-15")
	mustDeposit(t, deposits, alice, "M1", 1000, "2024-02-15")
	mustDeposit(t, deposits, alice, "M2", 4000, "2024-02-20")
	_, err := deposits.Create(ctx, alice, DepositRequest{CustomerCode: "M1", Amount: 500, Penalty: 50, DepositDate: "2024-03-01"})
	require.NoError(t, err)

	summary, err := dashboard.Summary(ctx, alice, ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Totals.Customers)
	assert.Equal(t, int64(1), summary.Totals.ActiveCustomers)
	assert.Equal(t, 13000.0, summary.Totals.LoanAmount)
	assert.Equal(t, 6500.0, summary.Totals.Deposits)
	assert.Equal(t, int64(4), summary.Totals.DepositCount)
	assert.Equal(t, 50.0, summary.Totals.Penalty)
	// M1: 10000 - 2500; M2 переплачен и дает 0
	assert.Equal(t, 7500.0, summary.Totals.Pending)
	assert.Equal(t, map[string]float64{"2024-01": 1000, "2024-02": 5000, "2024-03": 500}, summary.ByMonth)
	assert.Equal(t, map[string]int64{"active": 1, "closed": 1}, summary.ByCategory)

	// Диапазон дат ограничивает только взносы
	ranged, err := dashboard.Summary(ctx, alice, ReportFilter{From: "2024-02-01", To: "2024-02-29"})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, ranged.Totals.Deposits)
	assert.Equal(t, int64(2), ranged.Totals.DepositCount)
	assert.Equal(t, map[string]float64{"2024-02": 5000}, ranged.ByMonth)
	assert.Equal(t, int64(2), ranged.Totals.Customers)

	// Чужой клиент недоступен, итоги каждого считаются только по своим строкам
	_, err = deposits.Create(ctx, bob, DepositRequest{CustomerCode: "M1", Amount: 5000, DepositDate: "2024-03-02"})
	require.ErrorIs(t, err, ErrForbidden)
	mustDeposit(t, deposits, bob, "B1", 900, "2024-03-05")

	again, err := dashboard.Summary(ctx, alice, ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, summary.Totals, again.Totals)

	other, err := dashboard.Summary(ctx, bob, ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), other.Totals.Customers)
	assert.Equal(t, 99999.0, other.Totals.LoanAmount)
	assert.Equal(t, 900.0, other.Totals.Deposits)
	assert.Equal(t, int64(1), other.Totals.DepositCount)
	assert.Equal(t, 99099.0, other.Totals.Pending)
	assert.Equal(t, map[string]float64{"2024-03": 900}, other.ByMonth)

	all, err := dashboard.Summary(ctx, admin, ReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Totals.Customers)
	assert.Equal(t, 7400.0, all.Totals.Deposits)
}

func TestCustomerReportUsesReportInterval(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	deposits := NewDepositService(db)
	dashboard := NewDashboardService(db, customers, schedule.IntervalMonth)
	ctx := context.Background()

	mustCustomer(t, customers, alice, CustomerRequest{CustomerCode: "R1", Name: "Rep", EMIAmount: 1000, StartDate: "2024-01-01"})
	mustDeposit(t, deposits, alice, "R1", 5000, "2024-01-03")

	report, err := dashboard.CustomerReport(ctx, alice)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, "2024-06-01", report[0].NextDueDate.String())

	list, err := customers.List(ctx, alice, CustomerFilter{})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-06", list[0].NextDueDate.String())
}
