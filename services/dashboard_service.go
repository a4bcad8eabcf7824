package services

import (
	"backoffice/database"
	"backoffice/models"
	"backoffice/schedule"
	"backoffice/utils"
	"context"
	"fmt"
	"time"
)

// ReportFilter - необязательный диапазон дат взносов (YYYY-MM-DD, границы включительно)
type ReportFilter struct {
	From string
	To   string
}

// Totals - итоговые показатели
type Totals struct {
	Customers       int64   `json:"customers"`
	ActiveCustomers int64   `json:"active_customers"`
	LoanAmount      float64 `json:"loan_amount"`
	Deposits        float64 `json:"deposits"`
	DepositCount    int64   `json:"deposit_count"`
	Penalty         float64 `json:"penalty"`
	Pending         float64 `json:"pending"`
}

// Summary - ответ дашборда и отчета. Форма фиксирована: пустые разбивки - пустые объекты.
type Summary struct {
	Totals     Totals             `json:"totals"`
	ByMonth    map[string]float64 `json:"by_month"`
	ByCategory map[string]int64   `json:"by_category"`
}

// DashboardService собирает сводки для дашборда и отчетов
type DashboardService struct {
	db             *database.Database
	customers      *CustomerService
	reportInterval schedule.Interval
}

// NewDashboardService создает новый экземпляр DashboardService
func NewDashboardService(db *database.Database, customers *CustomerService, reportInterval schedule.Interval) *DashboardService {
	return &DashboardService{db: db, customers: customers, reportInterval: reportInterval}
}

// Summary считает итоги, суммы взносов по месяцам и число клиентов по статусам.
// Не-администратор видит только созданные им строки.
func (s *DashboardService) Summary(ctx context.Context, actor models.Actor, f ReportFilter) (*Summary, error) {
	start := time.Now()

	customerWhere := database.Where().OwnedBy(actor, "c.created_by")
	depositWhere := database.Where().
		OwnedBy(actor, "created_by").
		Between("deposit_date", schedule.NormalizeDate(f.From), schedule.NormalizeDate(f.To))

	summary := &Summary{
		ByMonth:    map[string]float64{},
		ByCategory: map[string]int64{},
	}

	// Клиенты и остаток долга
	clause, args := customerWhere.Clause()
	var customers struct {
		Customers       int64
		ActiveCustomers int64
		LoanAmount      float64
		Pending         float64
	}
	if _, err := s.db.Get(ctx, &customers, `SELECT COUNT(*) AS customers,
		COALESCE(SUM(CASE WHEN c.status = 'active' THEN 1 ELSE 0 END), 0) AS active_customers,
		COALESCE(SUM(c.amount), 0) AS loan_amount,
		COALESCE(SUM(CASE WHEN c.amount > COALESCE(d.total, 0) THEN c.amount - COALESCE(d.total, 0) ELSE 0 END), 0) AS pending
		FROM customers c
		LEFT JOIN (SELECT customer_code, SUM(amount) AS total FROM deposits GROUP BY customer_code) d
		  ON d.customer_code = c.customer_code`+clause, args...); err != nil {
		return nil, fmt.Errorf("dashboard customers: %w", err)
	}

	// Взносы
	clause, args = depositWhere.Clause()
	var deposits struct {
		DepositCount int64
		Deposits     float64
		Penalty      float64
	}
	if _, err := s.db.Get(ctx, &deposits, `SELECT COUNT(*) AS deposit_count,
		COALESCE(SUM(amount), 0) AS deposits,
		COALESCE(SUM(penalty), 0) AS penalty
		FROM deposits`+clause, args...); err != nil {
		return nil, fmt.Errorf("dashboard deposits: %w", err)
	}

	// Разбивка по месяцам
	var months []struct {
		Month  string
		Amount float64
	}
	if err := s.db.All(ctx, &months, `SELECT SUBSTR(deposit_date, 1, 7) AS month, COALESCE(SUM(amount), 0) AS amount
		FROM deposits`+clause+` GROUP BY SUBSTR(deposit_date, 1, 7) ORDER BY month`, args...); err != nil {
		return nil, fmt.Errorf("dashboard months: %w", err)
	}

	// Разбивка по статусам клиентов
	clause, args = customerWhere.Clause()
	var categories []struct {
		Category string
		Count    int64
	}
	if err := s.db.All(ctx, &categories, `SELECT c.status AS category, COUNT(*) AS count
		FROM customers c`+clause+` GROUP BY c.status ORDER BY c.status`, args...); err != nil {
		return nil, fmt.Errorf("dashboard categories: %w", err)
	}

	summary.Totals = Totals{
		Customers:       customers.Customers,
		ActiveCustomers: customers.ActiveCustomers,
		LoanAmount:      customers.LoanAmount,
		Deposits:        deposits.Deposits,
		DepositCount:    deposits.DepositCount,
		Penalty:         deposits.Penalty,
		Pending:         customers.Pending,
	}
	for _, m := range months {
		summary.ByMonth[m.Month] = m.Amount
	}
	for _, c := range categories {
		summary.ByCategory[c.Category] = c.Count
	}

	utils.LogDebug("Dashboard summary for user %d built in %v", actor.UserID, time.Since(start))
	return summary, nil
}

// CustomerReport возвращает клиентов с прогрессом по стратегии отчетов
func (s *DashboardService) CustomerReport(ctx context.Context, actor models.Actor) ([]CustomerDTO, error) {
	rows, err := s.customers.rows(ctx, database.Where().OwnedBy(actor, "c.created_by"))
	if err != nil {
		return nil, fmt.Errorf("customer report: %w", err)
	}
	out := make([]CustomerDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDTO(s.reportInterval))
	}
	return out, nil
}
