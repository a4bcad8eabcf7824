package services

import (
	"backoffice/database"
	"backoffice/models"
	"backoffice/schedule"
	"context"
	"fmt"
	"sort"
	"time"
)

// Метки строк сканирования
const (
	LabelDueToday = "due today"
	LabelOverdue  = "overdue"
)

// DueItem - строка сканирования: клиент или полис, чей платеж наступил
type DueItem struct {
	Kind        string  `json:"kind"`
	Reference   string  `json:"reference"`
	DisplayName string  `json:"display_name"`
	Mobile      string  `json:"mobile"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date"`
	StatusLabel string  `json:"status_label"`
}

// DueScanService находит клиентов и полисы с датой платежа не позже сегодняшней.
// Результат считается заново при каждом вызове и нигде не хранится.
type DueScanService struct {
	db        *database.Database
	customers *CustomerService
	interval  schedule.Interval
	loc       *time.Location
	now       func() time.Time
}

// NewDueScanService создает новый экземпляр DueScanService.
// "Сегодня" - локальная дата сервера в часовом поясе loc.
func NewDueScanService(db *database.Database, customers *CustomerService, interval schedule.Interval, loc *time.Location) *DueScanService {
	if loc == nil {
		loc = time.Local
	}
	return &DueScanService{db: db, customers: customers, interval: interval, loc: loc, now: time.Now}
}

// WithClock подменяет источник текущего времени
func (s *DueScanService) WithClock(now func() time.Time) *DueScanService {
	cp := *s
	cp.now = now
	return &cp
}

// today возвращает текущую календарную дату
func (s *DueScanService) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func label(due, today time.Time) string {
	if due.Equal(today) {
		return LabelDueToday
	}
	return LabelOverdue
}

// Loans возвращает клиентов, у которых дата следующего взноса наступила
func (s *DueScanService) Loans(ctx context.Context, actor models.Actor) ([]DueItem, error) {
	today := s.today()

	rows, err := s.customers.rows(ctx, database.Where().OwnedBy(actor, "c.created_by"))
	if err != nil {
		return nil, fmt.Errorf("due scan customers: %w", err)
	}

	items := make([]DueItem, 0)
	for _, r := range rows {
		p := progressFor(&r.Customer, r.TotalReceived, s.interval)
		if !p.NextDueDate.OnOrBefore(today) {
			continue
		}
		due, _ := p.NextDueDate.Time()
		items = append(items, DueItem{
			Kind:        models.NotificationKindLoan,
			Reference:   r.CustomerCode,
			DisplayName: r.Name,
			Mobile:      r.Mobile,
			Amount:      r.EMIAmount,
			DueDate:     p.NextDueDate.String(),
			StatusLabel: label(due, today),
		})
	}
	sortDue(items)
	return items, nil
}

// Policies возвращает полисы со статусом due и датой премии не позже сегодняшней
func (s *DueScanService) Policies(ctx context.Context, actor models.Actor) ([]DueItem, error) {
	today := s.today()
	where := database.Where().
		OwnedBy(actor, "created_by").
		Eq("payment_status", string(models.PaymentStatusDue)).
		And("next_premium_date <> ''").
		Between("next_premium_date", "", today.Format(schedule.DateLayout))

	clause, args := where.Clause()
	var policies []models.Policy
	if err := s.db.All(ctx, &policies, "SELECT * FROM policies"+clause+" ORDER BY next_premium_date, holder_name", args...); err != nil {
		return nil, fmt.Errorf("due scan policies: %w", err)
	}

	items := make([]DueItem, 0, len(policies))
	for _, p := range policies {
		parsed := schedule.ParseDate(p.NextPremiumDate)
		if parsed == nil {
			continue
		}
		due, _ := schedule.DueOn(*parsed).Time()
		items = append(items, DueItem{
			Kind:        models.NotificationKindPolicy,
			Reference:   p.PolicyNumber,
			DisplayName: p.HolderName,
			Mobile:      p.Mobile,
			Amount:      p.PremiumAmount,
			DueDate:     p.NextPremiumDate,
			StatusLabel: label(due, today),
		})
	}
	sortDue(items)
	return items, nil
}

// DueReport - объединенный результат сканирования
type DueReport struct {
	Date     string    `json:"date"`
	Loans    []DueItem `json:"loans"`
	Policies []DueItem `json:"policies"`
}

// Scan выполняет оба сканирования
func (s *DueScanService) Scan(ctx context.Context, actor models.Actor) (*DueReport, error) {
	loans, err := s.Loans(ctx, actor)
	if err != nil {
		return nil, err
	}
	policies, err := s.Policies(ctx, actor)
	if err != nil {
		return nil, err
	}
	return &DueReport{Date: s.today().Format(schedule.DateLayout), Loans: loans, Policies: policies}, nil
}

// sortDue упорядочивает по дате платежа, затем по имени
func sortDue(items []DueItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DueDate != items[j].DueDate {
			return items[i].DueDate < items[j].DueDate
		}
		return items[i].DisplayName < items[j].DisplayName
	})
}
