package services

import (
	"backoffice/database"
	"backoffice/models"
	"backoffice/schedule"
	"backoffice/utils"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRequest - данные для создания и изменения клиента
type CustomerRequest struct {
	CustomerCode string  `json:"customer_code" validate:"required,max=50"`
	Name         string  `json:"name" validate:"required,max=150"`
	Mobile       string  `json:"mobile" validate:"max=20"`
	Address      string  `json:"address" validate:"max=255"`
	Amount       float64 `json:"amount" validate:"gte=0"`
	Duration     int     `json:"duration" validate:"gte=0"`
	EMIAmount    float64 `json:"emi_amount" validate:"gte=0"`
	StartDate    string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	AdvanceDays  int     `json:"advance_days" validate:"gte=0"`
	FileCharge   float64 `json:"file_charge" validate:"gte=0"`
	Status       string  `json:"status" validate:"omitempty,oneof=active closed"`
	Remark       string  `json:"remark" validate:"max=500"`
}

// normalize приводит код и даты к виду, в котором они хранятся
func (r *CustomerRequest) normalize() {
	r.CustomerCode = strings.TrimSpace(r.CustomerCode)
	r.Name = strings.TrimSpace(r.Name)
	r.StartDate = schedule.NormalizeDate(r.StartDate)
	r.EndDate = schedule.NormalizeDate(r.EndDate)
	if r.Status == "" {
		r.Status = models.CustomerStatusActive
	}
}

// CustomerFilter - параметры списка клиентов
type CustomerFilter struct {
	Status string
	Query  string
}

// CustomerDTO - клиент с вычисленным прогрессом выплат
type CustomerDTO struct {
	models.Customer
	TotalReceived    float64          `json:"total_received"`
	PendingAmount    float64          `json:"pending_amount"`
	InstallmentsPaid int64            `json:"installments_paid"`
	NextDueDate      schedule.DueDate `json:"next_due_date"`
}

// customerRow - строка выборки клиентов с суммой взносов
type customerRow struct {
	models.Customer
	TotalReceived float64
}

// customerProgressSQL соединяет клиентов с суммой их взносов одним запросом
const customerProgressSQL = `SELECT c.*, COALESCE(d.total, 0) AS total_received
FROM customers c
LEFT JOIN (SELECT customer_code, SUM(amount) AS total FROM deposits GROUP BY customer_code) d
  ON d.customer_code = c.customer_code`

// CustomerService предоставляет методы для работы с клиентами
type CustomerService struct {
	db       *database.Database
	interval schedule.Interval
}

// NewCustomerService создает новый экземпляр CustomerService.
// interval - стратегия даты следующего платежа для списка клиентов.
func NewCustomerService(db *database.Database, interval schedule.Interval) *CustomerService {
	return &CustomerService{db: db, interval: interval}
}

// checkOwner разрешает доступ администратору и автору записи
func checkOwner(actor models.Actor, createdBy uint) error {
	if actor.IsAdmin() || actor.UserID == createdBy {
		return nil
	}
	return ErrForbidden
}

// progressFor считает прогресс выплат клиента по выбранной стратегии
func progressFor(c *models.Customer, totalReceived float64, interval schedule.Interval) schedule.Progress {
	return schedule.Calculate(
		decimal.NewFromFloat(totalReceived),
		decimal.NewFromFloat(c.EMIAmount),
		schedule.ParseDate(c.StartDate),
		interval,
	)
}

func pendingAmount(c *models.Customer, totalReceived float64) float64 {
	pending := decimal.NewFromFloat(c.Amount).Sub(decimal.NewFromFloat(totalReceived))
	if pending.IsNegative() {
		return 0
	}
	return pending.InexactFloat64()
}

func (r customerRow) toDTO(interval schedule.Interval) CustomerDTO {
	p := progressFor(&r.Customer, r.TotalReceived, interval)
	return CustomerDTO{
		Customer:         r.Customer,
		TotalReceived:    r.TotalReceived,
		PendingAmount:    pendingAmount(&r.Customer, r.TotalReceived),
		InstallmentsPaid: p.InstallmentsPaid,
		NextDueDate:      p.NextDueDate,
	}
}

// rows выбирает клиентов с суммами взносов по предикату
func (s *CustomerService) rows(ctx context.Context, where database.Predicate) ([]customerRow, error) {
	clause, args := where.Clause()
	var rows []customerRow
	if err := s.db.All(ctx, &rows, customerProgressSQL+clause+" ORDER BY c.id", args...); err != nil {
		return nil, err
	}
	return rows, nil
}

// List возвращает клиентов пользователя с прогрессом выплат
func (s *CustomerService) List(ctx context.Context, actor models.Actor, f CustomerFilter) ([]CustomerDTO, error) {
	where := database.Where().OwnedBy(actor, "c.created_by")
	if f.Status != "" {
		where = where.Eq("c.status", f.Status)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		where = where.And("LOWER(c.name) LIKE ? OR LOWER(c.customer_code) LIKE ?", like, like)
	}

	rows, err := s.rows(ctx, where)
	if err != nil {
		return nil, err
	}
	out := make([]CustomerDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDTO(s.interval))
	}
	return out, nil
}

// Get возвращает клиента по ID
func (s *CustomerService) Get(ctx context.Context, actor models.Actor, id uint) (*CustomerDTO, error) {
	rows, err := s.rows(ctx, database.Where().Eq("c.id", id))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	if err := checkOwner(actor, rows[0].CreatedBy); err != nil {
		return nil, err
	}
	dto := rows[0].toDTO(s.interval)
	return &dto, nil
}

// GetByCode возвращает клиента и сумму его взносов по коду
func (s *CustomerService) GetByCode(ctx context.Context, actor models.Actor, code string) (*models.Customer, float64, error) {
	rows, err := s.rows(ctx, database.Where().Eq("c.customer_code", strings.TrimSpace(code)))
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, ErrNotFound
	}
	if err := checkOwner(actor, rows[0].CreatedBy); err != nil {
		return nil, 0, err
	}
	return &rows[0].Customer, rows[0].TotalReceived, nil
}

// Create создает клиента
func (s *CustomerService) Create(ctx context.Context, actor models.Actor, req CustomerRequest) (*models.Customer, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	customer := customerFromRequest(req)
	customer.CreatedBy = actor.UserID
	if err := s.db.DB.WithContext(ctx).Create(customer).Error; err != nil {
		if errors.Is(notFoundOr(err), ErrDuplicate) {
			return nil, fieldError("customer_code", "customer code already exists")
		}
		return nil, err
	}

	utils.LogInfo("Customer %s created by user %d", customer.CustomerCode, actor.UserID)
	return customer, nil
}

func customerFromRequest(req CustomerRequest) *models.Customer {
	return &models.Customer{
		CustomerCode: req.CustomerCode,
		Name:         req.Name,
		Mobile:       req.Mobile,
		Address:      req.Address,
		Amount:       req.Amount,
		Duration:     req.Duration,
		EMIAmount:    req.EMIAmount,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		AdvanceDays:  req.AdvanceDays,
		FileCharge:   req.FileCharge,
		Status:       req.Status,
		Remark:       req.Remark,
	}
}

// Update изменяет клиента. При смене кода взносы переносятся на новый код в той же транзакции.
func (s *CustomerService) Update(ctx context.Context, actor models.Actor, id uint, req CustomerRequest) (*models.Customer, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var customer models.Customer
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		if err := tx.DB.First(&customer, id).Error; err != nil {
			return notFoundOr(err)
		}
		if err := checkOwner(actor, customer.CreatedBy); err != nil {
			return err
		}

		oldCode := customer.CustomerCode
		updated := customerFromRequest(req)
		updated.ID = customer.ID
		updated.CreatedBy = customer.CreatedBy
		updated.CreatedAt = customer.CreatedAt
		updated.PhotoPath = customer.PhotoPath
		updated.DocumentPath = customer.DocumentPath
		if err := tx.DB.Save(updated).Error; err != nil {
			if errors.Is(notFoundOr(err), ErrDuplicate) {
				return fieldError("customer_code", "customer code already exists")
			}
			return err
		}

		if oldCode != updated.CustomerCode {
			if _, err := tx.Run(ctx, `UPDATE deposits SET customer_code = ? WHERE customer_code = ?`, updated.CustomerCode, oldCode); err != nil {
				return err
			}
		}
		customer = *updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Delete удаляет клиента вместе с его взносами
func (s *CustomerService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	return s.db.Transaction(ctx, func(tx *database.Database) error {
		var customer models.Customer
		if err := tx.DB.First(&customer, id).Error; err != nil {
			return notFoundOr(err)
		}
		if err := checkOwner(actor, customer.CreatedBy); err != nil {
			return err
		}
		if _, err := tx.Run(ctx, `DELETE FROM deposits WHERE customer_code = $1`, customer.CustomerCode); err != nil {
			return err
		}
		if _, err := tx.Run(ctx, `DELETE FROM customers WHERE id = $1`, customer.ID); err != nil {
			return err
		}
		utils.LogInfo("Customer %s deleted by user %d", customer.CustomerCode, actor.UserID)
		return nil
	})
}

// AttachFiles сохраняет пути загруженных фото и документа; пустой путь не меняет поле
func (s *CustomerService) AttachFiles(ctx context.Context, actor models.Actor, id uint, photoPath, documentPath string) (*models.Customer, error) {
	var customer models.Customer
	if err := s.db.DB.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	if err := checkOwner(actor, customer.CreatedBy); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if photoPath != "" {
		updates["photo_path"] = photoPath
		customer.PhotoPath = photoPath
	}
	if documentPath != "" {
		updates["document_path"] = documentPath
		customer.DocumentPath = documentPath
	}
	if err := s.db.DB.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// EMIProgress - прогресс клиента по обеим стратегиям и по настроенной
type EMIProgress struct {
	CustomerCode  string            `json:"customer_code"`
	Name          string            `json:"name"`
	EMIAmount     float64           `json:"emi_amount"`
	TotalReceived float64           `json:"total_received"`
	StartDate     string            `json:"start_date"`
	Days          schedule.Progress `json:"days"`
	Months        schedule.Progress `json:"months"`
	Configured    schedule.Progress `json:"configured"`
	Interval      schedule.Interval `json:"interval"`
}

// Progress считает прогресс выплат клиента по коду
func (s *CustomerService) Progress(ctx context.Context, actor models.Actor, code string) (*EMIProgress, error) {
	customer, total, err := s.GetByCode(ctx, actor, code)
	if err != nil {
		return nil, err
	}
	return &EMIProgress{
		CustomerCode:  customer.CustomerCode,
		Name:          customer.Name,
		EMIAmount:     customer.EMIAmount,
		TotalReceived: total,
		StartDate:     customer.StartDate,
		Days:          progressFor(customer, total, schedule.IntervalDay),
		Months:        progressFor(customer, total, schedule.IntervalMonth),
		Configured:    progressFor(customer, total, s.interval),
		Interval:      s.interval,
	}, nil
}
