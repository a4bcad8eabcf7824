package services

import (
	"backoffice/database"
	"backoffice/models"
	"backoffice/schedule"
	"context"
	"strings"
)

// DepositRequest - данные взноса
type DepositRequest struct {
	CustomerCode string  `json:"customer_code" validate:"required,max=50"`
	Amount       float64 `json:"amount" validate:"gt=0"`
	Penalty      float64 `json:"penalty" validate:"gte=0"`
	DepositDate  string  `json:"deposit_date" validate:"required,datetime=2006-01-02"`
	Remark       string  `json:"remark" validate:"max=500"`
}

func (r *DepositRequest) normalize() {
	r.CustomerCode = strings.TrimSpace(r.CustomerCode)
	r.DepositDate = schedule.NormalizeDate(r.DepositDate)
}

// DepositFilter - параметры списка взносов
type DepositFilter struct {
	CustomerCode string
	From         string
	To           string
}

// predicate собирает условия фильтра; даты приводятся к YYYY-MM-DD
func (f DepositFilter) predicate(actor models.Actor) database.Predicate {
	where := database.Where().
		OwnedBy(actor, "created_by").
		Between("deposit_date", schedule.NormalizeDate(f.From), schedule.NormalizeDate(f.To))
	if code := strings.TrimSpace(f.CustomerCode); code != "" {
		where = where.Eq("customer_code", code)
	}
	return where
}

// DepositService предоставляет методы для работы со взносами
type DepositService struct {
	db *database.Database
}

// NewDepositService создает новый экземпляр DepositService
func NewDepositService(db *database.Database) *DepositService {
	return &DepositService{db: db}
}

// List возвращает взносы по фильтру, новые первыми
func (s *DepositService) List(ctx context.Context, actor models.Actor, f DepositFilter) ([]models.Deposit, error) {
	clause, args := f.predicate(actor).Clause()
	var deposits []models.Deposit
	if err := s.db.All(ctx, &deposits, "SELECT * FROM deposits"+clause+" ORDER BY deposit_date DESC, id DESC", args...); err != nil {
		return nil, err
	}
	return deposits, nil
}

// Get возвращает взнос по ID
func (s *DepositService) Get(ctx context.Context, actor models.Actor, id uint) (*models.Deposit, error) {
	var deposit models.Deposit
	found, err := s.db.Get(ctx, &deposit, "SELECT * FROM deposits WHERE id = $1", id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	if err := checkOwner(actor, deposit.CreatedBy); err != nil {
		return nil, err
	}
	return &deposit, nil
}

// checkCustomer проверяет, что клиент с кодом существует и доступен пользователю
func checkCustomer(ctx context.Context, store database.Store, actor models.Actor, code string) error {
	var createdBy uint
	found, err := store.Get(ctx, &createdBy, "SELECT created_by FROM customers WHERE customer_code = $1", code)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotFound
	}
	return checkOwner(actor, createdBy)
}

// Create добавляет взнос; клиент с указанным кодом должен существовать
func (s *DepositService) Create(ctx context.Context, actor models.Actor, req DepositRequest) (*models.Deposit, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if err := checkCustomer(ctx, s.db, actor, req.CustomerCode); err != nil {
		return nil, err
	}

	res, err := s.db.Run(ctx,
		`INSERT INTO deposits (customer_code, amount, penalty, deposit_date, remark, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		req.CustomerCode, req.Amount, req.Penalty, req.DepositDate, req.Remark, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, uint(res.LastInsertID))
}

// Update изменяет взнос
func (s *DepositService) Update(ctx context.Context, actor models.Actor, id uint, req DepositRequest) (*models.Deposit, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}

	if err := checkCustomer(ctx, s.db, actor, req.CustomerCode); err != nil {
		return nil, err
	}

	if _, err := s.db.Run(ctx,
		`UPDATE deposits SET customer_code = ?, amount = ?, penalty = ?, deposit_date = ?, remark = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		req.CustomerCode, req.Amount, req.Penalty, req.DepositDate, req.Remark, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, actor, id)
}

// Delete удаляет взнос
func (s *DepositService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	_, err := s.db.Run(ctx, "DELETE FROM deposits WHERE id = ?", id)
	return err
}
