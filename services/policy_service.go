package services

import (
	"backoffice/database"
	"backoffice/models"
	"backoffice/schedule"
	"context"
	"strings"
)

// PolicyRequest - данные полиса LIC
type PolicyRequest struct {
	PolicyNumber    string  `json:"policy_number" validate:"required,max=50"`
	HolderName      string  `json:"holder_name" validate:"required,max=150"`
	Mobile          string  `json:"mobile" validate:"max=20"`
	Email           string  `json:"email" validate:"omitempty,email"`
	DOB             string  `json:"dob" validate:"omitempty,datetime=2006-01-02"`
	Address         string  `json:"address" validate:"max=255"`
	PlanName        string  `json:"plan_name" validate:"max=100"`
	Term            int     `json:"term" validate:"gte=0"`
	StartDate       string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	MaturityDate    string  `json:"maturity_date" validate:"omitempty,datetime=2006-01-02"`
	SumAssured      float64 `json:"sum_assured" validate:"gte=0"`
	PremiumAmount   float64 `json:"premium_amount" validate:"gte=0"`
	PaymentMode     string  `json:"payment_mode" validate:"required,oneof=monthly quarterly half-yearly yearly"`
	NextPremiumDate string  `json:"next_premium_date" validate:"omitempty,datetime=2006-01-02"`
	Nominee         string  `json:"nominee" validate:"max=150"`
	NomineeRelation string  `json:"nominee_relation" validate:"max=50"`
	BankName        string  `json:"bank_name" validate:"max=100"`
	AccountNumber   string  `json:"account_number" validate:"max=50"`
	IFSC            string  `json:"ifsc" validate:"max=20"`
	Status          string  `json:"status" validate:"max=20"`
	PaymentStatus   string  `json:"payment_status" validate:"omitempty,oneof=due paid"`
	Remark          string  `json:"remark" validate:"max=500"`
}

func (r *PolicyRequest) normalize() {
	r.PolicyNumber = strings.TrimSpace(r.PolicyNumber)
	r.PaymentMode = strings.ToLower(strings.TrimSpace(r.PaymentMode))
	r.DOB = schedule.NormalizeDate(r.DOB)
	r.StartDate = schedule.NormalizeDate(r.StartDate)
	r.MaturityDate = schedule.NormalizeDate(r.MaturityDate)
	r.NextPremiumDate = schedule.NormalizeDate(r.NextPremiumDate)
	if r.Status == "" {
		r.Status = "active"
	}
	if r.PaymentStatus == "" {
		r.PaymentStatus = string(models.PaymentStatusDue)
	}
}

func (r PolicyRequest) apply(p *models.Policy) {
	p.PolicyNumber = r.PolicyNumber
	p.HolderName = r.HolderName
	p.Mobile = r.Mobile
	p.Email = r.Email
	p.DOB = r.DOB
	p.Address = r.Address
	p.PlanName = r.PlanName
	p.Term = r.Term
	p.StartDate = r.StartDate
	p.MaturityDate = r.MaturityDate
	p.SumAssured = r.SumAssured
	p.PremiumAmount = r.PremiumAmount
	p.PaymentMode = r.PaymentMode
	p.NextPremiumDate = r.NextPremiumDate
	p.Nominee = r.Nominee
	p.NomineeRelation = r.NomineeRelation
	p.BankName = r.BankName
	p.AccountNumber = r.AccountNumber
	p.IFSC = r.IFSC
	p.Status = r.Status
	p.PaymentStatus = models.PaymentStatus(r.PaymentStatus)
	p.Remark = r.Remark
}

// PaymentStatusRequest - переключение статуса премии
type PaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required,oneof=due paid"`
}

// PolicyService предоставляет методы для работы с полисами
type PolicyService struct {
	db *database.Database
}

// NewPolicyService создает новый экземпляр PolicyService
func NewPolicyService(db *database.Database) *PolicyService {
	return &PolicyService{db: db}
}

// List возвращает полисы, упорядоченные по дате следующей премии
func (s *PolicyService) List(ctx context.Context, actor models.Actor, status string) ([]models.Policy, error) {
	where := database.Where().OwnedBy(actor, "created_by")
	if status != "" {
		where = where.Eq("payment_status", status)
	}
	var policies []models.Policy
	if err := s.db.DB.WithContext(ctx).Scopes(where.Scope).Order("next_premium_date, id").Find(&policies).Error; err != nil {
		return nil, err
	}
	return policies, nil
}

// Get возвращает полис по ID
func (s *PolicyService) Get(ctx context.Context, actor models.Actor, id uint) (*models.Policy, error) {
	var policy models.Policy
	if err := s.db.DB.WithContext(ctx).First(&policy, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	if err := checkOwner(actor, policy.CreatedBy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// Create создает полис
func (s *PolicyService) Create(ctx context.Context, actor models.Actor, req PolicyRequest) (*models.Policy, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	policy := &models.Policy{CreatedBy: actor.UserID}
	req.apply(policy)
	if err := s.db.DB.WithContext(ctx).Create(policy).Error; err != nil {
		if notFoundOr(err) == ErrDuplicate {
			return nil, fieldError("policy_number", "policy number already exists")
		}
		return nil, err
	}
	return policy, nil
}

// Update изменяет полис
func (s *PolicyService) Update(ctx context.Context, actor models.Actor, id uint, req PolicyRequest) (*models.Policy, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	policy, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	req.apply(policy)
	if err := s.db.DB.WithContext(ctx).Save(policy).Error; err != nil {
		if notFoundOr(err) == ErrDuplicate {
			return nil, fieldError("policy_number", "policy number already exists")
		}
		return nil, err
	}
	return policy, nil
}

// Delete удаляет полис
func (s *PolicyService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	policy, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.db.DB.WithContext(ctx).Delete(policy).Error
}

// SetPaymentStatus переключает статус премии.
// due → paid сдвигает дату следующей премии на один период режима оплаты, paid → due возвращает ее назад.
// Повторная установка того же статуса дату не меняет.
func (s *PolicyService) SetPaymentStatus(ctx context.Context, actor models.Actor, id uint, req PaymentStatusRequest) (*models.Policy, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	policy, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	next := models.PaymentStatus(req.PaymentStatus)
	if policy.PaymentStatus == next {
		return policy, nil
	}

	policy.NextPremiumDate = shiftPremiumDate(policy.NextPremiumDate, policy.PaymentMode, next == models.PaymentStatusPaid)
	policy.PaymentStatus = next

	if _, err := s.db.Run(ctx,
		`UPDATE policies SET payment_status = $1, next_premium_date = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`,
		string(policy.PaymentStatus), policy.NextPremiumDate, policy.ID); err != nil {
		return nil, err
	}
	return policy, nil
}

// shiftPremiumDate сдвигает дату на период режима оплаты вперед или назад.
// Неизвестный режим или пустая дата оставляют значение без изменений.
func shiftPremiumDate(date, mode string, forward bool) string {
	months := models.ModeMonths(mode)
	t := schedule.ParseDate(date)
	if months == 0 || t == nil {
		return date
	}
	if !forward {
		months = -months
	}
	return t.AddDate(0, months, 0).Format(schedule.DateLayout)
}
