package services

import (
	"backoffice/database"
	"backoffice/models"
	"backoffice/schedule"
	"context"
	"strings"
)

// LaundryOrderRequest - данные заказа прачечной
type LaundryOrderRequest struct {
	OrderNumber  string  `json:"order_number" validate:"required,max=50"`
	CustomerName string  `json:"customer_name" validate:"required,max=150"`
	Mobile       string  `json:"mobile" validate:"max=20"`
	Items        int     `json:"items" validate:"gte=0"`
	Amount       float64 `json:"amount" validate:"gte=0"`
	Paid         float64 `json:"paid" validate:"gte=0"`
	Status       string  `json:"status" validate:"omitempty,oneof=received washing ready delivered"`
	ReceivedDate string  `json:"received_date" validate:"omitempty,datetime=2006-01-02"`
	DeliveryDate string  `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	Remark       string  `json:"remark" validate:"max=500"`
}

func (r *LaundryOrderRequest) normalize() {
	r.OrderNumber = strings.TrimSpace(r.OrderNumber)
	r.ReceivedDate = schedule.NormalizeDate(r.ReceivedDate)
	r.DeliveryDate = schedule.NormalizeDate(r.DeliveryDate)
	if r.Status == "" {
		r.Status = models.LaundryStatusReceived
	}
}

// LaundryStatusRequest - смена статуса заказа
type LaundryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=received washing ready delivered"`
}

// LaundrySummary - сводка заказов
type LaundrySummary struct {
	Orders   int64            `json:"orders"`
	Amount   float64          `json:"amount"`
	Paid     float64          `json:"paid"`
	Due      float64          `json:"due"`
	ByStatus map[string]int64 `json:"by_status"`
}

// LaundryService предоставляет методы для заказов прачечной
type LaundryService struct {
	db *database.Database
}

// NewLaundryService создает новый экземпляр LaundryService
func NewLaundryService(db *database.Database) *LaundryService {
	return &LaundryService{db: db}
}

// List возвращает заказы, новые первыми
func (s *LaundryService) List(ctx context.Context, actor models.Actor, status string) ([]models.LaundryOrder, error) {
	where := database.Where().OwnedBy(actor, "created_by")
	if status != "" {
		where = where.Eq("status", status)
	}
	var orders []models.LaundryOrder
	if err := s.db.DB.WithContext(ctx).Scopes(where.Scope).Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Get возвращает заказ по ID
func (s *LaundryService) Get(ctx context.Context, actor models.Actor, id uint) (*models.LaundryOrder, error) {
	var order models.LaundryOrder
	if err := s.db.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	if err := checkOwner(actor, order.CreatedBy); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r LaundryOrderRequest) apply(o *models.LaundryOrder) {
	o.OrderNumber = r.OrderNumber
	o.CustomerName = r.CustomerName
	o.Mobile = r.Mobile
	o.Items = r.Items
	o.Amount = r.Amount
	o.Paid = r.Paid
	o.Status = r.Status
	o.ReceivedDate = r.ReceivedDate
	o.DeliveryDate = r.DeliveryDate
	o.Remark = r.Remark
}

// Create создает заказ
func (s *LaundryService) Create(ctx context.Context, actor models.Actor, req LaundryOrderRequest) (*models.LaundryOrder, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	order := &models.LaundryOrder{CreatedBy: actor.UserID}
	req.apply(order)
	if err := s.db.DB.WithContext(ctx).Create(order).Error; err != nil {
		if notFoundOr(err) == ErrDuplicate {
			return nil, fieldError("order_number", "order number already exists")
		}
		return nil, err
	}
	return order, nil
}

// Update изменяет заказ
func (s *LaundryService) Update(ctx context.Context, actor models.Actor, id uint, req LaundryOrderRequest) (*models.LaundryOrder, error) {
	req.normalize()
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	req.apply(order)
	if err := s.db.DB.WithContext(ctx).Save(order).Error; err != nil {
		if notFoundOr(err) == ErrDuplicate {
			return nil, fieldError("order_number", "order number already exists")
		}
		return nil, err
	}
	return order, nil
}

// SetStatus меняет статус заказа
func (s *LaundryService) SetStatus(ctx context.Context, actor models.Actor, id uint, req LaundryStatusRequest) (*models.LaundryOrder, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	order.Status = req.Status
	if _, err := s.db.Run(ctx, "UPDATE laundry_orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", order.Status, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

// Delete удаляет заказ
func (s *LaundryService) Delete(ctx context.Context, actor models.Actor, id uint) error {
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.db.DB.WithContext(ctx).Delete(order).Error
}

// Summary считает заказы по статусам и суммы
func (s *LaundryService) Summary(ctx context.Context, actor models.Actor) (*LaundrySummary, error) {
	clause, args := database.Where().OwnedBy(actor, "created_by").Clause()

	var rows []struct {
		Status string
		Orders int64
		Amount float64
		Paid   float64
	}
	if err := s.db.All(ctx, &rows,
		`SELECT status, COUNT(*) AS orders, COALESCE(SUM(amount), 0) AS amount, COALESCE(SUM(paid), 0) AS paid
		 FROM laundry_orders`+clause+` GROUP BY status ORDER BY status`, args...); err != nil {
		return nil, err
	}

	summary := &LaundrySummary{ByStatus: make(map[string]int64, len(rows))}
	for _, r := range rows {
		summary.Orders += r.Orders
		summary.Amount += r.Amount
		summary.Paid += r.Paid
		summary.ByStatus[r.Status] = r.Orders
	}
	summary.Due = summary.Amount - summary.Paid
	return summary, nil
}
