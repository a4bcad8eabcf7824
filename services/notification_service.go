package services

import (
	"backoffice/database"
	"backoffice/models"
	"backoffice/utils"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Шаблоны по умолчанию, если в базе нет шаблона нужного вида
var defaultTemplates = map[string]string{
	models.NotificationKindLoan:   "Dear {{name}}, your installment of {{amount}} was due on {{due_date}}. Please pay at the earliest.",
	models.NotificationKindPolicy: "Dear {{name}}, the premium of {{amount}} for policy {{reference}} was due on {{due_date}}.",
}

type TemplateRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Kind string `json:"kind" validate:"required,oneof=loan policy"`
	Body string `json:"body" validate:"required,max=1000"`
}

type SenderRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Provider    string `json:"provider" validate:"required,oneof=meta twilio gupshup"`
	PhoneNumber string `json:"phone_number" validate:"required,max=20"`
	Active      *bool  `json:"active"`
}

type SendRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=loan policy"`
	TemplateID uint   `json:"template_id"`
}

// SendResult - итог рассылки
type SendResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// NotificationService управляет шаблонами, номерами отправителей и рассылкой напоминаний
type NotificationService struct {
	db     *database.Database
	scan   *DueScanService
	sender MessageSender
}

// NewNotificationService создает новый экземпляр NotificationService. sender может быть nil.
func NewNotificationService(db *database.Database, scan *DueScanService, sender MessageSender) *NotificationService {
	return &NotificationService{db: db, scan: scan, sender: sender}
}

// Due возвращает результат сканирования для экрана уведомлений
func (s *NotificationService) Due(ctx context.Context, actor models.Actor) (*DueReport, error) {
	return s.scan.Scan(ctx, actor)
}

// Render подставляет значения строки в шаблон
func Render(body string, item DueItem) string {
	return strings.NewReplacer(
		"{{name}}", item.DisplayName,
		"{{due_date}}", item.DueDate,
		"{{amount}}", fmt.Sprintf("%.2f", item.Amount),
		"{{reference}}", item.Reference,
		"{{status}}", item.StatusLabel,
	).Replace(body)
}

// template выбирает шаблон: по ID, иначе первый шаблон вида, иначе встроенный
func (s *NotificationService) template(ctx context.Context, kind string, id uint) (string, error) {
	var tpl models.NotificationTemplate
	if id != 0 {
		found, err := s.db.Get(ctx, &tpl, "SELECT * FROM notification_templates WHERE id = $1", id)
		if err != nil {
			return "", err
		}
		if !found {
			return "", ErrNotFound
		}
		if tpl.Kind != kind {
			return "", fieldError("template_id", "template kind does not match")
		}
		return tpl.Body, nil
	}

	found, err := s.db.Get(ctx, &tpl, "SELECT * FROM notification_templates WHERE kind = $1 ORDER BY id LIMIT 1", kind)
	if err != nil {
		return "", err
	}
	if found {
		return tpl.Body, nil
	}
	return defaultTemplates[kind], nil
}

// fromNumber возвращает номер активного отправителя провайдера или пустую строку
func (s *NotificationService) fromNumber(ctx context.Context) (string, error) {
	var sender models.NotificationSender
	found, err := s.db.Get(ctx, &sender,
		"SELECT * FROM notification_senders WHERE provider = ? AND active = ? ORDER BY id LIMIT 1",
		s.sender.Provider(), true)
	if err != nil || !found {
		return "", err
	}
	return sender.PhoneNumber, nil
}

// Send рассылает напоминания по строкам сканирования. Каждая попытка пишется в журнал, повторов нет.
func (s *NotificationService) Send(ctx context.Context, actor models.Actor, req SendRequest) (*SendResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if s.sender == nil {
		return nil, &ValidationError{Fields: map[string]string{"provider": ErrSenderNotConfigured.Error()}}
	}

	body, err := s.template(ctx, req.Kind, req.TemplateID)
	if err != nil {
		return nil, err
	}

	var items []DueItem
	if req.Kind == models.NotificationKindPolicy {
		items, err = s.scan.Policies(ctx, actor)
	} else {
		items, err = s.scan.Loans(ctx, actor)
	}
	if err != nil {
		return nil, err
	}

	from, err := s.fromNumber(ctx)
	if err != nil {
		return nil, err
	}

	result := &SendResult{}
	for _, item := range items {
		message := Render(body, item)

		var sendErr error
		if strings.TrimSpace(item.Mobile) == "" {
			sendErr = errors.New("no mobile number")
		} else {
			sendErr = s.sender.Send(ctx, from, item.Mobile, message)
		}
		utils.GetMetrics().RecordNotification(sendErr)

		entry := models.NotificationLog{
			Kind:      req.Kind,
			Recipient: item.Mobile,
			Message:   message,
			Provider:  s.sender.Provider(),
			Status:    models.NotificationStatusSent,
			CreatedBy: actor.UserID,
			CreatedAt: time.Now(),
		}
		if sendErr != nil {
			entry.Status = models.NotificationStatusFailed
			entry.Error = truncate(sendErr.Error(), 500)
			result.Failed++
			utils.LogError("Notification to %s (%s) failed: %v", item.DisplayName, item.Reference, sendErr)
		} else {
			result.Sent++
		}
		if err := s.db.DB.WithContext(ctx).Create(&entry).Error; err != nil {
			return nil, fmt.Errorf("write notification log: %w", err)
		}
	}

	utils.LogInfo("Notifications %s: sent %d, failed %d", req.Kind, result.Sent, result.Failed)
	return result, nil
}

// truncate обрезает строку до n символов, не разрывая руны
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// Logs возвращает последние записи журнала. Пользователь видит только свои рассылки.
func (s *NotificationService) Logs(ctx context.Context, actor models.Actor, kind string, limit int) ([]models.NotificationLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	where := database.Where().OwnedBy(actor, "created_by")
	if kind != "" {
		where = where.Eq("kind", kind)
	}
	clause, args := where.Clause()
	var logs []models.NotificationLog
	if err := s.db.All(ctx, &logs, fmt.Sprintf("SELECT * FROM notification_logs%s ORDER BY id DESC LIMIT %d", clause, limit), args...); err != nil {
		return nil, err
	}
	return logs, nil
}

// Templates возвращает шаблоны
func (s *NotificationService) Templates(ctx context.Context) ([]models.NotificationTemplate, error) {
	var templates []models.NotificationTemplate
	if err := s.db.All(ctx, &templates, "SELECT * FROM notification_templates ORDER BY id"); err != nil {
		return nil, err
	}
	return templates, nil
}

// CreateTemplate создает шаблон
func (s *NotificationService) CreateTemplate(ctx context.Context, req TemplateRequest) (*models.NotificationTemplate, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	tpl := &models.NotificationTemplate{Name: strings.TrimSpace(req.Name), Kind: req.Kind, Body: req.Body}
	if err := s.db.DB.WithContext(ctx).Create(tpl).Error; err != nil {
		if errors.Is(notFoundOr(err), ErrDuplicate) {
			return nil, fieldError("name", "template name already exists")
		}
		return nil, err
	}
	return tpl, nil
}

// DeleteTemplate удаляет шаблон
func (s *NotificationService) DeleteTemplate(ctx context.Context, id uint) error {
	res, err := s.db.Run(ctx, "DELETE FROM notification_templates WHERE id = ?", id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Senders возвращает номера отправителей
func (s *NotificationService) Senders(ctx context.Context) ([]models.NotificationSender, error) {
	var senders []models.NotificationSender
	if err := s.db.All(ctx, &senders, "SELECT * FROM notification_senders ORDER BY id"); err != nil {
		return nil, err
	}
	return senders, nil
}

// CreateSender добавляет номер отправителя
func (s *NotificationService) CreateSender(ctx context.Context, req SenderRequest) (*models.NotificationSender, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	sender := &models.NotificationSender{
		Name:        req.Name,
		Provider:    req.Provider,
		PhoneNumber: req.PhoneNumber,
		Active:      active,
		CreatedAt:   time.Now(),
	}
	res, err := s.db.Run(ctx,
		"INSERT INTO notification_senders (name, provider, phone_number, active, created_at) VALUES (?, ?, ?, ?, ?)",
		sender.Name, sender.Provider, sender.PhoneNumber, sender.Active, sender.CreatedAt)
	if err != nil {
		return nil, err
	}
	sender.ID = uint(res.LastInsertID)
	return sender, nil
}

// DeleteSender удаляет номер отправителя
func (s *NotificationService) DeleteSender(ctx context.Context, id uint) error {
	res, err := s.db.Run(ctx, "DELETE FROM notification_senders WHERE id = ?", id)
	if err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
