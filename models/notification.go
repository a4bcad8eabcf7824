package models

import "time"

// Виды уведомлений
const (
	NotificationKindLoan   = "loan"
	NotificationKindPolicy = "policy"
)

// NotificationSender - номер отправителя WhatsApp
type NotificationSender struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;not null;size:100" json:"name"`
	Provider    string    `gorm:"column:provider;not null;size:20" json:"provider"`
	PhoneNumber string    `gorm:"column:phone_number;not null;size:20" json:"phone_number"`
	Active      bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (NotificationSender) TableName() string {
	return "notification_senders"
}

// NotificationTemplate - шаблон сообщения с подстановками {{name}}, {{due_date}}, {{amount}}
type NotificationTemplate struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;uniqueIndex;not null;size:100" json:"name"`
	Kind      string    `gorm:"column:kind;not null;size:20" json:"kind"`
	Body      string    `gorm:"column:body;not null;size:1000" json:"body"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (NotificationTemplate) TableName() string {
	return "notification_templates"
}

// Статусы отправки
const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// NotificationLog - запись о попытке отправки
type NotificationLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind      string    `gorm:"column:kind;size:20;index" json:"kind"`
	Recipient string    `gorm:"column:recipient;size:20" json:"recipient"`
	Message   string    `gorm:"column:message;size:1000" json:"message"`
	Provider  string    `gorm:"column:provider;size:20" json:"provider"`
	Status    string    `gorm:"column:status;size:10" json:"status"`
	Error     string    `gorm:"column:error;size:500" json:"error,omitempty"`
	CreatedBy uint      `gorm:"column:created_by;index" json:"created_by"`
	CreatedAt time.Time `gorm:"column:created_at;index" json:"created_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}
