package models

import "time"

// Статусы заказа прачечной
const (
	LaundryStatusReceived  = "received"
	LaundryStatusWashing   = "washing"
	LaundryStatusReady     = "ready"
	LaundryStatusDelivered = "delivered"
)

// LaundryOrder - заказ прачечной ClothAura
type LaundryOrder struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber  string    `gorm:"column:order_number;uniqueIndex;not null;size:50" json:"order_number"`
	CustomerName string    `gorm:"column:customer_name;not null;size:150" json:"customer_name"`
	Mobile       string    `gorm:"column:mobile;size:20" json:"mobile"`
	Items        int       `gorm:"column:items;not null;default:0" json:"items"`
	Amount       float64   `gorm:"column:amount;type:decimal(20,2);not null;default:0" json:"amount"`
	Paid         float64   `gorm:"column:paid;type:decimal(20,2);not null;default:0" json:"paid"`
	Status       string    `gorm:"column:status;size:20;not null;default:'received';index" json:"status"`
	ReceivedDate string    `gorm:"column:received_date;size:10" json:"received_date"`
	DeliveryDate string    `gorm:"column:delivery_date;size:10" json:"delivery_date"`
	Remark       string    `gorm:"column:remark;size:500" json:"remark"`
	CreatedBy    uint      `gorm:"column:created_by;index" json:"created_by"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (LaundryOrder) TableName() string {
	return "laundry_orders"
}
