package models

import "time"

// Deposit - платеж клиента. Связан с клиентом по коду, без внешнего ключа.
type Deposit struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerCode string    `gorm:"column:customer_code;not null;size:50;index" json:"customer_code"`
	Amount       float64   `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Penalty      float64   `gorm:"column:penalty;type:decimal(20,2);not null;default:0" json:"penalty"`
	DepositDate  string    `gorm:"column:deposit_date;size:10;not null;index" json:"deposit_date"`
	Remark       string    `gorm:"column:remark;size:500" json:"remark"`
	CreatedBy    uint      `gorm:"column:created_by;index" json:"created_by"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Deposit) TableName() string {
	return "deposits"
}
