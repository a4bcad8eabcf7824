package models

import "time"

// Статусы клиента
const (
	CustomerStatusActive = "active"
	CustomerStatusClosed = "closed"
)

// Customer - заемщик. Даты хранятся строками YYYY-MM-DD.
type Customer struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerCode string    `gorm:"column:customer_code;uniqueIndex;not null;size:50" json:"customer_code"`
	Name         string    `gorm:"column:name;not null;size:150" json:"name"`
	Mobile       string    `gorm:"column:mobile;size:20" json:"mobile"`
	Address      string    `gorm:"column:address;size:255" json:"address"`
	Amount       float64   `gorm:"column:amount;type:decimal(20,2);not null;default:0" json:"amount"`
	Duration     int       `gorm:"column:duration;not null;default:0" json:"duration"`
	EMIAmount    float64   `gorm:"column:emi_amount;type:decimal(20,2);not null;default:0" json:"emi_amount"`
	StartDate    string    `gorm:"column:start_date;size:10" json:"start_date"`
	EndDate      string    `gorm:"column:end_date;size:10" json:"end_date"`
	AdvanceDays  int       `gorm:"column:advance_days;not null;default:0" json:"advance_days"`
	FileCharge   float64   `gorm:"column:file_charge;type:decimal(20,2);not null;default:0" json:"file_charge"`
	Status       string    `gorm:"column:status;size:20;not null;default:'active';index" json:"status"`
	Remark       string    `gorm:"column:remark;size:500" json:"remark"`
	PhotoPath    string    `gorm:"column:photo_path;size:255" json:"photo_path"`
	DocumentPath string    `gorm:"column:document_path;size:255" json:"document_path"`
	CreatedBy    uint      `gorm:"column:created_by;index" json:"created_by"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}
