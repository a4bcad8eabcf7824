package models

import "time"

// PaymentStatus - состояние очередной премии по полису
type PaymentStatus string

const (
	PaymentStatusDue  PaymentStatus = "due"
	PaymentStatusPaid PaymentStatus = "paid"
)

// Режимы оплаты премии
const (
	PaymentModeMonthly    = "monthly"
	PaymentModeQuarterly  = "quarterly"
	PaymentModeHalfYearly = "half-yearly"
	PaymentModeYearly     = "yearly"
)

// ModeMonths возвращает длину периода оплаты в месяцах, 0 для неизвестного режима
func ModeMonths(mode string) int {
	switch mode {
	case PaymentModeMonthly:
		return 1
	case PaymentModeQuarterly:
		return 3
	case PaymentModeHalfYearly:
		return 6
	case PaymentModeYearly:
		return 12
	}
	return 0
}

// Policy - страховой полис LIC
type Policy struct {
	ID              uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	PolicyNumber    string        `gorm:"column:policy_number;uniqueIndex;not null;size:50" json:"policy_number"`
	HolderName      string        `gorm:"column:holder_name;not null;size:150" json:"holder_name"`
	Mobile          string        `gorm:"column:mobile;size:20" json:"mobile"`
	Email           string        `gorm:"column:email;size:100" json:"email"`
	DOB             string        `gorm:"column:dob;size:10" json:"dob"`
	Address         string        `gorm:"column:address;size:255" json:"address"`
	PlanName        string        `gorm:"column:plan_name;size:100" json:"plan_name"`
	Term            int           `gorm:"column:term" json:"term"`
	StartDate       string        `gorm:"column:start_date;size:10" json:"start_date"`
	MaturityDate    string        `gorm:"column:maturity_date;size:10" json:"maturity_date"`
	SumAssured      float64       `gorm:"column:sum_assured;type:decimal(20,2);not null;default:0" json:"sum_assured"`
	PremiumAmount   float64       `gorm:"column:premium_amount;type:decimal(20,2);not null;default:0" json:"premium_amount"`
	PaymentMode     string        `gorm:"column:payment_mode;size:20" json:"payment_mode"`
	NextPremiumDate string        `gorm:"column:next_premium_date;size:10;index" json:"next_premium_date"`
	Nominee         string        `gorm:"column:nominee;size:150" json:"nominee"`
	NomineeRelation string        `gorm:"column:nominee_relation;size:50" json:"nominee_relation"`
	BankName        string        `gorm:"column:bank_name;size:100" json:"bank_name"`
	AccountNumber   string        `gorm:"column:account_number;size:50" json:"account_number"`
	IFSC            string        `gorm:"column:ifsc;size:20" json:"ifsc"`
	Status          string        `gorm:"column:status;size:20;not null;default:'active'" json:"status"`
	PaymentStatus   PaymentStatus `gorm:"column:payment_status;type:varchar(10);not null;default:'due'" json:"payment_status"`
	Remark          string        `gorm:"column:remark;size:500" json:"remark"`
	CreatedBy       uint          `gorm:"column:created_by;index" json:"created_by"`
	CreatedAt       time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (Policy) TableName() string {
	return "policies"
}
