// Package schedule считает прогресс выплат по взносам (EMI, премии) и дату следующего платежа.
package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout - формат дат, в котором они хранятся в базе
const DateLayout = "2006-01-02"

// NotApplicable - строковое представление отсутствующей даты платежа
const NotApplicable = "not applicable"

// Interval - шаг, на который сдвигается дата начала за каждый оплаченный взнос
type Interval string

const (
	// IntervalDay сдвигает дату на installmentsPaid дней
	IntervalDay Interval = "day"
	// IntervalMonth сдвигает дату на installmentsPaid календарных месяцев
	IntervalMonth Interval = "month"
)

// ParseInterval разбирает название стратегии из конфигурации
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "day", "days", "daily":
		return IntervalDay, nil
	case "month", "months", "monthly":
		return IntervalMonth, nil
	}
	return "", fmt.Errorf("unknown installment interval %q", s)
}

// Advance сдвигает дату на n шагов интервала.
// Месяцы считаются через time.AddDate, поэтому 31 января + 1 месяц даёт начало марта.
func (i Interval) Advance(t time.Time, n int64) time.Time {
	if i == IntervalMonth {
		return t.AddDate(0, int(n), 0)
	}
	return t.AddDate(0, 0, int(n))
}

// DueDate - дата следующего платежа, либо "not applicable"
type DueDate struct {
	t     time.Time
	valid bool
}

// DueOn создает дату платежа
func DueOn(t time.Time) DueDate {
	y, m, d := t.Date()
	return DueDate{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), valid: true}
}

// Valid сообщает, определена ли дата
func (d DueDate) Valid() bool { return d.valid }

// Time возвращает дату (полночь UTC) и признак наличия
func (d DueDate) Time() (time.Time, bool) { return d.t, d.valid }

func (d DueDate) String() string {
	if !d.valid {
		return NotApplicable
	}
	return d.t.Format(DateLayout)
}

// OnOrBefore сравнивает только календарные даты
func (d DueDate) OnOrBefore(day time.Time) bool {
	if !d.valid {
		return false
	}
	return !d.t.After(DueOn(day).t)
}

func (d DueDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Progress - результат расчета
type Progress struct {
	InstallmentsPaid int64   `json:"installments_paid"`
	NextDueDate      DueDate `json:"next_due_date"`
}

// Calculate считает число полностью оплаченных взносов и дату следующего.
//
// installmentsPaid = floor(totalReceived / installmentAmount), если размер взноса > 0, иначе 0.
// Дата считается только при installmentsPaid > 0 и заданной дате начала.
// Функция чистая: одинаковые аргументы всегда дают одинаковый результат.
func Calculate(totalReceived, installmentAmount decimal.Decimal, anchor *time.Time, interval Interval) Progress {
	var p Progress
	if !installmentAmount.IsPositive() || totalReceived.IsNegative() {
		return p
	}

	p.InstallmentsPaid = totalReceived.Div(installmentAmount).Floor().IntPart()
	if p.InstallmentsPaid > 0 && anchor != nil && !anchor.IsZero() {
		p.NextDueDate = DueOn(interval.Advance(*anchor, p.InstallmentsPaid))
	}
	return p
}

// ParseDate разбирает дату из базы или запроса. Пустая или неверная строка - nil.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05", "02-01-2006", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// NormalizeDate приводит дату к формату YYYY-MM-DD, неизвестный формат возвращается как есть
func NormalizeDate(s string) string {
	if t := ParseDate(s); t != nil {
		return t.Format(DateLayout)
	}
	return strings.TrimSpace(s)
}

// Amount приводит сырое значение (число, строку из Excel или NULL) к decimal.
// Всё нечисловое превращается в ноль.
func Amount(v interface{}) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case float64:
		return decimal.NewFromFloat(x)
	case float32:
		return decimal.NewFromFloat32(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case []byte:
		return Amount(string(x))
	case string:
		d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(x), ",", ""))
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	return decimal.Zero
}
