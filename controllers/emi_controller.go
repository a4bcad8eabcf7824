package controllers

import (
	"backoffice/schedule"
	"backoffice/services"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// EMIController считает прогресс выплат
type EMIController struct {
	customers *services.CustomerService
	interval  schedule.Interval
}

// NewEMIController создает новый экземпляр EMIController.
// interval используется калькулятором, если параметр не передан.
func NewEMIController(customers *services.CustomerService, interval schedule.Interval) *EMIController {
	return &EMIController{customers: customers, interval: interval}
}

// calculation - ответ калькулятора
type calculation struct {
	TotalReceived decimal.Decimal   `json:"total_received"`
	EMIAmount     decimal.Decimal   `json:"emi_amount"`
	StartDate     string            `json:"start_date"`
	Interval      schedule.Interval `json:"interval"`
	schedule.Progress
}

// Calculate - /emi/calculate?total=&emi=&start=&interval=
func (h *EMIController) Calculate(c *gin.Context) {
	fields := map[string]string{}

	// суммы не проверяются: пустое или нечисловое значение считается нулем
	total := schedule.Amount(c.Query("total"))
	emi := schedule.Amount(c.Query("emi"))

	var err error
	var anchor = schedule.ParseDate(c.Query("start"))
	if c.Query("start") != "" && anchor == nil {
		fields["start"] = "must be a date (YYYY-MM-DD)"
	}

	interval := h.interval
	if raw := c.Query("interval"); raw != "" {
		if interval, err = schedule.ParseInterval(raw); err != nil {
			fields["interval"] = "must be one of: day month"
		}
	}

	if len(fields) > 0 {
		respondError(c, &services.ValidationError{Fields: fields})
		return
	}

	out := calculation{
		TotalReceived: total,
		EMIAmount:     emi,
		Interval:      interval,
		Progress:      schedule.Calculate(total, emi, anchor, interval),
	}
	if anchor != nil {
		out.StartDate = anchor.Format(schedule.DateLayout)
	}
	c.JSON(http.StatusOK, out)
}

// Customer - прогресс одного клиента по коду
func (h *EMIController) Customer(c *gin.Context) {
	progress, err := h.customers.Progress(c.Request.Context(), actorOf(c), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
