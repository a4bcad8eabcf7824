package services

import (
	"backoffice/config"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

// Mailer отправляет письмо
type Mailer interface {
	SendEmail(to, subject, body string) error
}

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %w", err)
	}

	return nil
}

// DueDigestSubject возвращает тему письма со сводкой
func DueDigestSubject(report *DueReport) string {
	return fmt.Sprintf("Due payments for %s: %d loans, %d policies", report.Date, len(report.Loans), len(report.Policies))
}

// DueDigestBody формирует HTML-сводку платежей, срок которых наступил
func DueDigestBody(report *DueReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Due payments for %s</h2>", html.EscapeString(report.Date))
	writeDueTable(&b, "Loans", report.Loans)
	writeDueTable(&b, "LIC policies", report.Policies)
	return b.String()
}

func writeDueTable(b *strings.Builder, title string, items []DueItem) {
	fmt.Fprintf(b, "<h3>%s (%d)</h3>", title, len(items))
	if len(items) == 0 {
		b.WriteString("<p>Nothing due.</p>")
		return
	}
	b.WriteString("<table border=\"1\" cellpadding=\"4\"><tr><th>Name</th><th>Reference</th><th>Mobile</th><th>Amount</th><th>Due date</th><th>Status</th></tr>")
	for _, it := range items {
		fmt.Fprintf(b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%.2f</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(it.DisplayName),
			html.EscapeString(it.Reference),
			html.EscapeString(it.Mobile),
			it.Amount,
			it.DueDate,
			it.StatusLabel,
		)
	}
	b.WriteString("</table>")
}
