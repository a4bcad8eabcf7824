package services

import (
	"backoffice/models"
	"backoffice/schedule"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	from, to, message string
}

// fakeSender запоминает сообщения; на номер failTo отвечает ошибкой
type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	failTo string
}

func (f *fakeSender) Provider() string { return ProviderTwilio }

func (f *fakeSender) Send(_ context.Context, from, to, message string) error {
	if to == f.failTo {
		return errors.New("provider rejected number")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{from: from, to: to, message: message})
	return nil
}

type fakeMailer struct {
	to, subject, body string
	calls             int
}

func (m *fakeMailer) SendEmail(to, subject, body string) error {
	m.calls++
	m.to, m.subject, m.body = to, subject, body
	return nil
}

// dueFixture - три клиента с наступившим платежом на 2024-01-06, у одного нет номера
func dueFixture(t *testing.T) (*NotificationService, *DueScanService, *fakeSender) {
	t.Helper()
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	deposits := NewDepositService(db)

	for _, c := range []CustomerRequest{
		{CustomerCode: "N1", Name: "Arjun", Mobile: "+91 98765 00001", EMIAmount: 1000, StartDate: "2024-01-01"},
		{CustomerCode: "N2", Name: "Bela", Mobile: "9876500002", EMIAmount: 1000, StartDate: "2024-01-01"},
		{CustomerCode: "N3", Name: "Chand", EMIAmount: 1000, StartDate: "2024-01-01"},
	} {
		mustCustomer(t, customers, alice, c)
		mustDeposit(t, deposits, alice, c.CustomerCode, 5000, "2024-01-05")
	}

	scan := NewDueScanService(db, customers, schedule.IntervalDay, time.UTC).WithClock(fixedClock("2024-01-06"))
	sender := &fakeSender{failTo: "9876500002"}
	return NewNotificationService(db, scan, sender), scan, sender
}

func TestNotificationSend(t *testing.T) {
	notifications, _, sender := dueFixture(t)
	ctx := context.Background()

	_, err := notifications.CreateSender(ctx, SenderRequest{Name: "Office", Provider: ProviderTwilio, PhoneNumber: "14155238886"})
	require.NoError(t, err)
	tpl, err := notifications.CreateTemplate(ctx, TemplateRequest{
		Name: "short", Kind: models.NotificationKindLoan, Body: "Hi {{name}}, {{amount}} due {{due_date}} ({{status}})",
	})
	require.NoError(t, err)

	result, err := notifications.Send(ctx, alice, SendRequest{Kind: models.NotificationKindLoan, TemplateID: tpl.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 2, result.Failed)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "14155238886", sender.sent[0].from)
	assert.Equal(t, "Hi Arjun, 1000.00 due 2024-01-06 (due today)", sender.sent[0].message)

	logs, err := notifications.Logs(ctx, alice, models.NotificationKindLoan, 0)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	statuses := map[string]int{}
	for _, l := range logs {
		statuses[l.Status]++
		assert.Equal(t, ProviderTwilio, l.Provider)
		assert.Equal(t, alice.UserID, l.CreatedBy)
	}
	assert.Equal(t, map[string]int{models.NotificationStatusSent: 1, models.NotificationStatusFailed: 2}, statuses)

	// Чужой журнал недоступен, администратор видит все
	foreign, err := notifications.Logs(ctx, bob, "", 0)
	require.NoError(t, err)
	assert.Empty(t, foreign)

	all, err := notifications.Logs(ctx, admin, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTruncateKeepsRunes(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "привет", truncate("привет, мир", 6))
	assert.Equal(t, "नम", truncate("नमस्ते", 2))
}

func TestNotificationSendDefaultTemplate(t *testing.T) {
	notifications, _, sender := dueFixture(t)
	sender.failTo = ""

	result, err := notifications.Send(context.Background(), alice, SendRequest{Kind: models.NotificationKindLoan})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Failed)
	require.NotEmpty(t, sender.sent)
	assert.Empty(t, sender.sent[0].from)
	assert.Contains(t, sender.sent[0].message, "Dear Arjun")
}

func TestNotificationSendTemplateKindMismatch(t *testing.T) {
	notifications, _, _ := dueFixture(t)
	ctx := context.Background()

	tpl, err := notifications.CreateTemplate(ctx, TemplateRequest{Name: "lic", Kind: models.NotificationKindPolicy, Body: "x"})
	require.NoError(t, err)

	_, err = notifications.Send(ctx, alice, SendRequest{Kind: models.NotificationKindLoan, TemplateID: tpl.ID})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "template_id")

	_, err = notifications.Send(ctx, alice, SendRequest{Kind: models.NotificationKindLoan, TemplateID: 404})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationSendWithoutProvider(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerService(db, schedule.IntervalDay)
	notifications := NewNotificationService(db, NewDueScanService(db, customers, schedule.IntervalDay, time.UTC), nil)

	_, err := notifications.Send(context.Background(), alice, SendRequest{Kind: models.NotificationKindLoan})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "provider")
}

func TestNotificationTemplatesAndSenders(t *testing.T) {
	db := newTestDB(t)
	notifications := NewNotificationService(db, nil, nil)
	ctx := context.Background()

	_, err := notifications.CreateTemplate(ctx, TemplateRequest{Name: "dup", Kind: "loan", Body: "a"})
	require.NoError(t, err)
	_, err = notifications.CreateTemplate(ctx, TemplateRequest{Name: "dup", Kind: "loan", Body: "b"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	inactive := false
	sender, err := notifications.CreateSender(ctx, SenderRequest{Name: "Spare", Provider: ProviderMeta, PhoneNumber: "1", Active: &inactive})
	require.NoError(t, err)

	senders, err := notifications.Senders(ctx)
	require.NoError(t, err)
	require.Len(t, senders, 1)
	assert.False(t, senders[0].Active)

	require.NoError(t, notifications.DeleteSender(ctx, sender.ID))
	assert.ErrorIs(t, notifications.DeleteSender(ctx, sender.ID), ErrNotFound)
	assert.ErrorIs(t, notifications.DeleteTemplate(ctx, 999), ErrNotFound)
}

func TestRender(t *testing.T) {
	item := DueItem{DisplayName: "Ravi", DueDate: "2024-01-06", Amount: 1250.5, Reference: "C1", StatusLabel: LabelOverdue}
	assert.Equal(t, "Ravi C1 1250.50 2024-01-06 overdue", Render("{{name}} {{reference}} {{amount}} {{due_date}} {{status}}", item))
}

func TestReminderSchedulerRunOnce(t *testing.T) {
	notifications, scan, sender := dueFixture(t)
	sender.failTo = ""
	mailer := &fakeMailer{}

	scheduler := NewReminderSchedulerService(scan, notifications, mailer, "owner@example.com", true, time.UTC)
	require.NoError(t, scheduler.RunOnce(context.Background()))

	assert.Equal(t, 1, mailer.calls)
	assert.Equal(t, "owner@example.com", mailer.to)
	assert.Equal(t, "Due payments for 2024-01-06: 3 loans, 0 policies", mailer.subject)
	assert.Contains(t, mailer.body, "Arjun")
	assert.Len(t, sender.sent, 2)
}

func TestReminderSchedulerRejectsBadSpec(t *testing.T) {
	scheduler := NewReminderSchedulerService(nil, nil, nil, "", false, time.UTC)
	assert.Error(t, scheduler.Start("not a cron expression"))
}
