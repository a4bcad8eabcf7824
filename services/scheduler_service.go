package services

import (
	"backoffice/models"
	"backoffice/utils"
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// systemActor - от его имени работает задание: видит записи всех пользователей
var systemActor = models.Actor{Role: models.RoleAdmin}

// ReminderSchedulerService по расписанию сканирует наступившие платежи,
// отправляет сводку на e-mail и напоминания в WhatsApp
type ReminderSchedulerService struct {
	scan          *DueScanService
	notifications *NotificationService
	mailer        Mailer
	digestTo      string
	whatsapp      bool
	cron          *cron.Cron
}

// NewReminderSchedulerService создает новый экземпляр ReminderSchedulerService.
// mailer или пустой digestTo отключают письмо; whatsapp=false отключает рассылку.
func NewReminderSchedulerService(scan *DueScanService, notifications *NotificationService, mailer Mailer, digestTo string, whatsapp bool, loc *time.Location) *ReminderSchedulerService {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderSchedulerService{
		scan:          scan,
		notifications: notifications,
		mailer:        mailer,
		digestTo:      digestTo,
		whatsapp:      whatsapp,
		cron:          cron.New(cron.WithLocation(loc)),
	}
}

// Start запускает задание по расписанию в формате cron (5 полей)
func (s *ReminderSchedulerService) Start(expr string) error {
	_, err := s.cron.AddFunc(expr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			utils.LogError("Ошибка задания напоминаний: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("unable to schedule reminders %q: %w", expr, err)
	}

	s.cron.Start()
	utils.LogInfo("Планировщик напоминаний запущен: %s", expr)
	return nil
}

// Stop останавливает планировщик и ждет завершения текущего запуска
func (s *ReminderSchedulerService) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce выполняет одно сканирование и рассылку
func (s *ReminderSchedulerService) RunOnce(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { utils.LogOperation("reminders", start, err) }()

	report, err := s.scan.Scan(ctx, systemActor)
	if err != nil {
		return err
	}

	if s.mailer != nil && s.digestTo != "" {
		if err := s.mailer.SendEmail(s.digestTo, DueDigestSubject(report), DueDigestBody(report)); err != nil {
			return err
		}
	}

	if s.whatsapp && s.notifications != nil {
		for _, kind := range []string{models.NotificationKindLoan, models.NotificationKindPolicy} {
			res, err := s.notifications.Send(ctx, systemActor, SendRequest{Kind: kind})
			if err != nil {
				return fmt.Errorf("send %s reminders: %w", kind, err)
			}
			utils.LogInfo("Напоминания %s: отправлено %d, ошибок %d", kind, res.Sent, res.Failed)
		}
	}
	return nil
}
