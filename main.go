package main

import (
	"backoffice/config"
	"backoffice/controllers"
	"backoffice/database"
	"backoffice/schedule"
	"backoffice/services"
	"backoffice/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// intervals - стратегии расчета даты платежа для каждого места вызова
type intervals struct {
	dashboard schedule.Interval
	report    schedule.Interval
	notify    schedule.Interval
}

func parseIntervals(cfg *config.Config) (intervals, error) {
	var (
		out intervals
		err error
	)
	if out.dashboard, err = schedule.ParseInterval(cfg.Schedule.DashboardInterval); err != nil {
		return out, fmt.Errorf("SCHEDULE_DASHBOARD_INTERVAL: %w", err)
	}
	if out.report, err = schedule.ParseInterval(cfg.Schedule.ReportInterval); err != nil {
		return out, fmt.Errorf("SCHEDULE_REPORT_INTERVAL: %w", err)
	}
	if out.notify, err = schedule.ParseInterval(cfg.Schedule.NotifyInterval); err != nil {
		return out, fmt.Errorf("SCHEDULE_NOTIFY_INTERVAL: %w", err)
	}
	return out, nil
}

func initReminderScheduler(cfg *config.Config, scan *services.DueScanService, notifications *services.NotificationService, whatsapp bool) *services.ReminderSchedulerService {
	if cfg.Notify.Cron == "" {
		return nil
	}

	var mailer services.Mailer
	if cfg.SMTP.Username != "" {
		mailer = services.NewEmailService(cfg)
	}

	scheduler := services.NewReminderSchedulerService(scan, notifications, mailer, cfg.Notify.Email, whatsapp, cfg.Location())
	if err := scheduler.Start(cfg.Notify.Cron); err != nil {
		log.Fatalf("Ошибка запуска планировщика напоминаний: %v", err)
	}
	log.Printf("Планировщик напоминаний запущен (%s)", cfg.Notify.Cron)
	return scheduler
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	if err := utils.InitLogger(cfg.LogDir); err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}

	steps, err := parseIntervals(cfg)
	if err != nil {
		log.Fatalf("Ошибка конфигурации: %v", err)
	}

	// Инициализируем подключение к базе данных
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}
	defer db.Close()

	// Сервисы
	users := services.NewUserService(db, cfg.JWT.SecretKey, cfg.JWT.ExpiresIn)
	customers := services.NewCustomerService(db, steps.dashboard)
	deposits := services.NewDepositService(db)
	policies := services.NewPolicyService(db)
	laundry := services.NewLaundryService(db)
	imports := services.NewImportService(db)
	exports := services.NewExportService(customers, deposits)
	dashboard := services.NewDashboardService(db, customers, steps.report)
	scan := services.NewDueScanService(db, customers, steps.notify, cfg.Location())

	sender, err := services.NewWhatsAppSender(cfg)
	if err != nil {
		log.Fatalf("Ошибка настройки WhatsApp: %v", err)
	}
	notifications := services.NewNotificationService(db, scan, sender)

	if scheduler := initReminderScheduler(cfg, scan, notifications, sender != nil); scheduler != nil {
		defer scheduler.Stop()
	}

	// Контроллеры и маршруты
	gin.SetMode(gin.ReleaseMode)
	router := controllers.NewRouter(controllers.Handlers{
		Auth:          controllers.NewAuthController(users),
		Users:         controllers.NewUserController(users),
		Customers:     controllers.NewCustomerController(customers, imports, exports, cfg.Server.UploadDir, cfg.Server.MaxUploadMB),
		Deposits:      controllers.NewDepositController(deposits, imports, cfg.Server.MaxUploadMB),
		EMI:           controllers.NewEMIController(customers, steps.dashboard),
		Policies:      controllers.NewPolicyController(policies, scan),
		Laundry:       controllers.NewLaundryController(laundry),
		Reports:       controllers.NewReportController(dashboard, exports),
		Notifications: controllers.NewNotificationController(notifications),
	}, users, controllers.RouterOptions{
		CORSOrigin: cfg.Server.CORSOrigin,
	})
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	servers := []*http.Server{
		{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: router},
	}
	if cfg.Server.OpsPort > 0 {
		servers = append(servers, &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.OpsPort),
			Handler: controllers.NewOpsRouter(db),
		})
	}

	// Запускаем серверы
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.Printf("Сервер запущен на %s", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("Ошибка запуска сервера: %v", err)
			}
		}(srv)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Остановка серверов...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			utils.LogError("Shutdown %s: %v", srv.Addr, err)
		}
	}
}
