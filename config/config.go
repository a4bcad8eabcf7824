package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port        int
		OpsPort     int
		CORSOrigin  string
		UploadDir   string
		MaxUploadMB int
	}
	DB struct {
		Driver     string // sqlite | postgres
		Path       string // файл sqlite
		Host       string
		Port       int
		User       string
		Password   string
		DBName     string
		Migrations bool
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // в часах
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Admin struct {
		Username string
		Password string
	}
	Notify struct {
		Email string
		Cron  string
	}
	WhatsApp struct {
		Provider   string // meta | twilio | gupshup
		BaseURL    string
		Token      string
		AccountSID string
		PhoneID    string
		From       string
		AppName    string
	}
	Schedule struct {
		DashboardInterval string
		ReportInterval    string
		NotifyInterval    string
	}
	LogDir   string
	Timezone string
}

// NewConfig создает новый экземпляр конфигурации из окружения и .env
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{}

	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.OpsPort = v.GetInt("OPS_PORT")
	cfg.Server.CORSOrigin = v.GetString("CORS_ORIGIN")
	cfg.Server.UploadDir = v.GetString("UPLOAD_DIR")
	cfg.Server.MaxUploadMB = v.GetInt("MAX_UPLOAD_MB")
	if cfg.Server.Port <= 0 {
		return nil, fmt.Errorf("invalid SERVER_PORT: %d", cfg.Server.Port)
	}

	cfg.DB.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	cfg.DB.Path = v.GetString("DB_PATH")
	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")
	cfg.DB.Migrations = v.GetBool("DB_MIGRATIONS")
	if cfg.DB.Driver != "sqlite" && cfg.DB.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	cfg.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	cfg.JWT.ExpiresIn = v.GetInt("JWT_EXPIRES_IN")

	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	cfg.Admin.Username = v.GetString("ADMIN_USERNAME")
	cfg.Admin.Password = v.GetString("ADMIN_PASSWORD")

	cfg.Notify.Email = v.GetString("NOTIFY_EMAIL")
	cfg.Notify.Cron = v.GetString("NOTIFY_CRON")

	cfg.WhatsApp.Provider = strings.ToLower(v.GetString("WHATSAPP_PROVIDER"))
	cfg.WhatsApp.BaseURL = v.GetString("WHATSAPP_BASE_URL")
	cfg.WhatsApp.Token = v.GetString("WHATSAPP_TOKEN")
	cfg.WhatsApp.AccountSID = v.GetString("WHATSAPP_ACCOUNT_SID")
	cfg.WhatsApp.PhoneID = v.GetString("WHATSAPP_PHONE_ID")
	cfg.WhatsApp.From = v.GetString("WHATSAPP_FROM")
	cfg.WhatsApp.AppName = v.GetString("WHATSAPP_APP_NAME")

	cfg.Schedule.DashboardInterval = v.GetString("SCHEDULE_DASHBOARD_INTERVAL")
	cfg.Schedule.ReportInterval = v.GetString("SCHEDULE_REPORT_INTERVAL")
	cfg.Schedule.NotifyInterval = v.GetString("SCHEDULE_NOTIFY_INTERVAL")

	cfg.LogDir = v.GetString("LOG_DIR")
	cfg.Timezone = v.GetString("TIMEZONE")

	if cfg.JWT.SecretKey == "your-secret-key-here" {
		log.Println("Warning: using default JWT_SECRET_KEY")
	}

	return cfg, nil
}

// Location возвращает часовой пояс сервера для вычисления "сегодня"
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: unknown TIMEZONE %q, using local time: %v", c.Timezone, err)
		return time.Local
	}
	return loc
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("OPS_PORT", 9090)
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_MB", 10)

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_PATH", "backoffice.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "backoffice")
	v.SetDefault("DB_MIGRATIONS", true)

	v.SetDefault("JWT_SECRET_KEY", "your-secret-key-here")
	v.SetDefault("JWT_EXPIRES_IN", 24)

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "no-reply@localhost")

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin123")

	v.SetDefault("WHATSAPP_BASE_URL", "")

	v.SetDefault("SCHEDULE_DASHBOARD_INTERVAL", "day")
	v.SetDefault("SCHEDULE_REPORT_INTERVAL", "month")
	v.SetDefault("SCHEDULE_NOTIFY_INTERVAL", "day")

	v.SetDefault("TIMEZONE", "Local")
}
