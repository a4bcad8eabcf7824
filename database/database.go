package database

import (
	"backoffice/config"
	"backoffice/models"
	"backoffice/utils"
	"context"
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// Поддерживаемые движки
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Database представляет подключение к базе данных
type Database struct {
	DB     *gorm.DB
	Driver string
}

// Options - параметры подключения без привязки к конфигурации (нужны тестам и утилитам)
type Options struct {
	Driver   string
	DSN      string
	LogLevel logger.LogLevel
}

// NewDatabase создает подключение по конфигурации, выполняет миграции и создает администратора
func NewDatabase(cfg *config.Config) (*Database, error) {
	db, err := Open(Options{
		Driver:   cfg.DB.Driver,
		DSN:      dsn(cfg),
		LogLevel: logger.Warn,
	})
	if err != nil {
		return nil, err
	}

	if cfg.DB.Migrations {
		if err := runMigrations(cfg); err != nil {
			return nil, fmt.Errorf("ошибка выполнения SQL миграций: %w", err)
		}
	}

	hash, err := utils.HashPassword(cfg.Admin.Password)
	if err != nil {
		return nil, err
	}
	if err := db.SeedAdmin(context.Background(), cfg.Admin.Username, hash); err != nil {
		return nil, fmt.Errorf("ошибка создания администратора: %w", err)
	}

	return db, nil
}

// Open открывает подключение к выбранному движку и выполняет автоматическую миграцию моделей
func Open(opts Options) (*Database, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite, "":
		opts.Driver = DriverSQLite
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("неподдерживаемый драйвер базы данных: %s", opts.Driver)
	}

	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Silent
	}

	// Настраиваем логгер
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	// Настраиваем пул соединений
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пула соединений: %w", err)
	}
	if opts.Driver == DriverSQLite {
		// sqlite пишет одним соединением, а :memory: у каждого соединения свой
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	d := &Database{DB: db, Driver: opts.Driver}
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("ошибка автоматической миграции моделей: %w", err)
	}
	return d, nil
}

// GetDB возвращает экземпляр GORM
func (d *Database) GetDB() *gorm.DB {
	return d.DB
}

// Ping проверяет доступность базы
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close закрывает подключение к базе данных
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SeedAdmin создает администратора, если таблица пользователей пуста
func (d *Database) SeedAdmin(ctx context.Context, username, passwordHash string) error {
	var count int64
	if err := d.DB.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := &models.User{
		Username: username,
		Name:     "Administrator",
		Password: passwordHash,
		Role:     models.RoleAdmin,
	}
	if err := d.DB.WithContext(ctx).Create(admin).Error; err != nil {
		return err
	}
	utils.LogInfo("Seeded admin user %q", username)
	return nil
}

func dsn(cfg *config.Config) string {
	if cfg.DB.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.User,
			cfg.DB.Password,
			cfg.DB.DBName,
		)
	}
	path := cfg.DB.Path
	if path != ":memory:" && !strings.Contains(path, "?") {
		path += "?_busy_timeout=5000"
	}
	return path
}

// runMigrations выполняет SQL миграции из встроенного каталога для текущего движка
func runMigrations(cfg *config.Config) error {
	var url string
	switch cfg.DB.Driver {
	case DriverPostgres:
		url = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			cfg.DB.User,
			cfg.DB.Password,
			cfg.DB.Host,
			cfg.DB.Port,
			cfg.DB.DBName,
		)
	default:
		if cfg.DB.Path == ":memory:" {
			return nil
		}
		url = "sqlite3://" + cfg.DB.Path
	}

	src, err := iofs.New(migrationsFS, "migrations/"+cfg.DB.Driver)
	if err != nil {
		return fmt.Errorf("ошибка чтения миграций: %w", err)
	}

	// Создаем экземпляр миграции
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("ошибка создания миграции: %w", err)
	}
	defer m.Close()

	// Выполняем миграции
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка выполнения миграций: %w", err)
	}

	return nil
}

// autoMigrate выполняет автоматическую миграцию моделей
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Deposit{},
		&models.Policy{},
		&models.LaundryOrder{},
		&models.NotificationSender{},
		&models.NotificationTemplate{},
		&models.NotificationLog{},
	)
	if err != nil {
		return fmt.Errorf("ошибка автоматической миграции: %w", err)
	}

	return nil
}
