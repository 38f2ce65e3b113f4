package database

import (
	"fmt"
	"time"

	"peymonak_backend/internal/config"
	"peymonak_backend/internal/model"
	applog "peymonak_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table owned by the service, in migration order.
func Models() []interface{} {
	return []interface{}{
		&model.Account{},
		&model.Profile{},
		&model.SampleImage{},
		&model.Ad{},
		&model.AdImage{},
		&model.AdReport{},
		&model.CooperationRequest{},
		&model.SavedAd{},
		&model.ProvinceVisit{},
		&model.SupportContact{},
	}
}

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// GormConfig 生产和测试共用，唯一约束冲突转换为 gorm.ErrDuplicatedKey
func GormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	}
}

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, GormConfig(gormLogLevel(cfg.LogLevel)))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	applog.Log.Info("Database connection established", zap.String("driver", cfg.Driver))
	return db, nil
}

// Migrate 迁移表结构，支持联系方式为空时写入默认数据
func Migrate(db *gorm.DB, contacts []config.SupportContactConfig) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var count int64
	if err := db.Model(&model.SupportContact{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 || len(contacts) == 0 {
		return nil
	}

	rows := make([]model.SupportContact, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, model.SupportContact{
			Email:        c.Email,
			TelegramLink: c.TelegramLink,
			EitaaLink:    c.EitaaLink,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("seed support contacts: %w", err)
	}
	applog.Log.Info("Seeded support contacts", zap.Int("count", len(rows)))
	return nil
}
