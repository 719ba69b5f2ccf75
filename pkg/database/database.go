package database

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/warbler/config"
	"github.com/d60-Lab/warbler/internal/model"
	"github.com/d60-Lab/warbler/pkg/logger"
)

// InitDB 按配置连接数据库并完成迁移
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	logger.Info("database ready", zap.String("driver", cfg.Database.Driver))
	return db, nil
}

// Open 打开连接并设置连接池；sqlite 内存库强制单连接，否则每个连接各是一份独立的库
func Open(dc config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dc.Driver {
	case "postgres":
		dialector = postgres.Open(dc.DSN)
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(dc.DSN))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dc.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel(dc.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dc.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if dc.Driver == "sqlite" {
		if strings.Contains(dc.DSN, ":memory:") || strings.Contains(dc.DSN, "mode=memory") {
			sqlDB.SetMaxOpenConns(1)
		}
	} else {
		if dc.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(dc.MaxOpenConns)
		}
		if dc.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(dc.MaxIdleConns)
		}
		if dc.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(dc.ConnMaxLifetime)
		}
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s: %w", dc.Driver, err)
	}
	return db, nil
}

// sqliteDSN 通过 DSN 参数开启外键，连接池里每个新连接都生效
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// OpenMemory 测试用：独立的 sqlite 内存库，已迁移
func OpenMemory() (*gorm.DB, error) {
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:", LogLevel: "silent"})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate 初始化表结构，users 必须先于依赖它的表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Message{}, &model.Follow{}, &model.Like{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping 用于健康检查
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func logLevel(s string) gormlogger.LogLevel {
	switch s {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	}
	return gormlogger.Warn
}
