package database

import (
	"context"
	"fmt"
	"time"

	"telemed-chat/config"
	"telemed-chat/internal/domain/message"
	"telemed-chat/internal/domain/room"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Connect opens the database selected by cfg.DBDriver and applies the
// connection pool settings.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DBSQLitePath)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}

	logLevel := gormlogger.Info
	if cfg.AppMode == "release" {
		logLevel = gormlogger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get generic database object: %w", err)
	}

	if cfg.DBDriver == DriverSQLite {
		// sqlite allows one writer; serialize through a single connection.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// models lists the chat tables in creation order.
func models() []interface{} {
	return []interface{}{
		&room.ChatRoom{},
		&room.Participant{},
		&message.ChatMessage{},
	}
}

// Migrate creates or updates the chat tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Reset drops every chat table and migrates again.
func Reset(db *gorm.DB) error {
	m := models()
	for i := len(m) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(m[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return Migrate(db)
}

// TableStatus reports whether a chat table exists and how many rows it has.
type TableStatus struct {
	Name   string
	Exists bool
	Rows   int64
}

func Status(ctx context.Context, db *gorm.DB) ([]TableStatus, error) {
	var out []TableStatus
	for _, model := range models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model: %w", err)
		}
		status := TableStatus{Name: stmt.Schema.Table, Exists: db.Migrator().HasTable(model)}
		if status.Exists {
			if err := db.WithContext(ctx).Model(model).Count(&status.Rows).Error; err != nil {
				return nil, fmt.Errorf("failed to count %s: %w", status.Name, err)
			}
		}
		out = append(out, status)
	}
	return out, nil
}

func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
