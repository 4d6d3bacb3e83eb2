package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenGorm connects to a relational store. driver is "postgres" or "sqlite".
func OpenGorm(driver, dsn string, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported relational driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:  newGormLogger(logger),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// A single connection keeps in-memory databases shared and serializes writers.
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	logger.Info("Relational store connected", zap.String("driver", driver))
	return gdb, nil
}

// AutoMigrate creates or updates every table used by the GORM repositories.
func AutoMigrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&auditRecord{},
		&auditCategoryRecord{},
		&checklistItemRecord{},
		&responseRecord{},
		&userRecord{},
		&activityLogRecord{},
	)
}

// NewGormRepositories wires every repository to the same database handle.
func NewGormRepositories(gdb *gorm.DB) Repositories {
	return Repositories{
		Audits:     NewGormAuditRepository(gdb),
		Checklists: NewGormChecklistRepository(gdb),
		Responses:  NewGormResponseRepository(gdb),
		Users:      NewGormUserRepository(gdb),
		Activity:   NewGormActivityLogRepository(gdb),
	}
}
