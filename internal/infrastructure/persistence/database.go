package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/operatingunit/internal/infrastructure/config"
	"github.com/erp/operatingunit/internal/infrastructure/logger"
	"github.com/erp/operatingunit/internal/infrastructure/migration"
	"github.com/erp/operatingunit/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB     *gorm.DB
	Driver string
	log    *zap.Logger
}

// NewDatabase opens the configured database, logging SQL through zapLogger
// at level.
func NewDatabase(cfg *config.DatabaseConfig, zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...logger.GormLoggerOption) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	case config.DriverPostgres, "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, level, opts...),
		SkipDefaultTransaction: true,
		PrepareStmt:            cfg.Driver != config.DriverSQLite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// one writer at a time; also keeps ":memory:" on a single connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, Driver: cfg.Driver, log: zapLogger}, nil
}

// Migrate brings the catalogue tables up to date. PostgreSQL applies the
// versioned migrations; SQLite derives its tables from the row models.
func (d *Database) Migrate(ctx context.Context) error {
	if d.Driver == config.DriverSQLite {
		if err := d.DB.WithContext(ctx).AutoMigrate(models.Rows()...); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
		return nil
	}

	m, err := d.Migrator(ctx)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up()
}

// Migrator opens the versioned migrations of a PostgreSQL database
func (d *Database) Migrator(ctx context.Context) (*migration.Migrator, error) {
	if d.Driver == config.DriverSQLite {
		return nil, fmt.Errorf("versioned migrations require postgres, not %s", d.Driver)
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	log := d.log
	if log == nil {
		log = zap.NewNop()
	}
	return migration.New(ctx, sqlDB, log)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Transaction executes fn within a database transaction
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}
