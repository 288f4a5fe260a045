package database

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"spendtrail/internal/config"
	"spendtrail/internal/models"
)

type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// sqlite handles one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.Category{},
		&models.Rule{},
		&models.Transaction{},
		&models.ManualOverride{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) Transaction(fn func(*gorm.DB) error) error {
	return db.DB.Transaction(fn)
}

func (db *DB) CreateIndexes() error {
	queries := []string{
		"CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_merchant_lower ON transactions(LOWER(merchant))",
		"CREATE INDEX IF NOT EXISTS idx_category_rules_category ON category_rules(category)",
		"CREATE INDEX IF NOT EXISTS idx_category_rules_seq ON category_rules(seq)",
		"CREATE INDEX IF NOT EXISTS idx_manual_overrides_transaction_id ON manual_overrides(transaction_id)",
		"CREATE INDEX IF NOT EXISTS idx_manual_overrides_created_at ON manual_overrides(created_at)",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			slog.Warn("failed to create index", "query", query, "error", err)
		}
	}

	return nil
}

// SeedDefaults installs the built-in categories and authored rules on an
// empty database. A database that already has rules is left alone.
func (db *DB) SeedDefaults() error {
	for _, name := range models.DefaultCategories() {
		var count int64
		if err := db.DB.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check category %q: %w", name, err)
		}
		if count > 0 {
			continue
		}
		if err := db.DB.Create(&models.Category{Name: name, CreatedAt: time.Now()}).Error; err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		}
	}

	var ruleCount int64
	if err := db.DB.Model(&models.Rule{}).Count(&ruleCount).Error; err != nil {
		return fmt.Errorf("failed to count rules: %w", err)
	}
	if ruleCount > 0 {
		return nil
	}

	defaults := models.DefaultRules()
	for i := range defaults {
		defaults[i].Seq = int64(i + 1)
		if err := db.DB.Create(&defaults[i]).Error; err != nil {
			return fmt.Errorf("failed to seed rule %q: %w", defaults[i].Pattern, err)
		}
	}

	slog.Info("seeded default categories and rules",
		"categories", len(models.DefaultCategories()),
		"rules", len(defaults))
	return nil
}

// Initialize creates and configures the database connection
func Initialize(cfg *config.Config) (*DB, error) {
	db, err := New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	// Get the underlying sql.DB for migration runner
	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Run SQL-based migrations using golang-migrate if enabled
	if err := RunMigrationsIfEnabled(sqlDB, cfg.Database.Driver); err != nil {
		if !errors.Is(err, ErrMigrationsDisabled) {
			slog.Warn("migration runner failed, falling back to GORM AutoMigrate", "error", err)
		}

		if err := db.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := db.CreateIndexes(); err != nil {
		slog.Warn("failed to create some indexes", "error", err)
	}

	if cfg.Rules.SeedDefaults {
		if err := db.SeedDefaults(); err != nil {
			return nil, fmt.Errorf("failed to seed defaults: %w", err)
		}
	}

	slog.Info("database initialized", "driver", cfg.Database.Driver)

	return db, nil
}
