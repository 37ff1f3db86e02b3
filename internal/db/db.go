package db

import (
	"fmt"
	"strings"
	"time"

	"batchbook/internal/config"
	"batchbook/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

// GormConfig returns the gorm settings shared by every database handle.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("database URL must not be empty")
	}

	gormCfg := GormConfig()
	gormCfg.PrepareStmt = true

	db, err := gorm.Open(postgres.Open(cfg.URL), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database handle is nil")
	}

	if err := migrateLegacyIngredientName(db); err != nil {
		return fmt.Errorf("migrate legacy ingredients: %w", err)
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.Batch{},
		&models.Ingredient{},
		&models.Step{},
	)
}

// migrateLegacyIngredientName folds the old ingredient_name column into
// description, which is the only ingredient text column going forward.
func migrateLegacyIngredientName(db *gorm.DB) error {
	m := db.Migrator()
	if !m.HasTable(&models.Ingredient{}) || !m.HasColumn(&models.Ingredient{}, "ingredient_name") {
		return nil
	}

	if !m.HasColumn(&models.Ingredient{}, "description") {
		return m.RenameColumn(&models.Ingredient{}, "ingredient_name", "description")
	}

	if err := db.Exec(
		"UPDATE ingredients SET description = ingredient_name WHERE (description IS NULL OR description = '') AND ingredient_name IS NOT NULL",
	).Error; err != nil {
		return err
	}
	return m.DropColumn(&models.Ingredient{}, "ingredient_name")
}

func Configure(cfg config.DatabaseConfig) (*gorm.DB, error) {
	database, err := Initialize(cfg)
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(database); err != nil {
		return nil, err
	}

	DB = database

	return database, nil
}

func MustConfigure(cfg config.DatabaseConfig) *gorm.DB {
	database, err := Configure(cfg)
	if err != nil {
		panic(err)
	}

	return database
}

func Get() *gorm.DB {
	return DB
}
