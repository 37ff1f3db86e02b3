package db

import (
	"testing"

	"batchbook/internal/config"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	sqliteDB, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), GormConfig())
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	sqlDB, err := sqliteDB.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return sqliteDB
}

func TestInitializeRequiresURL(t *testing.T) {
	t.Parallel()

	db, err := Initialize(config.DatabaseConfig{URL: ""})
	if err == nil {
		t.Fatal("expected error when database URL is empty")
	}
	if db != nil {
		t.Fatal("expected returned db handle to be nil on error")
	}
}

func TestAutoMigrateRejectsNilDatabase(t *testing.T) {
	t.Parallel()

	if err := AutoMigrate(nil); err == nil {
		t.Fatal("expected error when database handle is nil")
	}
}

func TestAutoMigrateWithSQLite(t *testing.T) {
	t.Parallel()

	sqliteDB := openSQLite(t)
	if err := AutoMigrate(sqliteDB); err != nil {
		t.Fatalf("automigrate sqlite database: %v", err)
	}
	for _, table := range []string{"users", "recipes", "batches", "ingredients", "steps"} {
		if !sqliteDB.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestAutoMigrateRenamesLegacyIngredientName(t *testing.T) {
	t.Parallel()

	sqliteDB := openSQLite(t)
	if err := sqliteDB.Exec(`CREATE TABLE ingredients (
		id varchar(36) PRIMARY KEY,
		batch_id varchar(36) NOT NULL,
		ingredient_name text,
		amount real,
		unit text
	)`).Error; err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	if err := sqliteDB.Exec(`INSERT INTO ingredients (id, batch_id, ingredient_name) VALUES ('i1', 'b1', '2 cups flour')`).Error; err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	if err := AutoMigrate(sqliteDB); err != nil {
		t.Fatalf("automigrate sqlite database: %v", err)
	}

	if sqliteDB.Migrator().HasColumn("ingredients", "ingredient_name") {
		t.Fatal("expected ingredient_name column to be gone")
	}
	var description string
	if err := sqliteDB.Raw(`SELECT description FROM ingredients WHERE id = 'i1'`).Scan(&description).Error; err != nil {
		t.Fatalf("read description: %v", err)
	}
	if description != "2 cups flour" {
		t.Fatalf("description = %q, want %q", description, "2 cups flour")
	}
}

func TestAutoMigrateCopiesLegacyIngredientNameIntoDescription(t *testing.T) {
	t.Parallel()

	sqliteDB := openSQLite(t)
	if err := sqliteDB.Exec(`CREATE TABLE ingredients (
		id varchar(36) PRIMARY KEY,
		batch_id varchar(36) NOT NULL,
		ingredient_name text,
		description text
	)`).Error; err != nil {
		t.Fatalf("create legacy table: %v", err)
	}
	if err := sqliteDB.Exec(`INSERT INTO ingredients (id, batch_id, ingredient_name, description) VALUES ('i1', 'b1', 'salt', ''), ('i2', 'b1', 'old', 'kept')`).Error; err != nil {
		t.Fatalf("seed legacy rows: %v", err)
	}

	if err := AutoMigrate(sqliteDB); err != nil {
		t.Fatalf("automigrate sqlite database: %v", err)
	}

	var rows []struct {
		ID          string
		Description string
	}
	if err := sqliteDB.Raw(`SELECT id, description FROM ingredients ORDER BY id`).Scan(&rows).Error; err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 || rows[0].Description != "salt" || rows[1].Description != "kept" {
		t.Fatalf("rows = %+v, want salt then kept", rows)
	}
}

func TestConfigurePropagatesInitializationError(t *testing.T) {
	t.Parallel()

	if _, err := Configure(config.DatabaseConfig{}); err == nil {
		t.Fatal("expected configuration error when initialize fails")
	}
}

func TestMustConfigurePanicsOnError(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic when configuration fails")
		}
	}()

	MustConfigure(config.DatabaseConfig{})
}
