package migrations

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "migrations.db") + "?_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

var appTables = []string{"users", "leagues", "league_players", "matches", "league_access"}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openDB(t)
	m, err := NewDefaultMigrator(db)
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}

	pending, err := m.Pending()
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	total := len(GetAuthMigrations()) + len(GetCoreMigrations())
	if len(pending) != total {
		t.Fatalf("expected %d pending migrations, got %v", total, pending)
	}

	for range 2 {
		if err := m.Migrate(); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}

	status, err := m.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status) != total {
		t.Fatalf("expected %d applied migrations, got %d", total, len(status))
	}
	for _, applied := range status {
		if applied.Batch != 1 {
			t.Fatalf("expected all migrations in batch 1, got %+v", applied)
		}
	}
	for _, table := range appTables {
		if !db.Migrator().HasTable(table) {
			t.Fatalf("expected table %s", table)
		}
	}
	if !db.Migrator().HasIndex("league_players", "idx_league_players_league_rating") {
		t.Fatal("expected the rating index")
	}
	if pending, _ := m.Pending(); len(pending) != 0 {
		t.Fatalf("expected nothing pending, got %v", pending)
	}
}

func TestRollbackUndoesLatestBatch(t *testing.T) {
	db := openDB(t)
	m, err := NewDefaultMigrator(db)
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	if err := m.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	m.AddMigration(MigrationDefinition{
		Name: "2099_01_01_000000_create_notes_table",
		Up: func(db *gorm.DB) error {
			return db.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY)").Error
		},
		Down: func(db *gorm.DB) error {
			return db.Exec("DROP TABLE notes").Error
		},
	})
	if err := m.Migrate(); err != nil {
		t.Fatalf("migrate second batch: %v", err)
	}
	if !db.Migrator().HasTable("notes") {
		t.Fatal("expected notes table")
	}

	if err := m.Rollback(1); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if db.Migrator().HasTable("notes") {
		t.Fatal("expected notes table dropped")
	}
	if !db.Migrator().HasTable("matches") {
		t.Fatal("expected first batch untouched")
	}

	if err := m.Rollback(1); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	for _, table := range appTables {
		if db.Migrator().HasTable(table) {
			t.Fatalf("expected table %s dropped", table)
		}
	}
	status, err := m.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if len(status) != 0 {
		t.Fatalf("expected no applied migrations, got %+v", status)
	}
}

func TestRollbackWithoutDownFails(t *testing.T) {
	db := openDB(t)
	m, err := NewMigrator(db)
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	m.AddMigration(MigrationDefinition{
		Name: "irreversible",
		Up:   func(db *gorm.DB) error { return nil },
	})
	if err := m.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := m.Rollback(1); err == nil {
		t.Fatal("expected rollback to fail without a down migration")
	}
}
