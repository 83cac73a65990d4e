// Package testutil opens migrated SQLite databases and seeds them for tests.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"foosilator/migrations"
	authModels "foosilator/packages/auth/models"
	"foosilator/packages/core/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a fresh database with every migration applied.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// One connection: SQLite has a single writer anyway.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	migrator, err := migrations.NewDefaultMigrator(db)
	if err != nil {
		t.Fatalf("migrator: %v", err)
	}
	if err := migrator.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, email string, roles ...string) *authModels.User {
	t.Helper()
	if len(roles) == 0 {
		roles = []string{authModels.RoleUser}
	}
	user := &authModels.User{
		Email:    email,
		Username: email,
		Password: "x",
		Enabled:  true,
		Roles:    roles,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func CreateLeague(t testing.TB, db *gorm.DB, ownerID uint, shortName string, maxScore int) *models.League {
	t.Helper()
	league := &models.League{
		Name:      shortName,
		ShortName: shortName,
		MaxScore:  maxScore,
		OwnerID:   ownerID,
		IsActive:  true,
	}
	if err := db.Create(league).Error; err != nil {
		t.Fatalf("create league: %v", err)
	}
	return league
}

func CreatePlayer(t testing.TB, db *gorm.DB, leagueID uint, name string, rating float64) *models.Player {
	t.Helper()
	player := &models.Player{
		LeagueID:  leagueID,
		Name:      name,
		Color:     "#112233",
		EloRating: rating,
		IsActive:  true,
	}
	if err := db.Create(player).Error; err != nil {
		t.Fatalf("create player: %v", err)
	}
	return player
}

// Rating reads the stored rating of a player.
func Rating(t testing.TB, db *gorm.DB, playerID uint) float64 {
	t.Helper()
	var player models.Player
	if err := db.First(&player, playerID).Error; err != nil {
		t.Fatalf("load player %d: %v", playerID, err)
	}
	return player.EloRating
}

// Clock is a manually advanced time source.
type Clock struct {
	T time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{T: t.UTC()}
}

func (c *Clock) Now() time.Time {
	return c.T
}

func (c *Clock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}
