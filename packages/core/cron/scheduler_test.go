package cron

import (
	"context"
	"testing"
	"time"

	"foosilator/packages/core/models"
	"foosilator/packages/core/services"
	"foosilator/packages/core/testutil"

	"github.com/robfig/cron/v3"
	"golang.org/x/crypto/bcrypt"
)

func TestPurgeGrantsSpecParses(t *testing.T) {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	schedule, err := parser.Parse(PurgeGrantsSpec)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	from := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	if next := schedule.Next(from); !next.Equal(time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected the next top of the hour, got %v", next)
	}
}

func TestRunNowPurgesExpiredGrants(t *testing.T) {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")
	league := testutil.CreateLeague(t, db, owner.ID, "office", 8)

	now := time.Now().UTC()
	grants := []models.LeagueAccessGrant{
		{Token: "stale", LeagueID: league.ID, CreatedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(-24 * time.Hour)},
		{Token: "live", LeagueID: league.ID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
	}
	if err := db.Create(&grants).Error; err != nil {
		t.Fatalf("seed grants: %v", err)
	}

	leagues := services.NewLeagueService(db, 1000, bcrypt.MinCost)
	access := services.NewLeagueAccessService(leagues, services.NewGormAccessStore(db), time.Hour)
	scheduler := NewScheduler(services.NewMaintenanceService(access))

	scheduler.RunNow()

	var tokens []string
	if err := db.Model(&models.LeagueAccessGrant{}).Order("token").Pluck("token", &tokens).Error; err != nil {
		t.Fatalf("pluck: %v", err)
	}
	if len(tokens) != 1 || tokens[0] != "live" {
		t.Fatalf("expected only the live grant left, got %v", tokens)
	}

	store := services.NewGormAccessStore(db)
	if _, err := store.Find(context.Background(), "live"); err != nil {
		t.Fatalf("find live grant: %v", err)
	}
}

func TestStartAndStop(t *testing.T) {
	db := testutil.NewDB(t)
	leagues := services.NewLeagueService(db, 1000, bcrypt.MinCost)
	access := services.NewLeagueAccessService(leagues, services.NewGormAccessStore(db), time.Hour)
	scheduler := NewScheduler(services.NewMaintenanceService(access))

	if err := scheduler.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if entries := scheduler.cron.Entries(); len(entries) != 1 {
		t.Fatalf("expected one job, got %d", len(entries))
	}
	scheduler.Stop()
}
