package services

import (
	"context"
	"testing"
	"time"

	"foosilator/packages/core/models"
	"foosilator/packages/core/testutil"
	"foosilator/packages/core/utils"
)

func TestGetRankings(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner@example.com")
	league := testutil.CreateLeague(t, db, owner.ID, "office", 8)
	ada := testutil.CreatePlayer(t, db, league.ID, "Ada", 1000)
	bob := testutil.CreatePlayer(t, db, league.ID, "Bob", 1000)
	cy := testutil.CreatePlayer(t, db, league.ID, "Cy", 1000)
	testutil.CreatePlayer(t, db, league.ID, "Newcomer", 1000)

	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	clock := testutil.NewClock(now.Add(-48 * time.Hour))
	matches := NewMatchService(db, utils.NewEloEngine(32)).WithClock(clock.Now)
	for _, m := range []struct{ w, l *models.Player }{{ada, bob}, {ada, cy}, {bob, cy}, {ada, bob}} {
		clock.Advance(time.Hour)
		if _, err := matches.RecordMatch(ctx, league.ID, m.w.ID, m.l.ID, 4); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	history := NewEloHistoryService(db, 14).WithClock(func() time.Time { return now })
	rankings, err := NewRankingService(db, history).GetRankings(ctx, league, 0)
	if err != nil {
		t.Fatalf("rankings: %v", err)
	}

	if rankings.WindowDays != 14 {
		t.Fatalf("expected default window of 14 days, got %d", rankings.WindowDays)
	}
	if len(rankings.Standings) != 3 {
		t.Fatalf("expected players without games to be left out, got %+v", rankings.Standings)
	}
	top := rankings.Standings[0]
	if top.PlayerID != ada.ID || top.GamesWon != 3 || top.GamesLost != 0 || top.TotalGames != 3 {
		t.Fatalf("unexpected leader %+v", top)
	}
	for i := 1; i < len(rankings.Standings); i++ {
		if rankings.Standings[i].EloRating > rankings.Standings[i-1].EloRating {
			t.Fatalf("standings not ordered by rating: %+v", rankings.Standings)
		}
	}
	if len(rankings.EloSeries) != 4 {
		t.Fatalf("expected a series for every active player, got %d", len(rankings.EloSeries))
	}
	if len(rankings.Gauges) != 3 || rankings.Gauges[0].Value != 100 || rankings.Gauges[0].Title != "3/3" {
		t.Fatalf("unexpected gauges %+v", rankings.Gauges)
	}
}

func TestWinGauges(t *testing.T) {
	standings := []models.PlayerStanding{
		{Name: "A", GamesWon: 2, TotalGames: 3},
		{Name: "B", GamesWon: 1, TotalGames: 3},
		{Name: "C", GamesWon: 0, TotalGames: 0},
		{Name: "D", GamesWon: 5, TotalGames: 8},
		{Name: "E", GamesWon: 1, TotalGames: 1},
	}

	gauges := WinGauges(standings, 4)

	if len(gauges) != 4 {
		t.Fatalf("expected 4 gauges, got %d", len(gauges))
	}
	want := []float64{66.7, 33.3, 0, 62.5}
	for i, v := range want {
		if gauges[i].Value != v {
			t.Fatalf("gauge %d: expected %v, got %v", i, v, gauges[i].Value)
		}
	}
}

func TestGetLeagueStats(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, "owner@example.com")
	league := testutil.CreateLeague(t, db, owner.ID, "office", 8)
	ada := testutil.CreatePlayer(t, db, league.ID, "Ada", 1000)
	bob := testutil.CreatePlayer(t, db, league.ID, "Bob", 1000)
	gone := testutil.CreatePlayer(t, db, league.ID, "Gone", 1000)
	db.Model(gone).Update("is_active", false)

	now := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	clock := testutil.NewClock(now)
	matches := NewMatchService(db, utils.NewEloEngine(32)).WithClock(clock.Now)
	for _, daysAgo := range []int{20, 10, 9, 3, 1} {
		clock.T = now.AddDate(0, 0, -daysAgo)
		if _, err := matches.RecordMatch(ctx, league.ID, ada.ID, bob.ID, 1); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	stats, err := NewStatsService(db).WithClock(func() time.Time { return now }).GetLeagueStats(ctx, league.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := models.Stats{TotalPlayers: 2, TotalMatches: 5, MatchesLast7Days: 2, MatchesPrevious7Days: 2}
	if *stats != want {
		t.Fatalf("expected %+v, got %+v", want, *stats)
	}
}
