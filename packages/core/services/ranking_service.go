package services

import (
	"context"
	"fmt"
	"math"

	"foosilator/packages/core/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const gaugeCount = 4

type RankingService struct {
	db      *gorm.DB
	history *EloHistoryService
}

func NewRankingService(db *gorm.DB, history *EloHistoryService) *RankingService {
	return &RankingService{
		db:      db,
		history: history,
	}
}

// GetStandings returns the active players of a league who played at least one game, best rating first.
func (s *RankingService) GetStandings(ctx context.Context, leagueID uint) ([]models.PlayerStanding, error) {
	var standings []models.PlayerStanding
	err := s.db.WithContext(ctx).Raw(`
		SELECT p.id AS player_id, p.name, p.color, p.elo_rating,
			COALESCE(w.games, 0) AS games_won,
			COALESCE(l.games, 0) AS games_lost,
			COALESCE(w.games, 0) + COALESCE(l.games, 0) AS total_games
		FROM league_players p
		LEFT JOIN (SELECT winner_id AS player_id, COUNT(*) AS games FROM matches WHERE league_id = ? GROUP BY winner_id) w
			ON w.player_id = p.id
		LEFT JOIN (SELECT loser_id AS player_id, COUNT(*) AS games FROM matches WHERE league_id = ? GROUP BY loser_id) l
			ON l.player_id = p.id
		WHERE p.league_id = ? AND p.is_active = ?
			AND COALESCE(w.games, 0) + COALESCE(l.games, 0) > 0
		ORDER BY p.elo_rating DESC, p.name ASC`,
		leagueID, leagueID, leagueID, true,
	).Scan(&standings).Error
	if err != nil {
		return nil, storeErr("load standings", err)
	}
	if standings == nil {
		standings = []models.PlayerStanding{}
	}
	return standings, nil
}

// GetRankings builds the rankings page of a league: standings, rating history of every active
// player over windowDays and win ratio gauges for the top players.
func (s *RankingService) GetRankings(ctx context.Context, league *models.League, windowDays int) (*models.Rankings, error) {
	if windowDays <= 0 {
		windowDays = s.history.defaultWindowDays
	}

	var (
		standings []models.PlayerStanding
		series    []models.PlayerEloSeries
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		standings, err = s.GetStandings(gctx, league.ID)
		return err
	})
	g.Go(func() error {
		var err error
		series, err = s.history.ProjectLeagueHistory(gctx, league.ID, windowDays)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &models.Rankings{
		League:     *league,
		WindowDays: windowDays,
		Standings:  standings,
		EloSeries:  series,
		Gauges:     WinGauges(standings, gaugeCount),
	}, nil
}

// WinGauges returns the win percentage of the first n standings.
func WinGauges(standings []models.PlayerStanding, n int) []models.WinGauge {
	gauges := make([]models.WinGauge, 0, n)
	for i, st := range standings {
		if i == n {
			break
		}
		value := 0.0
		if st.TotalGames > 0 {
			value = math.Round(float64(st.GamesWon)/float64(st.TotalGames)*1000) / 10
		}
		gauges = append(gauges, models.WinGauge{
			Name:  st.Name,
			Color: st.Color,
			Title: fmt.Sprintf("%d/%d", st.GamesWon, st.TotalGames),
			Value: value,
		})
	}
	return gauges
}
