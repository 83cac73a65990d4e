package services

import (
	"context"
	"time"

	"foosilator/packages/core/models"

	"gorm.io/gorm"
)

type StatsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{
		db:  db,
		now: time.Now,
	}
}

func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// GetLeagueStats counts the active players and the matches of a league, with the activity of
// the last seven days compared to the seven days before.
func (s *StatsService) GetLeagueStats(ctx context.Context, leagueID uint) (*models.Stats, error) {
	db := s.db.WithContext(ctx)
	var stats models.Stats

	if err := db.Model(&models.Player{}).
		Where("league_id = ? AND is_active = ?", leagueID, true).
		Count(&stats.TotalPlayers).Error; err != nil {
		return nil, storeErr("count players", err)
	}

	if err := db.Model(&models.Match{}).
		Where("league_id = ?", leagueID).
		Count(&stats.TotalMatches).Error; err != nil {
		return nil, storeErr("count matches", err)
	}

	now := s.now().UTC()
	last7DaysStart := now.AddDate(0, 0, -7)
	previous7DaysStart := now.AddDate(0, 0, -14)

	if err := db.Model(&models.Match{}).
		Where("league_id = ? AND created_at >= ?", leagueID, last7DaysStart).
		Count(&stats.MatchesLast7Days).Error; err != nil {
		return nil, storeErr("count recent matches", err)
	}

	// 7 to 14 days ago
	if err := db.Model(&models.Match{}).
		Where("league_id = ? AND created_at >= ? AND created_at < ?", leagueID, previous7DaysStart, last7DaysStart).
		Count(&stats.MatchesPrevious7Days).Error; err != nil {
		return nil, storeErr("count previous matches", err)
	}

	return &stats, nil
}
