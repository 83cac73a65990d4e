package services

import (
	"context"
	"slices"
	"time"

	"foosilator/packages/core/models"

	"gorm.io/gorm"
)

const DefaultHistoryWindowDays = 14

// ProjectEloHistory rebuilds a player's rating trend line, oldest point first.
//
// deltas are the rating changes applied to the player inside the window; they may come in any
// order. The line starts at windowStart and ends at now with currentRating. A player without
// matches in the window gets a flat line of two points.
func ProjectEloHistory(currentRating float64, deltas []models.EloDelta, windowStart, now time.Time) []models.EloPoint {
	ordered := slices.Clone(deltas)
	slices.SortStableFunc(ordered, func(a, b models.EloDelta) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	points := make([]models.EloPoint, 0, len(ordered)+2)
	points = append(points, models.EloPoint{EloRating: currentRating, Date: now})

	if len(ordered) == 0 {
		points = append(points, models.EloPoint{EloRating: currentRating, Date: windowStart})
	} else {
		// The rating has been at its current value since the most recent match.
		points = append(points, models.EloPoint{EloRating: currentRating, Date: ordered[0].CreatedAt})

		rating := currentRating
		for i, delta := range ordered {
			rating -= delta.EloChange
			date := windowStart
			if i+1 < len(ordered) {
				date = ordered[i+1].CreatedAt
			}
			points = append(points, models.EloPoint{EloRating: rating, Date: date})
		}
	}

	slices.Reverse(points)
	return points
}

type EloHistoryService struct {
	db                *gorm.DB
	defaultWindowDays int
	now               func() time.Time
}

func NewEloHistoryService(db *gorm.DB, defaultWindowDays int) *EloHistoryService {
	if defaultWindowDays <= 0 {
		defaultWindowDays = DefaultHistoryWindowDays
	}
	return &EloHistoryService{
		db:                db,
		defaultWindowDays: defaultWindowDays,
		now:               time.Now,
	}
}

// WithClock replaces the clock used for "now" and the window start.
func (s *EloHistoryService) WithClock(now func() time.Time) *EloHistoryService {
	s.now = now
	return s
}

// Window returns the bounds of a lookback of windowDays ending now.
func (s *EloHistoryService) Window(windowDays int) (time.Time, time.Time) {
	if windowDays <= 0 {
		windowDays = s.defaultWindowDays
	}
	now := s.now().UTC()
	return now.AddDate(0, 0, -windowDays), now
}

// ProjectRatingHistory returns the rating trend line of one player of a league over the last windowDays.
func (s *EloHistoryService) ProjectRatingHistory(ctx context.Context, playerID, leagueID uint, windowDays int) (*models.PlayerEloSeries, error) {
	if windowDays < 0 {
		return nil, invalid("days", "must not be negative")
	}
	windowStart, now := s.Window(windowDays)
	db := s.db.WithContext(ctx)

	var player models.Player
	if err := db.Where("id = ? AND league_id = ?", playerID, leagueID).First(&player).Error; err != nil {
		return nil, lookupErr("load player", "player", playerID, err)
	}

	deltas, err := s.LoadDeltas(ctx, leagueID, &playerID, windowStart, now)
	if err != nil {
		return nil, err
	}

	return &models.PlayerEloSeries{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Color:      player.Color,
		Points:     ProjectEloHistory(player.EloRating, deltas, windowStart, now),
	}, nil
}

// ProjectLeagueHistory returns the trend lines of every active player of a league.
func (s *EloHistoryService) ProjectLeagueHistory(ctx context.Context, leagueID uint, windowDays int) ([]models.PlayerEloSeries, error) {
	if windowDays < 0 {
		return nil, invalid("days", "must not be negative")
	}
	windowStart, now := s.Window(windowDays)

	var players []models.Player
	err := s.db.WithContext(ctx).
		Where("league_id = ? AND is_active = ?", leagueID, true).
		Order("elo_rating DESC, name ASC").
		Find(&players).Error
	if err != nil {
		return nil, storeErr("load players", err)
	}

	deltas, err := s.LoadDeltas(ctx, leagueID, nil, windowStart, now)
	if err != nil {
		return nil, err
	}

	byPlayer := make(map[uint][]models.EloDelta)
	for _, d := range deltas {
		byPlayer[d.PlayerID] = append(byPlayer[d.PlayerID], d)
	}

	series := make([]models.PlayerEloSeries, 0, len(players))
	for _, p := range players {
		series = append(series, models.PlayerEloSeries{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Color:      p.Color,
			Points:     ProjectEloHistory(p.EloRating, byPlayer[p.ID], windowStart, now),
		})
	}
	return series, nil
}

// LoadDeltas returns the signed rating changes of a league's matches played in (from, to],
// most recent first, optionally limited to one player.
func (s *EloHistoryService) LoadDeltas(ctx context.Context, leagueID uint, playerID *uint, from, to time.Time) ([]models.EloDelta, error) {
	query := s.db.WithContext(ctx).
		Select("id", "winner_id", "loser_id", "winner_elo_change", "loser_elo_change", "created_at").
		Where("league_id = ? AND created_at > ? AND created_at <= ?", leagueID, from.UTC(), to.UTC())
	if playerID != nil {
		query = query.Where("winner_id = ? OR loser_id = ?", *playerID, *playerID)
	}

	var matches []models.Match
	if err := query.Order("created_at DESC, id DESC").Find(&matches).Error; err != nil {
		return nil, storeErr("load elo deltas", err)
	}

	deltas := make([]models.EloDelta, 0, 2*len(matches))
	for _, m := range matches {
		if playerID == nil || *playerID == m.WinnerID {
			deltas = append(deltas, models.EloDelta{MatchID: m.ID, PlayerID: m.WinnerID, CreatedAt: m.CreatedAt, EloChange: m.WinnerEloChange})
		}
		if playerID == nil || *playerID == m.LoserID {
			deltas = append(deltas, models.EloDelta{MatchID: m.ID, PlayerID: m.LoserID, CreatedAt: m.CreatedAt, EloChange: m.LoserEloChange})
		}
	}
	return deltas, nil
}
