package services

import (
	"context"
	"errors"
	"time"

	"foosilator/packages/core/models"
	"foosilator/packages/core/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultRecentMatches = 15

type MatchService struct {
	db     *gorm.DB
	engine utils.EloEngine
	now    func() time.Time
}

func NewMatchService(db *gorm.DB, engine utils.EloEngine) *MatchService {
	return &MatchService{
		db:     db,
		engine: engine,
		now:    time.Now,
	}
}

// WithClock replaces the clock used to timestamp new matches.
func (s *MatchService) WithClock(now func() time.Time) *MatchService {
	s.now = now
	return s
}

func (s *MatchService) GetMatch(ctx context.Context, matchID uint) (*models.Match, error) {
	var match models.Match
	err := s.db.WithContext(ctx).
		Preload("Winner").
		Preload("Loser").
		First(&match, matchID).Error
	if err != nil {
		return nil, lookupErr("get match", "match", matchID, err)
	}
	return &match, nil
}

func (s *MatchService) GetRecentMatches(ctx context.Context, leagueID uint, limit int) ([]models.Match, error) {
	if limit <= 0 {
		limit = DefaultRecentMatches
	}

	var matches []models.Match
	result := s.db.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Preload("Winner").
		Preload("Loser").
		Find(&matches)

	if result.Error != nil {
		return nil, storeErr("recent matches", result.Error)
	}

	return matches, nil
}

// RecordMatch records a win of winnerID over loserID in one transaction: both ratings are
// updated and the match row carrying the applied changes is inserted, or nothing is.
func (s *MatchService) RecordMatch(ctx context.Context, leagueID, winnerID, loserID uint, loserScore int) (*models.Match, error) {
	if err := validateMatch(winnerID, loserID, loserScore); err != nil {
		return nil, err
	}

	var match *models.Match
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		match, err = s.RecordMatchTx(tx, leagueID, winnerID, loserID, loserScore)
		return err
	})
	if err != nil {
		return nil, storeErr("record match", err)
	}

	log.Info().
		Uint("match_id", match.ID).
		Uint("league_id", leagueID).
		Uint("winner_id", winnerID).
		Uint("loser_id", loserID).
		Float64("elo_change", match.WinnerEloChange).
		Msg("Match recorded")

	return match, nil
}

// RecordMatchTx does the work of RecordMatch inside a transaction owned by the caller.
func (s *MatchService) RecordMatchTx(tx *gorm.DB, leagueID, winnerID, loserID uint, loserScore int) (*models.Match, error) {
	if err := validateMatch(winnerID, loserID, loserScore); err != nil {
		return nil, err
	}

	// Locking the league row serializes recordings and reversals within one league.
	var league models.League
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&league, leagueID).Error; err != nil {
		return nil, lookupErr("load league", "league", leagueID, err)
	}
	if !league.IsActive {
		return nil, invalid("league", "league %q is inactive", league.ShortName)
	}
	if loserScore > league.MaxScore {
		return nil, invalid("loser_score", "must be between 0 and %d", league.MaxScore)
	}

	winner, err := lockMember(tx, leagueID, winnerID)
	if err != nil {
		return nil, err
	}
	loser, err := lockMember(tx, leagueID, loserID)
	if err != nil {
		return nil, err
	}
	if !winner.IsActive || !loser.IsActive {
		return nil, invalid("player", "inactive players cannot record matches")
	}

	result, err := s.engine.Calculate(winner.EloRating, loser.EloRating)
	if err != nil {
		return nil, err
	}

	if err := tx.Model(&models.Player{}).Where("id = ?", winner.ID).Update("elo_rating", result.WinnerRating).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Player{}).Where("id = ?", loser.ID).Update("elo_rating", result.LoserRating).Error; err != nil {
		return nil, err
	}

	createdAt, err := s.nextTimestamp(tx, leagueID)
	if err != nil {
		return nil, err
	}

	match := models.Match{
		LeagueID:        leagueID,
		WinnerID:        winner.ID,
		LoserID:         loser.ID,
		WinnerScore:     league.MaxScore,
		LoserScore:      loserScore,
		WinnerEloChange: result.WinnerChange,
		LoserEloChange:  result.LoserChange,
		CreatedAt:       createdAt,
	}
	if err := tx.Create(&match).Error; err != nil {
		return nil, err
	}

	winner.EloRating = result.WinnerRating
	loser.EloRating = result.LoserRating
	match.Winner = winner
	match.Loser = loser

	return &match, nil
}

// ReverseMatch undoes the latest match of a league: the stored changes are subtracted from
// both players and the match row is deleted. Any other match is rejected with
// NotLatestMatchError, so the ratings always correspond to a real sequence of games.
func (s *MatchService) ReverseMatch(ctx context.Context, matchID uint) (*models.Match, error) {
	var reversed models.Match
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.Match
		if err := tx.First(&target, matchID).Error; err != nil {
			return lookupErr("load match", "match", matchID, err)
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&models.League{}, target.LeagueID).Error; err != nil {
			return lookupErr("load league", "league", target.LeagueID, err)
		}

		var latest models.Match
		if err := tx.Where("league_id = ?", target.LeagueID).Order("created_at DESC, id DESC").First(&latest).Error; err != nil {
			return lookupErr("load latest match", "match", matchID, err)
		}
		if latest.ID != target.ID {
			return &NotLatestMatchError{MatchID: target.ID, LatestID: latest.ID}
		}

		if err := revertRating(tx, latest.LeagueID, latest.WinnerID, latest.WinnerEloChange); err != nil {
			return err
		}
		if err := revertRating(tx, latest.LeagueID, latest.LoserID, latest.LoserEloChange); err != nil {
			return err
		}

		res := tx.Delete(&models.Match{}, latest.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return &NotFoundError{Resource: "match", ID: matchID}
		}

		reversed = latest
		return nil
	})
	if err != nil {
		return nil, storeErr("reverse match", err)
	}

	log.Info().
		Uint("match_id", reversed.ID).
		Uint("league_id", reversed.LeagueID).
		Msg("Match reversed")

	return &reversed, nil
}

func validateMatch(winnerID, loserID uint, loserScore int) error {
	if winnerID == 0 || loserID == 0 {
		return invalid("player", "winner and loser are required")
	}
	if winnerID == loserID {
		return invalid("player", "winner and loser cannot be the same player")
	}
	if loserScore < 0 {
		return invalid("loser_score", "must not be negative")
	}
	return nil
}

func lockMember(tx *gorm.DB, leagueID, playerID uint) (*models.Player, error) {
	var player models.Player
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND league_id = ?", playerID, leagueID).
		First(&player).Error
	if err != nil {
		return nil, lookupErr("load player", "player", playerID, err)
	}
	return &player, nil
}

func revertRating(tx *gorm.DB, leagueID, playerID uint, change float64) error {
	res := tx.Model(&models.Player{}).
		Where("id = ? AND league_id = ?", playerID, leagueID).
		Update("elo_rating", gorm.Expr("elo_rating - ?", change))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return &NotFoundError{Resource: "player", ID: playerID}
	}
	return nil
}

// nextTimestamp returns now, pushed past the league's latest match when the clock has not
// moved forward, so creation order and timestamp order always agree.
func (s *MatchService) nextTimestamp(tx *gorm.DB, leagueID uint) (time.Time, error) {
	now := s.now().UTC().Truncate(time.Microsecond)

	var latest models.Match
	err := tx.Where("league_id = ?", leagueID).Order("created_at DESC, id DESC").Take(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return now, nil
		}
		return time.Time{}, err
	}
	if !now.After(latest.CreatedAt) {
		now = latest.CreatedAt.UTC().Add(time.Microsecond)
	}
	return now, nil
}
