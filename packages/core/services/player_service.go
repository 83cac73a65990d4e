package services

import (
	"context"
	"regexp"
	"strings"

	"foosilator/packages/core/models"
	"foosilator/packages/core/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type PlayerService struct {
	db            *gorm.DB
	defaultRating float64
}

func NewPlayerService(db *gorm.DB, defaultRating float64) *PlayerService {
	if defaultRating == 0 {
		defaultRating = utils.DefaultRating
	}
	return &PlayerService{
		db:            db,
		defaultRating: defaultRating,
	}
}

func (s *PlayerService) GetPlayer(ctx context.Context, leagueID, playerID uint) (*models.Player, error) {
	var player models.Player
	err := s.db.WithContext(ctx).
		Where("id = ? AND league_id = ?", playerID, leagueID).
		First(&player).Error
	if err != nil {
		return nil, lookupErr("get player", "player", playerID, err)
	}
	return &player, nil
}

// ListPlayers returns the players of a league split by their active flag, ordered by name.
func (s *PlayerService) ListPlayers(ctx context.Context, leagueID uint) (*models.PlayersResponse, error) {
	var players []models.Player
	err := s.db.WithContext(ctx).
		Where("league_id = ?", leagueID).
		Order("name ASC, id ASC").
		Find(&players).Error
	if err != nil {
		return nil, storeErr("list players", err)
	}

	response := &models.PlayersResponse{
		Active:   []models.Player{},
		Inactive: []models.Player{},
	}
	for _, p := range players {
		if p.IsActive {
			response.Active = append(response.Active, p)
		} else {
			response.Inactive = append(response.Inactive, p)
		}
	}
	return response, nil
}

// CreatePlayer adds a player to a league. A newcomer starts at the rounded average rating of the
// league, or at the default rating when the league is empty.
func (s *PlayerService) CreatePlayer(ctx context.Context, leagueID uint, name, color string) (*models.Player, error) {
	name, color, err := validatePlayer(name, color)
	if err != nil {
		return nil, err
	}

	var player models.Player
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&models.League{}, leagueID).Error; err != nil {
			return lookupErr("load league", "league", leagueID, err)
		}

		var ratings []float64
		if err := tx.Model(&models.Player{}).Where("league_id = ?", leagueID).Pluck("elo_rating", &ratings).Error; err != nil {
			return err
		}

		player = models.Player{
			LeagueID:  leagueID,
			Name:      name,
			Color:     color,
			EloRating: utils.AverageRating(ratings, s.defaultRating),
			IsActive:  true,
		}
		return tx.Create(&player).Error
	})
	if err != nil {
		return nil, storeErr("create player", err)
	}

	log.Info().
		Uint("player_id", player.ID).
		Uint("league_id", leagueID).
		Float64("elo_rating", player.EloRating).
		Msg("Player created")

	return &player, nil
}

func (s *PlayerService) UpdatePlayer(ctx context.Context, leagueID, playerID uint, name, color string) (*models.Player, error) {
	name, color, err := validatePlayer(name, color)
	if err != nil {
		return nil, err
	}

	player, err := s.GetPlayer(ctx, leagueID, playerID)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Model(player).Updates(map[string]any{
		"name":  name,
		"color": color,
	}).Error
	if err != nil {
		return nil, storeErr("update player", err)
	}
	return player, nil
}

// SetPlayerActive deactivates or reactivates a player. Players are never hard deleted because
// matches keep referencing them.
func (s *PlayerService) SetPlayerActive(ctx context.Context, leagueID, playerID uint, active bool) (*models.Player, error) {
	player, err := s.GetPlayer(ctx, leagueID, playerID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(player).Update("is_active", active).Error; err != nil {
		return nil, storeErr("set player active", err)
	}
	return player, nil
}

func validatePlayer(name, color string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", invalid("name", "is required")
	}
	if len(name) > 255 {
		return "", "", invalid("name", "must be at most 255 characters")
	}
	color = strings.TrimSpace(color)
	if !colorPattern.MatchString(color) {
		return "", "", invalid("color", "must be a hex color like #1a2b3c")
	}
	return name, strings.ToLower(color), nil
}
