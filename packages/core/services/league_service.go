package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"foosilator/packages/core/models"
	"foosilator/packages/core/utils"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultMaxScore = 8

var shortNamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

type LeagueService struct {
	db            *gorm.DB
	defaultRating float64
	bcryptCost    int
}

func NewLeagueService(db *gorm.DB, defaultRating float64, bcryptCost int) *LeagueService {
	if defaultRating == 0 {
		defaultRating = utils.DefaultRating
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &LeagueService{
		db:            db,
		defaultRating: defaultRating,
		bcryptCost:    bcryptCost,
	}
}

func (s *LeagueService) GetLeague(ctx context.Context, id uint) (*models.League, error) {
	var league models.League
	if err := s.db.WithContext(ctx).First(&league, id).Error; err != nil {
		return nil, lookupErr("get league", "league", id, err)
	}
	return &league, nil
}

func (s *LeagueService) GetLeagueByShortName(ctx context.Context, shortName string) (*models.League, error) {
	var league models.League
	err := s.db.WithContext(ctx).Where("short_name = ?", shortName).First(&league).Error
	if err != nil {
		return nil, lookupErr("get league", "league", shortName, err)
	}
	return &league, nil
}

// ListOwnedLeagues returns the leagues of an owner split by their active flag, newest first.
func (s *LeagueService) ListOwnedLeagues(ctx context.Context, ownerID uint) (*models.OwnedLeaguesResponse, error) {
	var leagues []models.League
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&leagues).Error
	if err != nil {
		return nil, storeErr("list leagues", err)
	}

	response := &models.OwnedLeaguesResponse{
		Active:   []models.League{},
		Inactive: []models.League{},
	}
	for _, l := range leagues {
		if l.IsActive {
			response.Active = append(response.Active, l)
		} else {
			response.Inactive = append(response.Inactive, l)
		}
	}
	return response, nil
}

func (s *LeagueService) CreateLeague(ctx context.Context, ownerID uint, req models.CreateLeagueRequest) (*models.League, error) {
	if ownerID == 0 {
		return nil, invalid("owner_id", "is required")
	}
	if req.MaxScore == 0 {
		req.MaxScore = DefaultMaxScore
	}
	name, shortName, err := validateLeague(req.Name, req.ShortName, req.MaxScore)
	if err != nil {
		return nil, err
	}

	league := models.League{
		Name:      name,
		ShortName: shortName,
		MaxScore:  req.MaxScore,
		OwnerID:   ownerID,
		IsActive:  true,
	}
	if req.Password != "" {
		hash, err := s.hashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		league.PasswordHash = &hash
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureShortNameFree(tx, shortName, 0); err != nil {
			return err
		}
		return tx.Create(&league).Error
	})
	if err != nil {
		return nil, storeErr("create league", err)
	}
	league.HasPassword = league.PasswordHash != nil

	log.Info().
		Uint("league_id", league.ID).
		Str("short_name", league.ShortName).
		Uint("owner_id", ownerID).
		Msg("League created")

	return &league, nil
}

func (s *LeagueService) UpdateLeague(ctx context.Context, id uint, req models.UpdateLeagueRequest) (*models.League, error) {
	name, shortName, err := validateLeague(req.Name, req.ShortName, req.MaxScore)
	if err != nil {
		return nil, err
	}

	var league models.League
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&league, id).Error; err != nil {
			return lookupErr("load league", "league", id, err)
		}
		if err := ensureShortNameFree(tx, shortName, id); err != nil {
			return err
		}
		league.Name = name
		league.ShortName = shortName
		league.MaxScore = req.MaxScore
		return tx.Model(&league).Updates(map[string]any{
			"name":       name,
			"short_name": shortName,
			"max_score":  req.MaxScore,
		}).Error
	})
	if err != nil {
		return nil, storeErr("update league", err)
	}
	return &league, nil
}

// SetActive deactivates or reactivates a league. Inactive leagues keep their data but accept no new matches.
func (s *LeagueService) SetActive(ctx context.Context, id uint, active bool) (*models.League, error) {
	league, err := s.GetLeague(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(league).Update("is_active", active).Error; err != nil {
		return nil, storeErr("set league active", err)
	}
	return league, nil
}

// ChangePassword sets, replaces or removes the read password of a league. The current password
// must be supplied whenever one is set.
func (s *LeagueService) ChangePassword(ctx context.Context, id uint, req models.ChangeLeaguePasswordRequest) (*models.League, error) {
	league, err := s.GetLeague(ctx, id)
	if err != nil {
		return nil, err
	}

	if league.PasswordHash != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(*league.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return nil, ErrInvalidPassword
		}
	}

	var hash *string
	if !req.RemovePassword {
		if strings.TrimSpace(req.NewPassword) == "" {
			return nil, invalid("new_password", "is required")
		}
		if req.NewPassword != req.NewPasswordConfirm {
			return nil, invalid("new_password_confirm", "passwords do not match")
		}
		h, err := s.hashPassword(req.NewPassword)
		if err != nil {
			return nil, err
		}
		hash = &h
	}

	if err := s.db.WithContext(ctx).Model(league).Update("password", hash).Error; err != nil {
		return nil, storeErr("change league password", err)
	}
	league.PasswordHash = hash
	league.HasPassword = hash != nil

	log.Info().Uint("league_id", league.ID).Bool("has_password", league.HasPassword).Msg("League password changed")
	return league, nil
}

// VerifyPassword checks a visitor supplied password against the league hash.
func (s *LeagueService) VerifyPassword(league *models.League, password string) error {
	if league.PasswordHash == nil {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*league.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

func (s *LeagueService) TransferOwnership(ctx context.Context, id, newOwnerID uint) (*models.League, error) {
	if newOwnerID == 0 {
		return nil, invalid("owner_id", "is required")
	}
	league, err := s.GetLeague(ctx, id)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Table("users").Where("id = ?", newOwnerID).Count(&count).Error; err != nil {
		return nil, storeErr("load user", err)
	}
	if count == 0 {
		return nil, &NotFoundError{Resource: "user", ID: newOwnerID}
	}

	if err := s.db.WithContext(ctx).Model(league).Update("owner_id", newOwnerID).Error; err != nil {
		return nil, storeErr("transfer league", err)
	}

	log.Info().Uint("league_id", league.ID).Uint("owner_id", newOwnerID).Msg("League ownership transferred")
	return league, nil
}

// ResetLeague deletes every match of a league and puts all its players back at the default
// rating. confirmShortName must repeat the league short name.
func (s *LeagueService) ResetLeague(ctx context.Context, id uint, confirmShortName string) error {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var league models.League
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&league, id).Error; err != nil {
			return lookupErr("load league", "league", id, err)
		}
		if confirmShortName != league.ShortName {
			return invalid("short_name", "confirmation does not match the league short name")
		}

		res := tx.Where("league_id = ?", id).Delete(&models.Match{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected

		return tx.Model(&models.Player{}).
			Where("league_id = ?", id).
			Update("elo_rating", s.defaultRating).Error
	})
	if err != nil {
		return storeErr("reset league", err)
	}

	log.Warn().Uint("league_id", id).Int64("matches_deleted", deleted).Msg("League reset")
	return nil
}

// CheckOwner returns ErrForbidden unless userID owns the league or is an admin.
func (s *LeagueService) CheckOwner(league *models.League, userID uint, isAdmin bool) error {
	if isAdmin || (userID != 0 && league.OwnerID == userID) {
		return nil
	}
	return ErrForbidden
}

func (s *LeagueService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", invalid("password", "must be at most 72 bytes")
		}
		return "", storeErr("hash password", err)
	}
	return string(hash), nil
}

func validateLeague(name, shortName string, maxScore int) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", invalid("name", "is required")
	}
	shortName = strings.TrimSpace(shortName)
	if !shortNamePattern.MatchString(shortName) {
		return "", "", invalid("short_name", "must contain only lower-case letters, digits and dashes")
	}
	if len(shortName) > 64 {
		return "", "", invalid("short_name", "must be at most 64 characters")
	}
	if maxScore < 1 {
		return "", "", invalid("max_score", "must be at least 1")
	}
	return name, shortName, nil
}

func ensureShortNameFree(tx *gorm.DB, shortName string, exceptID uint) error {
	var count int64
	err := tx.Model(&models.League{}).
		Where("short_name = ? AND id <> ?", shortName, exceptID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return invalid("short_name", "%q is already taken", shortName)
	}
	return nil
}
