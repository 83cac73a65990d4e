package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"foosilator/packages/core/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const DefaultLeagueAccessTTL = 24 * time.Hour

// AccessStore persists league access grants.
type AccessStore interface {
	Save(ctx context.Context, grant *models.LeagueAccessGrant) error
	// Find returns a NotFoundError when the token is unknown.
	Find(ctx context.Context, token string) (*models.LeagueAccessGrant, error)
	Delete(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type GormAccessStore struct {
	db *gorm.DB
}

func NewGormAccessStore(db *gorm.DB) *GormAccessStore {
	return &GormAccessStore{db: db}
}

func (s *GormAccessStore) Save(ctx context.Context, grant *models.LeagueAccessGrant) error {
	return storeErr("save access grant", s.db.WithContext(ctx).Create(grant).Error)
}

func (s *GormAccessStore) Find(ctx context.Context, token string) (*models.LeagueAccessGrant, error) {
	var grant models.LeagueAccessGrant
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&grant).Error; err != nil {
		return nil, lookupErr("find access grant", "access grant", nil, err)
	}
	return &grant, nil
}

func (s *GormAccessStore) Delete(ctx context.Context, token string) error {
	return storeErr("delete access grant", s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.LeagueAccessGrant{}).Error)
}

func (s *GormAccessStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&models.LeagueAccessGrant{})
	if res.Error != nil {
		return 0, storeErr("purge access grants", res.Error)
	}
	return res.RowsAffected, nil
}

// RedisAccessStore keeps grants as JSON values whose key TTL matches the grant expiry.
type RedisAccessStore struct {
	client *redis.Client
	prefix string
}

func NewRedisAccessStore(client *redis.Client) *RedisAccessStore {
	return &RedisAccessStore{client: client, prefix: "league_access:"}
}

func (s *RedisAccessStore) Save(ctx context.Context, grant *models.LeagueAccessGrant) error {
	ttl := grant.ExpiresAt.Sub(grant.CreatedAt)
	if ttl <= 0 {
		return invalid("expires_at", "grant is already expired")
	}
	payload, err := json.Marshal(grant)
	if err != nil {
		return storeErr("encode access grant", err)
	}
	return storeErr("save access grant", s.client.Set(ctx, s.prefix+grant.Token, payload, ttl).Err())
}

func (s *RedisAccessStore) Find(ctx context.Context, token string) (*models.LeagueAccessGrant, error) {
	payload, err := s.client.Get(ctx, s.prefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, &NotFoundError{Resource: "access grant"}
		}
		return nil, storeErr("find access grant", err)
	}
	var grant models.LeagueAccessGrant
	if err := json.Unmarshal(payload, &grant); err != nil {
		return nil, storeErr("decode access grant", err)
	}
	return &grant, nil
}

func (s *RedisAccessStore) Delete(ctx context.Context, token string) error {
	return storeErr("delete access grant", s.client.Del(ctx, s.prefix+token).Err())
}

// PurgeExpired is a no-op, redis expires the keys itself.
func (s *RedisAccessStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

type LeagueAccessService struct {
	leagues *LeagueService
	store   AccessStore
	ttl     time.Duration
	now     func() time.Time
}

func NewLeagueAccessService(leagues *LeagueService, store AccessStore, ttl time.Duration) *LeagueAccessService {
	if ttl <= 0 {
		ttl = DefaultLeagueAccessTTL
	}
	return &LeagueAccessService{
		leagues: leagues,
		store:   store,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *LeagueAccessService) WithClock(now func() time.Time) *LeagueAccessService {
	s.now = now
	return s
}

func (s *LeagueAccessService) TTL() time.Duration {
	return s.ttl
}

// GrantAccess checks the league password and stores a new grant valid for the configured TTL.
func (s *LeagueAccessService) GrantAccess(ctx context.Context, shortName, password string) (*models.LeagueAccessGrant, error) {
	league, err := s.leagues.GetLeagueByShortName(ctx, shortName)
	if err != nil {
		return nil, err
	}
	if err := s.leagues.VerifyPassword(league, password); err != nil {
		log.Warn().Str("league", shortName).Msg("Invalid league password")
		return nil, err
	}

	now := s.now().UTC()
	grant := &models.LeagueAccessGrant{
		Token:     uuid.NewString(),
		LeagueID:  league.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.store.Save(ctx, grant); err != nil {
		return nil, err
	}
	return grant, nil
}

// CheckAccess returns ErrAccessRequired unless the league is public or token holds a live grant for it.
// Expired grants are deleted when seen.
func (s *LeagueAccessService) CheckAccess(ctx context.Context, league *models.League, token string) error {
	if league.PasswordHash == nil {
		return nil
	}
	if token == "" {
		return ErrAccessRequired
	}

	grant, err := s.store.Find(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrAccessRequired
		}
		return err
	}
	if grant.IsExpired(s.now()) {
		if err := s.store.Delete(ctx, token); err != nil {
			log.Error().Err(err).Msg("Failed to delete expired access grant")
		}
		return ErrAccessRequired
	}
	if grant.LeagueID != league.ID {
		return ErrAccessRequired
	}
	return nil
}

// PurgeExpired removes the grants that expired before now.
func (s *LeagueAccessService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.PurgeExpired(ctx, s.now())
}
