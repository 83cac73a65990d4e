package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// MaintenanceService holds the periodic housekeeping jobs.
type MaintenanceService struct {
	access *LeagueAccessService
}

func NewMaintenanceService(access *LeagueAccessService) *MaintenanceService {
	return &MaintenanceService{access: access}
}

// PurgeExpiredGrants deletes the league access grants that are past their expiry.
func (s *MaintenanceService) PurgeExpiredGrants(ctx context.Context) (int64, error) {
	start := time.Now()
	purged, err := s.access.PurgeExpired(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge expired access grants")
		return 0, err
	}

	if purged == 0 {
		log.Debug().Msg("No expired access grants")
	} else {
		log.Info().
			Int64("purged", purged).
			Dur("took", time.Since(start)).
			Msg("Expired access grants purged")
	}
	return purged, nil
}
