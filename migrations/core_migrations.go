package migrations

import (
	"foosilator/packages/core/models"

	"gorm.io/gorm"
)

func GetCoreMigrations() []MigrationDefinition {
	return []MigrationDefinition{
		{
			Name: "2025_01_02_000000_create_leagues_table",
			Up: func(db *gorm.DB) error {
				return db.Migrator().CreateTable(&models.League{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.League{})
			},
		},
		{
			Name: "2025_01_03_000000_create_league_players_table",
			Up: func(db *gorm.DB) error {
				if err := db.Migrator().CreateTable(&models.Player{}); err != nil {
					return err
				}
				return db.Exec(`CREATE INDEX IF NOT EXISTS idx_league_players_league_rating ON league_players (league_id, elo_rating)`).Error
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Player{})
			},
		},
		{
			Name: "2025_01_04_000000_create_matches_table",
			Up: func(db *gorm.DB) error {
				// Also creates idx_matches_league_created, used to find the latest match of a league.
				return db.Migrator().CreateTable(&models.Match{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.Match{})
			},
		},
		{
			Name: "2025_01_05_000000_create_league_access_table",
			Up: func(db *gorm.DB) error {
				return db.Migrator().CreateTable(&models.LeagueAccessGrant{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&models.LeagueAccessGrant{})
			},
		},
	}
}
