package migrations

import (
	authModels "foosilator/packages/auth/models"

	"gorm.io/gorm"
)

func GetAuthMigrations() []MigrationDefinition {
	return []MigrationDefinition{
		{
			Name: "2025_01_01_000000_create_users_table",
			Up: func(db *gorm.DB) error {
				return db.Migrator().CreateTable(&authModels.User{})
			},
			Down: func(db *gorm.DB) error {
				return db.Migrator().DropTable(&authModels.User{})
			},
		},
	}
}
