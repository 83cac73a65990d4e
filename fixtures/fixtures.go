package fixtures

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	authModels "foosilator/packages/auth/models"
	authUtils "foosilator/packages/auth/utils"
	"foosilator/packages/core/models"
	"foosilator/packages/core/services"
	coreUtils "foosilator/packages/core/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	OwnerEmail     = "owner@foosilator.local"
	OwnerPassword  = "password123"
	DemoShortName  = "demo"
	DemoMatchCount = 60
	demoDays       = 30
)

var demoPlayers = []struct {
	name  string
	color string
	skill float64
}{
	{"Alexandre", "#e6194b", 1.30},
	{"Marie", "#3cb44b", 1.15},
	{"Julien", "#ffe119", 1.00},
	{"Sophie", "#4363d8", 1.25},
	{"Thomas", "#f58231", 0.85},
	{"Camille", "#911eb4", 0.95},
	{"Nicolas", "#46f0f0", 0.80},
	{"Laura", "#f032e6", 1.05},
}

type Fixtures struct {
	db            *gorm.DB
	engine        coreUtils.EloEngine
	defaultRating float64
	now           func() time.Time
	rng           *rand.Rand
}

func NewFixtures(db *gorm.DB, engine coreUtils.EloEngine, defaultRating float64) *Fixtures {
	return &Fixtures{
		db:            db,
		engine:        engine,
		defaultRating: defaultRating,
		now:           time.Now,
		rng:           rand.New(rand.NewPCG(2024, 8)), // #nosec G404 -- demo data only
	}
}

// GenerateTestData creates an owner, a demo league with eight players and plays a month of
// matches through the match service so every rating and history point is consistent.
func (f *Fixtures) GenerateTestData(ctx context.Context) error {
	log.Info().Msg("Starting fixtures generation")

	owner, err := f.generateOwner(ctx)
	if err != nil {
		return fmt.Errorf("failed to generate owner: %w", err)
	}

	leagues := services.NewLeagueService(f.db, f.defaultRating, 0)
	league, err := leagues.CreateLeague(ctx, owner.ID, models.CreateLeagueRequest{
		Name:      "Demo League",
		ShortName: DemoShortName,
		MaxScore:  services.DefaultMaxScore,
	})
	if err != nil {
		return fmt.Errorf("failed to create league: %w", err)
	}

	players, err := f.generatePlayers(ctx, league.ID)
	if err != nil {
		return fmt.Errorf("failed to generate players: %w", err)
	}

	matches, err := f.generateMatches(ctx, league, players)
	if err != nil {
		return fmt.Errorf("failed to generate matches: %w", err)
	}

	log.Info().
		Str("owner", owner.Email).
		Str("league", league.ShortName).
		Int("players", len(players)).
		Int("matches", matches).
		Msg("Fixtures generated")
	return nil
}

func (f *Fixtures) generateOwner(ctx context.Context) (*authModels.User, error) {
	hashed, err := authUtils.HashPassword(OwnerPassword, 0)
	if err != nil {
		return nil, err
	}
	user := authModels.User{
		Email:    OwnerEmail,
		Username: "owner",
		Password: hashed,
		Enabled:  true,
		Roles:    authModels.Roles{authModels.RoleUser, authModels.RoleAdmin},
	}
	if err := f.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (f *Fixtures) generatePlayers(ctx context.Context, leagueID uint) ([]models.Player, error) {
	playerService := services.NewPlayerService(f.db, f.defaultRating)

	players := make([]models.Player, 0, len(demoPlayers))
	for _, p := range demoPlayers {
		player, err := playerService.CreatePlayer(ctx, leagueID, p.name, p.color)
		if err != nil {
			return nil, err
		}
		players = append(players, *player)
	}
	return players, nil
}

// generateMatches spreads the matches over the last demoDays days. The winner is drawn with the
// Elo expected score of the hidden skills, so stronger players end up on top.
func (f *Fixtures) generateMatches(ctx context.Context, league *models.League, players []models.Player) (int, error) {
	start := f.now().Add(-demoDays * 24 * time.Hour)
	step := demoDays * 24 * time.Hour / DemoMatchCount

	clock := start
	matchService := services.NewMatchService(f.db, f.engine).WithClock(func() time.Time { return clock })

	for i := 0; i < DemoMatchCount; i++ {
		a := f.rng.IntN(len(players))
		b := f.rng.IntN(len(players) - 1)
		if b >= a {
			b++
		}

		winner, loser := players[a], players[b]
		skillA := demoPlayers[a].skill * f.defaultRating
		skillB := demoPlayers[b].skill * f.defaultRating
		if f.rng.Float64() > coreUtils.ExpectedScore(skillA, skillB) {
			winner, loser = loser, winner
		}

		jitter := time.Duration(f.rng.Int64N(int64(step / 2)))
		clock = start.Add(time.Duration(i)*step + jitter)

		loserScore := f.rng.IntN(league.MaxScore)
		if _, err := matchService.RecordMatch(ctx, league.ID, winner.ID, loser.ID, loserScore); err != nil {
			return i, err
		}
	}
	return DemoMatchCount, nil
}

// ClearAllData removes every league, player, match, access grant and user.
func (f *Fixtures) ClearAllData(ctx context.Context) error {
	log.Info().Msg("Clearing all fixture data")

	db := f.db.WithContext(ctx)

	// Children first because of the foreign keys.
	tables := []any{
		&models.LeagueAccessGrant{},
		&models.Match{},
		&models.Player{},
		&models.League{},
		&authModels.User{},
	}
	for _, table := range tables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
			return fmt.Errorf("failed to clear table %T: %w", table, err)
		}
	}

	if db.Dialector.Name() == "postgres" {
		for _, seq := range []string{"users_id_seq", "leagues_id_seq", "league_players_id_seq", "matches_id_seq"} {
			if err := db.Exec("ALTER SEQUENCE " + seq + " RESTART WITH 1").Error; err != nil {
				log.Warn().Err(err).Str("sequence", seq).Msg("Failed to reset sequence")
			}
		}
	}

	log.Info().Msg("All fixture data cleared")
	return nil
}
