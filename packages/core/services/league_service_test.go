package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"foosilator/packages/core/models"
	"foosilator/packages/core/testutil"
	"foosilator/packages/core/utils"

	"golang.org/x/crypto/bcrypt"
)

func newLeagueService(t *testing.T) (*LeagueService, uint, context.Context) {
	t.Helper()
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@example.com")
	return NewLeagueService(db, 1000, bcrypt.MinCost), owner.ID, context.Background()
}

func TestCreateLeague(t *testing.T) {
	svc, ownerID, ctx := newLeagueService(t)

	league, err := svc.CreateLeague(ctx, ownerID, models.CreateLeagueRequest{Name: " Office ", ShortName: "office"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if league.MaxScore != DefaultMaxScore || league.Name != "Office" || !league.IsActive || league.HasPassword {
		t.Fatalf("unexpected league %+v", league)
	}

	found, err := svc.GetLeagueByShortName(ctx, "office")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found.ID != league.ID || found.OwnerID != ownerID {
		t.Fatalf("unexpected league %+v", found)
	}

	if _, err := svc.CreateLeague(ctx, ownerID, models.CreateLeagueRequest{Name: "Again", ShortName: "office"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected duplicate short name to fail validation, got %v", err)
	}
}

func TestCreateLeagueValidation(t *testing.T) {
	svc, ownerID, ctx := newLeagueService(t)

	for _, req := range []models.CreateLeagueRequest{
		{Name: "", ShortName: "ok"},
		{Name: "Bad", ShortName: "Has Spaces"},
		{Name: "Bad", ShortName: "UPPER"},
		{Name: "Bad", ShortName: "ok", MaxScore: -2},
	} {
		if _, err := svc.CreateLeague(ctx, ownerID, req); !errors.Is(err, ErrValidation) {
			t.Fatalf("create(%+v): expected ErrValidation, got %v", req, err)
		}
	}
}

func TestChangeLeaguePassword(t *testing.T) {
	svc, ownerID, ctx := newLeagueService(t)
	league, err := svc.CreateLeague(ctx, ownerID, models.CreateLeagueRequest{Name: "Office", ShortName: "office", Password: "secret"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !league.HasPassword {
		t.Fatalf("expected league to have a password")
	}

	_, err = svc.ChangePassword(ctx, league.ID, models.ChangeLeaguePasswordRequest{CurrentPassword: "wrong", NewPassword: "x", NewPasswordConfirm: "x"})
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}

	_, err = svc.ChangePassword(ctx, league.ID, models.ChangeLeaguePasswordRequest{CurrentPassword: "secret", NewPassword: "new", NewPasswordConfirm: "other"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected mismatch to fail validation, got %v", err)
	}

	if _, err := svc.ChangePassword(ctx, league.ID, models.ChangeLeaguePasswordRequest{CurrentPassword: "secret", NewPassword: "new", NewPasswordConfirm: "new"}); err != nil {
		t.Fatalf("change: %v", err)
	}
	reloaded, _ := svc.GetLeague(ctx, league.ID)
	if err := svc.VerifyPassword(reloaded, "new"); err != nil {
		t.Fatalf("expected new password to verify: %v", err)
	}
	if err := svc.VerifyPassword(reloaded, "secret"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected old password to be rejected, got %v", err)
	}

	removed, err := svc.ChangePassword(ctx, league.ID, models.ChangeLeaguePasswordRequest{CurrentPassword: "new", RemovePassword: true})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.HasPassword {
		t.Fatalf("expected password to be removed")
	}
	reloaded, _ = svc.GetLeague(ctx, league.ID)
	if reloaded.HasPassword || reloaded.PasswordHash != nil {
		t.Fatalf("expected no stored hash, got %+v", reloaded)
	}
}

func TestUpdateAndDeactivateLeague(t *testing.T) {
	svc, ownerID, ctx := newLeagueService(t)
	a, _ := svc.CreateLeague(ctx, ownerID, models.CreateLeagueRequest{Name: "A", ShortName: "a"})
	b, _ := svc.CreateLeague(ctx, ownerID, models.CreateLeagueRequest{Name: "B", ShortName: "b"})

	if _, err := svc.UpdateLeague(ctx, a.ID, models.UpdateLeagueRequest{Name: "A", ShortName: "b", MaxScore: 10}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected taken short name to fail, got %v", err)
	}
	updated, err := svc.UpdateLeague(ctx, a.ID, models.UpdateLeagueRequest{Name: "Alpha", ShortName: "alpha", MaxScore: 10})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ShortName != "alpha" || updated.MaxScore != 10 {
		t.Fatalf("unexpected update %+v", updated)
	}

	if _, err := svc.SetActive(ctx, b.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	owned, err := svc.ListOwnedLeagues(ctx, ownerID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(owned.Active) != 1 || owned.Active[0].ID != a.ID || len(owned.Inactive) != 1 || owned.Inactive[0].ID != b.ID {
		t.Fatalf("unexpected owned leagues %+v", owned)
	}
}

func TestTransferOwnershipAndCheckOwner(t *testing.T) {
	svc, ownerID, ctx := newLeagueService(t)
	league, _ := svc.CreateLeague(ctx, ownerID, models.CreateLeagueRequest{Name: "Office", ShortName: "office"})
	heir := testutil.CreateUser(t, svc.db, "heir@example.com")

	if err := svc.CheckOwner(league, heir.ID, false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.CheckOwner(league, heir.ID, true); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}

	if _, err := svc.TransferOwnership(ctx, league.ID, 4040); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected unknown user to fail, got %v", err)
	}
	transferred, err := svc.TransferOwnership(ctx, league.ID, heir.ID)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := svc.CheckOwner(transferred, heir.ID, false); err != nil {
		t.Fatalf("expected heir to own the league: %v", err)
	}
	if err := svc.CheckOwner(transferred, ownerID, false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected previous owner to be forbidden, got %v", err)
	}
}

func TestResetLeague(t *testing.T) {
	svc, ownerID, ctx := newLeagueService(t)
	league, _ := svc.CreateLeague(ctx, ownerID, models.CreateLeagueRequest{Name: "Office", ShortName: "office"})
	other, _ := svc.CreateLeague(ctx, ownerID, models.CreateLeagueRequest{Name: "Other", ShortName: "other"})
	ada := testutil.CreatePlayer(t, svc.db, league.ID, "Ada", 1000)
	bob := testutil.CreatePlayer(t, svc.db, league.ID, "Bob", 1000)
	x := testutil.CreatePlayer(t, svc.db, other.ID, "X", 1000)
	y := testutil.CreatePlayer(t, svc.db, other.ID, "Y", 1000)

	clock := testutil.NewClock(time.Now())
	matches := NewMatchService(svc.db, utils.NewEloEngine(32)).WithClock(clock.Now)
	if _, err := matches.RecordMatch(ctx, league.ID, ada.ID, bob.ID, 3); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := matches.RecordMatch(ctx, other.ID, x.ID, y.ID, 3); err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := svc.ResetLeague(ctx, league.ID, "wrong"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for wrong confirmation, got %v", err)
	}
	if err := svc.ResetLeague(ctx, league.ID, "office"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if a, b := testutil.Rating(t, svc.db, ada.ID), testutil.Rating(t, svc.db, bob.ID); a != 1000 || b != 1000 {
		t.Fatalf("expected ratings reset to 1000, got %v/%v", a, b)
	}
	var remaining int64
	svc.db.Model(&models.Match{}).Where("league_id = ?", league.ID).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("expected no matches left in the reset league, got %d", remaining)
	}
	svc.db.Model(&models.Match{}).Where("league_id = ?", other.ID).Count(&remaining)
	if remaining != 1 || testutil.Rating(t, svc.db, x.ID) != 1016 {
		t.Fatalf("expected the other league to be untouched")
	}
}
