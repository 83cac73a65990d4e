package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"foosilator/packages/auth"
	authModels "foosilator/packages/auth/models"
	"foosilator/packages/core/handlers"
	"foosilator/packages/core/models"
	"foosilator/packages/core/testutil"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testServer struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	auth   *auth.Module
	core   *Module
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	authModule := auth.NewModule(db, "test-secret", bcrypt.MinCost)
	coreModule := NewModule(db, authModule, Options{
		KFactor:           32,
		DefaultRating:     1000,
		HistoryWindowDays: 14,
		LeagueAccessTTL:   time.Hour,
		BcryptCost:        bcrypt.MinCost,
	})

	r := gin.New()
	authModule.SetupRoutes(r)
	coreModule.SetupRoutes(r)

	return &testServer{t: t, db: db, router: r, auth: authModule, core: coreModule}
}

func (s *testServer) token(user *authModels.User) string {
	s.t.Helper()
	token, err := s.auth.Tokens.GenerateToken(*user)
	if err != nil {
		s.t.Fatalf("token: %v", err)
	}
	return token
}

type request struct {
	method string
	path   string
	body   any
	token  string
	cookie *http.Cookie
}

func (s *testServer) do(req request) *httptest.ResponseRecorder {
	s.t.Helper()
	var body bytes.Buffer
	if req.body != nil {
		if err := json.NewEncoder(&body).Encode(req.body); err != nil {
			s.t.Fatalf("encode: %v", err)
		}
	}
	r := httptest.NewRequest(req.method, req.path, &body)
	r.Header.Set("Content-Type", "application/json")
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.cookie != nil {
		r.AddCookie(req.cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestRecordAndReverseOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner := testutil.CreateUser(t, s.db, "owner@example.com")
	league := testutil.CreateLeague(t, s.db, owner.ID, "office", 8)
	ada := testutil.CreatePlayer(t, s.db, league.ID, "Ada", 1000)
	bob := testutil.CreatePlayer(t, s.db, league.ID, "Bob", 1200)
	ownerToken := s.token(owner)

	w := s.do(request{method: http.MethodPost, path: "/leagues/office/matches", body: gin.H{"winner_id": ada.ID, "loser_id": bob.ID, "loser_score": 5}})
	if w.Code != http.StatusCreated {
		t.Fatalf("record: expected 201, got %d: %s", w.Code, w.Body)
	}
	first := decode[models.Match](t, w)
	if first.WinnerScore != 8 || first.WinnerEloChange != 24 {
		t.Fatalf("unexpected match %+v", first)
	}

	w = s.do(request{method: http.MethodPost, path: "/leagues/office/matches", body: gin.H{"winner_id": bob.ID, "loser_id": ada.ID, "loser_score": 0}})
	if w.Code != http.StatusCreated {
		t.Fatalf("record: expected 201, got %d: %s", w.Code, w.Body)
	}
	second := decode[models.Match](t, w)

	w = s.do(request{method: http.MethodGet, path: "/leagues/office/matches"})
	if w.Code != http.StatusOK {
		t.Fatalf("recent: expected 200, got %d", w.Code)
	}
	if recent := decode[[]models.Match](t, w); len(recent) != 2 || recent[0].ID != second.ID {
		t.Fatalf("expected newest match first, got %+v", recent)
	}

	if w := s.do(request{method: http.MethodDelete, path: "/leagues/office/matches/1"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("reverse without token: expected 401, got %d", w.Code)
	}

	w = s.do(request{method: http.MethodDelete, path: pathf("/leagues/office/matches/%d", first.ID), token: ownerToken})
	if w.Code != http.StatusConflict {
		t.Fatalf("reverse non-latest: expected 409, got %d: %s", w.Code, w.Body)
	}

	for _, id := range []uint{second.ID, first.ID} {
		w = s.do(request{method: http.MethodDelete, path: pathf("/leagues/office/matches/%d", id), token: ownerToken})
		if w.Code != http.StatusOK {
			t.Fatalf("reverse %d: expected 200, got %d: %s", id, w.Code, w.Body)
		}
	}

	w = s.do(request{method: http.MethodDelete, path: pathf("/leagues/office/matches/%d", first.ID), token: ownerToken})
	if w.Code != http.StatusNotFound {
		t.Fatalf("second reverse: expected 404, got %d", w.Code)
	}

	if a, b := testutil.Rating(t, s.db, ada.ID), testutil.Rating(t, s.db, bob.ID); a != 1000 || b != 1200 {
		t.Fatalf("expected ratings restored, got %v/%v", a, b)
	}
}

func TestRecordMatchValidationOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner := testutil.CreateUser(t, s.db, "owner@example.com")
	league := testutil.CreateLeague(t, s.db, owner.ID, "office", 8)
	ada := testutil.CreatePlayer(t, s.db, league.ID, "Ada", 1000)
	bob := testutil.CreatePlayer(t, s.db, league.ID, "Bob", 1000)

	w := s.do(request{method: http.MethodPost, path: "/leagues/office/matches", body: gin.H{"winner_id": ada.ID, "loser_id": bob.ID, "loser_score": 12}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if body := decode[map[string]string](t, w); body["field"] != "loser_score" {
		t.Fatalf("expected loser_score field in error, got %v", body)
	}

	w = s.do(request{method: http.MethodPost, path: "/leagues/office/matches", body: gin.H{"winner_id": ada.ID, "loser_id": 999, "loser_score": 2}})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown player, got %d", w.Code)
	}

	if w := s.do(request{method: http.MethodGet, path: "/leagues/nowhere/matches"}); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown league, got %d", w.Code)
	}
}

func TestPasswordProtectedLeague(t *testing.T) {
	s := newTestServer(t)
	owner := testutil.CreateUser(t, s.db, "owner@example.com")
	ownerToken := s.token(owner)

	w := s.do(request{method: http.MethodPost, path: "/leagues", token: ownerToken, body: gin.H{"name": "Locked", "short_name": "locked", "password": "secret"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("create league: expected 201, got %d: %s", w.Code, w.Body)
	}
	if league := decode[map[string]any](t, w); league["has_password"] != true || league["password"] != nil {
		t.Fatalf("expected has_password without hash, got %v", league)
	}

	if w := s.do(request{method: http.MethodGet, path: "/leagues/locked/rankings"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("rankings without grant: expected 401, got %d", w.Code)
	}
	if w := s.do(request{method: http.MethodGet, path: "/leagues/locked/rankings", token: ownerToken}); w.Code != http.StatusOK {
		t.Fatalf("rankings as owner: expected 200, got %d", w.Code)
	}
	if w := s.do(request{method: http.MethodPost, path: "/leagues/locked/access", body: gin.H{"password": "wrong"}}); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", w.Code)
	}

	w = s.do(request{method: http.MethodPost, path: "/leagues/locked/access", body: gin.H{"password": "secret"}})
	if w.Code != http.StatusOK {
		t.Fatalf("access: expected 200, got %d: %s", w.Code, w.Body)
	}
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == handlers.AccessCookieName {
			cookie = c
		}
	}
	if cookie == nil || cookie.Path != "/leagues/locked" || !cookie.HttpOnly {
		t.Fatalf("expected league scoped http-only cookie, got %+v", cookie)
	}

	if w := s.do(request{method: http.MethodGet, path: "/leagues/locked/stats", cookie: cookie}); w.Code != http.StatusOK {
		t.Fatalf("stats with cookie: expected 200, got %d: %s", w.Code, w.Body)
	}

	grant := decode[models.LeagueAccessGrant](t, w)
	r := httptest.NewRequest(http.MethodGet, "/leagues/locked/matches", nil)
	r.Header.Set(handlers.AccessHeaderName, grant.Token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK {
		t.Fatalf("matches with header: expected 200, got %d", rec.Code)
	}
}

func TestOwnerOnlyRoutes(t *testing.T) {
	s := newTestServer(t)
	owner := testutil.CreateUser(t, s.db, "owner@example.com")
	stranger := testutil.CreateUser(t, s.db, "stranger@example.com")
	admin := testutil.CreateUser(t, s.db, "admin@example.com", authModels.RoleUser, authModels.RoleAdmin)
	testutil.CreateLeague(t, s.db, owner.ID, "office", 8)

	player := gin.H{"name": "Ada", "color": "#123456"}
	if w := s.do(request{method: http.MethodPost, path: "/leagues/office/players", body: player, token: s.token(stranger)}); w.Code != http.StatusForbidden {
		t.Fatalf("stranger: expected 403, got %d", w.Code)
	}
	if w := s.do(request{method: http.MethodPost, path: "/leagues/office/players", body: player, token: s.token(owner)}); w.Code != http.StatusCreated {
		t.Fatalf("owner: expected 201, got %d: %s", w.Code, w.Body)
	}
	if w := s.do(request{method: http.MethodPost, path: "/leagues/office/deactivate", token: s.token(admin)}); w.Code != http.StatusOK {
		t.Fatalf("admin: expected 200, got %d: %s", w.Code, w.Body)
	}

	w := s.do(request{method: http.MethodGet, path: "/leagues/office/players"})
	if w.Code != http.StatusOK {
		t.Fatalf("players: expected 200, got %d", w.Code)
	}
	if players := decode[models.PlayersResponse](t, w); len(players.Active) != 1 || players.Active[0].EloRating != 1000 {
		t.Fatalf("unexpected players %+v", players)
	}

	if w := s.do(request{method: http.MethodPost, path: "/admin/maintenance/run", token: s.token(owner)}); w.Code != http.StatusForbidden {
		t.Fatalf("maintenance as owner: expected 403, got %d", w.Code)
	}
	if w := s.do(request{method: http.MethodPost, path: "/admin/maintenance/run", token: s.token(admin)}); w.Code != http.StatusAccepted {
		t.Fatalf("maintenance as admin: expected 202, got %d", w.Code)
	}
}

func TestPlayerHistoryOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner := testutil.CreateUser(t, s.db, "owner@example.com")
	league := testutil.CreateLeague(t, s.db, owner.ID, "office", 8)
	ada := testutil.CreatePlayer(t, s.db, league.ID, "Ada", 1000)

	w := s.do(request{method: http.MethodGet, path: pathf("/leagues/office/players/%d/history?days=7", ada.ID)})
	if w.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d: %s", w.Code, w.Body)
	}
	series := decode[models.PlayerEloSeries](t, w)
	if len(series.Points) != 2 || series.Points[0].EloRating != 1000 || series.Points[1].EloRating != 1000 {
		t.Fatalf("expected a flat line, got %+v", series.Points)
	}
	if span := series.Points[1].Date.Sub(series.Points[0].Date); span != 7*24*time.Hour {
		t.Fatalf("expected a 7 day window, got %v", span)
	}

	if w := s.do(request{method: http.MethodGet, path: pathf("/leagues/office/players/%d/history?days=abc", ada.ID)}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad days: expected 400, got %d", w.Code)
	}
}

func pathf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
