package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pokedex/pkg/apperr"
	"github.com/Skotchmaster/pokedex/pkg/db"
	"github.com/Skotchmaster/pokedex/pkg/events"
	authmw "github.com/Skotchmaster/pokedex/pkg/middleware/auth"
	"github.com/Skotchmaster/pokedex/pkg/reqlog"
	"github.com/Skotchmaster/pokedex/pkg/tokens"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/models"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/repo"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/service"
	"github.com/Skotchmaster/pokedex/services/catalog/internal/transport"
)

type testEnv struct {
	e      *echo.Echo
	tokens *tokens.Service
	logs   *reqlog.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb, err := db.Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, gdb.AutoMigrate(&models.Pokemon{}, &reqlog.RequestLog{}))

	tk, err := tokens.NewService([]byte("catalog-access"), []byte("catalog-refresh"))
	require.NoError(t, err)

	logs := &reqlog.Store{DB: gdb}
	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Use(reqlog.Middleware(logs))
	Register(e, &Deps{
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{
			Repo:   &repo.GormRepo{DB: gdb},
			Events: events.Nop{},
		}},
		ReportHandler: &ReportHTTP{Store: logs},
		Gate:          authmw.NewGate(tk),
	})
	return &testEnv{e: e, tokens: tk, logs: logs}
}

func (env *testEnv) token(t *testing.T, id, role string) string {
	t.Helper()
	tok, _, err := env.tokens.IssueAccessToken(tokens.Identity{ID: id, Username: id, Role: role})
	require.NoError(t, err)
	return tok
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(authmw.HeaderAccessToken, token)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperr.Response {
	t.Helper()
	var body apperr.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// mutate alters the first signature character so the token no longer verifies.
func mutate(tok string) string {
	parts := strings.Split(tok, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}

func bulbasaur() map[string]any {
	return map[string]any{
		"id":   1,
		"name": map[string]string{"english": "Bulbasaur", "japanese": "フシギダネ", "chinese": "妙蛙种子", "french": "Bulbizarre"},
		"type": []string{"Grass", "Poison"},
		"base": map[string]int{"HP": 45, "Attack": 49, "Defense": 49, "Sp. Attack": 65, "Sp. Defense": 65, "Speed": 45},
	}
}

func TestGate_NoToken(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/v1/pokemons", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, authmw.MsgNoToken, decodeError(t, rec).Message)
}

func TestAdminFlow(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, "admin-1", tokens.RoleAdmin)

	rec := env.do(t, http.MethodPost, "/api/v1/pokemon", admin, bulbasaur())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created transport.MutationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "Added Successfully", created.Msg)

	rec = env.do(t, http.MethodGet, "/api/v1/pokemon/1", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Pokemon
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Bulbasaur", got.Name.English)
	assert.Equal(t, 65, got.Base.SpAttack)

	rec = env.do(t, http.MethodGet, "/api/v1/pokemon?id=1", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/pokemon/1", mutate(admin), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, authmw.MsgInvalidToken, decodeError(t, rec).Message)
}

func TestRefreshTokenRejectedByGate(t *testing.T) {
	env := newTestEnv(t)
	refresh, err := env.tokens.IssueRefreshToken(tokens.Identity{ID: "u1", Username: "u1", Role: tokens.RoleAdmin})
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/api/v1/pokemons", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthorizationHeaderAccepted(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pokemons", nil)
	req.Header.Set(echo.HeaderAuthorization, authmw.AuthorizationValue(env.token(t, "u1", tokens.RoleUser), "ignored"))
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUserDeniedOnAdminRoutes(t *testing.T) {
	env := newTestEnv(t)
	user := env.token(t, "user-1", tokens.RoleUser)

	cases := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/pokemon"},
		{http.MethodPut, "/api/v1/pokemon/1"},
		{http.MethodPatch, "/api/v1/pokemon/1"},
		{http.MethodDelete, "/api/v1/pokemon/1"},
		{http.MethodDelete, "/api/v1/pokemon?id=1"},
		{http.MethodGet, "/api/v1/report/top-api-users"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := env.do(t, tc.method, tc.path, user, bulbasaur())
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, authmw.MsgAccessDenied, decodeError(t, rec).Message)
		})
	}

	rec := env.do(t, http.MethodGet, "/api/v1/pokemons", user, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreatePokemon_Errors(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, "admin-1", tokens.RoleAdmin)

	noID := bulbasaur()
	delete(noID, "id")
	rec := env.do(t, http.MethodPost, "/api/v1/pokemon", admin, noID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/pokemon", admin, bulbasaur()).Code)
	rec = env.do(t, http.MethodPost, "/api/v1/pokemon", admin, bulbasaur())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPokemons_Pagination(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, "admin-1", tokens.RoleAdmin)
	for _, id := range []int{5, 2, 9, 1} {
		p := bulbasaur()
		p["id"] = id
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/pokemon", admin, p).Code)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/pokemons?count=2&after=1", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.Pokemon
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].ID)
	assert.Equal(t, 5, items[1].ID)
	assert.Equal(t, "4", rec.Header().Get(HeaderTotalCount))

	rec = env.do(t, http.MethodGet, "/api/v1/pokemons", admin, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Len(t, items, 4)
}

func TestUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, "admin-1", tokens.RoleAdmin)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/pokemon", admin, bulbasaur()).Code)

	rec := env.do(t, http.MethodPatch, "/api/v1/pokemon/1", admin, map[string]any{"base": map[string]int{"Speed": 99}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp transport.MutationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Updated Successfully", resp.Msg)
	require.NotNil(t, resp.PokeInfo)
	assert.Equal(t, 99, resp.PokeInfo.Base.Speed)
	assert.Equal(t, 45, resp.PokeInfo.Base.HP)

	rec = env.do(t, http.MethodPut, "/api/v1/pokemon/1", admin, map[string]any{"name": map[string]string{"english": "Ivysaur"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Ivysaur", resp.PokeInfo.Name.English)
	assert.Zero(t, resp.PokeInfo.Base.HP)

	rec = env.do(t, http.MethodPut, "/api/v1/pokemon/404", admin, bulbasaur())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/pokemon/404", admin, map[string]any{"name": map[string]string{"english": "Ghost"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/v1/pokemon/404", admin, map[string]any{"type": []string{"Fire"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/v1/pokemon?id=1", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Deleted Successfully", resp.Msg)

	rec = env.do(t, http.MethodDelete, "/api/v1/pokemon/1", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/pokemon/1", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownPathIsNotFoundForUsers(t *testing.T) {
	env := newTestEnv(t)
	user := env.token(t, "user-1", tokens.RoleUser)

	for _, path := range []string{"/api/v1/nope", "/api/v1/report/nope", "/api/v1/pokemon/1/extra"} {
		t.Run(path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, path, user, nil)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}

	rec := env.do(t, http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetPokemon_BadID(t *testing.T) {
	env := newTestEnv(t)
	user := env.token(t, "user-1", tokens.RoleUser)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/pokemon/abc", user, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/v1/pokemon", user, nil).Code)
}

func TestSearchPokemons(t *testing.T) {
	env := newTestEnv(t)
	admin := env.token(t, "admin-1", tokens.RoleAdmin)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/v1/pokemon", admin, bulbasaur()).Code)

	rec := env.do(t, http.MethodGet, "/api/v1/pokemons/search?q=bulbi", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp transport.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Total)

	rec = env.do(t, http.MethodGet, "/api/v1/pokemons/search", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
