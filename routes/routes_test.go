package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-tournament/brackets"
	"github.com/Dosada05/padel-tournament/handlers"
	"github.com/Dosada05/padel-tournament/repositories"
	"github.com/Dosada05/padel-tournament/services"
	"github.com/Dosada05/padel-tournament/storage"
)

const testSecret = "test-secret"

type apiClient struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	store := repositories.NewMemoryStore()
	locker := services.NewLocalLocker()
	hub := brackets.NewHub(nil)
	archiver := storage.NewArchiver(storage.NewMemoryObjectStore("https://files.example.com"))

	matches := services.NewMatchService(store, locker, hub, archiver, nil)
	tournaments := services.NewTournamentService(store, locker, nil, hub, nil)
	registration := services.NewRegistrationService(store, matches, nil)
	schedule := services.NewScheduleService(store, locker, hub, time.UTC, nil)
	cache := handlers.NewResponseCache(storage.NewMemoryCache(), time.Minute, nil)

	router := chi.NewRouter()
	SetupRoutes(router, Options{JWTSecret: testSecret, AllowedOrigins: []string{"*"}}, Handlers{
		Tournaments:  handlers.NewTournamentHandler(tournaments, cache, archiver),
		Participants: handlers.NewParticipantHandler(registration, cache),
		Matches:      handlers.NewMatchHandler(matches, cache),
		Schedule:     handlers.NewScheduleHandler(schedule, cache),
		WebSocket:    handlers.NewWebSocketHandler(hub, tournaments, nil, nil),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &apiClient{t: t, server: srv, token: signToken(t, "organizer")}
}

func signToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 42,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// do sends body as JSON and decodes the response into a generic map.
func (c *apiClient) do(method, path string, body any) (*http.Response, map[string]any) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

func id(v any) int {
	return int(v.(map[string]any)["id"].(float64))
}

func TestOrganizerRoutesRequireToken(t *testing.T) {
	api := newAPI(t)

	api.token = ""
	resp, body := api.do(http.MethodPost, "/tournaments", map[string]any{"name": "Open"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "unauthorized", body["code"])

	api.token = signToken(t, "player")
	resp, _ = api.do(http.MethodPost, "/tournaments", map[string]any{"name": "Open"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	api.token = "not-a-jwt"
	resp, _ = api.do(http.MethodPost, "/tournaments", map[string]any{"name": "Open"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	api.token = ""
	resp, _ = api.do(http.MethodGet, "/tournaments", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "reads are public")
}

func TestTournamentOverHTTP(t *testing.T) {
	api := newAPI(t)

	resp, body := api.do(http.MethodPost, "/tournaments", map[string]any{"name": "Copa", "scoring": map[string]any{"target_zone_size": 4}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	tid := id(body["tournament"])
	base := fmt.Sprintf("/tournaments/%d", tid)

	resp, body = api.do(http.MethodPost, "/categories", map[string]any{"tournament_id": tid, "name": "5ta"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cid := id(body["category"])

	players := [][2]string{{"Ana", "Bea"}, {"Caro", "Dani"}, {"Eli", "Flor"}, {"Gabi", "Hebe"}}
	for _, p := range players {
		resp, _ := api.do(http.MethodPost, base+"/pairs", map[string]any{"category_id": cid, "player1": p[0], "player2": p[1], "status": "confirmed"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}
	resp, body = api.do(http.MethodPost, base+"/pairs", map[string]any{"category_id": cid, "player1": "Ana", "player2": "Bea"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, services.CodeDuplicatePair, body["code"])

	resp, _ = api.do(http.MethodPost, base+"/zones/generate", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = api.do(http.MethodPost, base+"/zones/generate", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, brackets.CodeAlreadyGenerated, body["code"])

	resp, body = api.do(http.MethodGet, base+"/zones", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	zones := body["zones"].([]any)
	require.Len(t, zones, 1)
	first := zones[0].(map[string]any)["matches"].([]any)[0].(map[string]any)
	for _, field := range []string{"id", "phase", "zone_id", "numero_partido", "pareja1_id", "pareja2_id", "estado", "resultado", "cancha_id", "fecha_hora"} {
		assert.Contains(t, first, field)
	}
	assert.Equal(t, "pending", first["estado"])
	matchPath := fmt.Sprintf("%s/matches/%d", base, int(first["id"].(float64)))

	resp, _ = api.do(http.MethodGet, base+"/zones", nil)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))

	resp, body = api.do(http.MethodPost, matchPath+"/result", map[string]any{"sets": []map[string]int{{"games_a": 6, "games_b": 5}}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.NotEmpty(t, body["code"])

	resp, body = api.do(http.MethodPost, matchPath+"/result", map[string]any{
		"sets": []map[string]int{{"games_a": 6, "games_b": 2}, {"games_a": 6, "games_b": 3}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "reported", body["match"].(map[string]any)["estado"])

	resp, _ = api.do(http.MethodGet, base+"/zones", nil)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"), "mutations invalidate cached reads")

	resp, _ = api.do(http.MethodPost, matchPath+"/confirm", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, body = api.do(http.MethodPost, matchPath+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, services.CodeAlreadyConfirmed, body["code"])

	resp, body = api.do(http.MethodPost, matchPath+"/rollback", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, services.CodeConfirmRequired, body["code"])
	resp, _ = api.do(http.MethodPost, matchPath+"/rollback?confirm=true", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = api.do(http.MethodPost, base+"/playoffs/generate", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, services.CodeUnconfirmedGroupMatches, body["code"])

	resp, _ = api.do(http.MethodPost, base+"/courts", map[string]any{"name": "Central"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, body = api.do(http.MethodPost, base+"/slots", map[string]any{"date": "2025-03-14", "start_time": "09:00", "end_time": "13:00", "duration_minutes": 60})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, body["created"], 4)

	resp, body = api.do(http.MethodPost, base+"/schedule/auto", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "scheduled_count")
	assert.Contains(t, body, "unscheduled_count")

	resp, _ = api.do(http.MethodDelete, base+"/zones", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = api.do(http.MethodDelete, base+"/zones?confirm=true", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestNotFoundAndBadInput(t *testing.T) {
	api := newAPI(t)

	resp, body := api.do(http.MethodGet, "/tournaments/999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, services.CodeNotFound, body["code"])

	resp, _ = api.do(http.MethodGet, "/tournaments/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = api.do(http.MethodGet, "/categories", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "tournament_id is required")

	resp, _ = api.do(http.MethodPost, "/tournaments", map[string]any{"name": "Open", "surprise": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = api.do(http.MethodPost, "/tournaments", map[string]any{"name": " "})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, services.CodeInvalidInput, body["code"])
}
