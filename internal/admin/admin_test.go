package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wildstep/internal/encounter"
	"wildstep/internal/game"
	"wildstep/internal/logger"
	"wildstep/internal/maps"
)

type mockPlayers struct {
	mock.Mock
}

func (m *mockPlayers) Statuses() []game.PlayerStatus {
	return m.Called().Get(0).([]game.PlayerStatus)
}

func (m *mockPlayers) Online() int {
	return m.Called().Int(0)
}

func (m *mockPlayers) UpdateModifiers(ctx context.Context, id string, u game.ModifierUpdate) error {
	return m.Called(ctx, id, u).Error(0)
}

var ash = game.PlayerStatus{
	ID: "ash", Name: "ash", Map: "Meadow", X: 10, Y: 8,
	Encounter: encounter.Status{Zone: "grass", Steps: 4, Phase: "tracking", RateMultiplier: 1, EffectiveRate: 1, Enabled: true},
}

func serve(t *testing.T, players Players, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter("test", players, logger.Discard())
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	players := &mockPlayers{}
	players.On("Online").Return(3)

	rec := serve(t, players, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, HealthResponse{Status: "ok", Version: "test", Online: 3}, resp)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, &mockPlayers{}, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestListPlayers(t *testing.T) {
	players := &mockPlayers{}
	players.On("Statuses").Return([]game.PlayerStatus{ash})

	rec := serve(t, players, http.MethodGet, "/players", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []game.PlayerStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, []game.PlayerStatus{ash}, got)
}

func TestGetPlayer(t *testing.T) {
	players := &mockPlayers{}
	players.On("Statuses").Return([]game.PlayerStatus{ash})

	rec := serve(t, players, http.MethodGet, "/players/ash", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"zone":"grass"`)

	rec = serve(t, players, http.MethodGet, "/players/brock", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateModifiers(t *testing.T) {
	players := &mockPlayers{}
	repel, mult := true, 2.5
	players.On("UpdateModifiers", mock.Anything, "ash", game.ModifierUpdate{Repel: &repel, Multiplier: &mult}).Return(nil)
	players.On("Statuses").Return([]game.PlayerStatus{ash})

	rec := serve(t, players, http.MethodPost, "/players/ash/modifiers", `{"repel":true,"multiplier":2.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"id":"ash"`)
	players.AssertExpectations(t)
}

func TestUpdateModifiers_UnknownPlayer(t *testing.T) {
	players := &mockPlayers{}
	players.On("UpdateModifiers", mock.Anything, "brock", mock.Anything).Return(game.ErrUnknownPlayer)

	rec := serve(t, players, http.MethodPost, "/players/brock/modifiers", `{"lure":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateModifiers_Timeout(t *testing.T) {
	players := &mockPlayers{}
	players.On("UpdateModifiers", mock.Anything, "ash", mock.Anything).Return(context.DeadlineExceeded)

	rec := serve(t, players, http.MethodPost, "/players/ash/modifiers", `{"enabled":false}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUpdateModifiers_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `repel`},
		{"unknown field", `{"teleport":true}`},
		{"empty", `{}`},
		{"zero multiplier", `{"multiplier":0}`},
		{"negative multiplier", `{"multiplier":-1}`},
		{"huge multiplier", `{"multiplier":1000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players := &mockPlayers{}
			rec := serve(t, players, http.MethodPost, "/players/ash/modifiers", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			players.AssertNotCalled(t, "UpdateModifiers", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateModifiers_AgainstGameLoop(t *testing.T) {
	world, err := game.NewWorld(map[string]*maps.Map{"Meadow": maps.FallbackMap("Meadow")}, nil, nil, "Meadow")
	require.NoError(t, err)
	gl := game.NewGameLoop(world, game.Options{Logger: logger.Discard()})
	id, _ := gl.AddPlayer("ash")
	go gl.Run()
	t.Cleanup(gl.Stop)

	rec := serve(t, gl, http.MethodPost, "/players/"+id+"/modifiers", `{"lure":true,"multiplier":0.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got game.PlayerStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got.Encounter.Lure)
	assert.InDelta(t, 1.0, got.Encounter.EffectiveRate, 1e-9)

	rec = serve(t, gl, http.MethodPost, "/players/brock/modifiers", `{"lure":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
