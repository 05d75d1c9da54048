package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lobbygames/majority-backend/internal/entity"
	"github.com/lobbygames/majority-backend/internal/session"
	"github.com/lobbygames/majority-backend/internal/usecase"
)

type fakeArchive struct {
	saved  []*entity.MatchRecord
	recent []entity.MatchRecord
}

func (that *fakeArchive) Save(_ context.Context, record *entity.MatchRecord) error {
	that.saved = append(that.saved, record)
	return nil
}

func (that *fakeArchive) Recent(context.Context, int) ([]entity.MatchRecord, error) {
	return that.recent, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := session.New(logger, 5, 8)
	manager := usecase.NewGameManager(logger, store, &fakeArchive{})

	server := httptest.NewServer(New(logger, manager).Routes())
	t.Cleanup(server.Close)

	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestLobbyLifecycle(t *testing.T) {
	server := newTestServer(t)

	// Create a lobby.
	resp := postJSON(t, server.URL+"/api/lobbies", map[string]string{
		"nick":   "alice",
		"format": "Classic",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var host entity.JoinTicket
	decodeBody(t, resp, &host)
	assert.Len(t, host.Code, 6)
	assert.True(t, host.IsHost)

	// It shows up in the open listing.
	listResp, err := http.Get(server.URL + "/api/lobbies")
	require.NoError(t, err)
	var open []entity.LobbySummary
	decodeBody(t, listResp, &open)
	require.Len(t, open, 1)
	assert.Equal(t, host.Code, open[0].Code)

	// A second player joins.
	resp = postJSON(t, server.URL+"/api/lobbies/"+host.Code+"/join", map[string]string{"nick": "bob"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var bob entity.JoinTicket
	decodeBody(t, resp, &bob)
	assert.False(t, bob.IsHost)

	// Lobby state reflects both members.
	stateResp, err := http.Get(server.URL + "/api/lobbies/" + host.Code + "?player_id=" + host.PlayerID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, stateResp.StatusCode)

	var state entity.LobbyState
	decodeBody(t, stateResp, &state)
	assert.Equal(t, 2, state.PlayerNum)
	assert.Equal(t, "alice", state.HostNick)

	// The host starts the game.
	resp = postJSON(t, server.URL+"/api/lobbies/"+host.Code+"/start", map[string]string{"player_id": host.PlayerID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var started startResponse
	decodeBody(t, resp, &started)
	assert.True(t, started.OK)
	assert.True(t, started.Started)

	// The game is immediately queryable.
	gameResp, err := http.Get(server.URL + "/api/game/" + host.Code)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, gameResp.StatusCode)

	var game struct {
		Size          int    `json:"size"`
		CurrentPlayer string `json:"current_player_id"`
		GameOver      bool   `json:"game_over"`
	}
	decodeBody(t, gameResp, &game)
	assert.Equal(t, 8, game.Size)
	assert.Equal(t, host.PlayerID, game.CurrentPlayer)
	assert.False(t, game.GameOver)

	// The host moves; bob is up next.
	row, col := 0, 0
	resp = postJSON(t, server.URL+"/api/game/"+host.Code+"/move", map[string]any{
		"player_id": host.PlayerID,
		"row":       row,
		"col":       col,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var move moveResponse
	decodeBody(t, resp, &move)
	assert.True(t, move.OK)
	assert.Equal(t, bob.PlayerID, move.NextPlayer)
}

func TestCreateLobbyValidation(t *testing.T) {
	server := newTestServer(t)

	t.Run("Rejects an empty nick", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/lobbies", map[string]string{
			"nick":   "   ",
			"format": "Classic",
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "nick is required", body.Error)
	})

	t.Run("Rejects an unknown format", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/lobbies", map[string]string{
			"nick":   "alice",
			"format": "Marathon",
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "unknown format", body.Error)
	})
}

func TestJoinFailures(t *testing.T) {
	server := newTestServer(t)

	t.Run("Unknown code is a 400 with a reason", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/lobbies/NOSUCH/join", map[string]string{"nick": "bob"})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "not-found", body.Error)
	})

	t.Run("Duplicate nick is reported as such", func(t *testing.T) {
		createResp := postJSON(t, server.URL+"/api/lobbies", map[string]string{
			"nick":   "alice",
			"format": "Classic",
		})
		var host entity.JoinTicket
		decodeBody(t, createResp, &host)

		resp := postJSON(t, server.URL+"/api/lobbies/"+host.Code+"/join", map[string]string{"nick": "ALICE"})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "duplicate-nick", body.Error)
	})
}

func TestStartFailures(t *testing.T) {
	server := newTestServer(t)

	createResp := postJSON(t, server.URL+"/api/lobbies", map[string]string{
		"nick":   "alice",
		"format": "Classic",
	})
	var host entity.JoinTicket
	decodeBody(t, createResp, &host)

	t.Run("Starting alone is a 400 with a reason", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/lobbies/"+host.Code+"/start", map[string]string{"player_id": host.PlayerID})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "too-few-players", body.Error)
	})

	t.Run("Only the host may start", func(t *testing.T) {
		joinResp := postJSON(t, server.URL+"/api/lobbies/"+host.Code+"/join", map[string]string{"nick": "bob"})
		var bob entity.JoinTicket
		decodeBody(t, joinResp, &bob)

		resp := postJSON(t, server.URL+"/api/lobbies/"+host.Code+"/start", map[string]string{"player_id": bob.PlayerID})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, "not-host", body.Error)
	})
}

func TestLobbyStateNotFound(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/lobbies/NOSUCH")
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body errorResponse
	decodeBody(t, resp, &body)
	assert.Equal(t, "not-found", body.Error)
}

func TestLeaveUnknownPlayer(t *testing.T) {
	server := newTestServer(t)

	createResp := postJSON(t, server.URL+"/api/lobbies", map[string]string{
		"nick":   "alice",
		"format": "Classic",
	})
	var host entity.JoinTicket
	decodeBody(t, createResp, &host)

	resp := postJSON(t, server.URL+"/api/lobbies/"+host.Code+"/leave", map[string]string{"player_id": "nope"})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMoveHandler(t *testing.T) {
	server := newTestServer(t)

	createResp := postJSON(t, server.URL+"/api/lobbies", map[string]string{
		"nick":   "alice",
		"format": "Classic",
	})
	var host entity.JoinTicket
	decodeBody(t, createResp, &host)

	joinResp := postJSON(t, server.URL+"/api/lobbies/"+host.Code+"/join", map[string]string{"nick": "bob"})
	var bob entity.JoinTicket
	decodeBody(t, joinResp, &bob)

	startResp := postJSON(t, server.URL+"/api/lobbies/"+host.Code+"/start", map[string]string{"player_id": host.PlayerID})
	require.Equal(t, http.StatusOK, startResp.StatusCode)
	startResp.Body.Close()

	t.Run("Missing player identity is unauthorized", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/game/"+host.Code+"/move", map[string]any{
			"row": 0,
			"col": 0,
		})

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("A move out of turn is rejected with a reason", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/game/"+host.Code+"/move", map[string]any{
			"player_id": bob.PlayerID,
			"row":       0,
			"col":       0,
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body moveErrorResponse
		decodeBody(t, resp, &body)
		assert.False(t, body.OK)
		assert.Equal(t, "not-your-turn", body.Error)
	})

	t.Run("Missing coordinates are rejected", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/game/"+host.Code+"/move", map[string]any{
			"player_id": host.PlayerID,
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	})

	t.Run("A game that never started is not found", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/game/NOSUCH")
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		resp.Body.Close()
	})
}

func TestPing(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))
}
