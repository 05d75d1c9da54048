package rest

import "github.com/lobbygames/majority-backend/internal/majority"

type createLobbyRequest struct {
	Nick   string `json:"nick"`
	Format string `json:"format"`
}

type joinLobbyRequest struct {
	Nick string `json:"nick"`
}

type playerRequest struct {
	PlayerID string `json:"player_id"`
}

type moveRequest struct {
	PlayerID string `json:"player_id"`
	Row      *int   `json:"row"`
	Col      *int   `json:"col"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type startResponse struct {
	OK      bool `json:"ok"`
	Started bool `json:"started"`
}

type moveResponse struct {
	OK         bool             `json:"ok"`
	Flips      []majority.Coord `json:"flips"`
	NextPlayer string           `json:"next_player"`
}

type moveErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
