package apperror

import "errors"

var (
	ErrLobbyNotFound  = errors.New("lobby not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrLobbyStarted   = errors.New("lobby already started")
	ErrLobbyFull      = errors.New("lobby is full")
	ErrNickTaken      = errors.New("nickname already taken in this lobby")
	ErrNotHost        = errors.New("only the host can start the game")

	ErrGameNotFound  = errors.New("no started game for this lobby")
	ErrGameFinished  = errors.New("game is already finished")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrCellOccupied  = errors.New("cell is already occupied")
	ErrOutOfBounds   = errors.New("cell is out of bounds")
	ErrIllegalMove   = errors.New("move is not allowed")
	ErrTooFewPlayers = errors.New("at least two players are required")
)

// Reason - maps a known error to its short machine-readable reason string.
// Clients match on these, not on the error text.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrLobbyNotFound), errors.Is(err, ErrPlayerNotFound), errors.Is(err, ErrGameNotFound):
		return "not-found"
	case errors.Is(err, ErrLobbyStarted):
		return "already-started"
	case errors.Is(err, ErrLobbyFull):
		return "full"
	case errors.Is(err, ErrNickTaken):
		return "duplicate-nick"
	case errors.Is(err, ErrNotHost):
		return "not-host"
	case errors.Is(err, ErrGameFinished):
		return "game-over"
	case errors.Is(err, ErrNotYourTurn):
		return "not-your-turn"
	case errors.Is(err, ErrCellOccupied):
		return "occupied"
	case errors.Is(err, ErrOutOfBounds):
		return "out-of-bounds"
	case errors.Is(err, ErrIllegalMove):
		return "illegal-move"
	case errors.Is(err, ErrTooFewPlayers):
		return "too-few-players"
	default:
		return "internal"
	}
}
