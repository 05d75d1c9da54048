package majority

// State is an independent snapshot of an engine. Mutating the engine
// after taking a snapshot never changes it, so callers can hand it to
// encoders without holding the store lock.
type State struct {
	Size          int            `json:"size"`
	Board         [][]int        `json:"board"`
	Players       []string       `json:"players"`
	TurnIdx       int            `json:"turn_idx"`
	CurrentPlayer string         `json:"current_player_id"`
	Scores        map[string]int `json:"scores"`
	Winner        string         `json:"winner,omitempty"`
	GameOver      bool           `json:"game_over"`
	HistoryLen    int            `json:"history_len"`
}

// State - copies the current engine state into a snapshot.
func (that *Engine) State() *State {
	board := make([][]int, that.size)
	for r := range board {
		board[r] = make([]int, that.size)
		for c := range board[r] {
			board[r][c] = int(that.at(r, c))
		}
	}

	scores := make(map[string]int, len(that.players))
	for _, id := range that.players {
		scores[id] = 0
	}
	for _, v := range that.board {
		if v != emptyCell {
			scores[that.players[v-1]]++
		}
	}

	players := make([]string, len(that.players))
	copy(players, that.players)

	return &State{
		Size:          that.size,
		Board:         board,
		Players:       players,
		TurnIdx:       that.turnIdx,
		CurrentPlayer: that.CurrentPlayer(),
		Scores:        scores,
		Winner:        that.winner,
		GameOver:      that.IsFinished(),
		HistoryLen:    len(that.history),
	}
}
