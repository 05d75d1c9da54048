package majority

import (
	"fmt"

	"github.com/lobbygames/majority-backend/internal/apperror"
)

const (
	// emptyCell marks an unowned board cell. Players are numbered 1..N
	// matching their index in the turn-order list (1-based).
	emptyCell = 0

	// WinnerDraw is reported when two or more players tie for the
	// highest cell count at game end.
	WinnerDraw = "draw"

	MinPlayers = 2
	MinSize    = 3
)

// neighborDeltas is the full 8-connected Moore neighborhood.
var neighborDeltas = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Coord is a board position. It marshals as a [row, col] pair.
type Coord struct {
	Row int
	Col int
}

func (that Coord) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%d,%d]", that.Row, that.Col)), nil
}

// MoveRecord is one entry of the append-only move history.
type MoveRecord struct {
	Player string `json:"player"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Flips  int    `json:"flips"`
}

// MoveResult describes an accepted move.
type MoveResult struct {
	Flips      []Coord `json:"flips"`
	NextPlayer string  `json:"next_player"`
}

// Engine holds the full state of one majority-capture match: the board,
// the fixed turn order and the winner, if any. It is not safe for
// concurrent use; the session store serializes access to it.
type Engine struct {
	size    int
	players []string
	turnIdx int
	board   []uint8 // row-major, size*size cells
	winner  string
	history []MoveRecord
}

// New - creates an engine for the given board dimension and ordered
// player list. Turn order is the list order; the first player moves first.
func New(size int, players []string) (*Engine, error) {
	if len(players) < MinPlayers {
		return nil, fmt.Errorf("%w: got %d", apperror.ErrTooFewPlayers, len(players))
	}

	if size < MinSize {
		return nil, fmt.Errorf("board size %d is too small", size)
	}

	ordered := make([]string, len(players))
	copy(ordered, players)

	return &Engine{
		size:    size,
		players: ordered,
		board:   make([]uint8, size*size),
	}, nil
}

// CurrentPlayer returns the id of the player whose turn it is.
func (that *Engine) CurrentPlayer() string {
	return that.players[that.turnIdx]
}

// Winner returns the winning player id, WinnerDraw, or "" while the
// match is still running.
func (that *Engine) Winner() string {
	return that.winner
}

func (that *Engine) IsFinished() bool {
	return that.winner != ""
}

func (that *Engine) idx(row, col int) int {
	return row*that.size + col
}

func (that *Engine) inBounds(row, col int) bool {
	return row >= 0 && row < that.size && col >= 0 && col < that.size
}

func (that *Engine) at(row, col int) uint8 {
	return that.board[that.idx(row, col)]
}

func (that *Engine) currentPlayerNum() uint8 {
	return uint8(that.turnIdx + 1)
}

// neighbors appends all in-bounds Moore neighbors of (row, col) to dst.
func (that *Engine) neighbors(dst []Coord, row, col int) []Coord {
	for _, d := range neighborDeltas {
		nr, nc := row+d[0], col+d[1]
		if that.inBounds(nr, nc) {
			dst = append(dst, Coord{Row: nr, Col: nc})
		}
	}
	return dst
}

func (that *Engine) countNeighbors(row, col int, val uint8) int {
	count := 0
	for _, d := range neighborDeltas {
		nr, nc := row+d[0], col+d[1]
		if that.inBounds(nr, nc) && that.at(nr, nc) == val {
			count++
		}
	}
	return count
}

func (that *Engine) pieceCounts() []int {
	counts := make([]int, len(that.players)+1)
	for _, v := range that.board {
		if v != emptyCell {
			counts[v]++
		}
	}
	return counts
}

// LegalMoves returns every cell the given player (1-based turn number)
// may occupy. Normally that is every empty cell. During the early-game
// window - at least one piece placed and no player holding more than one -
// cells 8-adjacent to another player's piece are excluded, so an opening
// piece cannot be dropped next to an opponent's and captured before any
// support exists. If the exclusion would leave no cell at all, the
// restriction is waived rather than stalling the game.
func (that *Engine) LegalMoves(playerNum int) []Coord {
	empty := make([]Coord, 0, len(that.board))
	for r := 0; r < that.size; r++ {
		for c := 0; c < that.size; c++ {
			if that.at(r, c) == emptyCell {
				empty = append(empty, Coord{Row: r, Col: c})
			}
		}
	}

	counts := that.pieceCounts()
	totalPlaced := 0
	openingWindow := true
	for _, n := range counts[1:] {
		totalPlaced += n
		if n > 1 {
			openingWindow = false
		}
	}

	if totalPlaced == 0 || !openingWindow {
		return empty
	}

	legal := make([]Coord, 0, len(empty))
	for _, cell := range empty {
		blocked := false
		for _, d := range neighborDeltas {
			nr, nc := cell.Row+d[0], cell.Col+d[1]
			if !that.inBounds(nr, nc) {
				continue
			}
			if v := that.at(nr, nc); v != emptyCell && v != uint8(playerNum) {
				blocked = true
				break
			}
		}
		if !blocked {
			legal = append(legal, cell)
		}
	}

	if len(legal) == 0 {
		return empty
	}
	return legal
}

// ValidateMove - checks whether the current player may occupy (row, col).
// Returns a sentinel error naming the first failed check, or nil.
func (that *Engine) ValidateMove(row, col int, playerID string) error {
	if that.IsFinished() {
		return apperror.ErrGameFinished
	}

	if playerID != that.CurrentPlayer() {
		return apperror.ErrNotYourTurn
	}

	if !that.inBounds(row, col) {
		return apperror.ErrOutOfBounds
	}

	if that.at(row, col) != emptyCell {
		return apperror.ErrCellOccupied
	}

	for _, cell := range that.LegalMoves(int(that.currentPlayerNum())) {
		if cell.Row == row && cell.Col == col {
			return nil
		}
	}

	return apperror.ErrIllegalMove
}

// ApplyMove - places the mover's piece, resolves the capture cascade,
// records history, advances the turn and evaluates terminal conditions.
// Rejections come back as sentinel errors; the engine never panics on
// bad input.
func (that *Engine) ApplyMove(row, col int, playerID string) (*MoveResult, error) {
	if err := that.ValidateMove(row, col, playerID); err != nil {
		return nil, err
	}

	mover := that.currentPlayerNum()
	that.board[that.idx(row, col)] = mover

	flips := that.resolveCaptures(row, col, mover)

	that.history = append(that.history, MoveRecord{
		Player: playerID,
		Row:    row,
		Col:    col,
		Flips:  len(flips),
	})

	that.turnIdx = (that.turnIdx + 1) % len(that.players)

	that.checkWinner()

	return &MoveResult{
		Flips:      flips,
		NextPlayer: that.CurrentPlayer(),
	}, nil
}

// resolveCaptures runs the breadth-first capture cascade seeded with the
// just-placed cell. An enemy neighbor flips when the mover holds strictly
// more of the neighbor's own 8-neighborhood than its current owner does;
// every flipped cell is re-queued since the board changed around it. The
// queue always drains: each flip strictly grows the mover's cell count
// and the board is finite.
func (that *Engine) resolveCaptures(row, col int, mover uint8) []Coord {
	flips := make([]Coord, 0)
	queue := []Coord{{Row: row, Col: col}}

	var scratch []Coord
	for len(queue) > 0 {
		cell := queue[0]
		queue = queue[1:]

		scratch = that.neighbors(scratch[:0], cell.Row, cell.Col)
		for _, n := range scratch {
			defender := that.at(n.Row, n.Col)
			if defender == emptyCell || defender == mover {
				continue
			}

			attackers := that.countNeighbors(n.Row, n.Col, mover)
			defenders := that.countNeighbors(n.Row, n.Col, defender)
			if attackers > defenders {
				that.board[that.idx(n.Row, n.Col)] = mover
				flips = append(flips, n)
				queue = append(queue, n)
			}
		}
	}

	return flips
}

// checkWinner finalizes the match when the board is full, or when at
// least two pieces have been placed and only one player still owns any
// (wipeout). A wipeout ends the game immediately even with empty cells
// left.
func (that *Engine) checkWinner() {
	counts := that.pieceCounts()

	empty := 0
	for _, v := range that.board {
		if v == emptyCell {
			empty++
		}
	}

	totalPlaced := 0
	active := 0
	for _, n := range counts[1:] {
		totalPlaced += n
		if n > 0 {
			active++
		}
	}

	if empty == 0 || (totalPlaced >= 2 && active == 1) {
		that.finalize(counts)
	}
}

func (that *Engine) finalize(counts []int) {
	best := 0
	maxScore := -1
	tie := false

	for num, score := range counts[1:] {
		switch {
		case score > maxScore:
			maxScore = score
			best = num + 1
			tie = false
		case score == maxScore:
			tie = true
		}
	}

	if tie {
		that.winner = WinnerDraw
		return
	}
	that.winner = that.players[best-1]
}
