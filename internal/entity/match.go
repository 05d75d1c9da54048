package entity

import "time"

// MatchRecord is the archived outcome of a finished match. Live session
// state never leaves memory; only results are persisted.
type MatchRecord struct {
	Code       string         `json:"code"`
	Format     string         `json:"format"`
	Winner     string         `json:"winner"` // winner's nick, or "draw"
	Scores     map[string]int `json:"scores"` // nick -> owned cells
	Moves      int            `json:"moves"`
	FinishedAt time.Time      `json:"finished_at"`
}
