// Package storage persists saved games and aggregate statistics.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no game is saved under an id.
var ErrNotFound = errors.New("storage: not found")

// SavedGame is one serialized position plus the meters needed to resume.
type SavedGame struct {
	ID      string    `json:"id"`
	FEN     string    `json:"fen"`
	Meters  [2]int    `json:"meters"`
	SavedAt time.Time `json:"saved_at"`
}

// GameResult describes a finished game from the human player's side.
type GameResult struct {
	Won      bool
	Draw     bool
	Depth    int
	Outcome  string
	Duration time.Duration
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed    int            `json:"games_played"`
	Wins           int            `json:"wins"`
	Losses         int            `json:"losses"`
	Draws          int            `json:"draws"`
	WinsByDepth    map[int]int    `json:"wins_by_depth"`
	ByOutcome      map[string]int `json:"by_outcome"`
	TotalPlayTime  time.Duration  `json:"total_play_time"`
	LongestWinStrk int            `json:"longest_win_streak"`
	CurrentStreak  int            `json:"current_streak"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByDepth: make(map[int]int),
		ByOutcome:   make(map[string]int),
	}
}

// Record folds a finished game into the statistics.
func (s *GameStats) Record(result GameResult) {
	if s.WinsByDepth == nil {
		s.WinsByDepth = make(map[int]int)
	}
	if s.ByOutcome == nil {
		s.ByOutcome = make(map[string]int)
	}

	s.GamesPlayed++
	s.TotalPlayTime += result.Duration
	if result.Outcome != "" {
		s.ByOutcome[result.Outcome]++
	}

	switch {
	case result.Draw:
		s.Draws++
		s.CurrentStreak = 0
	case result.Won:
		s.Wins++
		s.CurrentStreak++
		if s.CurrentStreak > s.LongestWinStrk {
			s.LongestWinStrk = s.CurrentStreak
		}
		s.WinsByDepth[result.Depth]++
	default:
		s.Losses++
		s.CurrentStreak = 0
	}
}

// GetWinRate returns the win rate as a percentage (0-100)
func (s *GameStats) GetWinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}

// Store saves games by session id.
type Store interface {
	SaveGame(ctx context.Context, g SavedGame) error
	// LoadGame returns ErrNotFound for an unknown id.
	LoadGame(ctx context.Context, id string) (SavedGame, error)
	DeleteGame(ctx context.Context, id string) error
	RecordResult(ctx context.Context, result GameResult) error
	Stats(ctx context.Context) (*GameStats, error)
	Close() error
}
