// Package game runs powerchess sessions: turn sequencing, powerup
// activation, the AI opponent and save/resume.
package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hailam/powerchess/internal/board"
	"github.com/hailam/powerchess/internal/config"
	"github.com/hailam/powerchess/internal/obslog"
	"github.com/hailam/powerchess/internal/powerup"
	"github.com/hailam/powerchess/internal/rules"
	"github.com/hailam/powerchess/internal/storage"
)

// SessionHandle identifies a session within a Manager.
type SessionHandle string

func (h SessionHandle) String() string { return string(h) }

// Manager owns every open session. Sessions share nothing; each intent
// locks only its own session.
type Manager struct {
	mu       sync.RWMutex
	sessions map[SessionHandle]*Session
	store    storage.Store
}

// NewManager creates a manager. store may be nil, in which case Save,
// Resume and Finish's result recording are unavailable.
func NewManager(store storage.Store) *Manager {
	return &Manager{
		sessions: make(map[SessionHandle]*Session),
		store:    store,
	}
}

// NewGame validates cfg and starts a session from its start position.
func (m *Manager) NewGame(cfg config.GameConfig) (SessionHandle, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	start, err := cfg.StartPosition()
	if err != nil {
		return "", err
	}
	h := SessionHandle(uuid.NewString())
	s, err := newSession(string(h), cfg, start, powerup.Meters{})
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.sessions[h] = s
	m.mu.Unlock()

	obslog.L().Info("game started",
		zap.String("session", string(h)),
		zap.String("fen", start.ToFEN()),
		zap.String("ai_side", s.aiSide.String()),
		zap.Int("depth", s.depth))
	return h, nil
}

func (m *Manager) session(h SessionHandle) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[h]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, h)
	}
	return s, nil
}

// do runs fn under the session lock and returns the resulting snapshot.
func (m *Manager) do(h SessionHandle, fn func(*Session) error) (Snapshot, error) {
	s, err := m.session(h)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s); err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// Snapshot returns the current observable state.
func (m *Manager) Snapshot(h SessionHandle) (Snapshot, error) {
	return m.do(h, func(*Session) error { return nil })
}

// SubmitMove plays from->to for the side to move. promo selects the
// promotion piece; NoPieceType promotes to a queen.
func (m *Manager) SubmitMove(h SessionHandle, from, to board.Square, promo board.PieceType) (Snapshot, error) {
	return m.do(h, func(s *Session) error {
		return s.submitMove(from, to, promo)
	})
}

// SubmitUCI plays a move written in UCI notation, e.g. "e7e8q".
func (m *Manager) SubmitUCI(h SessionHandle, uci string) (Snapshot, error) {
	return m.do(h, func(s *Session) error {
		mv, err := board.ParseMove(uci, s.current())
		if err != nil {
			return fmt.Errorf("%w: %v", board.ErrIllegalMove, err)
		}
		return s.submitMove(mv.From(), mv.To(), mv.Promotion())
	})
}

// RequestAIMove lets the engine take its turn. ctx bounds the search; when
// it ends early the best move of the last finished depth is played.
func (m *Manager) RequestAIMove(ctx context.Context, h SessionHandle) (Snapshot, error) {
	return m.do(h, func(s *Session) error {
		return s.requestAIMove(ctx)
	})
}

// ActivatePowerup spends side's full meter on kind with the given targets.
func (m *Manager) ActivatePowerup(h SessionHandle, side board.Color, kind powerup.Kind, targets []board.Square) (Snapshot, error) {
	return m.do(h, func(s *Session) error {
		return s.activatePowerup(side, kind, targets)
	})
}

// ChopperStrike removes the enemy piece on sq during a chopper session.
func (m *Manager) ChopperStrike(h SessionHandle, sq board.Square) (Snapshot, error) {
	return m.do(h, func(s *Session) error {
		return s.strike(s.expecting(), sq)
	})
}

// EndChopper ends a chopper session before its strikes run out.
func (m *Manager) EndChopper(h SessionHandle) (Snapshot, error) {
	return m.do(h, func(s *Session) error {
		return s.endChopper(s.expecting())
	})
}

// Undo rolls the session back by one history step.
func (m *Manager) Undo(h SessionHandle) (Snapshot, error) {
	return m.do(h, func(s *Session) error {
		return s.undo()
	})
}

// Close discards a session.
func (m *Manager) Close(h SessionHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, h)
	}
	s.engine.Stop()
	delete(m.sessions, h)
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Finish records the result of a finished human-versus-AI game in the
// store, then closes the session. Unfinished games are closed without a
// record.
func (m *Manager) Finish(ctx context.Context, h SessionHandle) error {
	s, err := m.session(h)
	if err != nil {
		return err
	}
	s.mu.Lock()
	result, ok := s.result()
	s.mu.Unlock()

	if ok && m.store != nil {
		if err := m.store.RecordResult(ctx, result); err != nil {
			return fmt.Errorf("record result: %w", err)
		}
	}
	return m.Close(h)
}

// result describes the game from the human side.
func (s *Session) result() (storage.GameResult, bool) {
	if !s.outcome.IsTerminal() || s.aiSide == board.NoColor {
		return storage.GameResult{}, false
	}
	return storage.GameResult{
		Won:      s.outcome.Kind == rules.Checkmate && s.outcome.Side != s.aiSide,
		Draw:     s.outcome.IsDraw(),
		Depth:    s.depth,
		Outcome:  s.outcome.Kind.String(),
		Duration: time.Since(s.started),
	}, true
}

// Stats returns the statistics kept by the store.
func (m *Manager) Stats(ctx context.Context) (*storage.GameStats, error) {
	if m.store == nil {
		return nil, ErrNoStore
	}
	return m.store.Stats(ctx)
}
