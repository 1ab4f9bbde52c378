package game

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hailam/powerchess/internal/board"
	"github.com/hailam/powerchess/internal/config"
	"github.com/hailam/powerchess/internal/obslog"
	"github.com/hailam/powerchess/internal/storage"
)

// Save writes the current position and meters under the session id. A
// running chopper session cannot be saved.
func (m *Manager) Save(ctx context.Context, h SessionHandle) error {
	if m.store == nil {
		return ErrNoStore
	}
	s, err := m.session(h)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.chopper() != nil {
		s.mu.Unlock()
		return ErrPowerupActive
	}
	saved := storage.SavedGame{
		ID:      s.id,
		FEN:     s.current().ToFEN(),
		Meters:  s.powerups.Meters(),
		SavedAt: time.Now().UTC(),
	}
	s.mu.Unlock()

	if err := m.store.SaveGame(ctx, saved); err != nil {
		return fmt.Errorf("save game %s: %w", h, err)
	}
	obslog.L().Info("game saved", zap.String("session", saved.ID), zap.String("fen", saved.FEN))
	return nil
}

// Resume reopens a saved game with cfg's AI and meter settings. The
// resumed session keeps the saved id; an open session with that id is
// replaced. History starts fresh at the saved position.
func (m *Manager) Resume(ctx context.Context, id string, cfg config.GameConfig) (SessionHandle, error) {
	if m.store == nil {
		return "", ErrNoStore
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	saved, err := m.store.LoadGame(ctx, id)
	if err != nil {
		return "", err
	}
	pos, err := board.ParseFEN(saved.FEN)
	if err != nil {
		return "", fmt.Errorf("resume %s: %w", id, err)
	}
	s, err := newSession(saved.ID, cfg, pos, saved.Meters)
	if err != nil {
		return "", err
	}

	h := SessionHandle(saved.ID)
	m.mu.Lock()
	if old, ok := m.sessions[h]; ok {
		old.engine.Stop()
	}
	m.sessions[h] = s
	m.mu.Unlock()

	obslog.L().Info("game resumed", zap.String("session", saved.ID), zap.Time("saved_at", saved.SavedAt))
	return h, nil
}
