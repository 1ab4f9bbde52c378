package game

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hailam/powerchess/internal/board"
	"github.com/hailam/powerchess/internal/config"
	"github.com/hailam/powerchess/internal/engine"
	"github.com/hailam/powerchess/internal/obslog"
	"github.com/hailam/powerchess/internal/powerup"
	"github.com/hailam/powerchess/internal/rules"
)

// step is one entry of the game history.
type step struct {
	pos *board.Position
	// note is the log text for the step; empty for the start position.
	note string
	// chopper is the session still running after this step, if any.
	chopper *powerup.ChopperSession
}

// Session is one game: its position history, meters, chopper sub-state and
// AI. All methods expect s.mu to be held by the caller.
type Session struct {
	mu sync.Mutex

	id       string
	aiSide   board.Color
	depth    int
	engine   *engine.Engine
	powerups *powerup.Controller
	history  []step
	outcome  rules.Outcome
	started  time.Time
	log      *zap.Logger
}

func newSession(id string, cfg config.GameConfig, start *board.Position, meters powerup.Meters) (*Session, error) {
	aiSide, err := cfg.AIColor()
	if err != nil {
		return nil, err
	}
	pc, err := cfg.PowerupConfig()
	if err != nil {
		return nil, err
	}
	ctrl := powerup.NewController(pc)
	ctrl.SetMeters(meters)

	s := &Session{
		id:       id,
		aiSide:   aiSide,
		depth:    cfg.Depth(),
		engine:   engine.New(cfg.EngineOptions()),
		powerups: ctrl,
		history:  []step{{pos: start.Copy()}},
		started:  time.Now(),
		log:      obslog.L().With(zap.String("session", id)),
	}
	s.classify()
	return s, nil
}

func (s *Session) current() *board.Position {
	return s.history[len(s.history)-1].pos
}

func (s *Session) chopper() *powerup.ChopperSession {
	return s.history[len(s.history)-1].chopper
}

// push appends a step and re-classifies the game.
func (s *Session) push(pos *board.Position, note string, chopper *powerup.ChopperSession) {
	s.history = append(s.history, step{pos: pos, note: note, chopper: chopper})
	s.classify()
}

func (s *Session) classify() {
	if s.chopper() != nil {
		// Mid-session positions have the controller to move again, so
		// they are never terminal.
		s.outcome = rules.Outcome{Kind: rules.Ongoing, Side: board.NoColor}
		return
	}
	s.outcome = rules.Classify(s.current(), s.keys())
	if s.outcome.IsTerminal() {
		s.log.Info("game over",
			zap.String("outcome", s.outcome.Kind.String()),
			zap.String("result", s.outcome.Result()))
	}
}

// keys returns the repetition keys of every position reached between
// turns. Steps inside a chopper session are skipped.
func (s *Session) keys() []board.Key {
	keys := make([]board.Key, 0, len(s.history))
	for _, st := range s.history {
		if st.chopper == nil {
			keys = append(keys, st.pos.Key())
		}
	}
	return keys
}

func (s *Session) hashes() []uint64 {
	out := make([]uint64, 0, len(s.history))
	for _, st := range s.history {
		if st.chopper == nil {
			out = append(out, st.pos.Hash)
		}
	}
	return out
}

func (s *Session) phase() Phase {
	switch {
	case s.outcome.IsTerminal():
		return GameOver
	case s.chopper() != nil:
		return PowerupActive
	default:
		return AwaitingMove
	}
}

// expecting returns the side whose intent is expected next.
func (s *Session) expecting() board.Color {
	if ch := s.chopper(); ch != nil {
		return ch.Side
	}
	return s.current().SideToMove
}

func (s *Session) snapshot() Snapshot {
	pos := s.current()
	snap := Snapshot{
		ID:         s.id,
		FEN:        pos.ToFEN(),
		Position:   pos.Copy(),
		Outcome:    s.outcome,
		Meters:     s.powerups.Meters(),
		Phase:      s.phase(),
		SideToMove: s.expecting(),
		AISide:     s.aiSide,
	}
	if snap.Phase == AwaitingMove {
		legal := pos.GenerateLegalMoves()
		snap.LegalMoves = append([]board.Move(nil), legal.Slice()...)
		snap.Moves = legal.Strings()
		snap.CanActivate = s.powerups.CanActivate(pos.SideToMove)
	}
	if ch := s.chopper(); ch != nil {
		c := *ch
		c.Struck = append([]board.Square(nil), ch.Struck...)
		snap.Chopper = &c
	}
	snap.Log = make([]string, 0, len(s.history)-1)
	for _, st := range s.history[1:] {
		snap.Log = append(snap.Log, st.note)
	}
	return snap
}

func (s *Session) checkPlayable() error {
	if s.outcome.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrGameOver, s.outcome)
	}
	return nil
}

// submitMove plays a human move. A missing promotion piece defaults to a
// queen.
func (s *Session) submitMove(from, to board.Square, promo board.PieceType) error {
	if err := s.checkPlayable(); err != nil {
		return err
	}
	if s.chopper() != nil {
		return ErrPowerupActive
	}
	pos := s.current()
	if s.aiSide != board.NoColor && pos.SideToMove == s.aiSide {
		return fmt.Errorf("%w: %s is played by the AI", ErrNotYourTurn, s.aiSide)
	}

	legal := pos.GenerateLegalMoves()
	m, ok := legal.Find(from, to, promo)
	if !ok && promo == board.NoPieceType {
		m, ok = legal.Find(from, to, board.Queen)
	}
	if !ok {
		move := board.NewMove(from, to)
		if promo != board.NoPieceType {
			move = board.NewPromotion(from, to, promo)
		}
		return &board.IllegalMoveError{Move: move, FEN: pos.ToFEN()}
	}
	return s.play(m)
}

// play applies a legal move and charges the mover's meter for a capture.
func (s *Session) play(m board.Move) error {
	pos := s.current()
	captured := m.CapturedPiece(pos)
	san := m.ToSAN(pos)

	next, err := board.Apply(pos, m)
	if err != nil {
		return err
	}
	if captured != board.NoPiece {
		added := s.powerups.OnCapture(pos.SideToMove, captured.Type())
		s.log.Debug("meter charged",
			zap.String("side", pos.SideToMove.String()),
			zap.String("captured", captured.Type().String()),
			zap.Int("added", added))
	}
	s.push(next, san, nil)
	return nil
}

// requestAIMove lets the engine act for the side it plays. With no AI side
// configured it acts for whichever side is expected.
func (s *Session) requestAIMove(ctx context.Context) error {
	if err := s.checkPlayable(); err != nil {
		if k := s.outcome.Kind; k == rules.Checkmate || k == rules.Stalemate {
			return fmt.Errorf("%w: %w", err, engine.ErrNoLegalMove)
		}
		return err
	}
	side := s.expecting()
	if s.aiSide != board.NoColor && side != s.aiSide {
		return fmt.Errorf("%w: %s is not played by the AI", ErrNotYourTurn, side)
	}

	if ch := s.chopper(); ch != nil {
		sq, ok := s.engine.ChooseStrikeTarget(s.current(), ch.Side)
		if !ok {
			return s.endChopper(side)
		}
		return s.strike(side, sq)
	}

	start := time.Now()
	res, err := s.engine.Search(ctx, s.current(), s.depth, s.hashes())
	if err != nil {
		return fmt.Errorf("ai move: %w", err)
	}
	s.log.Debug("ai move",
		zap.String("move", res.Move.String()),
		zap.Int("score", res.Score),
		zap.Int("depth", res.Depth),
		zap.Uint64("nodes", res.Nodes),
		zap.Duration("took", time.Since(start)))
	return s.play(res.Move)
}

// activatePowerup spends side's meter on kind. A rejected effect restores
// the meter.
func (s *Session) activatePowerup(side board.Color, kind powerup.Kind, targets []board.Square) error {
	if err := s.checkPlayable(); err != nil {
		return err
	}
	if s.chopper() != nil {
		return ErrPowerupActive
	}
	pos := s.current()
	if pos.SideToMove != side {
		return fmt.Errorf("%w: %s to move", ErrNotYourTurn, pos.SideToMove)
	}

	before := s.powerups.Meters()
	effect, err := s.powerups.TryActivate(side, kind, targets)
	if err != nil {
		return err
	}
	next, err := powerup.ApplyEffect(pos, effect)
	if err != nil {
		s.powerups.SetMeters(before)
		return err
	}

	var chopper *powerup.ChopperSession
	if ce, ok := effect.(powerup.ChopperEffect); ok {
		session := ce.Session
		chopper = &session
	}
	s.log.Info("powerup activated",
		zap.String("side", side.String()),
		zap.String("kind", kind.String()),
		zap.Int("targets", len(targets)))
	s.push(next, effectNote(kind, targets), chopper)
	return nil
}

func (s *Session) strike(side board.Color, sq board.Square) error {
	ch := s.chopper()
	if ch == nil {
		return ErrNoChopper
	}
	if side != ch.Side {
		return fmt.Errorf("%w: chopper belongs to %s", ErrNotYourTurn, ch.Side)
	}
	next, session, err := powerup.Strike(s.current(), *ch, sq)
	if err != nil {
		return err
	}
	var state *powerup.ChopperSession
	if session.Active() {
		state = &session
	}
	s.push(next, effectNote(powerup.ChopperGunner, []board.Square{sq}), state)
	return nil
}

func (s *Session) endChopper(side board.Color) error {
	ch := s.chopper()
	if ch == nil {
		return ErrNoChopper
	}
	if side != ch.Side {
		return fmt.Errorf("%w: chopper belongs to %s", ErrNotYourTurn, ch.Side)
	}
	next, _ := powerup.EndChopper(s.current(), *ch)
	s.push(next, powerup.ChopperGunner.String()+"@end", nil)
	return nil
}

// undo drops the last history step. Meters are left as they are.
func (s *Session) undo() error {
	if len(s.history) < 2 {
		return ErrNothingToUndo
	}
	s.history[len(s.history)-1] = step{}
	s.history = s.history[:len(s.history)-1]
	s.classify()
	return nil
}

func effectNote(kind powerup.Kind, targets []board.Square) string {
	if len(targets) == 0 {
		return kind.String()
	}
	names := make([]string, len(targets))
	for i, sq := range targets {
		names[i] = sq.String()
	}
	return kind.String() + "@" + strings.Join(names, ",")
}
