package game

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hailam/powerchess/internal/board"
	"github.com/hailam/powerchess/internal/config"
	"github.com/hailam/powerchess/internal/engine"
	"github.com/hailam/powerchess/internal/powerup"
	"github.com/hailam/powerchess/internal/rules"
	"github.com/hailam/powerchess/internal/storage"
)

func testConfig(fen, aiSide string) config.GameConfig {
	cfg := config.Default()
	cfg.StartFEN = fen
	cfg.AISide = aiSide
	cfg.AIDepth = 2
	cfg.TTSizeMB = 1
	return cfg
}

func newGame(t *testing.T, m *Manager, cfg config.GameConfig) SessionHandle {
	t.Helper()
	h, err := m.NewGame(cfg)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return h
}

func play(t *testing.T, m *Manager, h SessionHandle, moves ...string) Snapshot {
	t.Helper()
	var snap Snapshot
	for _, mv := range moves {
		var err error
		snap, err = m.SubmitUCI(h, mv)
		if err != nil {
			t.Fatalf("move %s: %v", mv, err)
		}
	}
	return snap
}

func TestHumanAndAIAlternate(t *testing.T) {
	m := NewManager(nil)
	h := newGame(t, m, testConfig("", "black"))

	snap, err := m.Snapshot(h)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.FEN != board.StartFEN || len(snap.LegalMoves) != 20 || snap.Phase != AwaitingMove {
		t.Fatalf("initial snapshot = %q, %d moves, %v", snap.FEN, len(snap.LegalMoves), snap.Phase)
	}

	if _, err := m.SubmitMove(h, board.E2, board.E4, board.NoPieceType); err != nil {
		t.Fatalf("SubmitMove: %v", err)
	}
	if _, err := m.SubmitMove(h, board.E7, board.E5, board.NoPieceType); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("human move for the AI side = %v, want ErrNotYourTurn", err)
	}

	snap, err = m.RequestAIMove(context.Background(), h)
	if err != nil {
		t.Fatalf("RequestAIMove: %v", err)
	}
	if snap.SideToMove != board.White || len(snap.Log) != 2 || snap.Log[0] != "e4" {
		t.Errorf("after AI reply: side %v, log %v", snap.SideToMove, snap.Log)
	}
	if _, err := m.RequestAIMove(context.Background(), h); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("AI move on the human turn = %v, want ErrNotYourTurn", err)
	}
}

func TestIllegalMoveLeavesSessionUnchanged(t *testing.T) {
	m := NewManager(nil)
	h := newGame(t, m, testConfig("", "none"))

	_, err := m.SubmitMove(h, board.E2, board.E5, board.NoPieceType)
	var illegal *board.IllegalMoveError
	if !errors.Is(err, board.ErrIllegalMove) || !errors.As(err, &illegal) {
		t.Fatalf("SubmitMove(e2e5) = %v, want *IllegalMoveError", err)
	}
	snap, _ := m.Snapshot(h)
	if snap.FEN != board.StartFEN || len(snap.Log) != 0 {
		t.Errorf("session changed after a rejected move: %q %v", snap.FEN, snap.Log)
	}
}

func TestCheckmateIsAbsorbing(t *testing.T) {
	m := NewManager(nil)
	h := newGame(t, m, testConfig("", "none"))

	snap := play(t, m, h, "f2f3", "e7e5", "g2g4", "d8h4")
	want := rules.Outcome{Kind: rules.Checkmate, Side: board.Black}
	if snap.Outcome != want || snap.Phase != GameOver {
		t.Fatalf("outcome %v phase %v, want black mates", snap.Outcome, snap.Phase)
	}
	if len(snap.LegalMoves) != 0 {
		t.Errorf("game over snapshot lists %d legal moves", len(snap.LegalMoves))
	}
	if snap.Log[3] != "Qh4#" {
		t.Errorf("last SAN = %q, want Qh4#", snap.Log[3])
	}
	if _, err := m.SubmitMove(h, board.A2, board.A3, board.NoPieceType); !errors.Is(err, ErrGameOver) {
		t.Errorf("move after mate = %v, want ErrGameOver", err)
	}
	_, err := m.RequestAIMove(context.Background(), h)
	if !errors.Is(err, engine.ErrNoLegalMove) || !errors.Is(err, ErrGameOver) {
		t.Errorf("AI move after mate = %v, want ErrNoLegalMove and ErrGameOver", err)
	}

	snap, err = m.Undo(h)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if snap.Phase != AwaitingMove || snap.SideToMove != board.Black || len(snap.Log) != 3 {
		t.Errorf("after undo: phase %v side %v log %v", snap.Phase, snap.SideToMove, snap.Log)
	}
}

func TestRepetitionDraw(t *testing.T) {
	m := NewManager(nil)
	h := newGame(t, m, testConfig("", "none"))

	snap := play(t, m, h, "g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1")
	if snap.Outcome.IsTerminal() {
		t.Fatalf("drawn too early: %v", snap.Outcome)
	}
	snap = play(t, m, h, "f6g8")
	if snap.Outcome.Kind != rules.DrawRepetition || snap.Phase != GameOver {
		t.Errorf("outcome = %v, want draw by repetition", snap.Outcome)
	}
}

func TestUndoAtStart(t *testing.T) {
	m := NewManager(nil)
	h := newGame(t, m, testConfig("", "none"))
	if _, err := m.Undo(h); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo at start = %v, want ErrNothingToUndo", err)
	}
}

func TestCaptureChargesMeter(t *testing.T) {
	m := NewManager(nil)
	h := newGame(t, m, testConfig("4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1", "none"))

	snap := play(t, m, h, "e4d5")
	if diff := cmp.Diff(powerup.Meters{9, 0}, snap.Meters); diff != "" {
		t.Errorf("meters mismatch (-want +got):\n%s", diff)
	}
	if snap.Log[0] != "exd5" {
		t.Errorf("SAN = %q, want exd5", snap.Log[0])
	}
}

// airstrikeGame reaches a position where White has a full meter and is to
// move: 1. exd5 Kf7.
func airstrikeGame(t *testing.T, m *Manager) SessionHandle {
	t.Helper()
	cfg := testConfig("4k3/8/2ppp3/3n4/4P3/8/8/4K3 w - - 0 1", "none")
	cfg.MaxCharge = 1
	h := newGame(t, m, cfg)
	snap := play(t, m, h, "e4d5")
	if snap.Meters[board.White] != 1 {
		t.Fatalf("white meter = %d, want full", snap.Meters[board.White])
	}
	if snap.CanActivate {
		t.Errorf("black can activate with an empty meter")
	}
	snap = play(t, m, h, "e8f7")
	if !snap.CanActivate {
		t.Fatalf("white cannot activate with a full meter")
	}
	return h
}

func TestActivateAirstrike(t *testing.T) {
	m := NewManager(nil)
	h := airstrikeGame(t, m)

	if _, err := m.ActivatePowerup(h, board.Black, powerup.Nuke, nil); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("activation out of turn = %v, want ErrNotYourTurn", err)
	}

	snap, err := m.ActivatePowerup(h, board.White, powerup.Airstrike, powerup.AirstrikePattern(board.D6))
	if err != nil {
		t.Fatalf("ActivatePowerup: %v", err)
	}
	if want := "8/5k2/8/3P4/8/8/8/4K3 b - - 0 2"; snap.FEN != want {
		t.Errorf("FEN = %q, want %q", snap.FEN, want)
	}
	if snap.Meters[board.White] != 0 {
		t.Errorf("meter not reset: %v", snap.Meters)
	}
	if got := snap.Log[2]; got != "airstrike@c5,d5,e5,c6,d6,e6,c7,d7,e7" {
		t.Errorf("log entry = %q", got)
	}
	if snap.Phase != AwaitingMove || snap.SideToMove != board.Black {
		t.Errorf("phase %v side %v, want black to move", snap.Phase, snap.SideToMove)
	}
}

func TestRejectedActivationKeepsMeter(t *testing.T) {
	m := NewManager(nil)
	h := airstrikeGame(t, m)

	_, err := m.ActivatePowerup(h, board.White, powerup.Airstrike, []board.Square{board.F7})
	var invalid *powerup.InvalidTargetError
	if !errors.Is(err, powerup.ErrInvalidTarget) || !errors.As(err, &invalid) {
		t.Fatalf("airstrike on the king = %v, want *InvalidTargetError", err)
	}
	snap, _ := m.Snapshot(h)
	if snap.Meters[board.White] != 1 || snap.FEN != "8/5k2/2ppp3/3P4/8/8/8/4K3 w - - 1 2" {
		t.Errorf("session changed after rejection: %v %q", snap.Meters, snap.FEN)
	}

	// Black has no charge at all.
	if _, err := m.Undo(h); err != nil {
		t.Fatal(err)
	}
	if _, err := m.ActivatePowerup(h, board.Black, powerup.Nuke, nil); !errors.Is(err, powerup.ErrActivationRejected) {
		t.Errorf("empty meter activation = %v, want ErrActivationRejected", err)
	}
}

func TestChopperSession(t *testing.T) {
	m := NewManager(nil)
	cfg := testConfig("4k3/1ppp4/8/8/8/2p5/3P4/4K3 w - - 0 1", "none")
	cfg.MaxCharge = 1
	h := newGame(t, m, cfg)
	play(t, m, h, "d2c3", "e8e7")

	if _, err := m.ChopperStrike(h, board.B7); !errors.Is(err, ErrNoChopper) {
		t.Errorf("strike without a session = %v, want ErrNoChopper", err)
	}

	snap, err := m.ActivatePowerup(h, board.White, powerup.ChopperGunner, nil)
	if err != nil {
		t.Fatalf("ActivatePowerup: %v", err)
	}
	if snap.Phase != PowerupActive || snap.Chopper == nil || snap.Chopper.Remaining != 3 {
		t.Fatalf("phase %v chopper %+v, want an active session", snap.Phase, snap.Chopper)
	}
	if len(snap.LegalMoves) != 0 {
		t.Errorf("legal moves listed during a chopper session")
	}
	if _, err := m.SubmitMove(h, board.C3, board.C4, board.NoPieceType); !errors.Is(err, ErrPowerupActive) {
		t.Errorf("move during chopper = %v, want ErrPowerupActive", err)
	}
	if _, err := m.ActivatePowerup(h, board.White, powerup.Nuke, nil); !errors.Is(err, ErrPowerupActive) {
		t.Errorf("second activation = %v, want ErrPowerupActive", err)
	}
	if _, err := m.ChopperStrike(h, board.E7); !errors.Is(err, powerup.ErrInvalidTarget) {
		t.Errorf("strike on the king = %v, want ErrInvalidTarget", err)
	}

	snap, err = m.ChopperStrike(h, board.B7)
	if err != nil {
		t.Fatalf("ChopperStrike: %v", err)
	}
	if snap.Chopper.Remaining != 2 || snap.SideToMove != board.White {
		t.Errorf("after strike: %+v side %v", snap.Chopper, snap.SideToMove)
	}

	// Undo restores the session as it was before the strike.
	snap, err = m.Undo(h)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if snap.Chopper == nil || snap.Chopper.Remaining != 3 || snap.Position.PieceAt(board.B7) == board.NoPiece {
		t.Fatalf("undo did not restore the strike: %+v", snap.Chopper)
	}
	if _, err := m.ChopperStrike(h, board.B7); err != nil {
		t.Fatalf("ChopperStrike: %v", err)
	}

	// The engine strikes for the controller: pawns tie, lowest square wins.
	snap, err = m.RequestAIMove(context.Background(), h)
	if err != nil {
		t.Fatalf("RequestAIMove: %v", err)
	}
	if diff := cmp.Diff([]board.Square{board.B7, board.C7}, snap.Chopper.Struck); diff != "" {
		t.Errorf("struck squares mismatch (-want +got):\n%s", diff)
	}

	snap, err = m.EndChopper(h)
	if err != nil {
		t.Fatalf("EndChopper: %v", err)
	}
	if want := "8/3pk3/8/8/8/2P5/8/4K3 b - - 0 2"; snap.FEN != want {
		t.Errorf("FEN = %q, want %q", snap.FEN, want)
	}
	if snap.Phase != AwaitingMove || snap.Chopper != nil {
		t.Errorf("session still active after EndChopper")
	}
	want := []string{"dxc3", "Ke7", "chopper_gunner", "chopper_gunner@b7", "chopper_gunner@c7", "chopper_gunner@end"}
	if diff := cmp.Diff(want, snap.Log); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestChopperExhaustionPassesTurn(t *testing.T) {
	m := NewManager(nil)
	cfg := testConfig("4k3/1ppp4/8/8/8/2p5/3P4/4K3 w - - 0 1", "none")
	cfg.MaxCharge = 1
	cfg.ChopperPlies = 2
	h := newGame(t, m, cfg)
	play(t, m, h, "d2c3", "e8e7")

	if _, err := m.ActivatePowerup(h, board.White, powerup.ChopperGunner, nil); err != nil {
		t.Fatalf("ActivatePowerup: %v", err)
	}
	if _, err := m.ChopperStrike(h, board.D7); err != nil {
		t.Fatalf("ChopperStrike: %v", err)
	}
	snap, err := m.ChopperStrike(h, board.C7)
	if err != nil {
		t.Fatalf("ChopperStrike: %v", err)
	}
	if snap.Phase != AwaitingMove || snap.SideToMove != board.Black || snap.Chopper != nil {
		t.Errorf("phase %v side %v chopper %+v, want black to move", snap.Phase, snap.SideToMove, snap.Chopper)
	}
	if _, err := m.EndChopper(h); !errors.Is(err, ErrNoChopper) {
		t.Errorf("EndChopper after exhaustion = %v, want ErrNoChopper", err)
	}
}

func TestSessionNotFound(t *testing.T) {
	m := NewManager(nil)
	h := newGame(t, m, testConfig("", "none"))
	if err := m.Close(h); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := m.Snapshot(h); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Snapshot after close = %v, want ErrSessionNotFound", err)
	}
	if err := m.Close(h); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("double Close = %v, want ErrSessionNotFound", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d", m.Len())
	}
}

func TestNewGameRejectsBadConfig(t *testing.T) {
	m := NewManager(nil)
	if _, err := m.NewGame(testConfig("not a fen", "none")); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("NewGame = %v, want ErrInvalidConfig", err)
	}
}

func TestSaveAndResume(t *testing.T) {
	store, err := storage.OpenBadger(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	m := NewManager(store)
	cfg := testConfig("4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1", "none")
	h := newGame(t, m, cfg)
	before := play(t, m, h, "e4d5")

	if err := m.Save(ctx, h); err != nil {
		t.Fatalf("Save: %v", err)
	}

	other := NewManager(store)
	rh, err := other.Resume(ctx, h.String(), cfg)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if rh != h {
		t.Errorf("resumed handle = %s, want %s", rh, h)
	}
	after, _ := other.Snapshot(rh)
	if after.FEN != before.FEN || after.Meters != before.Meters {
		t.Errorf("resumed %q %v, want %q %v", after.FEN, after.Meters, before.FEN, before.Meters)
	}

	if _, err := other.Resume(ctx, "missing", cfg); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Resume(missing) = %v, want storage.ErrNotFound", err)
	}
	if err := NewManager(nil).Save(ctx, h); !errors.Is(err, ErrNoStore) {
		t.Errorf("Save without store = %v, want ErrNoStore", err)
	}
}

func TestFinishRecordsResult(t *testing.T) {
	store, err := storage.OpenBadger(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	m := NewManager(store)
	h := newGame(t, m, testConfig("k7/8/1K6/8/8/8/8/6Q1 w - - 0 1", "black"))
	snap := play(t, m, h, "g1g8")
	if snap.Outcome.Kind != rules.Checkmate || snap.Outcome.Side != board.White {
		t.Fatalf("outcome = %v, want white mates", snap.Outcome)
	}

	if err := m.Finish(ctx, h); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	stats, err := m.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.GamesPlayed != 1 || stats.Wins != 1 || stats.ByOutcome["checkmate"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if m.Len() != 0 {
		t.Errorf("session left open after Finish")
	}
}
