package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hailam/powerchess/internal/board"
	"github.com/hailam/powerchess/internal/config"
	"github.com/hailam/powerchess/internal/game"
	"github.com/hailam/powerchess/internal/powerup"
)

const helpText = `commands:
  e2e4 | move e2e4        play a move (UCI notation)
  ai                      let the engine move for the side to play
  power <kind> [squares]  airstrike <center>|<squares...>, chopper_gunner,
                          gun <shooter> <target>, paratroopers <sq...>, nuke
  strike <square>         chopper gunner strike
  end                     end the chopper gunner early
  undo                    take back one step
  save | resume <id>      store or reload the game
  stats | show | new | help | quit`

// shell drives one session from line-based text commands.
type shell struct {
	m   *game.Manager
	cfg config.GameConfig
	h   game.SessionHandle
	out io.Writer
}

func newShell(m *game.Manager, cfg config.GameConfig, out io.Writer) (*shell, error) {
	h, err := m.NewGame(cfg)
	if err != nil {
		return nil, err
	}
	return &shell{m: m, cfg: cfg, h: h, out: out}, nil
}

func (sh *shell) run(ctx context.Context, in io.Reader) error {
	snap, err := sh.m.Snapshot(sh.h)
	if err != nil {
		return err
	}
	sh.print(sh.autoplay(ctx, snap))

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if sh.exec(ctx, args) {
			return sh.m.Finish(ctx, sh.h)
		}
	}
	return scanner.Err()
}

// exec runs one command and reports whether the shell should exit.
func (sh *shell) exec(ctx context.Context, args []string) bool {
	var (
		snap game.Snapshot
		err  error
	)
	switch args[0] {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(sh.out, helpText)
		return false
	case "show":
		snap, err = sh.m.Snapshot(sh.h)
	case "move":
		if len(args) < 2 {
			err = fmt.Errorf("usage: move <uci>")
			break
		}
		snap, err = sh.m.SubmitUCI(sh.h, args[1])
	case "ai":
		snap, err = sh.m.RequestAIMove(ctx, sh.h)
	case "power":
		snap, err = sh.power(args[1:])
	case "strike":
		var sq board.Square
		if sq, err = oneSquare(args[1:]); err == nil {
			snap, err = sh.m.ChopperStrike(sh.h, sq)
		}
	case "end":
		snap, err = sh.m.EndChopper(sh.h)
	case "undo":
		snap, err = sh.m.Undo(sh.h)
	case "save":
		if err = sh.m.Save(ctx, sh.h); err == nil {
			fmt.Fprintf(sh.out, "saved as %s\n", sh.h)
			return false
		}
	case "resume":
		if len(args) < 2 {
			err = fmt.Errorf("usage: resume <id>")
			break
		}
		if err = sh.resume(ctx, args[1]); err == nil {
			snap, err = sh.m.Snapshot(sh.h)
		}
	case "stats":
		stats, serr := sh.m.Stats(ctx)
		if serr != nil {
			err = serr
			break
		}
		fmt.Fprintf(sh.out, "games %d  wins %d  losses %d  draws %d  win rate %.1f%%\n",
			stats.GamesPlayed, stats.Wins, stats.Losses, stats.Draws, stats.GetWinRate())
		return false
	case "new":
		_ = sh.m.Close(sh.h)
		if sh.h, err = sh.m.NewGame(sh.cfg); err == nil {
			snap, err = sh.m.Snapshot(sh.h)
		}
	default:
		snap, err = sh.m.SubmitUCI(sh.h, args[0])
	}
	if err != nil {
		fmt.Fprintf(sh.out, "error: %v\n", err)
		return false
	}
	sh.print(sh.autoplay(ctx, snap))
	return false
}

func (sh *shell) resume(ctx context.Context, id string) error {
	h, err := sh.m.Resume(ctx, id, sh.cfg)
	if err != nil {
		return err
	}
	if h != sh.h {
		_ = sh.m.Close(sh.h)
	}
	sh.h = h
	return nil
}

// autoplay lets the engine act for as long as it is the AI's turn.
func (sh *shell) autoplay(ctx context.Context, snap game.Snapshot) game.Snapshot {
	for snap.Phase != game.GameOver && snap.AISide != board.NoColor && snap.SideToMove == snap.AISide {
		next, err := sh.m.RequestAIMove(ctx, sh.h)
		if err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
			return snap
		}
		snap = next
		if n := len(snap.Log); n > 0 {
			fmt.Fprintf(sh.out, "ai: %s\n", snap.Log[n-1])
		}
	}
	return snap
}

func (sh *shell) power(args []string) (game.Snapshot, error) {
	if len(args) == 0 {
		return game.Snapshot{}, fmt.Errorf("usage: power <kind> [squares]")
	}
	kind, err := powerup.ParseKind(args[0])
	if err != nil {
		return game.Snapshot{}, err
	}
	targets, err := parseSquares(args[1:])
	if err != nil {
		return game.Snapshot{}, err
	}
	if kind == powerup.Airstrike && len(targets) == 1 {
		targets = powerup.AirstrikePattern(targets[0])
	}
	cur, err := sh.m.Snapshot(sh.h)
	if err != nil {
		return game.Snapshot{}, err
	}
	return sh.m.ActivatePowerup(sh.h, cur.SideToMove, kind, targets)
}

func (sh *shell) print(snap game.Snapshot) {
	fmt.Fprintln(sh.out, snap.Position.String())
	fmt.Fprintf(sh.out, "FEN: %s\n", snap.FEN)
	fmt.Fprintf(sh.out, "meters: white %d  black %d\n", snap.Meters[board.White], snap.Meters[board.Black])
	switch snap.Phase {
	case game.GameOver:
		fmt.Fprintf(sh.out, "game over: %s (%s)\n", snap.Outcome, snap.Outcome.Result())
	case game.PowerupActive:
		fmt.Fprintf(sh.out, "chopper gunner: %s has %d strikes left\n", snap.Chopper.Side, snap.Chopper.Remaining)
	default:
		fmt.Fprintf(sh.out, "%s to move (%s), %d legal moves\n", snap.SideToMove, snap.Outcome, len(snap.LegalMoves))
		if snap.CanActivate {
			fmt.Fprintln(sh.out, "powerup ready")
		}
	}
}

func parseSquares(args []string) ([]board.Square, error) {
	out := make([]board.Square, 0, len(args))
	for _, a := range args {
		sq, err := board.ParseSquare(a)
		if err != nil {
			return nil, err
		}
		out = append(out, sq)
	}
	return out, nil
}

func oneSquare(args []string) (board.Square, error) {
	if len(args) != 1 {
		return board.NoSquare, fmt.Errorf("want one square")
	}
	return board.ParseSquare(args[0])
}
