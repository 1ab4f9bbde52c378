package powerup

import (
	"fmt"

	"github.com/hailam/powerchess/internal/board"
)

// Config holds the charge rules.
type Config struct {
	// ChargePerCapture is indexed by the captured piece type.
	ChargePerCapture [6]int
	MaxCharge        int
	// ChopperPlies is the number of strikes a chopper session allows.
	ChopperPlies int
}

// DefaultConfig returns the standard charge rules: pawn 1, knight 3,
// bishop 3, rook 5, queen 9, a meter of 10 and three chopper strikes.
func DefaultConfig() Config {
	return Config{
		ChargePerCapture: [6]int{1, 3, 3, 5, 9, 0},
		MaxCharge:        10,
		ChopperPlies:     3,
	}
}

// Meters holds each side's charge, indexed by board.Color.
type Meters [2]int

// Controller tracks both meters for one game. It is not safe for concurrent
// use; the owning session serializes access.
type Controller struct {
	cfg    Config
	meters Meters
}

// NewController creates a controller with empty meters.
func NewController(cfg Config) *Controller {
	if cfg.MaxCharge < 1 {
		cfg.MaxCharge = 1
	}
	return &Controller{cfg: cfg}
}

// Config returns the charge rules.
func (c *Controller) Config() Config {
	return c.cfg
}

// Meters returns a copy of both meters.
func (c *Controller) Meters() Meters {
	return c.meters
}

// SetMeters overwrites both meters, clamping to [0, MaxCharge].
func (c *Controller) SetMeters(m Meters) {
	for i := range m {
		c.meters[i] = min(max(m[i], 0), c.cfg.MaxCharge)
	}
}

// Charge returns side's meter.
func (c *Controller) Charge(side board.Color) int {
	return c.meters[side]
}

// OnCapture credits side for capturing a piece of type captured and returns
// the amount added after capping.
func (c *Controller) OnCapture(side board.Color, captured board.PieceType) int {
	if captured >= board.NoPieceType {
		return 0
	}
	before := c.meters[side]
	c.meters[side] = min(before+c.cfg.ChargePerCapture[captured], c.cfg.MaxCharge)
	return c.meters[side] - before
}

// CanActivate reports whether side's meter is full.
func (c *Controller) CanActivate(side board.Color) bool {
	return c.meters[side] >= c.cfg.MaxCharge
}

// TryActivate spends side's full meter on kind. The meter is only reset when
// the effect could be built from targets.
func (c *Controller) TryActivate(side board.Color, kind Kind, targets []board.Square) (Effect, error) {
	if !c.CanActivate(side) {
		return nil, fmt.Errorf("%w: %s meter at %d/%d", ErrActivationRejected, side, c.meters[side], c.cfg.MaxCharge)
	}
	effect, err := NewEffect(side, kind, targets, c.cfg.ChopperPlies)
	if err != nil {
		return nil, err
	}
	c.meters[side] = 0
	return effect, nil
}
