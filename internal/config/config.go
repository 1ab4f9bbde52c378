// Package config loads game settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hailam/powerchess/internal/board"
	"github.com/hailam/powerchess/internal/engine"
	"github.com/hailam/powerchess/internal/powerup"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Store kinds.
const (
	StoreNone   = "none"
	StoreBadger = "badger"
	StoreRedis  = "redis"
)

// GameConfig describes one game session.
type GameConfig struct {
	// StartFEN is the starting position; empty means the standard start.
	StartFEN string `yaml:"start_fen"`
	AIDepth  int    `yaml:"ai_depth"`
	// AIDifficulty, when set, overrides AIDepth with a preset
	// (easy, medium, hard, very_hard).
	AIDifficulty string `yaml:"ai_difficulty"`
	// AISide is white, black or none.
	AISide string `yaml:"ai_side"`

	// ChargePerCapture maps piece names (pawn, knight, ...) to meter charge.
	// Missing pieces keep their default charge.
	ChargePerCapture map[string]int `yaml:"charge_per_capture"`
	MaxCharge        int            `yaml:"max_charge"`
	ChopperPlies     int            `yaml:"chopper_plies"`

	Workers  int            `yaml:"workers"`
	TTSizeMB int            `yaml:"tt_size_mb"`
	Weights  engine.Weights `yaml:"weights"`

	Store StoreConfig `yaml:"store"`
}

// StoreConfig selects where saved positions go.
type StoreConfig struct {
	Kind     string        `yaml:"kind"`
	Path     string        `yaml:"path"`
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

// Default returns the standard configuration: human plays White against a
// medium AI, with the default meter rules and no store.
func Default() GameConfig {
	pc := powerup.DefaultConfig()
	opts := engine.DefaultOptions()
	return GameConfig{
		AIDepth:      engine.DepthFor(engine.Medium),
		AISide:       "black",
		MaxCharge:    pc.MaxCharge,
		ChopperPlies: pc.ChopperPlies,
		Workers:      opts.Workers,
		TTSizeMB:     opts.TTSizeMB,
		Weights:      opts.Weights,
		Store: StoreConfig{
			Kind: StoreNone,
			TTL:  24 * time.Hour,
		},
	}
}

// Parse decodes YAML over the defaults. Fields absent from data keep their
// default value.
func Parse(data []byte) (GameConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GameConfig{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadFile reads path (defaults when path is empty), applies environment
// overrides and validates the result.
func LoadFile(path string) (GameConfig, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return GameConfig{}, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = Parse(data); err != nil {
			return GameConfig{}, err
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return GameConfig{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from POWERCHESS_* variables. Unparsable numbers
// are ignored.
func (c *GameConfig) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("POWERCHESS_AI_DEPTH")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.AIDepth = n
			c.AIDifficulty = ""
		}
	}
	if v := strings.TrimSpace(os.Getenv("POWERCHESS_AI_SIDE")); v != "" {
		c.AISide = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("POWERCHESS_MAX_CHARGE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxCharge = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("POWERCHESS_STORE")); v != "" {
		c.Store.Kind = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("POWERCHESS_STORE_PATH")); v != "" {
		c.Store.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("POWERCHESS_REDIS_URL")); v != "" {
		c.Store.RedisURL = v
	}
}

// Validate checks every field and reports the first problem.
func (c GameConfig) Validate() error {
	if _, err := c.StartPosition(); err != nil {
		return fmt.Errorf("%w: start_fen: %v", ErrInvalidConfig, err)
	}
	if c.AIDifficulty != "" {
		if _, err := engine.ParseDifficulty(c.AIDifficulty); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	} else if c.AIDepth < 1 || c.AIDepth > engine.MaxPly {
		return fmt.Errorf("%w: ai_depth %d not in [1, %d]", ErrInvalidConfig, c.AIDepth, engine.MaxPly)
	}
	if _, err := c.AIColor(); err != nil {
		return err
	}
	if _, err := c.PowerupConfig(); err != nil {
		return err
	}
	if c.Workers < 0 || c.TTSizeMB < 0 {
		return fmt.Errorf("%w: workers and tt_size_mb must not be negative", ErrInvalidConfig)
	}
	switch c.Store.Kind {
	case "", StoreNone, StoreBadger:
		// An empty badger path means the platform data directory.
	case StoreRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("%w: redis store needs redis_url", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store.Kind)
	}
	return nil
}

// StartPosition parses StartFEN.
func (c GameConfig) StartPosition() (*board.Position, error) {
	if strings.TrimSpace(c.StartFEN) == "" {
		return board.NewPosition(), nil
	}
	return board.ParseFEN(c.StartFEN)
}

// Depth returns the AI search depth, honouring AIDifficulty.
func (c GameConfig) Depth() int {
	if d, err := engine.ParseDifficulty(c.AIDifficulty); err == nil && c.AIDifficulty != "" {
		return engine.DepthFor(d)
	}
	return c.AIDepth
}

// AIColor returns the side the AI plays, or board.NoColor for none.
func (c GameConfig) AIColor() (board.Color, error) {
	switch strings.ToLower(c.AISide) {
	case "", "none":
		return board.NoColor, nil
	case "white":
		return board.White, nil
	case "black":
		return board.Black, nil
	}
	return board.NoColor, fmt.Errorf("%w: ai_side %q", ErrInvalidConfig, c.AISide)
}

// PowerupConfig converts the meter settings.
func (c GameConfig) PowerupConfig() (powerup.Config, error) {
	pc := powerup.DefaultConfig()
	for name, v := range c.ChargePerCapture {
		pt, ok := pieceTypeByName(name)
		if !ok {
			return powerup.Config{}, fmt.Errorf("%w: charge_per_capture: unknown piece %q", ErrInvalidConfig, name)
		}
		if v < 0 {
			return powerup.Config{}, fmt.Errorf("%w: charge_per_capture[%s] is negative", ErrInvalidConfig, name)
		}
		pc.ChargePerCapture[pt] = v
	}
	if c.MaxCharge < 1 {
		return powerup.Config{}, fmt.Errorf("%w: max_charge must be positive", ErrInvalidConfig)
	}
	if c.ChopperPlies < 1 {
		return powerup.Config{}, fmt.Errorf("%w: chopper_plies must be positive", ErrInvalidConfig)
	}
	pc.MaxCharge = c.MaxCharge
	pc.ChopperPlies = c.ChopperPlies
	return pc, nil
}

// EngineOptions returns the AI settings.
func (c GameConfig) EngineOptions() engine.Options {
	return engine.Options{
		Workers:  c.Workers,
		TTSizeMB: c.TTSizeMB,
		Weights:  c.Weights,
	}
}

func pieceTypeByName(name string) (board.PieceType, bool) {
	for pt := board.Pawn; pt <= board.King; pt++ {
		if strings.EqualFold(name, pt.String()) {
			return pt, true
		}
	}
	return board.NoPieceType, false
}
