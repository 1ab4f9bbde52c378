package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"github.com/hailam/powerchess/internal/config"
)

func TestGameStats(t *testing.T) {
	t.Run("NewGameStats", func(t *testing.T) {
		stats := NewGameStats()
		if stats.GamesPlayed != 0 {
			t.Errorf("Expected 0 games played")
		}
		if stats.GetWinRate() != 0 {
			t.Errorf("Expected 0 win rate")
		}
	})

	t.Run("WinRate", func(t *testing.T) {
		stats := &GameStats{
			GamesPlayed: 10,
			Wins:        5,
			Losses:      3,
			Draws:       2,
		}
		rate := stats.GetWinRate()
		if rate != 50 {
			t.Errorf("Expected 50%% win rate, got %.2f%%", rate)
		}
	})

	t.Run("Streaks", func(t *testing.T) {
		stats := &GameStats{}
		for _, r := range []GameResult{
			{Won: true, Depth: 2, Outcome: "checkmate"},
			{Won: true, Depth: 2, Outcome: "checkmate"},
			{Draw: true, Outcome: "stalemate"},
			{Won: true, Depth: 3, Outcome: "checkmate"},
			{Outcome: "checkmate"},
		} {
			stats.Record(r)
		}
		if stats.GamesPlayed != 5 || stats.Wins != 3 || stats.Draws != 1 || stats.Losses != 1 {
			t.Errorf("totals = %+v", stats)
		}
		if stats.LongestWinStrk != 2 || stats.CurrentStreak != 0 {
			t.Errorf("streaks = %d/%d, want 2/0", stats.LongestWinStrk, stats.CurrentStreak)
		}
		if diff := cmp.Diff(map[int]int{2: 2, 3: 1}, stats.WinsByDepth); diff != "" {
			t.Errorf("WinsByDepth mismatch (-want +got):\n%s", diff)
		}
		if stats.ByOutcome["checkmate"] != 4 {
			t.Errorf("ByOutcome = %v", stats.ByOutcome)
		}
	})
}

// exerciseStore runs the same save/load/stats sequence against any Store.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	saved := SavedGame{
		ID:      "game-1",
		FEN:     "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1",
		Meters:  [2]int{4, 10},
		SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := s.SaveGame(ctx, saved); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	got, err := s.LoadGame(ctx, saved.ID)
	if err != nil {
		t.Fatalf("LoadGame: %v", err)
	}
	if diff := cmp.Diff(saved, got); diff != "" {
		t.Errorf("loaded game mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.LoadGame(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadGame(missing) = %v, want ErrNotFound", err)
	}

	if err := s.DeleteGame(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}
	if _, err := s.LoadGame(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadGame after delete = %v, want ErrNotFound", err)
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.GamesPlayed != 0 {
		t.Errorf("fresh store has %d games", stats.GamesPlayed)
	}
	if err := s.RecordResult(ctx, GameResult{Won: true, Depth: 2, Outcome: "checkmate", Duration: time.Minute}); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if err := s.RecordResult(ctx, GameResult{Draw: true, Outcome: "fifty_move"}); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	stats, err = s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.GamesPlayed != 2 || stats.Wins != 1 || stats.Draws != 1 || stats.TotalPlayTime != time.Minute {
		t.Errorf("stats = %+v", stats)
	}
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadger(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(rdb, time.Hour)
	defer s.Close()
	exerciseStore(t, s)
}

func TestRedisStoreTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	s, err := DialRedis(ctx, "redis://"+mr.Addr()+"/0", time.Minute)
	if err != nil {
		t.Fatalf("DialRedis: %v", err)
	}
	defer s.Close()

	if err := s.SaveGame(ctx, SavedGame{ID: "ttl", FEN: "4k3/8/8/8/8/8/8/4K3 w - - 0 1"}); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	if ttl := mr.TTL("powerchess:game:ttl"); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := s.LoadGame(ctx, "ttl"); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadGame after expiry = %v, want ErrNotFound", err)
	}
}

func TestDataPaths(t *testing.T) {
	base := t.TempDir()
	t.Setenv(DataDirEnv, "")
	t.Setenv("HOME", base)
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "xdg"))
	t.Setenv("APPDATA", filepath.Join(base, "appdata"))

	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir: %v", err)
	}
	if !strings.HasPrefix(dataDir, base) || filepath.Base(dataDir) != appName {
		t.Errorf("GetDataDir() = %s, want %s/.../%s", dataDir, base, appName)
	}
	if _, err := os.Stat(dataDir); err != nil {
		t.Errorf("data directory not created: %v", err)
	}

	override := filepath.Join(base, "override")
	t.Setenv(DataDirEnv, override)
	dbDir, err := GetDatabaseDir()
	if err != nil {
		t.Fatalf("GetDatabaseDir: %v", err)
	}
	if want := filepath.Join(override, "db"); dbDir != want {
		t.Errorf("GetDatabaseDir() = %s, want %s", dbDir, want)
	}
}

func TestOpenBadgerDefaultDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(DataDirEnv, dir)

	ctx := context.Background()
	store, err := Open(ctx, config.StoreConfig{Kind: config.StoreBadger})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.SaveGame(ctx, SavedGame{ID: "g1", FEN: "8/8/8/4k3/8/8/8/4K3 w - - 0 1"}); err != nil {
		t.Fatalf("SaveGame: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "db")); err != nil {
		t.Errorf("default database dir not used: %v", err)
	}

	reopened, err := OpenDefault()
	if err != nil {
		t.Fatalf("OpenDefault: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.LoadGame(ctx, "g1"); err != nil {
		t.Errorf("LoadGame after reopen: %v", err)
	}
}

func TestOpenNone(t *testing.T) {
	store, err := Open(context.Background(), config.StoreConfig{Kind: config.StoreNone})
	if err != nil || store != nil {
		t.Errorf("Open(none) = %v, %v; want nil, nil", store, err)
	}
}
