// powerchess is a terminal front end for a game against the AI with
// powerups.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/hailam/powerchess/internal/config"
	"github.com/hailam/powerchess/internal/game"
	"github.com/hailam/powerchess/internal/obslog"
	"github.com/hailam/powerchess/internal/storage"
)

var (
	configPath = flag.String("config", "", "YAML game config")
	resumeID   = flag.String("resume", "", "resume the saved game with this id")
)

func main() {
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = obslog.L().Sync() }()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := storage.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	if store != nil {
		defer store.Close()
	}

	sh, err := newShell(game.NewManager(store), cfg, os.Stdout)
	if err != nil {
		log.Fatalf("start game: %v", err)
	}
	if *resumeID != "" {
		if err := sh.resume(ctx, *resumeID); err != nil {
			log.Fatalf("resume %s: %v", *resumeID, err)
		}
	}
	if err := sh.run(ctx, os.Stdin); err != nil {
		obslog.L().Error("shell", zap.Error(err))
	}
}
