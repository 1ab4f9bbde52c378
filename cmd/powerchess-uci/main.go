package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"go.uber.org/zap"

	"github.com/hailam/powerchess/internal/config"
	"github.com/hailam/powerchess/internal/obslog"
	"github.com/hailam/powerchess/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	configPath = flag.String("config", "", "YAML game config (engine weights, hash size, workers)")
)

func main() {
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = obslog.L().Sync() }()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		obslog.L().Info("cpu profiling enabled", zap.String("path", profilePath))
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	protocol := uci.New(cfg.EngineOptions(), os.Stdout)
	if err := protocol.Run(os.Stdin); err != nil {
		obslog.L().Error("uci input", zap.Error(err))
	}
}
