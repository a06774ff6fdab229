package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/soocke/fin-annotator-go/app"
	"github.com/soocke/fin-annotator-go/config"
	"github.com/soocke/fin-annotator-go/debug"
)

func main() {
	var (
		cfgPath  = flag.String("config", "", "config file (default: per-user config dir)")
		envFile  = flag.String("env", ".env", "optional .env file with FIN_* overrides")
		root     = flag.String("dataset", "", "dataset root containing train/valid/test")
		split    = flag.String("split", "", "split to open: train, valid or test")
		detector = flag.String("detector", "", "inference service URL")
		debugOn  = flag.Bool("debug", false, "debug logging and runtime stats")
	)
	flag.Parse()

	bootLogger := NewLogger(slog.LevelInfo)
	if *cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			bootLogger.Warn("no per-user config dir, using working directory", "error", err)
			p = "config.json"
		}
		*cfgPath = p
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		bootLogger.Error("config load failed, using defaults", "path", *cfgPath, "error", err)
	}
	if err := config.LoadEnv(*envFile); err != nil {
		bootLogger.Warn("env file", "path", *envFile, "error", err)
	}
	cfg.ApplyEnv()

	// flags win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dataset":
			cfg.DatasetRoot = *root
		case "split":
			cfg.Split = *split
		case "detector":
			cfg.DetectorURL = *detector
		case "debug":
			cfg.Debug = *debugOn
		}
	})
	if cfg.ProgressDB == "" {
		if p, err := config.DefaultProgressDB(); err == nil {
			cfg.ProgressDB = p
		}
	}
	_ = cfg.Validate()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)

	if cfg.Debug {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		debug.StartGoroutineLogger(ctx, 5*time.Second, logger)
		debug.StartMemLogger(ctx, 5*time.Second, logger)
	}

	application, err := app.NewApp("Fin Annotator", cfg, *cfgPath, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	logger.Info("starting", "dataset", cfg.DatasetRoot, "split", cfg.Split, "mode", cfg.Mode, "detector", cfg.DetectorURL != "")
	application.Start()
}
