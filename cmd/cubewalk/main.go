package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/cubewalk/internal/config"
	"github.com/zeusync/cubewalk/internal/core/observability/log"
	"github.com/zeusync/cubewalk/internal/injector"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cubewalk:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a YAML config file")
	levelName := flag.String("level", "", "level to start with (overrides simulation.level)")
	levelDir := flag.String("levels", "", "level directory (overrides simulation.level_dir)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	if *levelName != "" {
		cfg.Simulation.Level = *levelName
	}
	if *levelDir != "" {
		cfg.Simulation.LevelDir = *levelDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := injector.InitializeApp(&cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	defer func() { _ = app.Logger.Sync() }()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.Simulation.Run(ctx) })
	if app.Server != nil {
		g.Go(func() error { return app.Server.Run(ctx) })
	}

	if err := g.Wait(); err != nil {
		app.Logger.Error("cubewalk stopped", log.Error(err))
		return err
	}
	app.Logger.Info("cubewalk stopped")
	return nil
}
