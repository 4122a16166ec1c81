package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kitten-defense/internal/config"
	"kitten-defense/internal/database"
	"kitten-defense/internal/game"
	"kitten-defense/internal/server"
	"kitten-defense/internal/sim"
	"kitten-defense/internal/snapshot"
	"kitten-defense/pkg/maps"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	layoutName := flag.String("layout", "", "Layout ID, layout file path, or \"random\" (overrides config)")
	seed := flag.Int64("seed", 0, "Seed for random layouts")
	debugLayout := flag.Bool("debug-layout", false, "Print the layout overview and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *layoutName != "" {
		cfg.Layout = *layoutName
	}

	if err := maps.LoadAll(); err != nil {
		log.Fatalf("Failed to load layouts: %v", err)
	}
	layout, err := resolveLayout(cfg.Layout, *seed)
	if err != nil {
		log.Fatalf("Failed to resolve layout: %v", err)
	}
	if *debugLayout {
		os.Stdout.WriteString(layout.Debug())
		return
	}

	db, err := database.New(cfg.Server.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	gameCfg := cfg.Game()
	match, err := db.LatestRunningMatch()
	switch {
	case errors.Is(err, database.ErrMatchNotFound):
		match, err = db.CreateMatch("Kitten Defense", layout.ID, gameCfg)
		if err != nil {
			log.Fatalf("Failed to create match: %v", err)
		}
		log.Printf("Started match %s", match.ID)
	case err != nil:
		log.Fatalf("Failed to look up match: %v", err)
	default:
		log.Printf("Resuming match %s", match.ID)
	}

	logger := log.Default()

	// Capture events fan out to clients, history and the event log.
	hub := server.NewHub(logger)
	out := newSinks(hub, db, match.ID, cfg.Server.EventLogDir, logger)

	reg, err := game.NewRegistry(gameCfg,
		game.WithNotifier(out.notifier),
		game.WithLedger(out.recorder),
		game.WithLogger(logger))
	if err != nil {
		log.Fatalf("Failed to create registry: %v", err)
	}

	checkpointer := &snapshot.Checkpointer{
		Path:     cfg.Server.SnapshotPath,
		MatchID:  match.ID,
		LayoutID: layout.ID,
		Registry: reg,
	}
	tick, restored, err := checkpointer.Restore()
	if err != nil {
		log.Fatalf("Failed to restore snapshot: %v", err)
	}
	if restored {
		log.Printf("Restored %d territories at tick %d", reg.Len(), tick)
	} else {
		if err := layout.Apply(reg); err != nil {
			log.Fatalf("Failed to apply layout: %v", err)
		}
		log.Printf("Layout %s: %d territories", layout.ID, reg.Len())
	}

	roster := sim.NewRoster()
	loop := sim.NewLoop(reg, roster, sim.LoopConfig{
		TickRateHz:         cfg.Server.TickRateHz,
		SnapshotEveryTicks: cfg.Server.SnapshotEveryTicks,
		Checkpointer:       checkpointer,
		Logger:             logger,
	})
	loop.SetTick(tick)

	srv, err := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		MatchID:         match.ID,
		LayoutID:        layout.ID,
		TickRateHz:      cfg.Server.TickRateHz,
		ClientRateLimit: cfg.Server.ClientRateLimit,
		ClientBurst:     cfg.Server.ClientBurst,
	}, server.Deps{
		Registry: reg,
		Roster:   roster,
		Loop:     loop,
		DB:       db,
		Hub:      hub,
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Tick loop error: %v", err)
		}
	}()

	// Handle shutdown gracefully
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
			done <- syscall.SIGTERM
		}
	}()

	<-done
	log.Println("Shutting down server...")

	stop()
	<-loopDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if err := checkpointer.Checkpoint(loop.Tick()); err != nil {
		log.Printf("Final checkpoint failed: %v", err)
	}
	out.Close()

	log.Println("Server stopped")
}

// resolveLayout picks a registered or on-disk layout, or generates one.
func resolveLayout(name string, seed int64) (*maps.Layout, error) {
	if name != "random" {
		return maps.Resolve(name)
	}
	opts := maps.DefaultOptions()
	opts.Seed = seed
	layout := maps.NewGenerator(opts).Generate()
	maps.Register(layout)
	return layout, nil
}
