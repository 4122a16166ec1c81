package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"kitten-defense/internal/driver"
	"kitten-defense/internal/game"
)

func main() {
	serverAddr := flag.String("server", "localhost:30000", "Server address")
	factions := flag.String("factions", "kittens,dogs", "Comma-separated factions to field")
	squadSize := flag.Int("squad", 4, "Units per faction per territory")
	heavy := flag.String("heavy", "kittens", "Faction whose squad uses heavy units")
	targets := flag.String("targets", "", "Comma-separated territory IDs (default all)")
	ticks := flag.Int("ticks", 0, "Stop after this many ticks (0 runs until interrupted)")
	tickRate := flag.Duration("tick", 200*time.Millisecond, "Time between reports")
	seed := flag.Int64("seed", 1, "Seed for unit placement")
	flag.Parse()

	if envAddr := os.Getenv("SERVER_ADDR"); envAddr != "" {
		*serverAddr = envAddr
		log.Printf("Using SERVER_ADDR from environment: %s", envAddr)
	}

	var squads []driver.Squad
	for _, f := range splitList(*factions) {
		role := game.RoleSupport
		if f == *heavy {
			role = game.RoleHeavy
		}
		squads = append(squads, driver.Squad{Faction: f, Size: *squadSize, Role: role})
	}

	d := driver.New(driver.Config{
		Server:   *serverAddr,
		TickRate: *tickRate,
		Ticks:    *ticks,
		Targets:  splitList(*targets),
		Squads:   squads,
		Seed:     *seed,
	}, log.Default())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := d.Run(ctx); err != nil {
		log.Fatalf("Driver failed: %v", err)
	}

	captures := d.Captures()
	log.Printf("Done: %d captures", len(captures))
	for _, c := range captures {
		log.Printf("  %s -> %s", c.TerritoryID, c.NewOwner)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
