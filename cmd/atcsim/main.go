// cmd/atcsim/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// atcsim runs the simulation in a terminal: controller commands are read
// from stdin one line at a time and what happens is printed to stdout.

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	av "github.com/atcsim/atcsim/aviation"
	"github.com/atcsim/atcsim/log"
	"github.com/atcsim/atcsim/rand"
	"github.com/atcsim/atcsim/sim"

	"golang.org/x/sync/errgroup"
)

var (
	logLevel       = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir         = flag.String("logdir", "", "log file directory")
	layoutFilename = flag.String("layout", "", "filename of JSON file with an airspace layout (default: built-in)")
	seed           = flag.Int64("seed", 0, "random seed (0: seed from the current time)")
	numAircraft    = flag.Int("aircraft", 8, "number of active aircraft to maintain")
	aiControl      = flag.Bool("ai", false, "spawn airborne aircraft under autonomous control")
	simRate        = flag.Float64("simrate", 0, "sim seconds per wall-clock second (0: default)")
	duration       = flag.Duration("duration", 0, "if non-zero, run headless for this much sim time and exit")
	snapshotFile   = flag.String("snapshots", "", "write a zstd-compressed stream of world snapshots to this file")
	groundProb     = flag.Float64("ground-prob", -1, "probability that new aircraft spawn on a runway (-1: default)")
)

func main() {
	flag.Parse()

	lg := log.New(*logLevel, *logDir)

	if err := run(lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "atcsim: %v\n", err)
		os.Exit(1)
	}
}

func run(lg *log.Logger) error {
	layout, err := loadLayout()
	if err != nil {
		return err
	}
	lg.Infof("airport %s: %d runways, %d fixes", layout.ICAO, len(layout.Runways), len(layout.Fixes))

	cfg := sim.DefaultConfig()
	if *simRate > 0 {
		cfg.SimRate = float32(*simRate)
	}
	if *groundProb >= 0 {
		cfg.GroundSpawnProbability = float32(*groundProb)
	}

	r := rand.Make()
	if *seed != 0 {
		r.Seed(*seed)
	}

	s := sim.NewSim(cfg, sim.NewAirspace(layout), r, lg)
	defer s.Destroy()
	s.SetSpawnAIControlled(*aiControl)
	if _, err := s.SpawnUntil(*numAircraft); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var snapshotWriter *sim.SnapshotWriter
	if *snapshotFile != "" {
		f, err := os.Create(*snapshotFile)
		if err != nil {
			return err
		}
		defer f.Close()

		if snapshotWriter, err = sim.NewSnapshotWriter(f); err != nil {
			return err
		}
		defer snapshotWriter.Close()
	}

	eg, ctx := errgroup.WithContext(ctx)

	// The advisor only sees snapshots, so it runs on its own goroutine.
	snapshots := make(chan sim.WorldSnapshot, 1)
	advisor := sim.NewAdvisor(sim.HeuristicScorer{SafeLateralNM: cfg.SafeLateralNM, SafeVerticalFt: cfg.SafeVerticalFt},
		cfg.AdvisorThreshold, rand.Make())
	eg.Go(func() error {
		runAdvisor(advisor, snapshots)
		return nil
	})

	c := &console{
		sim:       s,
		sub:       s.Subscribe(),
		writer:    snapshotWriter,
		snapshots: snapshots,
		lg:        lg,
	}
	eg.Go(func() error {
		defer close(snapshots)
		defer c.sub.Unsubscribe()

		if *duration > 0 {
			return c.runHeadless(ctx, *duration)
		}
		return c.runInteractive(ctx, readCommands(os.Stdin))
	})

	return eg.Wait()
}

func loadLayout() (*av.Layout, error) {
	if *layoutFilename != "" {
		return av.LoadLayoutFile(*layoutFilename)
	}
	return av.DefaultLayout()
}

// runAdvisor prints an advisory whenever a pair of aircraft first comes
// up as being at risk.
func runAdvisor(adv *sim.Advisor, snapshots <-chan sim.WorldSnapshot) {
	active := make(map[[2]string]bool)
	for ws := range snapshots {
		current := make(map[[2]string]bool)
		for _, a := range adv.Advise(&ws) {
			k := [2]string{a.A, a.B}
			current[k] = true
			if !active[k] {
				fmt.Printf("HELPER: %s\n", a)
			}
		}
		active = current
	}
}

// publishSnapshot hands the latest snapshot to the advisor and, if one
// is open, the snapshot stream.
func (c *console) publishSnapshot() error {
	ws := c.sim.Snapshot()

	if c.writer != nil {
		if err := c.writer.Write(&ws); err != nil {
			return err
		}
		if err := c.writer.Flush(); err != nil {
			return err
		}
	}

	// Drop the snapshot if the advisor is still busy with the last one.
	select {
	case c.snapshots <- ws:
	default:
		c.lg.Debug("advisor busy; dropped snapshot", slog.Float64("sim_time", float64(ws.SimTime)))
	}
	return nil
}

const updateInterval = 100 * time.Millisecond
