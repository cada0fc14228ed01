// cmd/atcsim/console.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atcsim/atcsim/log"
	"github.com/atcsim/atcsim/sim"
)

type console struct {
	sim       *sim.Sim
	sub       *sim.EventsSubscription
	writer    *sim.SnapshotWriter
	snapshots chan<- sim.WorldSnapshot
	lg        *log.Logger
}

// readCommands returns a channel that receives the lines read from r; it
// is closed at EOF. Reads from a terminal can't be interrupted, so the
// reading goroutine is left to exit with the process.
func readCommands(r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}

func (c *console) runInteractive(ctx context.Context, commands <-chan string) error {
	fmt.Println("atcsim: enter commands as CALLSIGN INSTRUCTION [ARGS], DUMP CALLSIGN, or QUIT")

	ticker := time.NewTicker(updateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case cmd, ok := <-commands:
			if !ok || strings.EqualFold(strings.TrimSpace(cmd), "QUIT") {
				return nil
			}
			c.handleCommand(cmd)
			c.printEvents()

		case <-ticker.C:
			before := c.sim.SimTime()
			c.sim.Update()
			if c.sim.SimTime() == before {
				continue
			}
			if err := c.tick(); err != nil {
				return err
			}
		}
	}
}

// runHeadless steps the simulation as quickly as possible for the given
// amount of sim time.
func (c *console) runHeadless(ctx context.Context, d time.Duration) error {
	tick := c.sim.Config.TickSeconds
	end := float32(d.Seconds())

	for c.sim.SimTime() < end {
		if err := ctx.Err(); err != nil {
			return nil
		}
		c.sim.Step(tick)
		if err := c.tick(); err != nil {
			return err
		}
	}

	fmt.Println(c.summary())
	return nil
}

// tick does the work that follows each simulation step.
func (c *console) tick() error {
	if _, err := c.sim.SpawnUntil(*numAircraft); err != nil {
		c.lg.Warnf("unable to spawn aircraft: %v", err)
	}
	for _, err := range c.sim.UpdateErrors() {
		fmt.Printf("ERROR: %v\n", err)
	}
	c.printEvents()
	return c.publishSnapshot()
}

func (c *console) handleCommand(cmd string) {
	if cs, ok := strings.CutPrefix(strings.ToUpper(strings.TrimSpace(cmd)), "DUMP "); ok {
		if s, err := c.sim.AircraftDisplayState(strings.TrimSpace(cs)); err != nil {
			fmt.Printf("%v\n", err)
		} else {
			fmt.Println(s)
		}
		return
	}

	for _, r := range c.sim.RunCommands(cmd) {
		fmt.Printf("CTRL: %s\n", r.CtrlMsg)
		if r.AckMsg != "" {
			fmt.Printf("ACK:  %s\n", r.AckMsg)
		}
	}
}

func (c *console) printEvents() {
	for _, e := range c.sub.Get() {
		switch e.Type {
		case sim.ReadbackEvent:
			// Already printed by handleCommand.
		case sim.StatusMessageEvent:
			fmt.Printf("%6.0f %s\n", c.sim.SimTime(), e.WrittenText)
		default:
			fmt.Printf("%6.0f %s\n", c.sim.SimTime(), e.String())
		}
	}
}

func (c *console) summary() string {
	ws := c.sim.Snapshot()
	counts := make(map[sim.AircraftState]int)
	for _, ac := range ws.Aircraft {
		counts[ac.State]++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "sim time %.0fs, %d aircraft, %d arrivals, %d conflicts\n", ws.SimTime,
		len(ws.Aircraft), len(ws.Arrivals), len(ws.Conflicts))
	for st := sim.StateAirborne; st <= sim.StateOnRunway; st++ {
		if n := counts[st]; n > 0 {
			fmt.Fprintf(&sb, "  %-16s %d\n", st, n)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
