// sim/sim.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	av "github.com/atcsim/atcsim/aviation"
	"github.com/atcsim/atcsim/log"
	"github.com/atcsim/atcsim/math"
	"github.com/atcsim/atcsim/rand"
	"github.com/atcsim/atcsim/util"

	"github.com/goforj/godump"
)

// Sim is the simulation: it owns the aircraft and advances them in fixed
// ticks. All of the work of a tick happens synchronously in Step; the
// exported methods may be called from any goroutine, but anything that
// leaves the Sim is a copy (see Snapshot).
type Sim struct {
	mu sync.Mutex

	Config   Config
	Airspace *Airspace

	aircraft    []*Aircraft
	interpreter *Interpreter
	ai          *AIController
	spawner     *Spawner

	// Rebuilt at the end of every tick.
	index     *math.Quadtree[*Aircraft]
	conflicts []Conflict
	// Errors from aircraft updates in the most recent tick.
	updateErrors []error

	simTime        float32
	lastUpdateTime time.Time
	// Sim time that has elapsed in Update but hasn't yet been stepped.
	updateTimeSlop time.Duration

	eventStream *EventStream
	lg          *log.Logger
}

// NewSim returns a new simulation in the given airspace, building the
// airspace if that hasn't been done yet. If r is nil, a time-seeded
// random source is used.
func NewSim(cfg Config, as *Airspace, r *rand.Rand, lg *log.Logger) *Sim {
	if r == nil {
		r = rand.Make()
	}
	as.Build()

	s := &Sim{
		Config:         cfg,
		Airspace:       as,
		lastUpdateTime: time.Now(),
		eventStream:    NewEventStream(lg),
		lg:             lg,
	}
	s.interpreter = NewInterpreter(as, &s.Config, lg)
	s.ai = NewAIController(as, &s.Config, r, lg)
	s.spawner = NewSpawner(&s.Config, r, lg)

	lg.Info("new sim", slog.Any("config", cfg), slog.String("airport", as.Layout.ICAO))

	return s
}

func (s *Sim) Destroy() {
	s.eventStream.Destroy()
}

func (s *Sim) Subscribe() *EventsSubscription {
	return s.eventStream.Subscribe()
}

func (s *Sim) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("sim_time", float64(s.simTime)),
		slog.Int("aircraft", len(s.aircraft)),
		slog.Int("conflicts", len(s.conflicts)),
		slog.Duration("slop", s.updateTimeSlop))
}

func (s *Sim) SimTime() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.simTime
}

// AddAircraft adds an aircraft to the simulation.
func (s *Sim) AddAircraft(ac *Aircraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addAircraft(ac)
}

func (s *Sim) addAircraft(ac *Aircraft) error {
	if findAircraft(s.aircraft, ac.Callsign) != nil {
		return fmt.Errorf("%s: %w", ac.Callsign, ErrDuplicateCallsign)
	}
	s.aircraft = append(s.aircraft, ac)
	s.eventStream.Post(Event{Type: SpawnedEvent, Callsign: ac.Callsign, Runway: ac.DepartureRunway,
		WrittenText: ac.State.String()})
	return nil
}

// Aircraft returns the live aircraft. They must only be accessed from
// the goroutine that steps the Sim; use Snapshot elsewhere.
func (s *Sim) Aircraft() []*Aircraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.aircraft)
}

func (s *Sim) Lookup(callsign string) (*Aircraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ac := findAircraft(s.aircraft, callsign); ac != nil {
		return ac, nil
	}
	return nil, fmt.Errorf("%s: %w", callsign, ErrNoSuchAircraft)
}

// SetSpawnAIControlled sets whether newly spawned airborne aircraft start
// out under autonomous control.
func (s *Sim) SetSpawnAIControlled(ai bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spawner.AIControlled = ai
}

// Spawn creates a new aircraft and adds it to the simulation.
func (s *Sim) Spawn() (*Aircraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ac, err := s.spawner.Spawn(s.Airspace, s.aircraft)
	if err != nil {
		return nil, err
	}
	return ac, s.addAircraft(ac)
}

// SpawnUntil spawns aircraft until there are at least n that haven't
// landed.
func (s *Sim) SpawnUntil(n int) ([]*Aircraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := 0
	for _, ac := range s.aircraft {
		if ac.State != StateLanded {
			active++
		}
	}

	var spawned []*Aircraft
	for ; active < n; active++ {
		ac, err := s.spawner.Spawn(s.Airspace, s.aircraft)
		if err != nil {
			return spawned, err
		}
		if err := s.addAircraft(ac); err != nil {
			return spawned, err
		}
		spawned = append(spawned, ac)
	}
	return spawned, nil
}

// RunCommands interprets a line of controller commands; see
// Interpreter.Run for the syntax. Readbacks are also posted to the event
// stream.
func (s *Sim) RunCommands(text string) []ControlResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := s.interpreter.Run(text, s.aircraft)
	for _, r := range results {
		if r.AckMsg != "" {
			s.eventStream.Post(Event{
				Type:        ReadbackEvent,
				Callsign:    r.Callsign,
				WrittenText: r.CtrlMsg,
				SpokenText:  r.AckMsg,
			})
		}
	}
	return results
}

// Conflicts returns the conflicts found in the most recent tick.
func (s *Sim) Conflicts() []Conflict {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.conflicts)
}

// UpdateErrors returns the errors from aircraft updates that failed in
// the most recent tick.
func (s *Sim) UpdateErrors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.updateErrors)
}

///////////////////////////////////////////////////////////////////////////
// Simulation

// Update advances the simulation by the wall-clock time since the last
// call, scaled by the sim rate. Time is stepped in whole ticks; any
// remainder is carried over to the next call.
func (s *Sim) Update() {
	s.mu.Lock()
	defer s.mu.Unlock()

	startUpdate := time.Now()
	defer func() {
		limit := util.Select(log.RaceEnabled, 2*time.Second, 200*time.Millisecond)
		if d := time.Since(startUpdate); d > limit {
			s.lg.Warn("unexpectedly long Sim Update() call", slog.Duration("duration", d),
				slog.Any("sim", s))
		}
	}()

	elapsed := time.Since(s.lastUpdateTime)
	elapsed = time.Duration(s.Config.SimRate * float32(elapsed))
	s.advance(elapsed)
	s.lastUpdateTime = time.Now()
}

// Advance runs as many ticks as fit in the given elapsed sim time and
// reports whether any were run.
func (s *Sim) Advance(elapsed time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.advance(elapsed) > 0
}

func (s *Sim) advance(elapsed time.Duration) int {
	elapsed += s.updateTimeSlop

	tick := time.Duration(s.Config.TickSeconds * float32(time.Second))
	ns := int(elapsed / tick)
	if ns > 10 {
		s.lg.Warn("unexpected hitch in update rate", slog.Duration("elapsed", elapsed),
			slog.Int("steps", ns), slog.Duration("slop", s.updateTimeSlop))
	}
	for range ns {
		s.step(s.Config.TickSeconds)
	}

	s.updateTimeSlop = elapsed - time.Duration(ns)*tick
	return ns
}

// Step runs a single tick of dt seconds.
func (s *Sim) Step(dt float32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.step(dt)
}

func (s *Sim) step(dt float32) {
	s.simTime += dt
	runways := s.Airspace.Runways()

	// The AI works from the positions at the end of the previous tick.
	s.ai.Index = s.index
	s.ai.Update(s.aircraft, runways, dt)

	var events []Event
	s.updateErrors = nil
	for _, ac := range s.aircraft {
		ev, err := s.updateAircraft(ac, dt)
		if err != nil {
			err = fmt.Errorf("%s: %w: %w", ac.Callsign, ErrAircraftUpdate, err)
			s.updateErrors = append(s.updateErrors, err)
			events = append(events, Event{Type: StatusMessageEvent, Callsign: ac.Callsign,
				WrittenText: err.Error()})
			continue
		}
		events = append(events, ev...)
	}

	events = append(events, s.lineUpWaiting()...)

	s.index = buildIndex(s.aircraft, s.Airspace.Extent())

	conflicts := CheckConflictsIndexed(s.aircraft, s.index, &s.Config)
	events = append(events, diffConflicts(s.conflicts, conflicts)...)
	s.conflicts = conflicts

	for _, e := range events {
		s.eventStream.Post(e)
	}
}

// updateAircraft updates a single aircraft; a panic during the update is
// logged and returned as an error so that the rest of the tick proceeds.
func (s *Sim) updateAircraft(ac *Aircraft, dt float32) (events []Event, err error) {
	defer s.lg.CatchPanic(&err, "aircraft update", slog.String("callsign", ac.Callsign))

	return ac.Update(s.Airspace, &s.Config, s.simTime, dt, s.lg), nil
}

// lineUpWaiting moves the first aircraft waiting for each free runway
// onto it.
func (s *Sim) lineUpWaiting() []Event {
	var events []Event
	for _, rwy := range s.Airspace.Runways() {
		if !rwy.IsAvailable() {
			continue
		}

		var next *Aircraft
		for _, ac := range s.aircraft {
			if ac.DepartureRunway != rwy.Name {
				continue
			}
			if ac.State == StateOnRunway {
				next = nil
				break
			}
			if ac.State == StateTakeoffPending && next == nil {
				next = ac
			}
		}

		if next != nil {
			next.State = StateOnRunway
			next.Nav.FlightState.Position = rwy.Threshold()
			events = append(events, next.status(next.Callsign+" lined up "+rwy.Name))
		}
	}
	return events
}

func diffConflicts(prev, cur []Conflict) []Event {
	var events []Event

	was := make(map[[2]string]bool)
	for _, c := range prev {
		was[c.key()] = true
	}
	is := make(map[[2]string]bool)
	for _, c := range cur {
		is[c.key()] = true
		if !was[c.key()] {
			events = append(events, Event{Type: ConflictAlertEvent, Callsign: c.A, Other: c.B,
				WrittenText: c.String()})
		}
	}
	for _, c := range prev {
		if !is[c.key()] {
			events = append(events, Event{Type: ConflictClearedEvent, Callsign: c.A, Other: c.B})
		}
	}
	return events
}

///////////////////////////////////////////////////////////////////////////
// Snapshots

// Snapshot returns a copy of the state of the simulation that may be
// freely shared with other goroutines.
func (s *Sim) Snapshot() WorldSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := WorldSnapshot{
		SimTime:   s.simTime,
		Conflicts: slices.Clone(s.conflicts),
	}
	ws.Aircraft = util.MapSlice(s.aircraft, (*Aircraft).Snapshot)
	ws.Runways = util.MapSlice(s.Airspace.Runways(), func(rwy *av.Runway) av.Runway { return *rwy })
	if ap, err := s.Airspace.Airport(); err == nil {
		ws.Arrivals = slices.Clone(ap.Arrivals)
	}
	return ws
}

// AircraftDisplayState returns a human-readable dump of the aircraft's
// state, for debugging.
func (s *Sim) AircraftDisplayState(callsign string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ac := findAircraft(s.aircraft, callsign)
	if ac == nil {
		return "", fmt.Errorf("%s: %w", callsign, ErrNoSuchAircraft)
	}
	return ac.Nav.FlightState.Summary() + "\n" + godump.DumpStr(ac.Snapshot()), nil
}
