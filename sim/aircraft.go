// sim/aircraft.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	av "github.com/atcsim/atcsim/aviation"
	"github.com/atcsim/atcsim/log"
	"github.com/atcsim/atcsim/nav"
)

type AircraftState int

const (
	StateAirborne AircraftState = iota
	StateTakeoff
	StateLanding
	StateLanded
	// Spawned on a runway and waiting for a takeoff clearance; ON_RUNWAY
	// if the runway was free at spawn time, TAKEOFF_PENDING otherwise.
	StateTakeoffPending
	StateOnRunway
)

func (s AircraftState) String() string {
	return []string{"AIRBORNE", "TAKEOFF", "LANDING", "LANDED", "TAKEOFF_PENDING", "ON_RUNWAY"}[s]
}

// OnGround reports whether the aircraft is waiting on a runway for its
// takeoff clearance.
func (s AircraftState) OnGround() bool {
	return s == StateTakeoffPending || s == StateOnRunway
}

type Aircraft struct {
	Callsign string
	Nav      nav.Nav
	State    AircraftState

	// Commands are executed in order, one per tick.
	Queue []Command

	// Runway is non-nil only in the TAKEOFF and LANDING states, and then
	// the runway's ActiveCallsign is this aircraft's callsign.
	Runway *av.Runway

	// DepartureRunway is the runway an aircraft spawned on the ground is
	// waiting to depart from.
	DepartureRunway string

	AIControlled bool
	// Sim time at which the AI controller next looks at this aircraft.
	NextDecision float32

	// Sim time of touchdown; nil until a landing aircraft reaches the
	// runway.
	TouchdownTime *float32

	// Msg is the most recent status line for the aircraft.
	Msg string
}

func MakeAircraft(callsign string, fs nav.FlightState, perf nav.Performance) *Aircraft {
	return &Aircraft{
		Callsign: callsign,
		Nav:      *nav.MakeNav(fs, perf),
	}
}

func (ac *Aircraft) Position() [2]float32 { return ac.Nav.FlightState.Position }
func (ac *Aircraft) Heading() float32     { return ac.Nav.FlightState.Heading }
func (ac *Aircraft) Altitude() float32    { return ac.Nav.FlightState.Altitude }
func (ac *Aircraft) IAS() float32         { return ac.Nav.FlightState.IAS }

// Enqueue appends commands to the end of the aircraft's queue.
func (ac *Aircraft) Enqueue(cmds ...Command) {
	ac.Queue = append(ac.Queue, cmds...)
}

func (ac *Aircraft) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("callsign", ac.Callsign),
		slog.String("state", ac.State.String()),
		slog.Bool("ai", ac.AIControlled),
		slog.Bool("airborne", ac.Nav.IsAirborne()),
		slog.Int("queue", len(ac.Queue)),
		slog.Any("nav", &ac.Nav),
	}
	if ac.Runway != nil {
		attrs = append(attrs, slog.String("runway", ac.Runway.Name))
	}
	return slog.GroupValue(attrs...)
}

// Update advances the aircraft by dt seconds: the command at the head of
// the queue is executed, the flight state is integrated, and the runway
// state transitions for takeoff and landing are applied. Any events that
// result are returned for the caller to post.
func (ac *Aircraft) Update(as *Airspace, cfg *Config, now, dt float32, lg *log.Logger) []Event {
	var events []Event

	if len(ac.Queue) > 0 {
		cmd := ac.Queue[0]
		done, ev := ac.execute(cmd, as, cfg, now, lg)
		events = append(events, ev...)
		if done {
			ac.Queue = ac.Queue[1:]
		}
	}

	if fix := ac.Nav.Update(dt); fix != "" {
		events = append(events, ac.status(ac.Callsign+" ARRIVED "+fix))
	}

	events = append(events, ac.updateRunwayState(as, cfg, now, lg)...)

	return events
}

func (ac *Aircraft) status(msg string) Event {
	ac.Msg = msg
	return Event{Type: StatusMessageEvent, Callsign: ac.Callsign, WrittenText: msg}
}

// execute runs a single command, returning true when the command has
// completed and may be removed from the queue. Malformed commands are
// reported through the aircraft's status message and are consumed.
func (ac *Aircraft) execute(cmd Command, as *Airspace, cfg *Config, now float32, lg *log.Logger) (bool, []Event) {
	lg.Debug("executing command", slog.String("callsign", ac.Callsign), slog.String("command", cmd.String()))

	switch cmd.Type {
	case CommandHDG:
		turn := nav.TurnClosest
		switch cmd.Extra {
		case "L":
			turn = nav.TurnLeft
		case "R":
			turn = nav.TurnRight
		}
		hdg, err := strconv.Atoi(cmd.Value)
		if err == nil {
			err = ac.Nav.AssignHeading(float32(hdg), turn)
		}
		if err != nil {
			return true, []Event{ac.status(fmt.Sprintf("%s: invalid heading '%s'", ac.Callsign, cmd.Value))}
		}
		return true, nil

	case CommandALT:
		alt, err := strconv.Atoi(cmd.Value)
		if err == nil {
			expedite := cmd.Extra == "X" || cmd.Extra == "EX"
			err = ac.Nav.AssignAltitude(float32(alt*1000), expedite)
		}
		if err != nil {
			return true, []Event{ac.status(fmt.Sprintf("%s: invalid altitude '%s'", ac.Callsign, cmd.Value))}
		}
		return true, nil

	case CommandSPD:
		spd, err := strconv.Atoi(cmd.Value)
		if err == nil {
			err = ac.Nav.AssignSpeed(float32(spd))
		}
		if err != nil {
			return true, []Event{ac.status(fmt.Sprintf("%s: invalid speed '%s'", ac.Callsign, cmd.Value))}
		}
		return true, nil

	case CommandNAV:
		fix, err := as.Fixes().Lookup(cmd.Value)
		if err != nil {
			return true, []Event{ac.status("UNKNOWN FIX " + cmd.Value)}
		}
		ac.Nav.DirectFix(fix.Name, fix.Location)
		return true, []Event{ac.status(ac.Callsign + " CLEARED TO " + fix.Name)}

	case CommandHOLD:
		if cmd.Value != "" {
			if fix, err := as.Fixes().Lookup(cmd.Value); err == nil {
				ac.Nav.Hold(fix.Name, fix.Location)
				return true, []Event{ac.status(ac.Callsign + " HOLDING AT " + fix.Name)}
			}
			// Unknown fix: hold where we are.
			ac.Nav.Hold("", ac.Position())
			return true, []Event{ac.status("UNKNOWN FIX " + cmd.Value + ", " + ac.Callsign + " HOLDING")}
		}
		ac.Nav.Hold("", ac.Position())
		return true, []Event{ac.status(ac.Callsign + " HOLDING")}

	case CommandTAKEOFF:
		return true, ac.executeTakeoff(cmd, as, now)

	case CommandLAND:
		return true, ac.executeLand(cmd, as, cfg, now)

	default:
		panic("unhandled CommandType " + cmd.Type.String())
	}
}

func (ac *Aircraft) executeTakeoff(cmd Command, as *Airspace, now float32) []Event {
	name, spdStr, altStr, ok := cmd.takeoffArgs()
	spd, serr := strconv.Atoi(spdStr)
	alt, aerr := strconv.Atoi(altStr)
	perf := &ac.Nav.Perf
	if !ok || serr != nil || aerr != nil || spd <= 0 || float32(spd) > perf.MaxSpeed ||
		alt <= 0 || float32(alt) > perf.MaxAltitude {
		return []Event{ac.status(fmt.Sprintf("%s: invalid takeoff parameters '%s'", ac.Callsign, cmd.Value))}
	}

	if ac.Runway != nil {
		return []Event{ac.status(fmt.Sprintf("%s: %s %s", ac.Callsign, ErrAlreadyOnRunway, ac.Runway.Name))}
	}

	rwy, err := as.Runway(name)
	if err != nil {
		return []Event{ac.status("Runway " + name + " not found")}
	}
	if err := rwy.Occupy(ac.Callsign, now); err != nil {
		return []Event{ac.status(runwayUnavailableMessage(rwy, err))}
	}

	ac.Runway = rwy
	ac.State = StateTakeoff
	ac.DepartureRunway = ""
	if ac.Altitude() == 0 {
		ac.Nav.Ground = nav.TakeoffRoll
	}
	ac.Nav.AssignSpeed(float32(spd))
	ac.Nav.ClimbTo(float32(alt))
	ac.Nav.AssignHeading(rwy.Bearing, nav.TurnClosest)

	return []Event{
		{Type: RunwayOccupiedEvent, Callsign: ac.Callsign, Runway: rwy.Name},
		ac.status(ac.Callsign + " rolling " + rwy.Name),
	}
}

func (ac *Aircraft) executeLand(cmd Command, as *Airspace, cfg *Config, now float32) []Event {
	if ac.Runway != nil {
		return []Event{ac.status(fmt.Sprintf("%s: %s %s", ac.Callsign, ErrAlreadyOnRunway, ac.Runway.Name))}
	}

	rwy, err := as.Runway(cmd.Value)
	if err != nil {
		return []Event{ac.status("Runway " + cmd.Value + " not found")}
	}
	if err := rwy.Occupy(ac.Callsign, now); err != nil {
		return []Event{ac.status(runwayUnavailableMessage(rwy, err))}
	}

	ac.Runway = rwy
	ac.State = StateLanding
	ac.TouchdownTime = nil
	ac.Nav.Ground = nav.LandingRoll
	ac.Nav.AssignHeading(rwy.Bearing, nav.TurnClosest)
	ac.Nav.AssignSpeed(cfg.LandingSpeed)
	ac.Nav.AssignAltitude(0, false)

	return []Event{
		{Type: RunwayOccupiedEvent, Callsign: ac.Callsign, Runway: rwy.Name},
		ac.status(ac.Callsign + " landing " + rwy.Name),
	}
}

func runwayUnavailableMessage(rwy *av.Runway, err error) string {
	if errors.Is(err, av.ErrRunwayClosed) {
		return rwy.Name + " closed"
	}
	return rwy.Name + " occupied"
}

func (ac *Aircraft) updateRunwayState(as *Airspace, cfg *Config, now float32, lg *log.Logger) []Event {
	if ac.Runway == nil {
		return nil
	}

	alt := ac.Altitude()
	switch ac.State {
	case StateTakeoff:
		assigned, _ := ac.Nav.AssignedAltitude()
		if alt >= cfg.TakeoffReleaseAlt || (assigned > 0 && alt > cfg.TakeoffReleaseRatio*assigned) {
			ev := ac.releaseRunway(now, lg)
			ac.State = StateAirborne
			ac.Nav.Ground = nav.Airborne
			return ev
		}

	case StateLanding:
		if alt > cfg.TouchdownAlt {
			return nil
		}

		var events []Event
		if ap, err := as.Airport(); err != nil {
			lg.Error("touchdown with no airport", slog.Any("error", err), slog.Any("aircraft", ac))
		} else if ap.RegisterArrival(ac.Callsign) {
			events = append(events, Event{Type: ArrivalEvent, Callsign: ac.Callsign, Runway: ac.Runway.Name})
		}

		if ac.TouchdownTime == nil {
			t := now
			ac.TouchdownTime = &t
			ac.Nav.CancelSpeed()
		}

		if ac.IAS() < cfg.RolloutMinSpeed || now-*ac.TouchdownTime > cfg.RolloutMaxTime {
			name := ac.Runway.Name
			events = append(events, ac.releaseRunway(now, lg)...)
			ac.State = StateLanded
			events = append(events, ac.status(ac.Callsign+" landed "+name))
		}
		return events
	}
	return nil
}

// releaseRunway gives up the aircraft's runway. The runway is only
// released if it is actually held by this aircraft.
func (ac *Aircraft) releaseRunway(now float32, lg *log.Logger) []Event {
	rwy := ac.Runway
	ac.Runway = nil
	if rwy == nil {
		return nil
	}

	if err := rwy.ReleaseBy(ac.Callsign, now); err != nil {
		lg.Warn("aircraft tried to release a runway it doesn't hold", slog.Any("error", err),
			slog.String("callsign", ac.Callsign), slog.Any("runway", rwy))
		return nil
	}
	return []Event{{Type: RunwayReleasedEvent, Callsign: ac.Callsign, Runway: rwy.Name}}
}
