// aviation/runway.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"log/slog"

	"github.com/atcsim/atcsim/math"
)

type RunwayStatus int

const (
	RunwayAvailable RunwayStatus = iota
	RunwayOccupied
	RunwayClosed
)

func (s RunwayStatus) String() string {
	return []string{"AVAILABLE", "OCCUPIED", "CLOSED"}[s]
}

// Runway is a single strip of pavement that at most one aircraft may use
// at a time. Positions are in nm; the bearing is the direction of
// takeoff and landing roll.
type Runway struct {
	Name            string
	Center          [2]float32
	Bearing         float32
	OppositeBearing float32
	LengthNM        float32

	Status RunwayStatus
	// Callsign of the aircraft currently holding the runway; it is
	// non-empty exactly when Status is RunwayOccupied.
	ActiveCallsign string
	// Sim time in seconds of the last status change.
	LastUsed float32
}

func MakeRunway(name string, center [2]float32, bearing, length float32) *Runway {
	bearing = math.NormalizeHeading(bearing)
	return &Runway{
		Name:            name,
		Center:          center,
		Bearing:         bearing,
		OppositeBearing: math.OppositeHeading(bearing),
		LengthNM:        length,
	}
}

// Threshold returns the point where the takeoff or landing roll starts.
func (r *Runway) Threshold() [2]float32 {
	return math.Sub2f(r.Center, math.Scale2f(math.HeadingVector(r.Bearing), r.LengthNM/2))
}

// End returns the far end of the runway.
func (r *Runway) End() [2]float32 {
	return math.Add2f(r.Center, math.Scale2f(math.HeadingVector(r.Bearing), r.LengthNM/2))
}

func (r *Runway) IsAvailable() bool {
	return r.Status == RunwayAvailable && r.ActiveCallsign == ""
}

// Occupy marks the runway as held by the given aircraft.
func (r *Runway) Occupy(callsign string, now float32) error {
	switch {
	case r.Status == RunwayClosed:
		return ErrRunwayClosed
	case !r.IsAvailable():
		return fmt.Errorf("%s: %w by %s", r.Name, ErrRunwayOccupied, r.ActiveCallsign)
	}

	r.Status = RunwayOccupied
	r.ActiveCallsign = callsign
	r.LastUsed = now
	return nil
}

// Release unconditionally makes the runway available.
func (r *Runway) Release(now float32) {
	r.Status = RunwayAvailable
	r.ActiveCallsign = ""
	r.LastUsed = now
}

// ReleaseBy releases the runway only if it is currently held by the given
// aircraft.
func (r *Runway) ReleaseBy(callsign string, now float32) error {
	if r.ActiveCallsign != callsign {
		return ErrRunwayNotHeld
	}
	r.Release(now)
	return nil
}

// Close takes the runway out of service. A runway that is in use can't
// be closed.
func (r *Runway) Close(now float32) error {
	if r.Status == RunwayOccupied {
		return ErrRunwayOccupied
	}
	r.Status = RunwayClosed
	r.LastUsed = now
	return nil
}

func (r *Runway) Open(now float32) {
	if r.Status == RunwayClosed {
		r.Status = RunwayAvailable
		r.LastUsed = now
	}
}

func (r *Runway) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", r.Name),
		slog.String("status", r.Status.String()),
		slog.String("active", r.ActiveCallsign),
		slog.Float64("bearing", float64(r.Bearing)))
}
