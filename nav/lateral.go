// nav/lateral.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/atcsim/atcsim/math"
)

type TurnMethod int

const (
	TurnClosest TurnMethod = iota // default
	TurnLeft
	TurnRight
)

func (t TurnMethod) String() string {
	return []string{"closest", "left", "right"}[t]
}

const StandardTurnRate = 3

// ArrivalDistance is how close (in nm) an aircraft flying direct to a fix
// must get for the fix to count as reached.
const ArrivalDistance = 1

func TurnAngle(from, to float32, turn TurnMethod) float32 {
	switch turn {
	case TurnLeft:
		return math.NormalizeHeading(from - to)

	case TurnRight:
		return math.NormalizeHeading(to - from)

	case TurnClosest:
		return math.Abs(math.HeadingDifference(from, to))

	default:
		panic("unhandled TurnMethod")
	}
}

// targetHeading returns the heading the aircraft should be turning
// toward and how to get there. The returned bool is false if there is
// nothing to fly.
func (nav *Nav) targetHeading() (float32, TurnMethod, bool) {
	fs := &nav.FlightState

	if h := nav.Heading.Hold; h != nil {
		if math.Distance2f(fs.Position, h.Center) > nav.Perf.HoldRadius {
			return math.Heading2f(fs.Position, h.Center), TurnRight, true
		}
		// Keep turning right.
		return math.NormalizeHeading(fs.Heading + 90), TurnRight, true
	}

	if d := nav.Heading.Direct; d != nil {
		return math.Heading2f(fs.Position, d.Location), TurnClosest, true
	}

	if hdg, ok := nav.AssignedHeading(); ok {
		return hdg, nav.Heading.Turn, true
	}

	return 0, TurnClosest, false
}

func (nav *Nav) updateHeading(dt float32) (arrived string) {
	fs := &nav.FlightState
	if nav.Ground == Parked || (nav.Ground == LandingRoll && fs.Altitude == 0) {
		return ""
	}

	if d := nav.Heading.Direct; d != nil && math.Distance2f(fs.Position, d.Location) <= ArrivalDistance {
		// Arrived; keep flying the current heading.
		hdg := fs.Heading
		nav.Heading = NavHeading{Assigned: &hdg}
		return d.Fix
	}

	target, turnMethod, ok := nav.targetHeading()
	if !ok || fs.Heading == target {
		return ""
	}

	turnRate := nav.Perf.TurnRate * dt
	if TurnAngle(fs.Heading, target, turnMethod) <= turnRate {
		// Close enough to finish the turn this tick.
		fs.Heading = target
		return ""
	}

	var turn float32
	switch turnMethod {
	case TurnLeft:
		turn = -turnRate
	case TurnRight:
		turn = turnRate
	case TurnClosest:
		turn = math.HeadingSignedTurn(fs.Heading, target)
		turn = math.Clamp(turn, -turnRate, turnRate)
	}

	// Finally, do the turn.
	fs.Heading = math.NormalizeHeading(fs.Heading + turn)

	if d := nav.Heading.Direct; d != nil {
		// Keep the assignment in sync for display and snapshots.
		hdg := target
		nav.Heading.Assigned = &hdg
	}
	return ""
}
