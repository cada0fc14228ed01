// nav/speed.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/atcsim/atcsim/math"
)

// Altitude below which a landing aircraft is considered to be on the
// runway and starts braking.
const landingBrakeAltitude = 20

func (nav *Nav) updateSpeed(dt float32) {
	fs := &nav.FlightState

	switch nav.Ground {
	case Parked:
		fs.IAS = 0
		return

	case LandingRoll:
		if fs.Altitude <= landingBrakeAltitude {
			fs.IAS = math.Max(0, fs.IAS-nav.Perf.LandingDecelRate*dt)
			return
		}

	case TakeoffRoll:
		target, _ := nav.AssignedSpeed()
		if fs.Altitude == 0 {
			// Nothing climbs below rotation speed, so the roll always
			// accelerates through it; slower assignments are flown once
			// airborne.
			target = math.Max(target, nav.Perf.RotateSpeed)
		}
		if fs.IAS < target {
			fs.IAS = math.Min(target, fs.IAS+nav.Perf.TakeoffAccelRate*dt)
			return
		}
	}

	spd, ok := nav.AssignedSpeed()
	if !ok || fs.IAS == spd {
		return
	}

	step := nav.Perf.SpeedChangeRate * dt
	if math.Abs(spd-fs.IAS) <= step {
		fs.IAS = spd
	} else {
		fs.IAS += math.Sign(spd-fs.IAS) * step
	}
}
