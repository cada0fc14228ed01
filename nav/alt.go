// nav/alt.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/atcsim/atcsim/math"
	"github.com/atcsim/atcsim/util"
)

// AltitudeProfile is an eased altitude change from Start to Target over
// Duration seconds, followed by a damped settling period.
type AltitudeProfile struct {
	Start, Target float32
	Elapsed       float32
	Duration      float32
	Settling      bool
	SettleElapsed float32
	Amplitude     float32
}

func (nav *Nav) climbRate(expedite bool) float32 {
	return nav.Perf.ClimbRate * util.Select[float32](expedite, 2, 1)
}

func (nav *Nav) makeAltitudeProfile(target float32, expedite bool) *AltitudeProfile {
	start := nav.FlightState.Altitude
	delta := math.Abs(target - start)
	if delta == 0 {
		return nil
	}

	rate := nav.climbRate(expedite) * math.Max(nav.Perf.ProfileSmoothing, 0.1)
	duration := math.Max(nav.Perf.MinProfileDuration, delta/rate*60)

	return &AltitudeProfile{
		Start:    start,
		Target:   target,
		Duration: duration,
		// Small changes settle with a proportionally small wobble.
		Amplitude: math.Min(nav.Perf.StabilizeAmplitude, delta/10),
	}
}

func (nav *Nav) updateAltitude(dt float32) {
	fs := &nav.FlightState
	prev := fs.Altitude

	switch nav.Ground {
	case Parked:
		fs.AltitudeRate = 0
		return
	case TakeoffRoll:
		if fs.Altitude == 0 && fs.IAS < nav.Perf.RotateSpeed {
			fs.AltitudeRate = 0
			return
		}
	}

	if p := nav.Altitude.Profile; p != nil {
		if done := nav.advanceProfile(p, dt); done {
			nav.Altitude.Profile = nil
		}
	} else if alt, ok := nav.AssignedAltitude(); ok && fs.Altitude != alt {
		step := nav.climbRate(nav.Altitude.Expedite) / 60 * dt
		if math.Abs(alt-fs.Altitude) <= step {
			fs.Altitude = alt
		} else {
			fs.Altitude += math.Sign(alt-fs.Altitude) * step
		}
	}

	fs.Altitude = math.Max(fs.Altitude, 0)
	fs.AltitudeRate = (fs.Altitude - prev) / dt * 60
}

// advanceProfile updates the altitude along the profile and returns true
// once the aircraft has settled at the target.
func (nav *Nav) advanceProfile(p *AltitudeProfile, dt float32) bool {
	fs := &nav.FlightState

	if !p.Settling {
		p.Elapsed += dt
		t := math.Min(p.Elapsed/p.Duration, 1)
		fs.Altitude = math.Lerp(math.SCurve(t, nav.Perf.ProfileSmoothing), p.Start, p.Target)
		if t < 1 {
			return false
		}

		fs.Altitude = p.Target
		if p.Target == 0 || p.Amplitude <= 0 {
			// Nothing to settle on the ground.
			return true
		}
		p.Settling = true
		return false
	}

	p.SettleElapsed += dt
	offset, envelope := math.DecayingOscillation(p.SettleElapsed, nav.Perf.StabilizeFrequency,
		p.Amplitude, nav.Perf.StabilizeDecay)
	if envelope < nav.Perf.StabilizeThreshold {
		fs.Altitude = p.Target
		return true
	}
	fs.Altitude = p.Target + offset
	return false
}
