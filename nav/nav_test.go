// nav/nav_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"testing"

	"github.com/atcsim/atcsim/math"
)

func makeTestNav(hdg, alt, ias float32) *Nav {
	return MakeNav(FlightState{Heading: hdg, Altitude: alt, IAS: ias}, DefaultPerformance())
}

func TestHeadingTurnBound(t *testing.T) {
	for _, tc := range []struct {
		name       string
		from, to   float32
		turn       TurnMethod
		firstDelta float32 // signed heading change after one second
	}{
		{"closest right", 90, 120, TurnClosest, 3},
		{"closest left", 90, 60, TurnClosest, -3},
		{"closest across north", 350, 10, TurnClosest, 3},
		{"forced left the long way", 90, 120, TurnLeft, -3},
		{"forced right the long way", 90, 60, TurnRight, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			nav := makeTestNav(tc.from, 5000, 250)
			if err := nav.AssignHeading(tc.to, tc.turn); err != nil {
				t.Fatalf("AssignHeading: %v", err)
			}

			prev := nav.FlightState.Heading
			nav.Update(1)
			delta := math.HeadingSignedTurn(prev, nav.FlightState.Heading)
			if math.Abs(delta-tc.firstDelta) > 1e-3 {
				t.Errorf("first tick heading change: got %f, want %f", delta, tc.firstDelta)
			}

			for i := range 200 {
				prev = nav.FlightState.Heading
				nav.Update(1)
				if d := math.HeadingDifference(prev, nav.FlightState.Heading); d > StandardTurnRate+1e-3 {
					t.Fatalf("tick %d: turned %f degrees, more than the turn rate", i, d)
				}
				if nav.FlightState.Heading < 0 || nav.FlightState.Heading >= 360 {
					t.Fatalf("heading %f out of range", nav.FlightState.Heading)
				}
			}
			if nav.FlightState.Heading != math.NormalizeHeading(tc.to) {
				t.Errorf("final heading: got %f, want %f", nav.FlightState.Heading, tc.to)
			}
		})
	}
}

func TestInvalidAssignments(t *testing.T) {
	nav := makeTestNav(0, 5000, 250)
	if err := nav.AssignHeading(361, TurnClosest); err != ErrInvalidHeading {
		t.Errorf("AssignHeading(361): got %v", err)
	}
	if err := nav.AssignAltitude(-100, false); err != ErrInvalidAltitude {
		t.Errorf("AssignAltitude(-100): got %v", err)
	}
	if err := nav.AssignSpeed(5000); err != ErrInvalidSpeed {
		t.Errorf("AssignSpeed(5000): got %v", err)
	}
	if err := nav.AssignHeading(360, TurnClosest); err != nil {
		t.Errorf("AssignHeading(360): %v", err)
	} else if hdg, _ := nav.AssignedHeading(); hdg != 0 {
		t.Errorf("heading 360 should normalize to 0, got %f", hdg)
	}
}

func TestEasedAltitudeConverges(t *testing.T) {
	for _, tc := range []struct {
		from, to float32
		expedite bool
	}{
		{5000, 10000, false},
		{10000, 3000, false},
		{3000, 3200, false},
		{5000, 9000, true},
	} {
		nav := makeTestNav(0, tc.from, 250)
		if err := nav.AssignAltitude(tc.to, tc.expedite); err != nil {
			t.Fatalf("AssignAltitude: %v", err)
		}
		p := *nav.Altitude.Profile

		// Monotonic during the eased phase; no overshoot beyond the
		// settling amplitude afterward.
		prev := tc.from
		var i int
		for i = 0; i < 3600 && nav.Altitude.Profile != nil; i++ {
			nav.Update(0.5)
			alt := nav.FlightState.Altitude
			if prof := nav.Altitude.Profile; prof != nil && !prof.Settling {
				if (tc.to > tc.from && alt < prev-1e-2) || (tc.to < tc.from && alt > prev+1e-2) {
					t.Errorf("%v: altitude went the wrong way: %f -> %f", tc, prev, alt)
				}
			} else if prof != nil && math.Abs(alt-tc.to) > p.Amplitude+1e-2 {
				t.Errorf("%v: settling altitude %f too far from target", tc, alt)
			}
			prev = alt
		}

		if nav.Altitude.Profile != nil {
			t.Errorf("%v: profile never finished", tc)
		}
		if nav.FlightState.Altitude != tc.to {
			t.Errorf("%v: final altitude %f, want exactly %f", tc, nav.FlightState.Altitude, tc.to)
		}
		if float32(i)*0.5 < p.Duration {
			t.Errorf("%v: finished in %fs, before the profile duration %f", tc, float32(i)*0.5, p.Duration)
		}
	}
}

func TestExpediteProfileIsShorter(t *testing.T) {
	a, b := makeTestNav(0, 5000, 250), makeTestNav(0, 5000, 250)
	a.AssignAltitude(15000, false)
	b.AssignAltitude(15000, true)
	if b.Altitude.Profile.Duration >= a.Altitude.Profile.Duration {
		t.Errorf("expedited duration %f should be less than %f", b.Altitude.Profile.Duration,
			a.Altitude.Profile.Duration)
	}

	c := makeTestNav(0, 5000, 250)
	c.AssignAltitude(5050, false)
	if c.Altitude.Profile.Duration != c.Perf.MinProfileDuration {
		t.Errorf("small change duration: got %f, want minimum %f", c.Altitude.Profile.Duration,
			c.Perf.MinProfileDuration)
	}

	d := makeTestNav(0, 5000, 250)
	d.AssignAltitude(5000, false)
	if d.Altitude.Profile != nil {
		t.Errorf("no profile expected when already at altitude")
	}
}

func TestConstantRateClimb(t *testing.T) {
	nav := makeTestNav(0, 0, 250)
	nav.ClimbTo(3000)
	nav.Update(6)
	// 2000 ft/min for 6s
	if math.Abs(nav.FlightState.Altitude-200) > 1e-2 {
		t.Errorf("altitude after 6s: got %f, want 200", nav.FlightState.Altitude)
	}
	if math.Abs(nav.FlightState.AltitudeRate-2000) > 1 {
		t.Errorf("altitude rate: got %f, want 2000", nav.FlightState.AltitudeRate)
	}
	for range 200 {
		nav.Update(1)
	}
	if nav.FlightState.Altitude != 3000 {
		t.Errorf("final altitude: got %f, want 3000", nav.FlightState.Altitude)
	}
}

func TestSpeedChange(t *testing.T) {
	nav := makeTestNav(0, 5000, 250)
	nav.AssignSpeed(210)
	nav.Update(5)
	if nav.FlightState.IAS != 240 {
		t.Errorf("IAS after 5s: got %f, want 240", nav.FlightState.IAS)
	}
	for range 30 {
		nav.Update(1)
	}
	if nav.FlightState.IAS != 210 {
		t.Errorf("final IAS: got %f, want 210", nav.FlightState.IAS)
	}
}

func TestPositionIntegration(t *testing.T) {
	nav := makeTestNav(90, 5000, 360)
	nav.Update(10)
	// 360 kt = 0.1 nm/s; heading 090 is +x.
	p := nav.FlightState.Position
	if math.Abs(p[0]-1) > 1e-4 || math.Abs(p[1]) > 1e-4 {
		t.Errorf("position: got %v, want [1 0]", p)
	}

	nav = makeTestNav(0, 5000, 360)
	nav.Update(10)
	if p := nav.FlightState.Position; math.Abs(p[1]-1) > 1e-4 || math.Abs(p[0]) > 1e-4 {
		t.Errorf("position: got %v, want [0 1]", p)
	}
}

func TestTakeoffRoll(t *testing.T) {
	nav := makeTestNav(270, 0, 0)
	nav.Ground = TakeoffRoll
	nav.AssignSpeed(180)
	nav.ClimbTo(5000)

	nav.Update(10)
	if nav.FlightState.IAS != 50 {
		t.Errorf("IAS after 10s roll: got %f, want 50", nav.FlightState.IAS)
	}
	if nav.FlightState.Altitude != 0 {
		t.Errorf("climbed before rotation speed: altitude %f", nav.FlightState.Altitude)
	}

	for range 30 {
		nav.Update(1)
	}
	if nav.FlightState.IAS <= nav.Perf.RotateSpeed || nav.FlightState.Altitude <= 0 {
		t.Errorf("expected to be climbing after rotation: %s", nav.FlightState.Summary())
	}
	if nav.FlightState.Heading != 270 {
		t.Errorf("heading changed on takeoff: %f", nav.FlightState.Heading)
	}
}

func TestTakeoffRollBelowRotateSpeed(t *testing.T) {
	nav := makeTestNav(270, 0, 0)
	nav.Ground = TakeoffRoll
	nav.AssignSpeed(120)
	nav.ClimbTo(4000)

	for range 40 {
		nav.Update(1)
	}
	if nav.FlightState.Altitude <= 0 {
		t.Fatalf("never rotated: %s", nav.FlightState.Summary())
	}
	if ias := nav.FlightState.IAS; ias < 120 || ias > nav.Perf.RotateSpeed {
		t.Errorf("IAS after rotation: got %f", ias)
	}

	for range 60 {
		nav.Update(1)
	}
	if nav.FlightState.IAS != 120 {
		t.Errorf("IAS once airborne: got %f, want 120", nav.FlightState.IAS)
	}
}

func TestLandingRollDecelerates(t *testing.T) {
	nav := makeTestNav(270, 10, 160)
	nav.Ground = LandingRoll
	nav.AssignSpeed(160)
	nav.Update(5)
	if nav.FlightState.IAS != 140 {
		t.Errorf("IAS after 5s braking: got %f, want 140", nav.FlightState.IAS)
	}
	for range 100 {
		nav.Update(1)
	}
	if nav.FlightState.IAS != 0 {
		t.Errorf("should have come to a stop, IAS %f", nav.FlightState.IAS)
	}
}

func TestParked(t *testing.T) {
	nav := makeTestNav(90, 0, 0)
	nav.Ground = Parked
	nav.AssignHeading(180, TurnClosest)
	nav.AssignSpeed(200)
	nav.Update(10)
	if nav.FlightState.Heading != 90 || nav.FlightState.IAS != 0 || nav.FlightState.Position != [2]float32{} {
		t.Errorf("parked aircraft moved: %s %v", nav.FlightState.Summary(), nav.FlightState.Position)
	}
}

func TestDirectFix(t *testing.T) {
	nav := makeTestNav(0, 5000, 360)
	fix := [2]float32{10, 0}
	nav.DirectFix("DPA", fix)
	if hdg, _ := nav.AssignedHeading(); math.Abs(hdg-90) > 1e-3 {
		t.Errorf("initial heading to fix: got %f, want 90", hdg)
	}

	arrived := ""
	for i := 0; i < 600 && arrived == ""; i++ {
		arrived = nav.Update(1)
	}
	if arrived != "DPA" {
		t.Fatalf("never arrived at fix; at %v", nav.FlightState.Position)
	}
	if d := math.Distance2f(nav.FlightState.Position, fix); d > ArrivalDistance {
		t.Errorf("arrived %f nm from the fix", d)
	}
	if nav.Heading.Direct != nil {
		t.Errorf("direct-to should be cleared after arrival")
	}
}

func TestHoldStaysNearCenter(t *testing.T) {
	nav := makeTestNav(0, 5000, 200)
	nav.Hold("", nav.FlightState.Position)
	center := nav.FlightState.Position

	var maxDist float32
	for range 3600 {
		nav.Update(1)
		maxDist = math.Max(maxDist, math.Distance2f(nav.FlightState.Position, center))
	}
	// A standard rate turn at 200kt has a radius of ~1.1nm; allow for the
	// trip back in when outside the hold radius.
	if maxDist > 2*nav.Perf.HoldRadius {
		t.Errorf("holding aircraft drifted %f nm from the center", maxDist)
	}

	nav.AssignHeading(90, TurnClosest)
	if nav.Heading.Hold != nil {
		t.Errorf("heading assignment should cancel the hold")
	}
}
