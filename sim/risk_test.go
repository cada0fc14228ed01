// sim/risk_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"strconv"
	"strings"
	"testing"

	"github.com/atcsim/atcsim/log"
	"github.com/atcsim/atcsim/math"
	"github.com/atcsim/atcsim/rand"
)

func TestHeuristicScorer(t *testing.T) {
	h := HeuristicScorer{SafeLateralNM: 3, SafeVerticalFt: 1000}

	for _, tc := range []struct {
		name string
		b    AircraftSnapshot
		want float32
	}{
		{name: "same place", b: AircraftSnapshot{Position: [2]float32{0, 0}, Altitude: 5000, Heading: 90}, want: 1},
		{name: "far away", b: AircraftSnapshot{Position: [2]float32{20, 0}, Altitude: 15000, Heading: 270}, want: 0},
		{name: "lateral only", b: AircraftSnapshot{Position: [2]float32{3, 0}, Altitude: 9000, Heading: 270}, want: 0.25},
		{name: "vertical only", b: AircraftSnapshot{Position: [2]float32{10, 0}, Altitude: 6500, Heading: 270}, want: 0.25},
		{name: "similar heading", b: AircraftSnapshot{Position: [2]float32{10, 0}, Altitude: 9000, Heading: 100}, want: 0.1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			a := AircraftSnapshot{Position: [2]float32{0, 0}, Altitude: 5000, Heading: 90}
			if got := h.Score(a, tc.b); math.Abs(got-tc.want) > 0.001 {
				t.Errorf("got %f, want %f", got, tc.want)
			}
			if ab, ba := h.Score(a, tc.b), h.Score(tc.b, a); ab != ba {
				t.Errorf("asymmetric: %f vs %f", ab, ba)
			}
		})
	}
}

func TestAdvisor(t *testing.T) {
	r := rand.Make()
	r.Seed(5)
	adv := NewAdvisor(HeuristicScorer{SafeLateralNM: 3, SafeVerticalFt: 1000}, 0.6, r)

	ws := WorldSnapshot{
		Aircraft: []AircraftSnapshot{
			{Callsign: "BA001", Position: [2]float32{0, 0}, Altitude: 5000, Heading: 90},
			{Callsign: "U2002", Position: [2]float32{1, 0}, Altitude: 5200, Heading: 270},
			{Callsign: "RK003", Position: [2]float32{0.5, 0}, Altitude: 5100, Heading: 90, State: StateLanded},
			{Callsign: "LM004", Position: [2]float32{0, 0.5}, Altitude: 0, State: StateOnRunway},
			{Callsign: "W9005", Position: [2]float32{30, 10}, Altitude: 12000, Heading: 0},
		},
	}

	advisories := adv.Advise(&ws)
	if len(advisories) != 1 {
		t.Fatalf("got %v, want one advisory", advisories)
	}
	a := advisories[0]
	if a.A != "BA001" || a.B != "U2002" || a.Risk < 0.6 {
		t.Errorf("advisory %v", a)
	}

	hdg, ok := strings.CutPrefix(a.Command, "BA001 C ")
	if !ok || len(hdg) != 3 {
		t.Fatalf("command %q", a.Command)
	}
	h, err := strconv.Atoi(hdg)
	if err != nil {
		t.Fatalf("command %q: %v", a.Command, err)
	}
	if d := math.HeadingDifference(float32(h), 90); d < 10 || d > 20 {
		t.Errorf("command %q turns %f degrees", a.Command, d)
	}

	// The suggested command is one the interpreter accepts.
	as := makeTestAirspace(t)
	cfg := DefaultConfig()
	in := NewInterpreter(as, &cfg, log.NewDiscard())
	ac := makeTestAircraft("BA001", [2]float32{0, 0}, 90, 5000, 250)
	if res := in.Run(a.Command, []*Aircraft{ac}); res[0].CtrlMsg != "BA001: CLEARED 1 COMMAND(S)" {
		t.Errorf("interpreter: %+v", res[0])
	}

	adv.Threshold = 1.01
	if got := adv.Advise(&ws); len(got) != 0 {
		t.Errorf("above-threshold advisories: %v", got)
	}
}
