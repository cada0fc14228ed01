// sim/ai_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"slices"
	"testing"

	av "github.com/atcsim/atcsim/aviation"
	"github.com/atcsim/atcsim/log"
	"github.com/atcsim/atcsim/rand"
)

func makeTestAI(t *testing.T) (*AIController, *Airspace, *Config) {
	t.Helper()

	as := makeTestAirspace(t)
	cfg := DefaultConfig()
	r := rand.Make()
	r.Seed(7)
	return NewAIController(as, &cfg, r, log.NewDiscard()), as, &cfg
}

func TestAIApproachSequence(t *testing.T) {
	ai, as, cfg := makeTestAI(t)

	// Lined up with both parallels; the first one listed wins.
	ac := makeTestAircraft("BA100", [2]float32{10, -4.8}, 270, 3000, 250)
	ac.AIControlled = true
	ai.Update([]*Aircraft{ac}, as.Runways(), 1)

	want := []Command{
		{Type: CommandHDG, Value: "270"},
		{Type: CommandSPD, Value: "160"},
		{Type: CommandALT, Value: "0"},
		{Type: CommandLAND, Value: "27R"},
	}
	if !slices.Equal(ac.Queue, want) {
		t.Fatalf("queue: got %v, want %v", ac.Queue, want)
	}
	if ac.NextDecision != 1+cfg.AIDecisionPeriod {
		t.Errorf("next decision at %f", ac.NextDecision)
	}

	// No new decisions until the timer expires.
	for range 7 {
		ai.Update([]*Aircraft{ac}, as.Runways(), 1)
	}
	if len(ac.Queue) != 4 {
		t.Errorf("decided early: %v", ac.Queue)
	}

	// A manual instruction takes the aircraft off autonomous control but
	// leaves its queue alone.
	in := NewInterpreter(as, cfg, log.NewDiscard())
	in.Run("BA100 C 180", []*Aircraft{ac})
	if ac.AIControlled {
		t.Errorf("still under autonomous control")
	}
	if len(ac.Queue) != 5 || ac.Queue[4] != (Command{Type: CommandHDG, Value: "180"}) {
		t.Errorf("queue: %v", ac.Queue)
	}

	ai.Update([]*Aircraft{ac}, as.Runways(), 1)
	if len(ac.Queue) != 5 {
		t.Errorf("AI acted on a manually controlled aircraft: %v", ac.Queue)
	}
}

func TestAIChoosesBestAlignedRunway(t *testing.T) {
	ai, as, _ := makeTestAI(t)
	rwyR, _ := as.Runway("27R")

	for _, tc := range []struct {
		name    string
		pos     [2]float32
		hdg     float32
		occupyR bool
		want    string
	}{
		{name: "aligned", pos: [2]float32{10, -4.8}, hdg: 285, want: "27R"},
		{name: "first occupied", pos: [2]float32{10, -4.8}, hdg: 270, occupyR: true, want: "27L"},
		{name: "poorly aligned", pos: [2]float32{10, -4.8}, hdg: 310},
		{name: "too far", pos: [2]float32{40, 20}, hdg: 270},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if tc.occupyR {
				rwyR.Occupy("XX001", 0)
				defer rwyR.Release(0)
			}
			ac := makeTestAircraft("BA100", tc.pos, tc.hdg, 3000, 250)
			rwy := ai.chooseRunway(ac, as.Runways())
			if got := runwayName(rwy); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func runwayName(rwy *av.Runway) string {
	if rwy == nil {
		return ""
	}
	return rwy.Name
}

func TestAIDeconflict(t *testing.T) {
	ai, as, _ := makeTestAI(t)

	a := makeTestAircraft("BA100", [2]float32{10, 10}, 90, 5000, 250)
	b := makeTestAircraft("U2200", [2]float32{11, 10}, 270, 5000, 250)
	far := makeTestAircraft("RK300", [2]float32{-40, 10}, 180, 5000, 250)
	for _, ac := range []*Aircraft{a, b, far} {
		ac.AIControlled = true
	}
	ai.Update([]*Aircraft{a, b, far}, as.Runways(), 1)

	for _, tc := range []struct {
		ac   *Aircraft
		want []string
	}{
		{a, []string{"060", "120"}},
		{b, []string{"240", "300"}},
	} {
		if len(tc.ac.Queue) != 1 || tc.ac.Queue[0].Type != CommandHDG || !slices.Contains(tc.want, tc.ac.Queue[0].Value) {
			t.Errorf("%s: queue %v, want a turn to one of %v", tc.ac.Callsign, tc.ac.Queue, tc.want)
		}
	}

	// Nothing nearby and nothing to land on: off to a fix.
	if len(far.Queue) != 1 || far.Queue[0].Type != CommandNAV || !as.Fixes().Has(far.Queue[0].Value) {
		t.Errorf("RK300: queue %v", far.Queue)
	}
}

func TestAIIgnoresLandedTraffic(t *testing.T) {
	ai, as, _ := makeTestAI(t)

	a := makeTestAircraft("BA100", [2]float32{40, 20}, 0, 5000, 250)
	a.AIControlled = true
	landed := makeTestAircraft("U2200", [2]float32{40.5, 20}, 0, 0, 0)
	landed.State = StateLanded

	ai.Update([]*Aircraft{a, landed}, as.Runways(), 1)
	if len(a.Queue) != 1 || a.Queue[0].Type != CommandNAV {
		t.Errorf("queue %v", a.Queue)
	}
	if len(landed.Queue) != 0 {
		t.Errorf("landed aircraft given commands: %v", landed.Queue)
	}
}

func TestAIOnlyFliesAirborneAircraft(t *testing.T) {
	ai, as, _ := makeTestAI(t)
	rwy, _ := as.Runway("27R")

	ground := makeGroundAircraft("BA100", rwy)
	ground.AIControlled = true
	landing := makeTestAircraft("U2200", [2]float32{5, -4.8}, 270, 1000, 160)
	landing.AIControlled = true
	landing.State = StateLanding

	ai.Update([]*Aircraft{ground, landing}, as.Runways(), 1)
	if len(ground.Queue) != 0 || len(landing.Queue) != 0 {
		t.Errorf("queues: %v %v", ground.Queue, landing.Queue)
	}
}

func TestHeadingCommand(t *testing.T) {
	for _, tc := range []struct {
		hdg  float32
		want string
	}{
		{90, "090"},
		{0, "360"},
		{359.7, "360"},
		{-30, "330"},
		{390, "030"},
		{5.4, "005"},
	} {
		if got := headingCommand(tc.hdg); got.Type != CommandHDG || got.Value != tc.want {
			t.Errorf("headingCommand(%f): got %v, want %s", tc.hdg, got, tc.want)
		}
	}
}
