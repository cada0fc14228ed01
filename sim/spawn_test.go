// sim/spawn_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"testing"

	av "github.com/atcsim/atcsim/aviation"
	"github.com/atcsim/atcsim/log"
	"github.com/atcsim/atcsim/math"
	"github.com/atcsim/atcsim/rand"
)

func makeTestSpawner(t *testing.T, groundProb float32) (*Spawner, *Airspace, *Config) {
	t.Helper()

	as := makeTestAirspace(t)
	cfg := DefaultConfig()
	cfg.GroundSpawnProbability = groundProb
	r := rand.Make()
	r.Seed(3)
	return NewSpawner(&cfg, r, log.NewDiscard()), as, &cfg
}

func TestSpawnAtEdge(t *testing.T) {
	sp, as, cfg := makeTestSpawner(t, 0)
	sp.AIControlled = true

	area := as.Extent()
	m := cfg.SpawnMarginNM
	var aircraft []*Aircraft
	for range 200 {
		ac, err := sp.Spawn(as, aircraft)
		if err != nil {
			t.Fatalf("Spawn: %v", err)
		}
		aircraft = append(aircraft, ac)

		p := ac.Position()
		v := math.HeadingVector(ac.Heading())
		var inbound bool
		switch {
		case p[1] == area.P1[1]-m: // north
			inbound = v[1] < -0.7
		case p[1] == area.P0[1]+m: // south
			inbound = v[1] > 0.7
		case p[0] == area.P1[0]-m: // east
			inbound = v[0] < -0.7
		case p[0] == area.P0[0]+m: // west
			inbound = v[0] > 0.7
		default:
			t.Fatalf("%s: spawned at %v, not on the edge", ac.Callsign, p)
		}
		if !inbound {
			t.Errorf("%s at %v heading %f isn't inbound", ac.Callsign, p, ac.Heading())
		}

		if ac.State != StateAirborne || !ac.AIControlled {
			t.Errorf("%s: state %s ai %v", ac.Callsign, ac.State, ac.AIControlled)
		}
		if !slices.Contains(cfg.SpawnAltitudes, int(ac.Altitude())) || !slices.Contains(cfg.SpawnSpeeds, int(ac.IAS())) {
			t.Errorf("%s: altitude %f speed %f", ac.Callsign, ac.Altitude(), ac.IAS())
		}
		if alt, ok := ac.Nav.AssignedAltitude(); !ok || alt != cfg.DefaultDestAltitude {
			t.Errorf("%s: assigned altitude %f", ac.Callsign, alt)
		}
	}
}

func TestSpawnCallsigns(t *testing.T) {
	sp, as, _ := makeTestSpawner(t, 0.2)
	re := regexp.MustCompile(`^[A-Z0-9]{2}[0-9]{3}$`)
	codes := as.Telephony().IATACodes()

	seen := make(map[string]bool)
	var aircraft []*Aircraft
	for range 500 {
		ac, err := sp.Spawn(as, aircraft)
		if err != nil {
			t.Fatalf("Spawn: %v", err)
		}
		if seen[ac.Callsign] {
			t.Fatalf("duplicate callsign %s", ac.Callsign)
		}
		seen[ac.Callsign] = true
		if !re.MatchString(ac.Callsign) || !slices.Contains(codes, ac.Callsign[:2]) || ac.Callsign[2:] == "000" {
			t.Errorf("bad callsign %q", ac.Callsign)
		}
		aircraft = append(aircraft, ac)
	}
}

func TestSpawnCallsignsExhausted(t *testing.T) {
	sp, _, _ := makeTestSpawner(t, 0)

	airlines := []av.Airline{{Name: "British Airways", IATA: "BA", ICAO: "BAW", Telephony: "Speedbird"}}
	var existing []*Aircraft
	for i := 1; i <= 999; i++ {
		existing = append(existing, makeTestAircraft(fmt.Sprintf("BA%03d", i), [2]float32{}, 90, 5000, 250))
	}
	if _, err := sp.makeCallsign(airlines, existing); !errors.Is(err, ErrDuplicateCallsign) {
		t.Errorf("full airline: got %v", err)
	}
	if _, err := sp.makeCallsign(nil, nil); !errors.Is(err, ErrDuplicateCallsign) {
		t.Errorf("no airlines: got %v", err)
	}
}

func TestSpawnOnRunway(t *testing.T) {
	sp, as, _ := makeTestSpawner(t, 1)

	var aircraft []*Aircraft
	waiting := make(map[string]int)
	for range 8 {
		ac, err := sp.Spawn(as, aircraft)
		if err != nil {
			t.Fatalf("Spawn: %v", err)
		}
		rwy, err := as.Runway(ac.DepartureRunway)
		if err != nil {
			t.Fatalf("%s: departure runway %q: %v", ac.Callsign, ac.DepartureRunway, err)
		}

		n := waiting[rwy.Name]
		wantState := StateTakeoffPending
		if n == 0 {
			wantState = StateOnRunway
		}
		if ac.State != wantState {
			t.Errorf("%s: %d waiting for %s, state %s, want %s", ac.Callsign, n, rwy.Name, ac.State, wantState)
		}
		if d := math.Distance2f(ac.Position(), rwy.Threshold()); math.Abs(d-float32(n)*holdingShortSpacingNM) > 0.001 {
			t.Errorf("%s: %f nm from the threshold with %d ahead", ac.Callsign, d, n)
		}
		if ac.Heading() != rwy.Bearing || ac.Altitude() != 0 || ac.IAS() != 0 || ac.AIControlled {
			t.Errorf("%s: %s", ac.Callsign, ac.Nav.FlightState.Summary())
		}

		waiting[rwy.Name]++
		aircraft = append(aircraft, ac)
	}
}

func TestSpawnBehindOccupiedRunway(t *testing.T) {
	sp, as, _ := makeTestSpawner(t, 1)
	for _, rwy := range as.Runways() {
		rwy.Occupy("XX001", 0)
	}

	ac, err := sp.Spawn(as, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ac.State != StateTakeoffPending {
		t.Errorf("state %s, want TAKEOFF_PENDING", ac.State)
	}
}

func TestSpawnSkipsClosedRunways(t *testing.T) {
	sp, as, _ := makeTestSpawner(t, 1)
	for _, rwy := range as.Runways() {
		rwy.Close(0)
	}

	ac, err := sp.Spawn(as, nil)
	if err != nil {
		t.Fatal(err)
	}
	if ac.State != StateAirborne || ac.DepartureRunway != "" {
		t.Errorf("with all runways closed: state %s departure %q", ac.State, ac.DepartureRunway)
	}
}

func TestSpawnEdgesWeightedByLength(t *testing.T) {
	sp, as, _ := makeTestSpawner(t, 0)

	// The default area is twice as wide as it is tall.
	counts := make(map[string]int)
	for range 2000 {
		ac, edge := sp.spawnAtEdge("BA001", as.Extent())
		counts[math.ShortCompass(edge)]++
		if d := math.HeadingDifference(ac.Heading(), math.OppositeHeading(edge)); d > 45 {
			t.Fatalf("edge %s: heading %f isn't inbound", math.ShortCompass(edge), ac.Heading())
		}
	}
	if len(counts) != 4 {
		t.Fatalf("expected all four edges, got %v", counts)
	}
	if ns, ew := counts["N"]+counts["S"], counts["E"]+counts["W"]; ns < 3*ew/2 {
		t.Errorf("north/south %d vs east/west %d", ns, ew)
	}
}
