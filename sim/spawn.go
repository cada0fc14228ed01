// sim/spawn.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"

	av "github.com/atcsim/atcsim/aviation"
	"github.com/atcsim/atcsim/log"
	"github.com/atcsim/atcsim/math"
	"github.com/atcsim/atcsim/nav"
	"github.com/atcsim/atcsim/rand"
)

// Spacing between aircraft waiting behind a runway threshold.
const holdingShortSpacingNM = 0.5

type spawnEdge struct {
	bearing float32 // from the center of the area
	length  float32
}

// Spawner creates new traffic, either inbound from the edge of the
// airspace or waiting on a runway for a takeoff clearance.
type Spawner struct {
	Config *Config
	// AIControlled is the initial autonomous flag for airborne spawns.
	AIControlled bool

	r  *rand.Rand
	lg *log.Logger
}

func NewSpawner(cfg *Config, r *rand.Rand, lg *log.Logger) *Spawner {
	if r == nil {
		r = rand.Make()
	}
	return &Spawner{Config: cfg, r: r, lg: lg}
}

// Spawn returns a new aircraft with a callsign that is distinct from
// those of the existing aircraft.
func (sp *Spawner) Spawn(as *Airspace, existing []*Aircraft) (*Aircraft, error) {
	callsign, err := sp.makeCallsign(as.Layout.Airlines, existing)
	if err != nil {
		return nil, err
	}

	if sp.r.Bool(sp.Config.GroundSpawnProbability) {
		runways := as.Runways()
		if i := rand.SampleFiltered(sp.r, runways, func(rwy *av.Runway) bool {
			return rwy.Status != av.RunwayClosed
		}); i != -1 {
			ac := sp.spawnOnRunway(callsign, runways[i], existing)
			sp.lg.Info("spawned aircraft", slog.Any("aircraft", ac))
			return ac, nil
		}
	}

	ac, edge := sp.spawnAtEdge(callsign, as.Extent())
	sp.lg.Info("spawned aircraft", slog.Any("aircraft", ac), slog.String("edge", math.ShortCompass(edge)))
	return ac, nil
}

func (sp *Spawner) makeCallsign(airlines []av.Airline, existing []*Aircraft) (string, error) {
	if len(airlines) == 0 {
		return "", fmt.Errorf("no airlines: %w", ErrDuplicateCallsign)
	}
	for range 100 {
		al := rand.SampleSlice(sp.r, airlines)
		code := al.IATA
		if code == "" {
			code = al.ICAO
		}
		cs := fmt.Sprintf("%s%03d", code, 1+sp.r.Intn(999))
		if findAircraft(existing, cs) == nil {
			return cs, nil
		}
	}
	return "", ErrDuplicateCallsign
}

func (sp *Spawner) spawnOnRunway(callsign string, rwy *av.Runway, existing []*Aircraft) *Aircraft {
	waiting := 0
	for _, ac := range existing {
		if ac.State.OnGround() && ac.DepartureRunway == rwy.Name {
			waiting++
		}
	}

	// The first aircraft lines up on the threshold; any others wait
	// behind it on the extended centerline.
	dir := math.HeadingVector(rwy.Bearing)
	pos := math.Sub2f(rwy.Threshold(), math.Scale2f(dir, float32(waiting)*holdingShortSpacingNM))

	ac := MakeAircraft(callsign, nav.FlightState{Position: pos, Heading: rwy.Bearing}, sp.Config.Performance)
	ac.Nav.Ground = nav.Parked
	ac.DepartureRunway = rwy.Name
	if rwy.IsAvailable() && waiting == 0 {
		ac.State = StateOnRunway
	} else {
		ac.State = StateTakeoffPending
	}
	return ac
}

// spawnAtEdge places an aircraft on a random edge of the area, flying
// inward to within 45 degrees of perpendicular. Edges are chosen in
// proportion to their length. The bearing of the chosen edge from the
// center is returned along with the aircraft.
func (sp *Spawner) spawnAtEdge(callsign string, area math.Extent2D) (*Aircraft, float32) {
	m := sp.Config.SpawnMarginNM
	x0, x1 := area.P0[0]+m, area.P1[0]-m
	y0, y1 := area.P0[1]+m, area.P1[1]-m

	edges := []spawnEdge{{0, x1 - x0}, {90, y1 - y0}, {180, x1 - x0}, {270, y1 - y0}}
	edge := edges[rand.SampleWeighted(sp.r, edges, func(e spawnEdge) int {
		return 1 + int(math.Max(e.length, 0))
	})].bearing

	var pos [2]float32
	switch edge {
	case 0:
		pos = [2]float32{sp.r.Range(x0, x1), y1}
	case 90:
		pos = [2]float32{x1, sp.r.Range(y0, y1)}
	case 180:
		pos = [2]float32{sp.r.Range(x0, x1), y0}
	case 270:
		pos = [2]float32{x0, sp.r.Range(y0, y1)}
	}
	hdg := math.OppositeHeading(edge) + sp.r.Range(-45, 45)

	fs := nav.FlightState{
		Position: pos,
		Heading:  math.NormalizeHeading(math.Floor(hdg)),
		Altitude: float32(rand.SampleSlice(sp.r, sp.Config.SpawnAltitudes)),
		IAS:      float32(rand.SampleSlice(sp.r, sp.Config.SpawnSpeeds)),
	}
	ac := MakeAircraft(callsign, fs, sp.Config.Performance)
	ac.Nav.ClimbTo(sp.Config.DefaultDestAltitude)
	ac.AIControlled = sp.AIControlled
	return ac, edge
}
