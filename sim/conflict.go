// sim/conflict.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/atcsim/atcsim/math"
)

// Conflict is a pair of aircraft that are closer than the separation
// minima both laterally and vertically.
type Conflict struct {
	A, B       string
	LateralNM  float32
	VerticalFt float32
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s/%s %.1fnm %.0fft", c.A, c.B, c.LateralNM, c.VerticalFt)
}

func (c Conflict) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("a", c.A),
		slog.String("b", c.B),
		slog.Float64("lateral_nm", float64(c.LateralNM)),
		slog.Float64("vertical_ft", float64(c.VerticalFt)))
}

// Involves reports whether the given aircraft is one of the pair.
func (c Conflict) Involves(callsign string) bool {
	return c.A == callsign || c.B == callsign
}

// key returns an identifier for the pair that doesn't depend on the
// order of the aircraft.
func (c Conflict) key() [2]string {
	if c.A < c.B {
		return [2]string{c.A, c.B}
	}
	return [2]string{c.B, c.A}
}

func checkPair(a, b *Aircraft, cfg *Config) (Conflict, bool) {
	if a.State == StateLanded || b.State == StateLanded {
		return Conflict{}, false
	}
	lateral := math.Distance2f(a.Position(), b.Position())
	vertical := math.Abs(a.Altitude() - b.Altitude())
	if lateral < cfg.SafeLateralNM && vertical < cfg.SafeVerticalFt {
		return Conflict{A: a.Callsign, B: b.Callsign, LateralNM: lateral, VerticalFt: vertical}, true
	}
	return Conflict{}, false
}

// CheckConflicts returns all pairs of aircraft that have lost separation.
// Aircraft that have landed are ignored. Pairs are reported once, with A
// preceding B in the provided slice.
func CheckConflicts(aircraft []*Aircraft, cfg *Config) []Conflict {
	var conflicts []Conflict
	for i, a := range aircraft {
		for _, b := range aircraft[i+1:] {
			if c, ok := checkPair(a, b, cfg); ok {
				conflicts = append(conflicts, c)
			}
		}
	}
	return conflicts
}

// CheckConflictsIndexed returns the same result as CheckConflicts but
// uses the spatial index to find candidate pairs. The index must hold
// the aircraft at their current positions.
func CheckConflictsIndexed(aircraft []*Aircraft, idx *math.Quadtree[*Aircraft], cfg *Config) []Conflict {
	order := make(map[*Aircraft]int, len(aircraft))
	for i, ac := range aircraft {
		order[ac] = i
	}

	type indexedConflict struct {
		i, j int
		c    Conflict
	}
	var found []indexedConflict
	for i, a := range aircraft {
		if a.State == StateLanded {
			continue
		}
		for _, b := range idx.QueryRadius(a.Position(), cfg.SafeLateralNM) {
			j, ok := order[b]
			if !ok || j <= i {
				continue
			}
			if c, ok := checkPair(a, b, cfg); ok {
				found = append(found, indexedConflict{i: i, j: j, c: c})
			}
		}
	}

	slices.SortFunc(found, func(x, y indexedConflict) int {
		if x.i != y.i {
			return x.i - y.i
		}
		return x.j - y.j
	})

	conflicts := make([]Conflict, 0, len(found))
	for _, f := range found {
		conflicts = append(conflicts, f.c)
	}
	if len(conflicts) == 0 {
		return nil
	}
	return conflicts
}

// buildIndex returns a spatial index of the aircraft. Its bounds are the
// given area, grown if necessary so that aircraft that have wandered
// outside it are still indexed.
func buildIndex(aircraft []*Aircraft, area math.Extent2D) *math.Quadtree[*Aircraft] {
	for _, ac := range aircraft {
		p := ac.Position()
		area.P0 = [2]float32{math.Min(area.P0[0], p[0]), math.Min(area.P0[1], p[1])}
		area.P1 = [2]float32{math.Max(area.P1[0], p[0]), math.Max(area.P1[1], p[1])}
	}
	qt := math.NewQuadtree[*Aircraft](area, math.DefaultQuadtreeCapacity, math.DefaultQuadtreeMaxDepth)
	for _, ac := range aircraft {
		qt.Insert(ac.Position(), ac)
	}
	return qt
}
