// sim/risk.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"

	"github.com/atcsim/atcsim/math"
	"github.com/atcsim/atcsim/rand"
)

// ConflictScorer estimates how likely a pair of aircraft is to end up in
// conflict, returning a risk in [0,1].
type ConflictScorer interface {
	Score(a, b AircraftSnapshot) float32
}

// HeuristicScorer scores pairs with a weighted sum of how close they are
// laterally and vertically, with a bump for aircraft on similar
// headings.
type HeuristicScorer struct {
	SafeLateralNM  float32
	SafeVerticalFt float32
}

func (h HeuristicScorer) Score(a, b AircraftSnapshot) float32 {
	var risk float32

	latRange := 2 * h.SafeLateralNM
	if d := math.Distance2f(a.Position, b.Position); d < latRange {
		risk += (latRange - d) / latRange
	}
	vertRange := 3 * h.SafeVerticalFt
	if d := math.Abs(a.Altitude - b.Altitude); d < vertRange {
		risk += (vertRange - d) / vertRange
	}
	if math.HeadingDifference(a.Heading, b.Heading) < 45 {
		risk += 0.2
	}

	return math.Min(risk/2, 1)
}

// Advisory is a predicted conflict along with a suggested heading change
// for the first aircraft of the pair. Command is in the form accepted by
// the Interpreter.
type Advisory struct {
	A, B    string
	Risk    float32
	Command string
}

func (a Advisory) String() string {
	return fmt.Sprintf("%s/%s risk %.2f: %s", a.A, a.B, a.Risk, a.Command)
}

// Advisor looks for pairs of aircraft at risk of conflict and suggests
// how to separate them. It only reads snapshots and never issues
// commands itself.
type Advisor struct {
	Scorer    ConflictScorer
	Threshold float32
	r         *rand.Rand
}

func NewAdvisor(scorer ConflictScorer, threshold float32, r *rand.Rand) *Advisor {
	if r == nil {
		r = rand.Make()
	}
	return &Advisor{Scorer: scorer, Threshold: threshold, r: r}
}

// Advise scores every pair of airborne aircraft in the snapshot and
// returns an advisory for each pair whose risk is at least the
// threshold.
func (adv *Advisor) Advise(ws *WorldSnapshot) []Advisory {
	var advisories []Advisory
	for i, a := range ws.Aircraft {
		if a.State == StateLanded || a.State.OnGround() {
			continue
		}
		for _, b := range ws.Aircraft[i+1:] {
			if b.State == StateLanded || b.State.OnGround() {
				continue
			}
			risk := adv.Scorer.Score(a, b)
			if risk < adv.Threshold {
				continue
			}

			turn := float32(rand.Sample(adv.r, 10, 15, 20))
			if adv.r.Bool(0.5) {
				turn = -turn
			}
			advisories = append(advisories, Advisory{
				A:       a.Callsign,
				B:       b.Callsign,
				Risk:    risk,
				Command: a.Callsign + " C " + headingCommand(a.Heading+turn).Value,
			})
		}
	}
	return advisories
}

func (a Advisory) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("a", a.A),
		slog.String("b", a.B),
		slog.Float64("risk", float64(a.Risk)),
		slog.String("command", a.Command))
}
