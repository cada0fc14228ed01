// sim/ai.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	av "github.com/atcsim/atcsim/aviation"
	"github.com/atcsim/atcsim/log"
	"github.com/atcsim/atcsim/math"
	"github.com/atcsim/atcsim/rand"
	"github.com/atcsim/atcsim/util"
)

// AIController issues commands to aircraft that are under autonomous
// control. Each such aircraft is looked at every AIDecisionPeriod
// seconds; it is turned away from nearby traffic if there is any,
// otherwise it is sent in to land if it is lined up with a nearby
// runway, and otherwise it is sent direct to a random fix.
type AIController struct {
	Airspace *Airspace
	Config   *Config
	// Index is used to find nearby traffic if it is set; otherwise one is
	// built at each Update.
	Index *math.Quadtree[*Aircraft]

	now float32
	r   *rand.Rand
	lg  *log.Logger
}

func NewAIController(as *Airspace, cfg *Config, r *rand.Rand, lg *log.Logger) *AIController {
	if r == nil {
		r = rand.Make()
	}
	return &AIController{Airspace: as, Config: cfg, r: r, lg: lg}
}

// Update advances the controller's clock by dt seconds and makes
// decisions for the aircraft whose decision timers have expired. Any
// resulting commands are added to the aircraft's queues.
func (ai *AIController) Update(aircraft []*Aircraft, runways []*av.Runway, dt float32) {
	ai.now += dt
	if len(aircraft) == 0 {
		return
	}

	idx := ai.Index
	if idx == nil {
		idx = buildIndex(aircraft, ai.Airspace.Extent())
	}

	for _, ac := range aircraft {
		if !ac.AIControlled || ac.State != StateAirborne || ai.now < ac.NextDecision {
			continue
		}

		ac.NextDecision = ai.now + ai.Config.AIDecisionPeriod
		ai.decide(ac, runways, idx)
	}
}

func (ai *AIController) decide(ac *Aircraft, runways []*av.Runway, idx *math.Quadtree[*Aircraft]) {
	cfg := ai.Config

	nearby := idx.QueryRadius(ac.Position(), cfg.AINearbyFraction*cfg.SafeLateralNM)
	nearby = slices.DeleteFunc(nearby, func(other *Aircraft) bool {
		return other == ac || other.State == StateLanded
	})
	if len(nearby) > 0 {
		turn := cfg.AIDeconflictTurn
		if ai.r.Bool(0.5) {
			turn = -turn
		}
		cmd := headingCommand(ac.Heading() + turn)
		ai.lg.Debug("AI deconflicting", slog.String("callsign", ac.Callsign),
			slog.Int("traffic", len(nearby)), slog.String("command", cmd.String()))
		ac.Enqueue(cmd)
		return
	}

	if rwy := ai.chooseRunway(ac, runways); rwy != nil {
		cmds := []Command{
			headingCommand(rwy.Bearing),
			{Type: CommandSPD, Value: strconv.Itoa(cfg.AILandingSpeed)},
			{Type: CommandALT, Value: "0"},
			{Type: CommandLAND, Value: rwy.Name},
		}
		ai.lg.Debugf("%s: AI approach to %s", ac.Callsign, rwy.Name)
		ac.Enqueue(cmds...)
		return
	}

	if fixes := ai.Airspace.Fixes().All(); len(fixes) > 0 {
		fix := rand.SampleSlice(ai.r, fixes)
		ac.Enqueue(Command{Type: CommandNAV, Value: fix.Name})
	}
}

// chooseRunway returns the available runway best aligned with the
// aircraft's heading if it is within the alignment tolerance and the
// arming distance, or nil otherwise.
func (ai *AIController) chooseRunway(ac *Aircraft, runways []*av.Runway) *av.Runway {
	candidates := util.FilterSlice(runways, func(rwy *av.Runway) bool {
		return rwy.IsAvailable() &&
			math.HeadingDifference(rwy.Bearing, ac.Heading()) <= ai.Config.AIAlignTolerance
	})

	var best *av.Runway
	var bestDiff float32
	for _, rwy := range candidates {
		if diff := math.HeadingDifference(rwy.Bearing, ac.Heading()); best == nil || diff < bestDiff {
			best, bestDiff = rwy, diff
		}
	}

	if best == nil || math.Distance2f(ac.Position(), best.Center) > ai.Config.AIArmDistanceNM {
		return nil
	}
	return best
}

func headingCommand(hdg float32) Command {
	h := int(math.NormalizeHeading(hdg) + 0.5)
	if h == 0 {
		h = 360
	}
	return Command{Type: CommandHDG, Value: fmt.Sprintf("%03d", h)}
}
