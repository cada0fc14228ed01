// sim/config.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"

	"github.com/atcsim/atcsim/nav"
)

// Config holds the simulation's tunable parameters. Distances are in nm,
// altitudes in feet, speeds in knots and times in seconds.
type Config struct {
	TickSeconds float32 // length of a single Step
	SimRate     float32 // sim seconds per wall-clock second in Update

	SafeLateralNM  float32
	SafeVerticalFt float32

	LandingAlignTolerance float32 // degrees
	LandingCeiling        float32
	LandingSpeed          float32

	TakeoffReleaseAlt   float32
	TakeoffReleaseRatio float32 // of the assigned altitude
	TouchdownAlt        float32
	RolloutMinSpeed     float32
	RolloutMaxTime      float32

	AIDecisionPeriod float32
	AIDeconflictTurn float32 // degrees
	AIAlignTolerance float32 // degrees
	AIArmDistanceNM  float32
	AILandingSpeed   int
	AINearbyFraction float32 // of SafeLateralNM

	GroundSpawnProbability float32
	SpawnMarginNM          float32
	SpawnSpeeds            []int
	SpawnAltitudes         []int
	DefaultDestAltitude    float32

	AdvisorThreshold float32 // minimum risk reported by the Advisor

	Performance nav.Performance
}

func DefaultConfig() Config {
	return Config{
		TickSeconds: 1,
		SimRate:     5,

		SafeLateralNM:  3,
		SafeVerticalFt: 1000,

		LandingAlignTolerance: 60,
		LandingCeiling:        3000,
		LandingSpeed:          160,

		TakeoffReleaseAlt:   1500,
		TakeoffReleaseRatio: 0.3,
		TouchdownAlt:        50,
		RolloutMinSpeed:     40,
		RolloutMaxTime:      30,

		AIDecisionPeriod: 8,
		AIDeconflictTurn: 30,
		AIAlignTolerance: 30,
		AIArmDistanceNM:  15,
		AILandingSpeed:   160,
		AINearbyFraction: 0.8,

		GroundSpawnProbability: 0.2,
		SpawnMarginNM:          3,
		SpawnSpeeds:            []int{220, 250, 280, 300},
		SpawnAltitudes:         []int{4000, 6000, 8000, 10000, 12000},
		DefaultDestAltitude:    5000,

		AdvisorThreshold: 0.6,

		Performance: nav.DefaultPerformance(),
	}
}

func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("tick", float64(c.TickSeconds)),
		slog.Float64("sim_rate", float64(c.SimRate)),
		slog.Float64("safe_lateral_nm", float64(c.SafeLateralNM)),
		slog.Float64("safe_vertical_ft", float64(c.SafeVerticalFt)),
		slog.Float64("ground_spawn_probability", float64(c.GroundSpawnProbability)))
}
