// nav/nav.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/atcsim/atcsim/math"
)

// Errors used by the nav package
var (
	ErrInvalidAltitude = errors.New("Invalid altitude")
	ErrInvalidHeading  = errors.New("Invalid heading")
	ErrInvalidSpeed    = errors.New("Invalid speed")
)

// Performance collects the rates that govern how quickly an aircraft
// responds to its assignments.
type Performance struct {
	ClimbRate        float32 // ft/min; doubled when expediting
	TurnRate         float32 // deg/s
	SpeedChangeRate  float32 // kt/s
	TakeoffAccelRate float32 // kt/s during the takeoff roll
	LandingDecelRate float32 // kt/s after touchdown
	RotateSpeed      float32 // kt; no climb on the takeoff roll below this
	MaxAltitude      float32
	MaxSpeed         float32

	// Eased altitude changes: the change takes at least
	// MinProfileDuration seconds and otherwise as long as it would at
	// ClimbRate*ProfileSmoothing. ProfileSmoothing also sets the shape of
	// the S-curve.
	MinProfileDuration float32
	ProfileSmoothing   float32

	// After an eased change the altitude oscillates around the target
	// with a decaying amplitude until the envelope drops below
	// StabilizeThreshold.
	StabilizeFrequency float32 // rad/s
	StabilizeAmplitude float32 // ft
	StabilizeDecay     float32 // 1/s
	StabilizeThreshold float32

	HoldRadius float32 // nm from the hold center before turning back
}

func DefaultPerformance() Performance {
	return Performance{
		ClimbRate:        2000,
		TurnRate:         StandardTurnRate,
		SpeedChangeRate:  2,
		TakeoffAccelRate: 5,
		LandingDecelRate: 4,
		RotateSpeed:      140,
		MaxAltitude:      45000,
		MaxSpeed:         600,

		MinProfileDuration: 4,
		ProfileSmoothing:   0.9,

		StabilizeFrequency: 3,
		StabilizeAmplitude: 40,
		StabilizeDecay:     0.8,
		StabilizeThreshold: 0.05,

		HoldRadius: 4,
	}
}

// GroundMode describes the aircraft's relationship with the runway,
// which changes how the altitude and speed are updated.
type GroundMode int

const (
	Airborne    GroundMode = iota
	TakeoffRoll            // accelerating; climbs once past rotation speed
	LandingRoll            // descending to and decelerating on the runway
	Parked                 // stationary on the ground
)

func (g GroundMode) String() string {
	return []string{"airborne", "takeoff", "landing", "parked"}[g]
}

type FlightState struct {
	Position     [2]float32 // nm
	Heading      float32
	Altitude     float32
	IAS          float32
	AltitudeRate float32 // ft/min; + -> climb, - -> descent
}

func (fs *FlightState) Summary() string {
	return fmt.Sprintf("heading %03d altitude %.0f ias %.1f", int(fs.Heading), fs.Altitude, fs.IAS)
}

// State related to navigation. Pointers are used for optional values; nil
// -> unset/unspecified.
type Nav struct {
	FlightState FlightState
	Perf        Performance
	Ground      GroundMode
	Altitude    NavAltitude
	Speed       NavSpeed
	Heading     NavHeading
}

type NavAltitude struct {
	Assigned *float32
	Expedite bool
	Profile  *AltitudeProfile
}

type NavSpeed struct {
	Assigned *float32
}

type NavHeading struct {
	Assigned *float32
	Turn     TurnMethod
	Direct   *FlyDirect
	Hold     *FlyHold
}

type FlyDirect struct {
	Fix      string
	Location [2]float32
}

type FlyHold struct {
	Fix    string // may be empty when holding at the present position
	Center [2]float32
}

func MakeNav(fs FlightState, perf Performance) *Nav {
	fs.Heading = math.NormalizeHeading(fs.Heading)
	return &Nav{FlightState: fs, Perf: perf}
}

// Update advances the aircraft's state by dt seconds. If the aircraft
// reached a fix it was flying direct to, the fix's name is returned.
func (nav *Nav) Update(dt float32) (arrived string) {
	if dt <= 0 {
		return ""
	}

	nav.updateAltitude(dt)
	arrived = nav.updateHeading(dt)
	nav.updateSpeed(dt)
	nav.updatePosition(dt)
	return
}

func (nav *Nav) updatePosition(dt float32) {
	if nav.FlightState.IAS == 0 {
		return
	}
	d := nav.FlightState.IAS / 3600 * dt
	v := math.Scale2f(math.HeadingVector(nav.FlightState.Heading), d)
	nav.FlightState.Position = math.Add2f(nav.FlightState.Position, v)
}

func (nav *Nav) IsAirborne() bool {
	return nav.Ground == Airborne ||
		(nav.Ground == TakeoffRoll && nav.FlightState.Altitude > 0) ||
		(nav.Ground == LandingRoll && nav.FlightState.Altitude > 0)
}

func (nav *Nav) AssignedAltitude() (float32, bool) {
	if nav.Altitude.Assigned != nil {
		return *nav.Altitude.Assigned, true
	}
	return 0, false
}

func (nav *Nav) AssignedSpeed() (float32, bool) {
	if nav.Speed.Assigned != nil {
		return *nav.Speed.Assigned, true
	}
	return 0, false
}

func (nav *Nav) AssignedHeading() (float32, bool) {
	if nav.Heading.Assigned != nil {
		return *nav.Heading.Assigned, true
	}
	return 0, false
}

///////////////////////////////////////////////////////////////////////////
// Assignments

// AssignHeading sets a heading to fly, canceling any hold or direct-to.
func (nav *Nav) AssignHeading(hdg float32, turn TurnMethod) error {
	if hdg < 0 || hdg > 360 {
		return ErrInvalidHeading
	}
	hdg = math.NormalizeHeading(hdg)
	nav.Heading = NavHeading{Assigned: &hdg, Turn: turn}
	return nil
}

// AssignAltitude starts an eased change to the given altitude. Expedited
// changes happen at twice the rate.
func (nav *Nav) AssignAltitude(alt float32, expedite bool) error {
	if alt < 0 || alt > nav.Perf.MaxAltitude {
		return ErrInvalidAltitude
	}
	nav.Altitude = NavAltitude{
		Assigned: &alt,
		Expedite: expedite,
		Profile:  nav.makeAltitudeProfile(alt, expedite),
	}
	return nil
}

// ClimbTo assigns an altitude that is reached at a constant rate rather
// than with an eased profile.
func (nav *Nav) ClimbTo(alt float32) error {
	if alt < 0 || alt > nav.Perf.MaxAltitude {
		return ErrInvalidAltitude
	}
	nav.Altitude = NavAltitude{Assigned: &alt}
	return nil
}

func (nav *Nav) AssignSpeed(spd float32) error {
	if spd < 0 || spd > nav.Perf.MaxSpeed {
		return ErrInvalidSpeed
	}
	nav.Speed = NavSpeed{Assigned: &spd}
	return nil
}

func (nav *Nav) CancelSpeed() {
	nav.Speed = NavSpeed{}
}

// DirectFix turns the aircraft toward the given fix and keeps it pointed
// there until it arrives.
func (nav *Nav) DirectFix(fix string, loc [2]float32) {
	hdg := math.Heading2f(nav.FlightState.Position, loc)
	nav.Heading = NavHeading{
		Assigned: &hdg,
		Direct:   &FlyDirect{Fix: fix, Location: loc},
	}
}

// Hold orbits the given point; fix may be empty.
func (nav *Nav) Hold(fix string, center [2]float32) {
	nav.Heading = NavHeading{Hold: &FlyHold{Fix: fix, Center: center}}
}

func (nav *Nav) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Any("position", nav.FlightState.Position),
		slog.Float64("heading", float64(nav.FlightState.Heading)),
		slog.Float64("altitude", float64(nav.FlightState.Altitude)),
		slog.Float64("ias", float64(nav.FlightState.IAS)),
		slog.String("ground", nav.Ground.String()),
	}
	if alt, ok := nav.AssignedAltitude(); ok {
		attrs = append(attrs, slog.Float64("assigned_altitude", float64(alt)))
	}
	if hdg, ok := nav.AssignedHeading(); ok {
		attrs = append(attrs, slog.Float64("assigned_heading", float64(hdg)))
	}
	if spd, ok := nav.AssignedSpeed(); ok {
		attrs = append(attrs, slog.Float64("assigned_speed", float64(spd)))
	}
	return slog.GroupValue(attrs...)
}
