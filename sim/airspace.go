// sim/airspace.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"

	av "github.com/atcsim/atcsim/aviation"
	"github.com/atcsim/atcsim/math"
)

// Airspace is the shared lookup context for a simulation: the airport
// with its runways, the named fixes, and airline telephony. It is built
// from a Layout and handed to everything that needs to find a runway or a
// fix; nothing is held in package-level state, so independent Sims don't
// interfere with each other.
type Airspace struct {
	Layout *av.Layout

	airport   *av.Airport
	fixes     *av.FixSet
	telephony *av.Telephony
}

func NewAirspace(layout *av.Layout) *Airspace {
	return &Airspace{Layout: layout}
}

// Build creates the airport, fixes, and telephony from the layout. It is
// a no-op if the airspace has already been built.
func (a *Airspace) Build() {
	if a.airport != nil {
		return
	}
	a.airport = a.Layout.BuildAirport()
	a.fixes = a.Layout.BuildFixSet()
	a.telephony = av.MakeTelephony(a.Layout.Airlines)
}

func (a *Airspace) Built() bool {
	return a.airport != nil
}

// Airport returns the airport; it is an error to call it before Build.
func (a *Airspace) Airport() (*av.Airport, error) {
	if a.airport == nil {
		return nil, ErrAirportNotBuilt
	}
	return a.airport, nil
}

// Runway looks up a runway by name.
func (a *Airspace) Runway(name string) (*av.Runway, error) {
	ap, err := a.Airport()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ap.Runway(name)
}

// Runways returns the airport's runways, or nil if the airspace hasn't
// been built.
func (a *Airspace) Runways() []*av.Runway {
	if a.airport == nil {
		return nil
	}
	return a.airport.Runways
}

func (a *Airspace) Fixes() *av.FixSet {
	return a.fixes
}

func (a *Airspace) Telephony() *av.Telephony {
	return a.telephony
}

// SpokenCallsign returns the radio callsign for the aircraft.
func (a *Airspace) SpokenCallsign(callsign string) string {
	if a.telephony == nil {
		return callsign
	}
	return a.telephony.Spoken(callsign)
}

func (a *Airspace) Extent() math.Extent2D {
	return a.Layout.Area.Extent()
}
