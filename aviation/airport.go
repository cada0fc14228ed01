// aviation/airport.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"slices"
	"strings"
)

type Airport struct {
	ICAO    string
	Name    string
	Runways []*Runway
	// Callsigns of aircraft that have touched down, in order.
	Arrivals []string
}

// Runway returns the named runway; names are matched case-insensitively.
func (ap *Airport) Runway(name string) (*Runway, error) {
	for _, rwy := range ap.Runways {
		if strings.EqualFold(rwy.Name, name) {
			return rwy, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrRunwayNotFound)
}

// ActiveRunways returns the runways that are currently held by an
// aircraft.
func (ap *Airport) ActiveRunways() []*Runway {
	var active []*Runway
	for _, rwy := range ap.Runways {
		if rwy.ActiveCallsign != "" {
			active = append(active, rwy)
		}
	}
	return active
}

// RegisterArrival records the arrival of the given aircraft; it returns
// false if the aircraft has already been registered.
func (ap *Airport) RegisterArrival(callsign string) bool {
	if slices.Contains(ap.Arrivals, callsign) {
		return false
	}
	ap.Arrivals = append(ap.Arrivals, callsign)
	return true
}

func (ap *Airport) String() string {
	return fmt.Sprintf("<Airport %s (%d RWY), %d arrivals>", ap.ICAO, len(ap.Runways), len(ap.Arrivals))
}
