// sim/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
)

var (
	ErrAircraftUpdate    = errors.New("Aircraft update failed")
	ErrAirportNotBuilt   = errors.New("Airport has not been built")
	ErrAlreadyOnRunway   = errors.New("Aircraft already holds a runway")
	ErrDuplicateCallsign = errors.New("Duplicate callsign")
	ErrNoSuchAircraft    = errors.New("No aircraft with that callsign")
	ErrSnapshotClosed    = errors.New("Snapshot writer is closed")
)
