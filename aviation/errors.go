// aviation/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import "errors"

var (
	ErrInvalidLayout   = errors.New("Invalid airspace layout")
	ErrRunwayClosed    = errors.New("Runway is closed")
	ErrRunwayNotFound  = errors.New("Runway not found")
	ErrRunwayNotHeld   = errors.New("Runway is not held by that aircraft")
	ErrRunwayOccupied  = errors.New("Runway is occupied")
	ErrUnknownAirline  = errors.New("Unknown airline")
	ErrUnknownFix      = errors.New("Unknown fix")
	ErrDuplicateRunway = errors.New("Duplicate runway name")
)
