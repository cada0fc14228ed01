// log/race.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build race

package log

// RaceEnabled reports whether the binary was built with -race. Code that
// warns about slow operations uses it to loosen its limits.
const RaceEnabled = true
