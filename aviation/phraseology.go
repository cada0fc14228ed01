// aviation/phraseology.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"strings"
)

///////////////////////////////////////////////////////////////////////////
// General "saying things" utilities...

func SayDigit(n int) string {
	return []string{"zero", "one", "two", "three", "four", "five", "six",
		"seven", "eight", "niner"}[n]
}

// SayDigits returns a string that says the digits of v individually, with
// leading "zero"s as needed to ensure that n digits are spoken.
func SayDigits(v, n int) string {
	var d []string
	for v != 0 {
		d = append([]string{SayDigit(v % 10)}, d...)
		v /= 10
	}
	for len(d) < max(n, 1) {
		d = append([]string{"zero"}, d...)
	}
	return strings.Join(d, " ")
}

// SayHeading always speaks three digits: 90 -> "zero niner zero".
func SayHeading(hdg int) string {
	if hdg == 0 {
		hdg = 360
	}
	return SayDigits(hdg, 3)
}

// SayAltitude speaks altitudes at or above 18,000' as flight levels and
// lower ones as a number of thousands.
func SayAltitude(alt int) string {
	if alt >= 18000 {
		return "flight level " + SayDigits((alt+50)/100, 0)
	}
	return SayDigits(alt/1000, 0) + " thousand"
}

func SaySpeed(spd int) string {
	return SayDigits(spd, 0) + " knots"
}
