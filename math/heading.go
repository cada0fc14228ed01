// math/heading.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// headings and directions

// Reduces it to [0,360).
func NormalizeHeading(h float32) float32 {
	if h < 0 {
		h = 360 - NormalizeHeading(-h)
	}
	return Mod(h, 360)
}

func OppositeHeading(h float32) float32 {
	return NormalizeHeading(h + 180)
}

// HeadingDifference returns the minimum difference between two
// headings. (i.e., the result is always in the range [0,180].)
func HeadingDifference(a float32, b float32) float32 {
	var d float32
	if a > b {
		d = a - b
	} else {
		d = b - a
	}
	d = Mod(d, 360)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Figure out which way is closest: first find the angle to rotate the
// target heading by so that it's aligned with 180 degrees. This lets us
// not worry about the complexities of the wrap around at 0/360..
func HeadingSignedTurn(cur, target float32) float32 {
	rot := NormalizeHeading(180 - target)
	return 180 - NormalizeHeading(cur+rot) // w.r.t. 180 target
}

// Heading2f returns the compass heading from the point |from| to the
// point |to|, where +y is north and +x is east.
func Heading2f(from, to [2]float32) float32 {
	v := Sub2f(to, from)
	// atan2() normally measures w.r.t. +x with counter-clockwise angles;
	// passing (x,y) measures w.r.t. +y with clockwise angles.
	return NormalizeHeading(Degrees(Atan2(v[0], v[1])))
}

// HeadingVector returns the unit vector pointing along the given heading.
func HeadingVector(hdg float32) [2]float32 {
	return SinCos(Radians(hdg))
}

// ShortCompass converts a heading expressed in degrees into an abbreviated
// string corresponding to the closest compass direction.
func ShortCompass(heading float32) string {
	h := NormalizeHeading(heading + 22.5) // now [0,45] is north, etc...
	idx := int(h / 45)
	return [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}[idx%8]
}
