// math/vecmat.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// point 2f

// Various useful functions for arithmetic with 2D points/vectors.
// Names are brief in order to avoid clutter when they're used.

// a+b
func Add2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] + b[0], a[1] + b[1]}
}

// a-b
func Sub2f(a [2]float32, b [2]float32) [2]float32 {
	return [2]float32{a[0] - b[0], a[1] - b[1]}
}

// a*s
func Scale2f(a [2]float32, s float32) [2]float32 {
	return [2]float32{s * a[0], s * a[1]}
}

// Length of v
func Length2f(v [2]float32) float32 {
	return Sqrt(v[0]*v[0] + v[1]*v[1])
}

// Distance between two points
func Distance2f(a [2]float32, b [2]float32) float32 {
	return Length2f(Sub2f(a, b))
}

// Squared distance between two points; handy for comparisons where the
// square root isn't needed.
func DistanceSquared2f(a [2]float32, b [2]float32) float32 {
	d := Sub2f(a, b)
	return d[0]*d[0] + d[1]*d[1]
}

///////////////////////////////////////////////////////////////////////////
// Extent2D

// Extent2D represents a 2D bounding box with the two vertices at its
// opposite minimum and maximum corners.
type Extent2D struct {
	P0, P1 [2]float32
}

func (e Extent2D) Width() float32 {
	return e.P1[0] - e.P0[0]
}

func (e Extent2D) Height() float32 {
	return e.P1[1] - e.P0[1]
}

func (e Extent2D) Center() [2]float32 {
	return [2]float32{(e.P0[0] + e.P1[0]) / 2, (e.P0[1] + e.P1[1]) / 2}
}

// Inside returns true if p is inside the extent; points on the boundary
// are considered inside.
func (e Extent2D) Inside(p [2]float32) bool {
	return p[0] >= e.P0[0] && p[0] <= e.P1[0] && p[1] >= e.P0[1] && p[1] <= e.P1[1]
}

// ClosestPointInBox returns the closest point to p that is inside the
// Extent2D.  (If p is already inside it, then it is returned.)
func (e Extent2D) ClosestPointInBox(p [2]float32) [2]float32 {
	return [2]float32{Clamp(p[0], e.P0[0], e.P1[0]), Clamp(p[1], e.P0[1], e.P1[1])}
}
