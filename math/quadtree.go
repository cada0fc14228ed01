// math/quadtree.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

const (
	DefaultQuadtreeCapacity = 8
	DefaultQuadtreeMaxDepth = 8
)

type quadtreePoint[T any] struct {
	p   [2]float32
	ref T
}

// Quadtree is a point quadtree over a fixed 2D extent. Each node holds up
// to capacity points before it is split into four equal quadrants; nodes
// at maxDepth never split and simply accumulate points. It is meant to be
// rebuilt from scratch whenever the points move.
type Quadtree[T any] struct {
	bounds   Extent2D
	capacity int
	depth    int
	maxDepth int
	points   []quadtreePoint[T]
	children *[4]*Quadtree[T]
	n        int
}

// NewQuadtree returns an empty quadtree covering the given extent. Non-positive
// capacity or maxDepth values are replaced with the defaults.
func NewQuadtree[T any](bounds Extent2D, capacity, maxDepth int) *Quadtree[T] {
	if capacity <= 0 {
		capacity = DefaultQuadtreeCapacity
	}
	if maxDepth <= 0 {
		maxDepth = DefaultQuadtreeMaxDepth
	}
	return &Quadtree[T]{
		bounds:   bounds,
		capacity: capacity,
		maxDepth: maxDepth,
	}
}

func (q *Quadtree[T]) Bounds() Extent2D {
	return q.bounds
}

// Len returns the total number of points stored in the tree.
func (q *Quadtree[T]) Len() int {
	return q.n
}

// Insert adds ref at the point p. It returns false, leaving the tree
// unchanged, if p is outside the tree's bounds. Points exactly on the
// boundary are accepted.
func (q *Quadtree[T]) Insert(p [2]float32, ref T) bool {
	if !q.bounds.Inside(p) {
		return false
	}
	q.insert(quadtreePoint[T]{p: p, ref: ref})
	return true
}

func (q *Quadtree[T]) insert(pt quadtreePoint[T]) {
	q.n++

	if q.children != nil {
		q.childFor(pt.p).insert(pt)
		return
	}

	q.points = append(q.points, pt)
	if len(q.points) > q.capacity && q.depth < q.maxDepth {
		q.split()
	}
}

func (q *Quadtree[T]) split() {
	c := q.bounds.Center()
	p0, p1 := q.bounds.P0, q.bounds.P1
	quadrants := [4]Extent2D{
		{P0: [2]float32{p0[0], c[1]}, P1: [2]float32{c[0], p1[1]}}, // NW
		{P0: c, P1: p1},                                            // NE
		{P0: p0, P1: c},                                            // SW
		{P0: [2]float32{c[0], p0[1]}, P1: [2]float32{p1[0], c[1]}}, // SE
	}

	var children [4]*Quadtree[T]
	for i, e := range quadrants {
		children[i] = &Quadtree[T]{
			bounds:   e,
			capacity: q.capacity,
			depth:    q.depth + 1,
			maxDepth: q.maxDepth,
		}
	}
	q.children = &children

	pts := q.points
	q.points = nil
	for _, pt := range pts {
		q.childFor(pt.p).insert(pt)
	}
}

// childFor returns the first child whose (inclusive) bounds contain p.
// Since p is inside the parent, one of them always does.
func (q *Quadtree[T]) childFor(p [2]float32) *Quadtree[T] {
	for _, c := range q.children {
		if c.bounds.Inside(p) {
			return c
		}
	}
	// Only reachable through float round-off at the center split.
	return q.children[3]
}

// QueryRadius returns the refs of all points within distance r of p
// (inclusive). Subtrees whose extent is farther than r from p are not
// visited.
func (q *Quadtree[T]) QueryRadius(p [2]float32, r float32) []T {
	var result []T
	q.query(p, r*r, &result)
	return result
}

func (q *Quadtree[T]) query(p [2]float32, r2 float32, result *[]T) {
	if q.n == 0 || DistanceSquared2f(p, q.bounds.ClosestPointInBox(p)) > r2 {
		return
	}

	if q.children != nil {
		for _, c := range q.children {
			c.query(p, r2, result)
		}
		return
	}

	for _, pt := range q.points {
		if DistanceSquared2f(p, pt.p) <= r2 {
			*result = append(*result, pt.ref)
		}
	}
}

// Depth returns the maximum depth of any node in the tree; the root is
// at depth 0.
func (q *Quadtree[T]) Depth() int {
	if q.children == nil {
		return q.depth
	}
	d := q.depth
	for _, c := range q.children {
		d = Max(d, c.Depth())
	}
	return d
}
