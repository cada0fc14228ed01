// math/math_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

func TestNormalizeHeading(t *testing.T) {
	for _, tc := range []struct {
		h, want float32
	}{
		{0, 0},
		{359, 359},
		{360, 0},
		{370, 10},
		{-10, 350},
		{-360, 0},
		{-725, 355},
		{720, 0},
	} {
		if got := NormalizeHeading(tc.h); Abs(got-tc.want) > 1e-4 {
			t.Errorf("NormalizeHeading(%f): got %f, want %f", tc.h, got, tc.want)
		}
	}
}

func TestHeadingDifference(t *testing.T) {
	for _, tc := range []struct {
		a, b, want float32
	}{
		{10, 350, 20},
		{350, 10, 20},
		{90, 270, 180},
		{0, 0, 0},
		{45, 90, 45},
	} {
		if got := HeadingDifference(tc.a, tc.b); Abs(got-tc.want) > 1e-4 {
			t.Errorf("HeadingDifference(%f, %f): got %f, want %f", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestHeadingSignedTurn(t *testing.T) {
	for _, tc := range []struct {
		cur, target, want float32
	}{
		{350, 10, 20},
		{10, 350, -20},
		{90, 180, 90},
		{180, 90, -90},
	} {
		if got := HeadingSignedTurn(tc.cur, tc.target); Abs(got-tc.want) > 1e-3 {
			t.Errorf("HeadingSignedTurn(%f, %f): got %f, want %f", tc.cur, tc.target, got, tc.want)
		}
	}
}

func TestShortCompass(t *testing.T) {
	for _, tc := range []struct {
		hdg  float32
		want string
	}{{0, "N"}, {22, "N"}, {23, "NE"}, {90, "E"}, {180, "S"}, {250, "W"}, {337.4, "NW"}, {350, "N"}, {-90, "W"}} {
		if got := ShortCompass(tc.hdg); got != tc.want {
			t.Errorf("ShortCompass(%f): got %q, want %q", tc.hdg, got, tc.want)
		}
	}
}

func TestHeading2f(t *testing.T) {
	for _, tc := range []struct {
		to   [2]float32
		want float32
	}{
		{[2]float32{0, 1}, 0},
		{[2]float32{1, 0}, 90},
		{[2]float32{0, -1}, 180},
		{[2]float32{-1, 0}, 270},
		{[2]float32{1, 1}, 45},
	} {
		if got := Heading2f([2]float32{}, tc.to); Abs(got-tc.want) > 1e-3 {
			t.Errorf("Heading2f(%v): got %f, want %f", tc.to, got, tc.want)
		}
	}

	v := HeadingVector(90)
	if Abs(v[0]-1) > 1e-5 || Abs(v[1]) > 1e-5 {
		t.Errorf("HeadingVector(90): got %v, want [1 0]", v)
	}
}

func TestSCurve(t *testing.T) {
	for _, p := range []float32{0, 0.5, 0.9, 1} {
		if v := SCurve(0, p); Abs(v) > 1e-5 {
			t.Errorf("SCurve(0, %f): got %f, want 0", p, v)
		}
		if v := SCurve(1, p); Abs(v-1) > 1e-5 {
			t.Errorf("SCurve(1, %f): got %f, want 1", p, v)
		}
		if v := SCurve(0.5, p); Abs(v-0.5) > 1e-5 {
			t.Errorf("SCurve(0.5, %f): got %f, want 0.5", p, v)
		}

		prev := float32(0)
		for i := 1; i <= 100; i++ {
			v := SCurve(float32(i)/100, p)
			if v < prev {
				t.Errorf("SCurve not monotonic at t=%f, p=%f: %f < %f", float32(i)/100, p, v, prev)
			}
			prev = v
		}
	}

	if v := SCurve(2, 0.9); v != 1 {
		t.Errorf("SCurve should clamp t > 1, got %f", v)
	}
}

func TestDecayingOscillation(t *testing.T) {
	_, env0 := DecayingOscillation(0, 3, 40, 0.8)
	if env0 != 1 {
		t.Errorf("envelope at tau=0: got %f, want 1", env0)
	}

	prevEnv := env0
	for tau := float32(0.5); tau < 10; tau += 0.5 {
		off, env := DecayingOscillation(tau, 3, 40, 0.8)
		if env >= prevEnv {
			t.Errorf("envelope should decrease: tau=%f env=%f prev=%f", tau, env, prevEnv)
		}
		if Abs(off) > 40*env+1e-4 {
			t.Errorf("offset %f exceeds envelope %f at tau=%f", off, 40*env, tau)
		}
		prevEnv = env
	}
}

func TestExtent2D(t *testing.T) {
	e := Extent2D{P0: [2]float32{0, 0}, P1: [2]float32{10, 20}}
	if !e.Inside([2]float32{10, 20}) || !e.Inside([2]float32{0, 0}) {
		t.Errorf("boundary points should be inside")
	}
	if e.Inside([2]float32{10.01, 5}) {
		t.Errorf("point outside reported as inside")
	}
	if c := e.ClosestPointInBox([2]float32{-5, 25}); c != [2]float32{0, 20} {
		t.Errorf("ClosestPointInBox: got %v, want [0 20]", c)
	}
}
