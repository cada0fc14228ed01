// math/ease.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

// SmoothStep returns 3t^2 - 2t^3 for t clamped to [0,1].
func SmoothStep(t float32) float32 {
	t = Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// SCurve maps t in [0,1] to [0,1] with zero slope at both ends. The
// sharpness parameter in (0,1] warps t through a sine before the final
// smoothstep; larger values give a flatter start and finish.
func SCurve(t, sharpness float32) float32 {
	t = Clamp(t, 0, 1)
	if sharpness <= 0 {
		return SmoothStep(t)
	}
	p := Min(sharpness, 1)
	warped := (Sin((t-0.5)*Pi()*p)/Sin(Pi()/2*p) + 1) / 2
	return SmoothStep(warped)
}

// DecayingOscillation returns sin(tau*freq)*amplitude*e^(-tau*decay) as
// well as the envelope value e^(-tau*decay), which callers can compare
// against a threshold to decide when the oscillation has died out.
func DecayingOscillation(tau, freq, amplitude, decay float32) (offset, envelope float32) {
	envelope = Exp(-tau * decay)
	return Sin(tau*freq) * amplitude * envelope, envelope
}
