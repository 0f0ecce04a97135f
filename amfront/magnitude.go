// Package amfront implements the baseband front-end's AM path: the three
// interchangeable magnitude (envelope) estimators and the single-pole
// AM low-pass filter, as described by the baseband front-end component.
package amfront

import (
	"math"

	"github.com/ismband/ismrx/internal/fixedpoint"
)

// envelopeLUT is the precomputed 256-entry table of (127-b)^2 used by the
// fast CU8 envelope path.
var envelopeLUT [256]uint32

func init() {
	for b := 0; b < 256; b++ {
		d := 127 - b
		envelopeLUT[b] = uint32(d * d)
	}
}

// cu8Ref and cs16Ref are the scale factors that bring a single-axis
// full-scale sine (I oscillating through the full code range, Q near
// zero) to the internal AM reference where full-scale corresponds to
// fixedpoint.FullScale.
const (
	cu8Ref  = fixedpoint.FullScale / 127.0
	cs16Ref = fixedpoint.FullScale / 32767.0
)

// MagnitudeLUT computes the AM envelope of a CU8 IQ block using the
// precomputed squared-deviation table: y[i] = sqrt(T[I[i]] + T[Q[i]]).
// This is the default fast path for CU8 sources. iq holds interleaved
// {I,Q} bytes (bias 128); the returned AM buffer has half as many
// elements, plus the average level of the block in dB.
func MagnitudeLUT(iq []byte) ([]uint16, float64) {
	n := len(iq) / 2
	am := make([]uint16, n)
	var sum float64
	for i := 0; i < n; i++ {
		sq := envelopeLUT[iq[2*i]] + envelopeLUT[iq[2*i+1]]
		m := clampU16(math.Sqrt(float64(sq)) * cu8Ref)
		am[i] = m
		sum += float64(m)
	}
	return am, averageDB(sum, n)
}

// MagnitudeEstimateCU8 estimates the AM envelope of a CU8 IQ block using
// the cheap alpha-max-plus-beta-min approximation
// 122*max(|I|,|Q|) + 51*min(|I|,|Q|). This is the default path for CS16
// sources, and an alternative path for CU8. The deliberate sqrt(2) bias
// on pure-diagonal samples is tolerated.
func MagnitudeEstimateCU8(iq []byte) ([]uint16, float64) {
	n := len(iq) / 2
	am := make([]uint16, n)
	var sum float64
	for i := 0; i < n; i++ {
		ai := absI32(int32(iq[2*i]) - 128)
		aq := absI32(int32(iq[2*i+1]) - 128)
		m := clampU16(float64(estimate(ai, aq)))
		am[i] = m
		sum += float64(m)
	}
	return am, averageDB(sum, n)
}

// MagnitudeEstimateCS16 is the CS16 counterpart of MagnitudeEstimateCU8.
func MagnitudeEstimateCS16(iq []int16) ([]uint16, float64) {
	n := len(iq) / 2
	am := make([]uint16, n)
	var sum float64
	for i := 0; i < n; i++ {
		ai := absI32(int32(iq[2*i]))
		aq := absI32(int32(iq[2*i+1]))
		// Right-shift by 8 rescales the CS16 (+-32767) code range down to
		// the same alpha-max-plus-beta-min calibration point the CU8
		// estimator hits natively at (+-127).
		m := clampU16(float64(estimate(ai, aq) >> 8))
		am[i] = m
		sum += float64(m)
	}
	return am, averageDB(sum, n)
}

// MagnitudeTrueCU8 computes sqrt(I^2+Q^2), scaled to the 16384 reference.
func MagnitudeTrueCU8(iq []byte) ([]uint16, float64) {
	n := len(iq) / 2
	am := make([]uint16, n)
	var sum float64
	for i := 0; i < n; i++ {
		I := float64(int32(iq[2*i]) - 128)
		Q := float64(int32(iq[2*i+1]) - 128)
		m := clampU16(math.Hypot(I, Q) * cu8Ref)
		am[i] = m
		sum += float64(m)
	}
	return am, averageDB(sum, n)
}

// MagnitudeTrueCS16 is the CS16 counterpart of MagnitudeTrueCU8.
func MagnitudeTrueCS16(iq []int16) ([]uint16, float64) {
	n := len(iq) / 2
	am := make([]uint16, n)
	var sum float64
	for i := 0; i < n; i++ {
		I := float64(iq[2*i])
		Q := float64(iq[2*i+1])
		m := clampU16(math.Hypot(I, Q) * cs16Ref)
		am[i] = m
		sum += float64(m)
	}
	return am, averageDB(sum, n)
}

func estimate(a, b int32) int32 {
	mx, mn := a, b
	if mn > mx {
		mx, mn = mn, mx
	}
	return 122*mx + 51*mn
}

func absI32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func clampU16(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v + 0.5)
}

func averageDB(sum float64, n int) float64 {
	if n == 0 {
		return math.Inf(-1)
	}
	mean := sum / float64(n)
	if mean <= 0 {
		return math.Inf(-1)
	}
	return fixedpoint.MagToDB(mean)
}
