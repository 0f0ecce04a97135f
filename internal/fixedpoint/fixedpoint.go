// Package fixedpoint holds the small set of named integer constants and
// inline helpers the front-end and detector use for Q0.15 fixed-point
// arithmetic and dB conversions. The scale factor is a compile-time
// constant, not tunable.
package fixedpoint

import "math"

// FullScale is the internal AM/magnitude reference: a nominal full-scale
// sine amplitude corresponds to this value.
const FullScale = 16384

// Q15One is 1.0 in Q0.15 fixed point.
const Q15One = 1 << 15

// MulQ15 multiplies a 16-bit sample by a Q0.15 fixed-point coefficient,
// returning the Q0 result.
func MulQ15(sample int32, coeffQ15 int32) int32 {
	return (sample * coeffQ15) >> 15
}

// AmpToDB converts a linear amplitude (AM scale) to dB relative to
// FullScale. Bit-exact with AMP_TO_DB.
func AmpToDB(x float64) float64 {
	return 10*math.Log10(x) - 10*math.Log10(FullScale)
}

// MagToDB converts a linear magnitude (AM scale) to dB relative to
// FullScale. Bit-exact with MAG_TO_DB.
func MagToDB(x float64) float64 {
	return 20*math.Log10(x) - 20*math.Log10(FullScale)
}

// DBToAmp is the inverse of AmpToDB. The result is not rounded.
func DBToAmp(db float64) float64 {
	return math.Pow(10, (db+10*math.Log10(FullScale))/10)
}

// DBToMag is the inverse of MagToDB. The result is not rounded.
func DBToMag(db float64) float64 {
	return math.Pow(10, (db+20*math.Log10(FullScale))/20)
}

// Butterworth1 returns the a1/b0 Q0.15 coefficients for a first-order
// Butterworth low-pass filter at cutoff fc (as a fraction of the sample
// rate, i.e. Fc/Fs), derived via the standard bilinear transform of a
// single-pole analog lowpass:
//
//	y[n] = a1*y[n-1] + b0*(x[n] + x[n-1])
//
// b0 == b1 by construction; the caller applies b0*(x[n]+x[n-1]) directly.
func Butterworth1(fc float64) (a1Q15, b0Q15 int32) {
	k := math.Tan(math.Pi * fc)
	a1 := (1 - k) / (1 + k)
	b0 := k / (1 + k)
	return int32(math.Round(a1 * Q15One)), int32(math.Round(b0 * Q15One))
}
