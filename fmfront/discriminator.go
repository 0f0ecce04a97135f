// Package fmfront implements the baseband front-end's FM path: the
// integer FM discriminator with its adaptive low-pass filter, carrying
// state across buffers the way hz.tools/fm's Demodulator carries a
// reader across Read calls, generalized from that package's float64
// cmplx.Phase calculation down to the fixed-point domain this receiver
// needs.
package fmfront

import (
	"github.com/ismband/ismrx/internal/fixedpoint"
	"hz.tools/rf"
)

// Config controls the FM discriminator's adaptive low-pass filter.
type Config struct {
	// Cutoff is interpreted as Hz when > 1e4, as microseconds when in
	// [1, 1e4), or as a fraction of Nyquist otherwise.
	Cutoff rf.Hz
}

// State is the FM demodulator state carried across buffers: the
// previous IQ sample, the previous raw angle, the previous filtered
// angle, the current sample rate, and the A/B coefficients of the
// currently configured low-pass filter.
type State struct {
	cfg Config

	havePrev     bool
	prevI, prevQ int32

	prevAngle    int16
	prevFiltered int16

	coeffRate    uint
	coeffCutoff  rf.Hz
	a1Q15, b0Q15 int32
}

// NewState allocates a fresh FM discriminator state.
func NewState(cfg Config) *State {
	return &State{cfg: cfg}
}

// Reset clears the cross-buffer state (previous sample, previous angle)
// without forgetting the configured cutoff, for use when a session is
// restarted on a new burst of unrelated samples.
func (s *State) Reset() {
	s.havePrev = false
	s.prevI, s.prevQ = 0, 0
	s.prevAngle, s.prevFiltered = 0, 0
}

func (s *State) cutoffFraction(sampleRate uint) float64 {
	c := float64(s.cfg.Cutoff)
	switch {
	case c > 1e4:
		return c / float64(sampleRate)
	case c >= 1:
		freqHz := 1e6 / c
		return freqHz / float64(sampleRate)
	default:
		return c / 2
	}
}

func (s *State) ensureCoeffs(sampleRate uint) {
	if sampleRate == s.coeffRate && s.cfg.Cutoff == s.coeffCutoff {
		return
	}
	fc := s.cutoffFraction(sampleRate)
	s.a1Q15, s.b0Q15 = fixedpoint.Butterworth1(fc)
	s.coeffRate = sampleRate
	s.coeffCutoff = s.cfg.Cutoff
}

// DemodCU8 runs the FM discriminator over an interleaved CU8 IQ block
// (bias 128), writing one filtered int16 angle-rate sample per IQ pair
// into out (which must have at least len(iq)/2 elements), scaled so
// +-pi maps to +-math.MaxInt16.
func (s *State) DemodCU8(iq []byte, sampleRate uint, out []int16) {
	s.ensureCoeffs(sampleRate)
	n := len(iq) / 2
	for i := 0; i < n; i++ {
		I := int32(iq[2*i]) - 128
		Q := int32(iq[2*i+1]) - 128
		raw := s.rawAngle16(I, Q)
		out[i] = s.filter(raw)
	}
}

// DemodCS16 is the CS16 counterpart of DemodCU8. The phase difference is
// computed at int32 precision (+-math.MaxInt32 for +-pi) and truncated to
// its high 16 bits before filtering, since the FM buffer format is
// int16 regardless of source sample width.
func (s *State) DemodCS16(iq []int16, sampleRate uint, out []int16) {
	s.ensureCoeffs(sampleRate)
	n := len(iq) / 2
	for i := 0; i < n; i++ {
		I := int32(iq[2*i])
		Q := int32(iq[2*i+1])
		raw32 := s.rawAngle32(I, Q)
		raw16 := int16(raw32 >> 16)
		out[i] = s.filter(raw16)
	}
}

// phaseDelta computes the real/imaginary parts of x[n]*conj(x[n-1]) at
// full int64 precision, updating the previous-sample state.
func (s *State) phaseDelta(I, Q int32) (real, imag int64) {
	if s.havePrev {
		real = int64(I)*int64(s.prevI) + int64(Q)*int64(s.prevQ)
		imag = int64(Q)*int64(s.prevI) - int64(I)*int64(s.prevQ)
	}
	s.prevI, s.prevQ = I, Q
	s.havePrev = true
	return real, imag
}

func (s *State) rawAngle16(I, Q int32) int16 {
	real, imag := s.phaseDelta(I, Q)
	return Atan2Int16(imag, real)
}

func (s *State) rawAngle32(I, Q int32) int32 {
	real, imag := s.phaseDelta(I, Q)
	return Atan2Int32(imag, real)
}

func (s *State) filter(raw int16) int16 {
	sum := int32(raw) + int32(s.prevAngle)
	out := fixedpoint.MulQ15(int32(s.prevFiltered), s.a1Q15) + fixedpoint.MulQ15(sum, s.b0Q15)
	s.prevAngle = raw
	s.prevFiltered = int16(out)
	return s.prevFiltered
}
