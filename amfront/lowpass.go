package amfront

import "github.com/ismband/ismrx/internal/fixedpoint"

// FilterOrder is the number of samples of state the AM low-pass filter
// carries across buffer boundaries.
const FilterOrder = 1

var (
	lpA1Q15, lpB0Q15 = fixedpoint.Butterworth1(0.05) // Butterworth(1, 0.05)
)

// LowpassState is the AM low-pass filter state carried across buffers:
// the last input and last output sample.
type LowpassState struct {
	lastX uint16
	lastY int16
}

// Lowpass runs the first-order IIR
//
//	y[n] = a1*y[n-1] + b0*(x[n] + x[n-1])
//
// over x (uint16 AM samples), writing int16 output into y. y must have
// at least len(x) elements. It silently returns without writing
// anything if len(x) < FilterOrder, leaving the state untouched.
func Lowpass(state *LowpassState, x []uint16, y []int16) {
	if len(x) < FilterOrder {
		return
	}
	lastX := int32(state.lastX)
	lastY := int32(state.lastY)
	for n, xn := range x {
		sum := int32(xn) + lastX
		out := fixedpoint.MulQ15(lastY, lpA1Q15) + fixedpoint.MulQ15(sum, lpB0Q15)
		y[n] = int16(out)
		lastX = int32(xn)
		lastY = out
	}
	state.lastX = x[len(x)-1]
	state.lastY = y[len(x)-1]
}
