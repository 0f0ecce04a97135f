// Package demod implements the pulse demodulator bank: a library of
// fixed modulation schemes that each turn a burst's interval list into
// appended rows of a bit buffer, honoring per-device tolerances.
package demod

import (
	"github.com/ismband/ismrx/bitbuf"
	"github.com/ismband/ismrx/pulse"
)

// DecodeFunc is the per-protocol decoder callback invoked once per
// completed row. A nonzero return means the row validated; a zero
// return means the row should be discarded (the demodulator keeps
// going, it does not abort the whole burst).
type DecodeFunc func(row int) int

// Params carries the tolerances a registered protocol supplies to a
// demodulator. Not every field is meaningful to every scheme; each
// scheme's doc comment says which it reads. All durations are in
// samples, at the sample rate the owning pulse.Data was captured at.
type Params struct {
	ShortLimit int32
	LongLimit  int32
	SyncLimit  int32
	ResetLimit int32
	GapLimit   int32
	Tolerance  int32

	// Invert flips the sense of mark/space before interpretation.
	Invert bool

	// DCFriendly is carried over from the registration. No demodulator
	// in this package reads it; the PIWM "dc" variant is selected by
	// calling PIWMDC instead of PIWMRaw.
	DCFriendly bool
}

// Func is the shared shape of every demodulator in the bank: a pure
// function from a completed burst and its protocol parameters to rows
// appended in out. It returns the number of data bits successfully
// produced (every scheme in this package counts bits), for the framework's hop/exit
// accounting, or an error if the burst is structurally unusable (for
// example a PWM precise mismatch with no tolerance match anywhere).
type Func func(pd *pulse.Data, p Params, out *bitbuf.Buffer, cb DecodeFunc) (int, error)

// classify buckets one interval length against short/long limits,
// returning -1 if it falls below half of short (noise), 0 for short, 1 for
// long, and 2 for "longer than long" (commonly treated as reset/sync
// by callers).
func classify(length, short, long int32) int {
	switch {
	case length < short/2:
		return -1
	case length <= short:
		return 0
	case length <= long:
		return 1
	default:
		return 2
	}
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

func withinTolerance(x, target, tol int32) bool {
	return abs32(x-target) <= tol
}

func invertBit(bit byte, invert bool) byte {
	if invert {
		return bit ^ 1
	}
	return bit
}
