package demod

import (
	"github.com/ismband/ismrx/bitbuf"
	"github.com/ismband/ismrx/pulse"
)

// DMC implements differential Manchester: every bit boundary has a
// transition (for clock recovery), and the bit value is carried by
// whether a second transition occurs at mid-period — transition-at-
// midperiod is a 0, no transition is a 1 (the differential convention:
// a 1 bit preserves the carrier's current level through the whole
// period, a 0 bit flips it at the midpoint before the boundary flip).
func DMC(pd *pulse.Data, p Params, out *bitbuf.Buffer, cb DecodeFunc) (int, error) {
	if p.ShortLimit <= 0 {
		return 0, errShortLimitRequired
	}
	half := p.ShortLimit
	skew := half / 2

	halves := splitHalfPeriods(levelRun(pd), half, skew)
	if len(halves) < 2 {
		return 0, errNoValidSymbols
	}

	count := 0
	for i := 0; i+1 < len(halves); i += 2 {
		bit := byte(1)
		if halves[i] != halves[i+1] {
			bit = 0
		}
		out.AddBit(invertBit(bit, p.Invert))
		count++
	}
	out.AddRow()
	if cb != nil {
		cb(out.NumRows() - 2)
	}
	return count, nil
}
