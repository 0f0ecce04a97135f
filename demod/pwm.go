package demod

import (
	"github.com/ismband/ismrx/bitbuf"
	"github.com/ismband/ismrx/pulse"
)

// PWMRaw implements pulse-width modulation with no tolerance checking:
// bit = pulse > ShortLimit, one bit per pulse in the burst.
func PWMRaw(pd *pulse.Data, p Params, out *bitbuf.Buffer, cb DecodeFunc) (int, error) {
	if p.ShortLimit <= 0 {
		return 0, errShortLimitRequired
	}
	count := 0
	for i := 0; i < pd.Count; i++ {
		bit := byte(0)
		if pd.Pulse[i] > p.ShortLimit {
			bit = 1
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

// PWMPrecise additionally validates every pulse against Tolerance
// before accepting it: a pulse must land within Tolerance of either
// ShortLimit or LongLimit, otherwise it is out of spec and is skipped
// without emitting a bit. If no pulse in the burst matches, no row is
// emitted and errNoValidSymbols is returned.
func PWMPrecise(pd *pulse.Data, p Params, out *bitbuf.Buffer, cb DecodeFunc) (int, error) {
	if p.ShortLimit <= 0 || p.LongLimit <= 0 {
		return 0, errShortLimitRequired
	}
	count := 0
	matched := false
	for i := 0; i < pd.Count; i++ {
		pulseLen := pd.Pulse[i]
		shortMatch := withinTolerance(pulseLen, p.ShortLimit, p.Tolerance)
		longMatch := withinTolerance(pulseLen, p.LongLimit, p.Tolerance)
		if !shortMatch && !longMatch {
			continue
		}
		matched = true
		bit := byte(0)
		switch {
		case longMatch && !shortMatch:
			bit = 1
		case shortMatch && !longMatch:
			bit = 0
		default:
			// Ambiguous: within tolerance of both. Pick whichever the
			// pulse sits closer to.
			if abs32(pulseLen-p.LongLimit) < abs32(pulseLen-p.ShortLimit) {
				bit = 1
			}
		}
		out.AddBit(invertBit(bit, p.Invert))
		count++
	}
	if !matched {
		return 0, errNoValidSymbols
	}
	out.AddRow()
	if cb != nil {
		cb(out.NumRows() - 2)
	}
	return count, nil
}
