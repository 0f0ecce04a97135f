package demod

import (
	"github.com/ismband/ismrx/bitbuf"
	"github.com/ismband/ismrx/pulse"
)

// OSV1 implements the Oregon Scientific v1 Manchester variant: a
// synchronization preamble of alternating half-period pulses precedes
// the payload, and the payload is Manchester-coded with the bit sense
// inverted relative to Manchester: a high-to-low transition at
// mid-period is a 1, low-to-high is a 0. This is a simplified model of
// v1 framing. Unlike DMC/Manchester's datasheet-neutral framing, this
// scheme treats the preamble as fixed and does not emit it — callers
// that need the raw preamble should use Manchester directly. When a
// registration supplies SyncLimit (the preamble's width in samples),
// it is converted to a half-period count and used instead of the
// 4-sync-bit default, for transmitters whose preamble length deviates
// from the v1 norm.
func OSV1(pd *pulse.Data, p Params, out *bitbuf.Buffer, cb DecodeFunc) (int, error) {
	if p.ShortLimit <= 0 {
		return 0, errShortLimitRequired
	}
	half := p.ShortLimit
	skew := half / 2

	halves := splitHalfPeriods(levelRun(pd), half, skew)
	if len(halves) < 2 {
		return 0, errNoValidSymbols
	}

	preambleHalves := 8 // 4 sync bits at 2 half-periods each
	if p.SyncLimit > 0 {
		preambleHalves = int((p.SyncLimit + half/2) / half)
		if preambleHalves < 1 {
			preambleHalves = 1
		}
	}
	if len(halves) <= preambleHalves {
		return 0, errNoValidSymbols
	}
	halves = halves[preambleHalves:]
	if len(halves)%2 != 0 {
		halves = halves[:len(halves)-1]
	}

	count := 0
	for i := 0; i+1 < len(halves); i += 2 {
		first, second := halves[i], halves[i+1]
		if first == second {
			i--
			continue
		}
		bit := byte(0)
		if first == 1 && second == 0 {
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
