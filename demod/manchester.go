package demod

import (
	"github.com/ismband/ismrx/bitbuf"
	"github.com/ismband/ismrx/pulse"
)

// Manchester implements the zero-bit-start Manchester code with a fixed
// clock: the half-period is ShortLimit. It is not measured from the
// burst's first mark/gap transition. The burst is walked in
// half-period steps. Each full period (two half-periods) is one output
// bit: a low-to-high transition at mid-period is a 1, high-to-low is a
// 0. Half-periods are allowed to drift by up to ShortLimit/2 (the skew
// tolerance) before a level is considered to have missed its slot.
func Manchester(pd *pulse.Data, p Params, out *bitbuf.Buffer, cb DecodeFunc) (int, error) {
	if p.ShortLimit <= 0 {
		return 0, errShortLimitRequired
	}
	half := p.ShortLimit
	skew := half / 2

	levels := levelRun(pd)
	halves := splitHalfPeriods(levels, half, skew)
	if len(halves) < 2 {
		return 0, errNoValidSymbols
	}

	count := 0
	for i := 0; i+1 < len(halves); i += 2 {
		first, second := halves[i], halves[i+1]
		if first == second {
			// No mid-period transition: slip has misaligned the clock,
			// but keep consuming half-periods one at a time to resync
			// rather than discarding the rest of the burst.
			i--
			continue
		}
		bit := byte(0)
		if first == 0 && second == 1 {
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

// levelRun expands a burst's paired (pulse, gap) intervals into an
// alternating sequence of (level, duration), mark first.
func levelRun(pd *pulse.Data) []levelSpan {
	spans := make([]levelSpan, 0, pd.Count*2)
	for i := 0; i < pd.Count; i++ {
		spans = append(spans, levelSpan{level: 1, dur: pd.Pulse[i]})
		spans = append(spans, levelSpan{level: 0, dur: pd.Gap[i]})
	}
	return spans
}

type levelSpan struct {
	level byte
	dur   int32
}

// splitHalfPeriods rounds each level span to the nearest whole number
// of half-periods of width half and repeats the span's level that many
// times. A span that rounds to zero is dropped unless it is within skew
// of one half-period, in which case it counts as one.
func splitHalfPeriods(spans []levelSpan, half, skew int32) []byte {
	if half <= 0 {
		return nil
	}
	var out []byte
	for _, s := range spans {
		n := int((s.dur + half/2) / half)
		if n < 1 {
			if s.dur+skew < half {
				continue
			}
			n = 1
		}
		for i := 0; i < n; i++ {
			out = append(out, s.level)
		}
	}
	return out
}
