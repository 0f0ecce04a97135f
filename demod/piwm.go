package demod

import (
	"github.com/ismband/ismrx/bitbuf"
	"github.com/ismband/ismrx/pulse"
)

// PIWMRaw implements pulse-interval-width modulation: each (mark, gap)
// pair is one symbol, and the combination of which of the two is
// "short" vs "long" encodes one or two bits. Four combinations are
// possible (short/short, short/long, long/short, long/long); raw mode
// maps them directly to a 2-bit symbol, MSB (mark classification)
// first.
func PIWMRaw(pd *pulse.Data, p Params, out *bitbuf.Buffer, cb DecodeFunc) (int, error) {
	return piwm(pd, p, out, cb, false)
}

// PIWMDC is the DC-balanced variant: streams where every symbol's mark
// and gap are expected to average to a constant duty cycle collapse
// the four-combination symbol down to a single bit (mark short vs
// long), tolerating the gap drifting to compensate and keep the
// stream DC-balanced.
func PIWMDC(pd *pulse.Data, p Params, out *bitbuf.Buffer, cb DecodeFunc) (int, error) {
	return piwm(pd, p, out, cb, true)
}

func piwm(pd *pulse.Data, p Params, out *bitbuf.Buffer, cb DecodeFunc, dc bool) (int, error) {
	if p.ShortLimit <= 0 {
		return 0, errShortLimitRequired
	}
	count := 0
	for i := 0; i < pd.Count; i++ {
		markLong := pd.Pulse[i] > p.ShortLimit

		if dc {
			bit := byte(0)
			if markLong {
				bit = 1
			}
			out.AddBit(invertBit(bit, p.Invert))
			count++
			continue
		}

		gapLong := pd.Gap[i] > p.ShortLimit
		hi, lo := byte(0), byte(0)
		if markLong {
			hi = 1
		}
		if gapLong {
			lo = 1
		}
		out.AddBit(invertBit(hi, p.Invert))
		out.AddBit(invertBit(lo, p.Invert))
		count += 2
	}
	out.AddRow()
	if cb != nil {
		cb(out.NumRows() - 2)
	}
	return count, nil
}
