package demod

import (
	"github.com/ismband/ismrx/bitbuf"
	"github.com/ismband/ismrx/pulse"
)

// PCM implements fixed-period sampling (NRZ/RZ): each mark/gap interval
// is measured in units of ShortLimit and emits that many bits, high for
// a mark and low for a gap. A long run therefore splits into multiple
// bits of the same value rather than one bit per pulse. When SyncLimit
// is set, a mark classified as longer than LongLimit (classify's class
// 2) and within Tolerance of SyncLimit is treated as a framing marker
// rather than data: it closes out the row in progress and starts a new
// one, emitting no bits of its own.
func PCM(pd *pulse.Data, p Params, out *bitbuf.Buffer, cb DecodeFunc) (int, error) {
	if p.ShortLimit <= 0 {
		return 0, errShortLimitRequired
	}
	count := 0
	for i := 0; i < pd.Count; i++ {
		if p.SyncLimit > 0 && classify(pd.Pulse[i], p.ShortLimit, p.LongLimit) == 2 &&
			withinTolerance(pd.Pulse[i], p.SyncLimit, p.Tolerance) {
			out.AddRow()
			if cb != nil {
				cb(out.NumRows() - 2)
			}
			continue
		}
		count += emitRun(out, pd.Pulse[i], p.ShortLimit, invertBit(1, p.Invert))
		count += emitRun(out, pd.Gap[i], p.ShortLimit, invertBit(0, p.Invert))
	}
	out.AddRow()
	if cb != nil {
		cb(out.NumRows() - 2)
	}
	return count, nil
}

// emitRun appends round(length/unit) bits of value bit, with a minimum
// of one bit for any nonzero interval.
func emitRun(out *bitbuf.Buffer, length, unit int32, bit byte) int {
	if length <= 0 || unit <= 0 {
		return 0
	}
	n := int((length + unit/2) / unit)
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		out.AddBit(bit)
	}
	return n
}
