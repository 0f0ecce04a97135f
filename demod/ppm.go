package demod

import (
	"github.com/ismband/ismrx/bitbuf"
	"github.com/ismband/ismrx/pulse"
)

// PPM implements pulse-position modulation: the mark itself ordinarily
// carries no information (it is a short sync pip), and the following
// gap encodes one bit — bit = gap > ShortLimit. A gap exceeding
// GapLimit starts a new row instead of emitting a bit, the conventional
// PPM packet separator. When SyncLimit is set, a mark classified as
// longer than LongLimit (classify's class 2) and within Tolerance of
// SyncLimit is a distinguishable sync pip rather than an ordinary one:
// it also starts a new row, independent of the gap that follows it.
func PPM(pd *pulse.Data, p Params, out *bitbuf.Buffer, cb DecodeFunc) (int, error) {
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
		gap := pd.Gap[i]
		if p.GapLimit > 0 && gap > p.GapLimit {
			out.AddRow()
			if cb != nil {
				cb(out.NumRows() - 2)
			}
			continue
		}
		bit := byte(0)
		if gap > p.ShortLimit {
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
