package pulse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func drainAll(d *Detector, am []uint16, fm []int16, rate uint) []Delivery {
	d.Feed(am, fm, rate)
	var out []Delivery
	for {
		del, ok := d.Next()
		if !ok {
			break
		}
		out = append(out, del)
	}
	return out
}

func TestSilentInputNoBursts(t *testing.T) {
	d := NewDetector(48000)
	am := make([]uint16, 100000)
	deliveries := drainAll(d, am, nil, 250000)
	assert.Empty(t, deliveries)

	del, ok := d.Flush()
	assert.False(t, ok)
	_ = del
}

// pulseTrain builds an AM buffer of n (mark, gap) pairs at the given
// sample counts, with no further trailing silence — the caller must
// Flush to close the final gap rather than waiting for reset_limit.
func pulseTrain(n, markSamples, gapSamples int, high, low uint16) []uint16 {
	am := make([]uint16, 0, n*(markSamples+gapSamples))
	for i := 0; i < n; i++ {
		for j := 0; j < markSamples; j++ {
			am = append(am, high)
		}
		for j := 0; j < gapSamples; j++ {
			am = append(am, low)
		}
	}
	return am
}

func TestCleanOOKPulseTrain(t *testing.T) {
	const rate = 250000
	const markSamples = 125 // 500us at 250kS/s
	const gapSamples = 250  // 1000us at 250kS/s

	d := NewDetector(100000)
	am := pulseTrain(10, markSamples, gapSamples, 16384, 0)

	deliveries := drainAll(d, am, nil, rate)
	assert.Empty(t, deliveries, "burst should still be open, not yet flushed")

	del, ok := d.Flush()
	assert.True(t, ok)
	assert.Equal(t, DeliveryOOK, del.Kind)
	assert.Equal(t, 10, del.Data.Count)
	for i := 0; i < 10; i++ {
		assert.InDelta(t, markSamples, del.Data.Pulse[i], 1, "pulse[%d]", i)
		assert.InDelta(t, gapSamples, del.Data.Gap[i], 1, "gap[%d]", i)
	}
}

func TestResetLimitBoundaryEndsBurst(t *testing.T) {
	const resetLimit = 100
	d := NewDetector(resetLimit)

	am := pulseTrain(1, 50, resetLimit+1, 16384, 0)
	deliveries := drainAll(d, am, nil, 250000)

	assert.Len(t, deliveries, 1)
	assert.Equal(t, 1, deliveries[0].Data.Count)
	assert.Equal(t, int32(50), deliveries[0].Data.Pulse[0])
}

// TestResetLimitExactBoundary pins down the boundary named explicitly:
// a gap of exactly reset_limit samples ends the burst on its own
// (no Flush needed), while a gap one sample shorter leaves the burst
// open so the next pulse train merges into it instead of starting a
// new one.
func TestResetLimitExactBoundary(t *testing.T) {
	const resetLimit = 100
	const markSamples = 50

	exact := pulseTrain(1, markSamples, resetLimit, 16384, 0)
	d := NewDetector(resetLimit)
	deliveries := drainAll(d, exact, nil, 250000)
	assert.Len(t, deliveries, 1, "gap of exactly reset_limit ends the burst on its own")
	assert.Equal(t, 1, deliveries[0].Data.Count)
	assert.Equal(t, int32(markSamples), deliveries[0].Data.Pulse[0])
	_, ok := d.Flush()
	assert.False(t, ok, "nothing left open after the exact-boundary gap already closed the burst")

	merged := append(pulseTrain(1, markSamples, resetLimit-1, 16384, 0),
		pulseTrain(1, markSamples, 5, 16384, 0)...)
	d2 := NewDetector(resetLimit)
	deliveries2 := drainAll(d2, merged, nil, 250000)
	assert.Empty(t, deliveries2, "gap one sample short of reset_limit leaves the burst open")

	del, ok2 := d2.Flush()
	assert.True(t, ok2)
	assert.Equal(t, 2, del.Data.Count, "both pulse trains land in the same burst")
	assert.Equal(t, int32(markSamples), del.Data.Pulse[0])
	assert.Equal(t, int32(resetLimit-1), del.Data.Gap[0])
	assert.Equal(t, int32(markSamples), del.Data.Pulse[1])
}

func TestThresholdMonotonicity(t *testing.T) {
	const noiseFloor = 1000

	countBursts := func(amplitude uint16) int {
		d := NewDetector(500)
		am := make([]uint16, 0, 7000)
		for i := 0; i < 5000; i++ {
			am = append(am, noiseFloor)
		}
		for i := 0; i < 2000; i++ {
			am = append(am, amplitude)
		}
		// No trailing tail: flush immediately afterward rather than
		// letting a return to the noise floor potentially look like a
		// pulse against a threshold the test segment itself dragged down.
		deliveries := drainAll(d, am, nil, 250000)
		if del, ok := d.Flush(); ok {
			deliveries = append(deliveries, del)
		}
		return len(deliveries)
	}

	// With the noise floor settled near 1000, Level() sits near 500: an
	// amplitude below that never crosses, one well above always does.
	low := countBursts(400)
	high := countBursts(20000)
	assert.GreaterOrEqual(t, high, low)
	assert.Equal(t, 0, low)
	assert.Equal(t, 1, high)
}

func TestCrossBufferEquivalence(t *testing.T) {
	am := pulseTrain(5, 40, 80, 10000, 0)
	am = append(am, make([]uint16, 500)...) // trailing silence past reset_limit

	// StartAgo/EndAgo count back from the end of the buffer a burst was
	// delivered in, so both runs are compared as absolute sample positions.
	toAbs := func(del Delivery, bufEnd int) Delivery {
		del.Data.StartAgo = int64(bufEnd-1) - del.Data.StartAgo
		del.Data.EndAgo = int64(bufEnd-1) - del.Data.EndAgo
		return del
	}

	whole := NewDetector(200)
	wholeResults := drainAll(whole, am, nil, 250000)
	for i := range wholeResults {
		wholeResults[i] = toAbs(wholeResults[i], len(am))
	}

	chunked := NewDetector(200)
	var chunkedResults []Delivery
	for off := 0; off < len(am); off += 23 {
		end := off + 23
		if end > len(am) {
			end = len(am)
		}
		chunked.Feed(am[off:end], nil, 250000)
		for {
			del, ok := chunked.Next()
			if !ok {
				break
			}
			chunkedResults = append(chunkedResults, toAbs(del, end))
		}
	}

	assert.Equal(t, wholeResults, chunkedResults)
}

func TestFSKSplit(t *testing.T) {
	const rate = 250000
	d := NewDetector(400)

	n := 2000
	am := make([]uint16, n)
	fm := make([]int16, n)
	for i := range am {
		am[i] = 16384
		if (i/100)%2 == 0 {
			fm[i] = 10000
		} else {
			fm[i] = -10000
		}
	}
	am = append(am, make([]uint16, 1000)...)
	fm = append(fm, make([]int16, 1000)...)

	deliveries := drainAll(d, am, fm, rate)
	assert.Len(t, deliveries, 1)
	assert.Equal(t, DeliveryFSK, deliveries[0].Kind)
	assert.NotEqual(t, deliveries[0].Data.FSKF1Est, deliveries[0].Data.FSKF2Est)
}
