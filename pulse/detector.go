package pulse

import "github.com/charmbracelet/log"

// DefaultResetLimit is used when no registered protocol supplies a
// reset limit (in samples, at the detector's current sample rate).
const DefaultResetLimit = 48000 // 1 second at 48 kHz-equivalent timing

type runState int

const (
	stateIdle runState = iota
	statePulse
	stateGap
)

// Detector is the dual AM/FSK pulse detector. It consumes AM (and
// optionally FM, for FSK tracking) blocks and carries its full state
// across them: Feed marks the start of a new input buffer, and Next
// drains however many bursts that buffer contains.
type Detector struct {
	threshold  Threshold
	resetLimit int32 // samples

	st      runState
	runLen  int32
	pending int32 // pulse length pending commit once its gap is known

	burstStartAbs int64
	lastEdgeAbs   int64

	data Data
	fsk  fskTracker

	am           []uint16
	fm           []int16
	pos          int
	totalSamples int64
	bufferEndAbs int64
	currentRate  uint

	logger    *log.Logger
	capWarned bool
}

// NewDetector returns a Detector with the adaptive threshold at zero
// and the given reset limit in samples.
func NewDetector(resetLimitSamples int32) *Detector {
	if resetLimitSamples <= 0 {
		resetLimitSamples = DefaultResetLimit
	}
	d := &Detector{resetLimit: resetLimitSamples}
	d.data.Reset()
	return d
}

// SetResetLimit updates the reset limit (the maximum of registered
// protocols' reset limits, converted to samples at the current sample
// rate).
func (d *Detector) SetResetLimit(samples int32) {
	if samples > 0 {
		d.resetLimit = samples
	}
}

// SetFixedLevel overrides the adaptive threshold (the level_limit run
// option). SetFixedLevel(0) fixes the level at 0; call ClearFixedLevel
// to restore adaptive tracking.
func (d *Detector) SetFixedLevel(level int32) { d.threshold.SetFixed(level) }

// ClearFixedLevel restores adaptive threshold tracking.
func (d *Detector) ClearFixedLevel() { d.threshold.ClearFixed() }

// SetLogger attaches a structured logger used to warn when a burst in
// progress hits the pulse cap (MaxPulses) and further pulse/gap pairs
// are dropped. A nil logger (the default) silently drops the warning.
func (d *Detector) SetLogger(l *log.Logger) { d.logger = l }

// Feed marks the start of processing a new input buffer. am is the
// filtered AM stream; fm is the parallel FM stream for FSK tracking
// (nil if unavailable). Ago values of any burst already in progress are
// implicitly aged forward because they are always measured against the
// most recently fed buffer's end.
func (d *Detector) Feed(am []uint16, fm []int16, sampleRate uint) {
	d.am = am
	d.fm = fm
	d.pos = 0
	d.currentRate = sampleRate
	d.bufferEndAbs = d.totalSamples + int64(len(am))
}

// Next processes samples from the buffer passed to Feed until either a
// burst completes or the buffer is exhausted. Call Next in a loop until
// ok is false to drain every burst detected in the fed buffer.
func (d *Detector) Next() (delivery Delivery, ok bool) {
	for d.pos < len(d.am) {
		sample := d.am[d.pos]
		var fmSample int16
		if d.pos < len(d.fm) {
			fmSample = d.fm[d.pos]
		}

		fired, del := d.step(sample, fmSample)

		d.pos++
		d.totalSamples++

		if fired {
			return del, true
		}
	}
	return Delivery{}, false
}

func (d *Detector) step(sample uint16, fmSample int16) (bool, Delivery) {
	level := int32(sample)
	// Strict comparison: at the all-zero startup state ookHigh and
	// ookLow are both still zero, so a >= here would latch a false
	// pulse on the very first silent sample before any real noise
	// floor has been observed.
	above := level > d.threshold.Level()

	switch d.st {
	case stateIdle:
		d.threshold.UpdateLow(level)
		if above {
			d.burstStartAbs = d.totalSamples
			d.lastEdgeAbs = d.totalSamples
			d.st = statePulse
			d.runLen = 1
			d.threshold.UpdateHigh(level)
			d.fsk.reset()
			d.fsk.observe(fmSample)
		}

	case statePulse:
		if above {
			d.runLen++
			d.threshold.UpdateHigh(level)
			d.fsk.observe(fmSample)
		} else {
			d.pending = d.runLen
			d.lastEdgeAbs = d.totalSamples
			d.st = stateGap
			d.runLen = 1
			d.threshold.UpdateLow(level)
		}

	case stateGap:
		if above {
			// runLen < resetLimit is guaranteed here: otherwise the
			// branch below would already have ended the burst.
			d.commitPair(d.pending, d.runLen)
			d.st = statePulse
			d.runLen = 1
			d.threshold.UpdateHigh(level)
			d.fsk.observe(fmSample)
		} else {
			d.runLen++
			d.threshold.UpdateLow(level)
			// A gap that has reached reset_limit samples ends the burst
			// here: separated by exactly reset_limit yields two separate
			// pulse_data, separated by reset_limit-1 lets the next mark
			// (observed in the "above" branch above) merge into this
			// burst instead.
			if d.runLen >= d.resetLimit {
				d.commitPair(d.pending, d.runLen)
				del := d.finishBurst()
				d.st = stateIdle
				return true, del
			}
		}
	}
	return false, Delivery{}
}

func (d *Detector) commitPair(pulse, gap int32) {
	if d.data.Count >= MaxPulses {
		if !d.capWarned && d.logger != nil {
			d.logger.Warn("pulse-cap overflow, dropping further pulses", "max_pulses", MaxPulses)
		}
		d.capWarned = true
		return // pulse-cap overflow: drop further pulses, burst still delivered
	}
	d.data.Pulse[d.data.Count] = pulse
	d.data.Gap[d.data.Count] = gap
	d.data.Count++
}

// Overflowed reports whether the in-progress burst has already hit
// MaxPulses; the caller may want to log a warning per the pulse-cap
// overflow error-handling rule.
func (d *Detector) Overflowed() bool {
	return d.data.Count >= MaxPulses
}

// Flush forces delivery of whatever burst is in progress, as if its
// trailing gap had just exceeded the reset limit. Callers use this at
// end of stream so a transmission's final burst is not held open
// forever waiting for a reset_limit timeout that will never arrive.
func (d *Detector) Flush() (Delivery, bool) {
	switch d.st {
	case statePulse:
		d.commitPair(d.runLen, 0)
	case stateGap:
		d.commitPair(d.pending, d.runLen)
	default:
		return Delivery{}, false
	}
	del := d.finishBurst()
	d.st = stateIdle
	return del, true
}

func (d *Detector) finishBurst() Delivery {
	isFSK, f1, f2, segments := d.fsk.finish()

	d.data.OokHigh = d.threshold.High()
	d.data.OokLow = d.threshold.Low()
	d.data.SampleRate = d.currentRate
	d.data.StartAgo = (d.bufferEndAbs - 1) - d.burstStartAbs
	d.data.EndAgo = (d.bufferEndAbs - 1) - d.lastEdgeAbs

	kind := DeliveryOOK
	if isFSK {
		kind = DeliveryFSK
		d.data.FSK = true
		d.data.FSKF1Est = f1
		d.data.FSKF2Est = f2
		pulses, gaps := packSegments(segments)
		n := len(pulses)
		if n > MaxPulses {
			n = MaxPulses
		}
		d.data.Count = n
		copy(d.data.Pulse[:n], pulses[:n])
		copy(d.data.Gap[:n], gaps[:n])
	}

	result := Delivery{Kind: kind, Data: d.data}
	d.data.Reset()
	d.fsk.reset()
	d.capWarned = false
	return result
}
