package pulse

// noiseAlphaShift implements alpha ~= 1/1024 as a power-of-two decay,
// the exponentially-weighted update rtl-sdr-style receivers use for a
// cheap adaptive noise floor without any division.
const noiseAlphaShift = 10

// Threshold tracks the adaptive noise floor (ookLow) and signal peak
// (ookHigh) estimates that the OOK/FSK detector slices the AM stream
// against.
type Threshold struct {
	ookHigh int32
	ookLow  int32

	fixed      bool
	fixedLevel int32
}

// SetFixed overrides adaptive behavior with a fixed level (the
// level_limit run option, when nonzero).
func (t *Threshold) SetFixed(level int32) {
	t.fixed = true
	t.fixedLevel = level
}

// ClearFixed returns the threshold to adaptive tracking.
func (t *Threshold) ClearFixed() {
	t.fixed = false
}

// UpdateLow folds a noise-floor sample into the running ookLow estimate.
// Call while no pulse is in progress.
func (t *Threshold) UpdateLow(x int32) {
	t.ookLow += (x - t.ookLow) >> noiseAlphaShift
}

// UpdateHigh folds a signal-peak sample into the running ookHigh
// estimate. Call for samples above threshold.
func (t *Threshold) UpdateHigh(x int32) {
	t.ookHigh += (x - t.ookHigh) >> noiseAlphaShift
}

// Level returns the current slicing threshold: the fixed override when
// set, otherwise the midpoint of ookHigh and ookLow.
func (t *Threshold) Level() int32 {
	if t.fixed {
		return t.fixedLevel
	}
	return (t.ookHigh + t.ookLow) / 2
}

// High returns the current signal peak estimate.
func (t *Threshold) High() int32 { return t.ookHigh }

// Low returns the current noise floor estimate.
func (t *Threshold) Low() int32 { return t.ookLow }
