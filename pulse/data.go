// Package pulse implements the dual AM/FSK pulse detector: a
// state machine that slices the filtered AM stream against an adaptive
// threshold, tracks OOK vs FSK packet boundaries, and emits a timed
// list of mark/space intervals plus rough RSSI/SNR metadata.
package pulse

// MaxPulses is the fixed cap on pulses recorded per burst.
const MaxPulses = 1024

// Data is a record of one burst (pulse_data). For an OOK burst, Pulse[i]
// is the i-th mark length in samples and Gap[i] the following space
// length. For an FSK burst, the same paired arrays instead hold
// alternating f1/f2 segment durations (see FSK below) — the record
// intentionally reuses one shape for both, rather than introducing a
// parallel segment type.
type Data struct {
	Pulse [MaxPulses]int32
	Gap   [MaxPulses]int32
	Count int

	// OokHigh/OokLow are the signal/noise level estimates (ook_high >=
	// ook_low >= 0) in the same units as the AM buffer.
	OokHigh int32
	OokLow  int32

	// FSK is true when this burst classified as frequency-shift keyed
	// rather than on-off keyed.
	FSK bool

	// FSKF1Est/FSKF2Est are the average low/high frequency segment
	// levels, in FM buffer units. Ordering of F1 vs F2 is unspecified;
	// decoders must treat either as mark. Only meaningful when FSK.
	FSKF1Est int32
	FSKF2Est int32

	// StartAgo/EndAgo are the distance, in samples, from the end of the
	// buffer current at delivery time to the first/last edge of the
	// burst.
	StartAgo int64
	EndAgo   int64

	// SampleRate is the sample rate captured at detection time.
	SampleRate uint
}

// Reset clears the count, level estimates, FSK fields and ago values
// for reuse. Pulse/Gap entries and SampleRate are left as they were;
// only the first Count entries of Pulse/Gap are meaningful.
func (d *Data) Reset() {
	d.Count = 0
	d.OokHigh, d.OokLow = 0, 0
	d.FSK = false
	d.FSKF1Est, d.FSKF2Est = 0, 0
	d.StartAgo, d.EndAgo = 0, 0
}

// Period returns pulse[i] + gap[i], the pulse-to-pulse period.
func (d *Data) Period(i int) int32 {
	return d.Pulse[i] + d.Gap[i]
}

// DeliveryKind discriminates what, if anything, a Detector step
// delivered.
type DeliveryKind int

const (
	// DeliveryNone means no burst completed on this step.
	DeliveryNone DeliveryKind = iota
	// DeliveryOOK means an OOK burst completed; Data.FSK is false.
	DeliveryOOK
	// DeliveryFSK means an FSK burst completed; Data.FSK is true.
	DeliveryFSK
)

// Delivery is the discriminated result of one burst completing.
type Delivery struct {
	Kind DeliveryKind
	Data Data
}
