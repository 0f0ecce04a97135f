// Package protocol holds the registered-protocol list and the
// decoder dispatch loop that walks it against each completed burst.
package protocol

import (
	"errors"
	"fmt"

	"github.com/ismband/ismrx/bitbuf"
	"github.com/ismband/ismrx/demod"
)

// MaxProtocols is the fixed capacity of a Registry (the "protocol
// list is full" fatal-error boundary).
const MaxProtocols = 256

// ErrRegistryFull is returned when Register is called against a
// Registry already holding MaxProtocols entries.
var ErrRegistryFull = errors.New("protocol: registry is full")

// Modulation tags which demodulator a Registration's timing
// parameters feed.
type Modulation int

const (
	ModulationOOK Modulation = iota
	ModulationFSK
	ModulationPCM
	ModulationPPM
	ModulationPWM
	ModulationManchester
	ModulationDMC
	ModulationPIWMRaw
	ModulationPIWMDC
	ModulationOSV1
)

// DecodeFn is the per-protocol decoder callback: given the bit buffer
// the demodulator just appended a completed row to, the index of that
// row, and side-band metadata, it returns the number of valid events
// emitted (0 = no match, negative = protocol-specific error, treated as
// 0 by Dispatch and not logged). The callback reads row via out.ExtractBytes/
// out.Print; it never writes to out.
type DecodeFn func(out *bitbuf.Buffer, row int, meta SidebandMetadata) int

// SidebandMetadata is the optional context passed to a decoder
// callback alongside the bit buffer: sample rate, frequency, and
// signal quality estimates. Fields are NaN when not computed.
type SidebandMetadata struct {
	SampleRate uint
	FreqHz     float64
	RSSIdB     float64
	SNRdB      float64
	NoiseDB    float64
}

// Registration is the entire public surface of a decoder plugin: its
// display name, modulation, timing parameters in microseconds, its
// callback, enable flag, and the field names it emits.
type Registration struct {
	Name string

	Modulation Modulation

	ShortWidthUs int32
	LongWidthUs  int32
	SyncWidthUs  int32
	GapLimitUs   int32
	ResetLimitUs int32
	ToleranceUs  int32

	DecodeFn DecodeFn
	Disabled bool
	Fields   []string

	Invert     bool
	DCFriendly bool
}

// ToParams converts the registration's microsecond timing parameters
// into demod.Params in samples, at sampleRate Hz.
func (r *Registration) ToParams(sampleRate uint) demod.Params {
	return demod.Params{
		ShortLimit: usToSamples(r.ShortWidthUs, sampleRate),
		LongLimit:  usToSamples(r.LongWidthUs, sampleRate),
		SyncLimit:  usToSamples(r.SyncWidthUs, sampleRate),
		ResetLimit: usToSamples(r.ResetLimitUs, sampleRate),
		GapLimit:   usToSamples(r.GapLimitUs, sampleRate),
		Tolerance:  usToSamples(r.ToleranceUs, sampleRate),
		Invert:     r.Invert,
		DCFriendly: r.DCFriendly,
	}
}

func usToSamples(us int32, sampleRate uint) int32 {
	if us <= 0 || sampleRate == 0 {
		return 0
	}
	return int32(int64(us) * int64(sampleRate) / 1_000_000)
}

// Registry is the ordered, fixed-capacity list of registered
// protocols. Registration order is preserved and governs dispatch
// order; protocols may be disabled and re-enabled without losing
// their slot.
type Registry struct {
	entries []*Registration
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make([]*Registration, 0, 64)}
}

// Register appends reg to the registry. Registering past MaxProtocols
// is a fatal condition for the caller (spec: "attempting to register
// when the protocol list is full is a fatal error"), surfaced here as
// ErrRegistryFull rather than a panic so the caller decides how fatal
// to treat it.
func (r *Registry) Register(reg *Registration) error {
	if len(r.entries) >= MaxProtocols {
		return fmt.Errorf("%w: capacity %d", ErrRegistryFull, MaxProtocols)
	}
	r.entries = append(r.entries, reg)
	return nil
}

// Len returns the number of registered protocols, enabled or not.
func (r *Registry) Len() int {
	return len(r.entries)
}

// At returns the registration at index i.
func (r *Registry) At(i int) *Registration {
	return r.entries[i]
}

// SetDisabled toggles a protocol's enable flag at runtime by index.
func (r *Registry) SetDisabled(i int, disabled bool) {
	r.entries[i].Disabled = disabled
}

// MaxResetLimitUs returns the largest ResetLimitUs among enabled
// registrations, or 0 if none are enabled — the detector's reset_limit
// input (spec §4.2.2).
func (r *Registry) MaxResetLimitUs() int32 {
	var max int32
	for _, reg := range r.entries {
		if reg.Disabled {
			continue
		}
		if reg.ResetLimitUs > max {
			max = reg.ResetLimitUs
		}
	}
	return max
}
