package protocol

import (
	"github.com/charmbracelet/log"

	"github.com/ismband/ismrx/bitbuf"
	"github.com/ismband/ismrx/demod"
	"github.com/ismband/ismrx/pulse"
)

// Event is forwarded to an EventSink once a registered protocol's
// decoder callback reports at least one valid match on a burst. The
// structured field bag a concrete sensor decoder would populate is
// out of scope here; Event carries only what the dispatch loop itself
// knows.
type Event struct {
	Protocol string
	Fields   []string
	Count    int
	Meta     SidebandMetadata
}

// EventSink is the write-only destination for decoded events. It is
// intentionally one-directional: decoders and the dispatch loop push
// into it but never read back, so the output subsystem can live on
// the other side of this interface without the core depending on it.
type EventSink interface {
	Emit(Event)
}

func demodFor(m Modulation) demod.Func {
	switch m {
	case ModulationPCM:
		return demod.PCM
	case ModulationPPM:
		return demod.PPM
	case ModulationPWM:
		return demod.PWMRaw
	case ModulationManchester:
		return demod.Manchester
	case ModulationDMC:
		return demod.DMC
	case ModulationPIWMRaw:
		return demod.PIWMRaw
	case ModulationPIWMDC:
		return demod.PIWMDC
	case ModulationOSV1:
		return demod.OSV1
	default:
		return nil
	}
}

// matchesKind reports whether a registration's modulation operates on
// the delivery kind a burst arrived as (OOK vs FSK framing from the
// detector). PCM/PPM/PWM/Manchester/DMC/PIWM/OSV1 all read an OOK-style
// mark/gap burst; only the FSK tag itself consumes an FSK-classified
// one directly (a protocol that wants FSK framing registers with
// ModulationFSK and supplies its own demodulator upstream of here).
func matchesKind(m Modulation, kind pulse.DeliveryKind) bool {
	switch kind {
	case pulse.DeliveryFSK:
		return m == ModulationFSK
	case pulse.DeliveryOOK:
		return m != ModulationFSK
	default:
		return false
	}
}

// Dispatch walks reg in registration order against one completed
// burst: for every enabled protocol whose modulation matches the
// burst's kind, it runs that protocol's demodulator with the
// registration's timing parameters, then invokes the decoder callback
// against each resulting bit buffer row. The positive callback results
// for one protocol are summed, and a positive sum is forwarded to sink
// as one Event for that protocol. logger may be nil; when set, it is
// attached to each protocol's scratch bit buffer so a row overflow
// surfaces as a warning log line instead of passing silently.
func Dispatch(burst pulse.Delivery, reg *Registry, meta SidebandMetadata, sink EventSink, logger *log.Logger) {
	for i := 0; i < reg.Len(); i++ {
		r := reg.At(i)
		if r.Disabled {
			continue
		}
		if !matchesKind(r.Modulation, burst.Kind) {
			continue
		}
		fn := demodFor(r.Modulation)
		if fn == nil {
			continue
		}

		out := bitbuf.New()
		out.SetLogger(logger)
		params := r.ToParams(burst.Data.SampleRate)

		total := 0
		cb := func(row int) int {
			if r.DecodeFn == nil {
				return 0
			}
			n := r.DecodeFn(out, row, meta)
			if n > 0 {
				total += n
			}
			return n
		}

		data := burst.Data
		if _, err := fn(&data, params, out, cb); err != nil {
			continue
		}

		if total > 0 {
			sink.Emit(Event{Protocol: r.Name, Fields: r.Fields, Count: total, Meta: meta})
		}
	}
}
