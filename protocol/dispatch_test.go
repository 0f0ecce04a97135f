package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ismband/ismrx/bitbuf"
	"github.com/ismband/ismrx/pulse"
)

type recordingSink struct {
	events []Event
}

func (r *recordingSink) Emit(ev Event) { r.events = append(r.events, ev) }

func burstOOK(pairs [][2]int32, rate uint) pulse.Delivery {
	var d pulse.Data
	d.Reset()
	for i, p := range pairs {
		d.Pulse[i] = p[0]
		d.Gap[i] = p[1]
	}
	d.Count = len(pairs)
	d.SampleRate = rate
	return pulse.Delivery{Kind: pulse.DeliveryOOK, Data: d}
}

func TestDispatchInvokesMatchingProtocolOnly(t *testing.T) {
	reg := NewRegistry()
	calls := 0
	ppmCalls := 0
	var seenBits string

	assert.NoError(t, reg.Register(&Registration{
		Name:         "pcm-device",
		Modulation:   ModulationPCM,
		ShortWidthUs: 400,
		DecodeFn: func(out *bitbuf.Buffer, row int, meta SidebandMetadata) int {
			calls++
			seenBits = out.Print(row, "bin")
			return 1
		},
	}))
	assert.NoError(t, reg.Register(&Registration{
		Name:         "ppm-device",
		Modulation:   ModulationPPM,
		ShortWidthUs: 400,
		DecodeFn: func(out *bitbuf.Buffer, row int, meta SidebandMetadata) int {
			ppmCalls++
			return 0
		},
	}))

	burst := burstOOK([][2]int32{{100, 100}, {100, 100}}, 1_000_000)
	sink := &recordingSink{}
	Dispatch(burst, reg, SidebandMetadata{}, sink, nil)

	assert.Equal(t, 1, calls) // one callback invocation per completed row
	assert.Equal(t, 1, ppmCalls)
	assert.Len(t, sink.events, 1)
	assert.Equal(t, "pcm-device", sink.events[0].Protocol)
	assert.Equal(t, "1010", seenBits) // decoder saw the demodulated row, not just a bookkeeping call
}

func TestDispatchSkipsDisabled(t *testing.T) {
	reg := NewRegistry()
	called := false
	assert.NoError(t, reg.Register(&Registration{
		Name:         "disabled-device",
		Modulation:   ModulationPCM,
		ShortWidthUs: 400,
		Disabled:     true,
		DecodeFn:     func(out *bitbuf.Buffer, row int, meta SidebandMetadata) int { called = true; return 1 },
	}))

	burst := burstOOK([][2]int32{{100, 100}}, 1_000_000)
	sink := &recordingSink{}
	Dispatch(burst, reg, SidebandMetadata{}, sink, nil)

	assert.False(t, called)
	assert.Empty(t, sink.events)
}

func TestRegistryFullIsAnError(t *testing.T) {
	reg := NewRegistry()
	for i := 0; i < MaxProtocols; i++ {
		assert.NoError(t, reg.Register(&Registration{Name: "x"}))
	}
	err := reg.Register(&Registration{Name: "overflow"})
	assert.ErrorIs(t, err, ErrRegistryFull)
}

func TestMaxResetLimitUsIgnoresDisabled(t *testing.T) {
	reg := NewRegistry()
	assert.NoError(t, reg.Register(&Registration{Name: "a", ResetLimitUs: 1000}))
	assert.NoError(t, reg.Register(&Registration{Name: "b", ResetLimitUs: 5000, Disabled: true}))
	assert.NoError(t, reg.Register(&Registration{Name: "c", ResetLimitUs: 2000}))

	assert.Equal(t, int32(2000), reg.MaxResetLimitUs())
}

func TestToParamsConvertsMicroseconds(t *testing.T) {
	r := &Registration{ShortWidthUs: 500, LongWidthUs: 1500, SyncWidthUs: 4000}
	p := r.ToParams(1_000_000)
	assert.Equal(t, int32(500), p.ShortLimit)
	assert.Equal(t, int32(1500), p.LongLimit)
	assert.Equal(t, int32(4000), p.SyncLimit)
}
