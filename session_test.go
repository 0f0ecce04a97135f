package ismrx

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ismband/ismrx/protocol"
)

type nullSink struct{}

func (nullSink) Emit(protocol.Event) {}

func TestFeedBufferSilentCU8(t *testing.T) {
	sess := NewSession(Config{Format: SampleCU8, SampleRate: 250000}, protocol.NewRegistry())

	iq := make([]byte, 2000)
	for i := range iq {
		iq[i] = 128
	}

	assert.NoError(t, sess.FeedBuffer(iq, nullSink{}))
	sess.Flush(nullSink{})
}

func TestFeedBufferRejectsBadFormat(t *testing.T) {
	sess := NewSession(Config{Format: SampleFormat(99), SampleRate: 250000}, protocol.NewRegistry())
	err := sess.FeedBuffer(make([]byte, 16), nullSink{})
	assert.ErrorIs(t, err, ErrSampleFormatMismatch)
}

func TestFeedBufferCS16PulseThenSilence(t *testing.T) {
	sess := NewSession(Config{Format: SampleCS16, SampleRate: 250000}, protocol.NewRegistry())

	iq16 := make([]int16, 0, 1000)
	for i := 0; i < 200; i++ {
		iq16 = append(iq16, 20000, 0)
	}
	for i := 0; i < 200; i++ {
		iq16 = append(iq16, 0, 0)
	}
	iq := make([]byte, len(iq16)*2)
	for i, v := range iq16 {
		iq[2*i] = byte(uint16(v))
		iq[2*i+1] = byte(uint16(v) >> 8)
	}

	assert.NoError(t, sess.FeedBuffer(iq, nullSink{}))
	sess.Flush(nullSink{})
}

func int16sToBytesLE(vs []int16) []byte {
	out := make([]byte, len(vs)*2)
	for i, v := range vs {
		out[2*i] = byte(uint16(v))
		out[2*i+1] = byte(uint16(v) >> 8)
	}
	return out
}

func float32sToBytesLE(vs []float32) []byte {
	out := make([]byte, len(vs)*4)
	for i, v := range vs {
		bits := math.Float32bits(v)
		out[4*i] = byte(bits)
		out[4*i+1] = byte(bits >> 8)
		out[4*i+2] = byte(bits >> 16)
		out[4*i+3] = byte(bits >> 24)
	}
	return out
}

func TestFeedBufferCF32ConvertsToCS16OnIngest(t *testing.T) {
	sess := NewSession(Config{Format: SampleCF32, SampleRate: 250000}, protocol.NewRegistry())

	iqf := make([]float32, 0, 800)
	for i := 0; i < 200; i++ {
		iqf = append(iqf, 0.6, 0)
	}
	for i := 0; i < 200; i++ {
		iqf = append(iqf, 0, 0)
	}

	assert.NoError(t, sess.FeedBuffer(float32sToBytesLE(iqf), nullSink{}))
	sess.Flush(nullSink{})
}

func TestFeedBufferCF32ClampsOutOfRange(t *testing.T) {
	sess := NewSession(Config{Format: SampleCF32, SampleRate: 250000}, protocol.NewRegistry())

	iqf := []float32{3.5, -9.2, 0.1, -0.1}
	assert.NoError(t, sess.FeedBuffer(float32sToBytesLE(iqf), nullSink{}))
}

func TestFeedBufferAMOnlyBypassesFrontEnd(t *testing.T) {
	sess := NewSession(Config{Format: SampleAMOnly, SampleRate: 250000}, protocol.NewRegistry())

	mono := make([]int16, 0, 400)
	for i := 0; i < 200; i++ {
		mono = append(mono, 20000)
	}
	for i := 0; i < 200; i++ {
		mono = append(mono, 0)
	}

	assert.NoError(t, sess.FeedBuffer(int16sToBytesLE(mono), nullSink{}))
	sess.Flush(nullSink{})
}

func TestFeedBufferFMOnlyNeverDetectsWithoutAM(t *testing.T) {
	sess := NewSession(Config{Format: SampleFMOnly, SampleRate: 250000}, protocol.NewRegistry())

	mono := make([]int16, 400)
	for i := range mono {
		if (i/50)%2 == 0 {
			mono[i] = 10000
		} else {
			mono[i] = -10000
		}
	}

	assert.NoError(t, sess.FeedBuffer(int16sToBytesLE(mono), nullSink{}))
	// No AM stream accompanies FM-only input, so the OOK threshold
	// never crosses and the final Flush has nothing open to deliver.
	sess.Flush(nullSink{})
}
