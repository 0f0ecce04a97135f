package ismrx

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/ismband/ismrx/amfront"
	"github.com/ismband/ismrx/fmfront"
	"github.com/ismband/ismrx/protocol"
	"github.com/ismband/ismrx/pulse"
)

// Config controls a Session's front-end and detector behavior.
type Config struct {
	Format     SampleFormat
	SampleRate uint

	// FMCutoff configures the FM discriminator's low-pass filter; the
	// zero value disables FM front-end processing entirely (FSK
	// tracking then never fires and every burst is OOK).
	FMCutoff fmfront.Config

	// LevelLimit, when nonzero, overrides the detector's adaptive
	// threshold with a fixed AM level.
	LevelLimit int32
}

// Session bundles every piece of DSP state that must carry across
// input buffers: the front-end filter states, the FM discriminator
// state, the pulse detector, and the protocol registry. It is not
// safe for concurrent use; one Session per tuner.
type Session struct {
	cfg Config

	amState amfront.LowpassState
	fmState *fmfront.State

	detector *pulse.Detector
	registry *protocol.Registry

	amBuf []uint16
	fmBuf []int16

	stopRequested bool

	logger *log.Logger
}

// NewSession allocates a Session. reg may be nil, in which case
// SetRegistry must be called before the first Feed.
func NewSession(cfg Config, reg *protocol.Registry) *Session {
	s := &Session{
		cfg:      cfg,
		fmState:  fmfront.NewState(cfg.FMCutoff),
		detector: pulse.NewDetector(pulse.DefaultResetLimit),
		registry: reg,
	}
	if cfg.LevelLimit != 0 {
		s.detector.SetFixedLevel(cfg.LevelLimit)
	}
	if reg != nil {
		s.applyResetLimit()
	}
	return s
}

// SetRegistry installs (or replaces) the protocol registry and
// recomputes the detector's reset limit from it.
func (s *Session) SetRegistry(reg *protocol.Registry) {
	s.registry = reg
	s.applyResetLimit()
}

// SetLogger attaches a structured logger the detector and each
// dispatch's scratch bit buffer use to warn on the pulse-cap and
// bit-buffer-row overflow conditions. A nil logger (the default)
// silently drops those warnings.
func (s *Session) SetLogger(l *log.Logger) {
	s.logger = l
	s.detector.SetLogger(l)
}

func (s *Session) applyResetLimit() {
	if s.registry == nil || s.cfg.SampleRate == 0 {
		return
	}
	us := s.registry.MaxResetLimitUs()
	if us <= 0 {
		return
	}
	samples := int32(int64(us) * int64(s.cfg.SampleRate) / 1_000_000)
	s.detector.SetResetLimit(samples)
}

// RequestStop sets the cooperative stop flag: the current burst (if
// any) still finishes so no partial state is leaked, but no further
// buffers should be fed after FeedBuffer next returns.
func (s *Session) RequestStop() { s.stopRequested = true }

// Stopped reports whether RequestStop has been called.
func (s *Session) Stopped() bool { return s.stopRequested }

func (s *Session) ensureBufs(n int) {
	if cap(s.amBuf) < n {
		s.amBuf = make([]uint16, n)
	}
	s.amBuf = s.amBuf[:n]
	if cap(s.fmBuf) < n {
		s.fmBuf = make([]int16, n)
	}
	s.fmBuf = s.fmBuf[:n]
}

// FeedBuffer runs one input buffer through the full pipeline: front-end
// demodulation, pulse detection, demodulator dispatch, and decoder
// callbacks, forwarding any resulting events to sink. iq is raw wire
// bytes in the Session's configured SampleFormat (CU8, CS16, and CF32
// run the full magnitude/filter and discriminator front end; AMOnly and
// FMOnly are preformatted mono S16 streams that bypass one or both
// stages — see the case-by-case comments below).
//
// One buffer is processed to completion before this returns; there are
// no suspension points inside the core.
func (s *Session) FeedBuffer(iq []byte, sink protocol.EventSink) error {
	switch s.cfg.Format {
	case SampleCU8:
		n := len(iq) / 2
		s.ensureBufs(n)
		am, _ := amfront.MagnitudeLUT(iq)
		y := make([]int16, len(am))
		amfront.Lowpass(&s.amState, am, y)
		for i, v := range y {
			s.amBuf[i] = uint16(v)
		}
		s.fmState.DemodCU8(iq, s.cfg.SampleRate, s.fmBuf)

	case SampleCS16:
		iq16 := bytesToInt16LE(iq)
		s.feedCS16(iq16)

	case SampleCF32:
		// Read-file only: converted to CS16 on ingest, then handled
		// identically to a native CS16 buffer.
		iq16, err := cf32ToCS16(iq)
		if err != nil {
			return err
		}
		s.feedCS16(iq16)

	case SampleAMOnly:
		// Preformatted mono S16 already at the AM buffer's scale:
		// bypasses the front-end's magnitude/filter stage entirely.
		// No FM stream accompanies it, so FSK tracking never fires and
		// every burst this buffer produces is classified OOK.
		mono := bytesToInt16LE(iq)
		s.ensureBufs(len(mono))
		for i, v := range mono {
			s.amBuf[i] = uint16(v)
		}
		for i := range s.fmBuf {
			s.fmBuf[i] = 0
		}

	case SampleFMOnly:
		// Preformatted mono S16 already at the FM buffer's scale:
		// bypasses the discriminator entirely. No AM stream accompanies
		// it, so the OOK threshold never crosses and no burst is ever
		// detected from this buffer alone; it exists to drive FSK
		// tracking in front ends that source AM and FM separately.
		mono := bytesToInt16LE(iq)
		s.ensureBufs(len(mono))
		for i := range s.amBuf {
			s.amBuf[i] = 0
		}
		copy(s.fmBuf, mono)

	default:
		return ErrSampleFormatMismatch
	}

	s.detector.Feed(s.amBuf, s.fmBuf, s.cfg.SampleRate)
	for {
		delivery, ok := s.detector.Next()
		if !ok {
			break
		}
		if s.registry != nil && sink != nil {
			s.dispatch(delivery, sink)
		}
		if s.stopRequested {
			break
		}
	}
	return nil
}

func (s *Session) feedCS16(iq16 []int16) {
	s.ensureBufs(len(iq16) / 2)
	am, _ := amfront.MagnitudeEstimateCS16(iq16)
	y := make([]int16, len(am))
	amfront.Lowpass(&s.amState, am, y)
	for i, v := range y {
		s.amBuf[i] = uint16(v)
	}
	s.fmState.DemodCS16(iq16, s.cfg.SampleRate, s.fmBuf)
}

func (s *Session) dispatch(delivery pulse.Delivery, sink protocol.EventSink) {
	protocol.Dispatch(delivery, s.registry, protocol.SidebandMetadata{
		SampleRate: s.cfg.SampleRate,
		FreqHz:     math.NaN(),
		RSSIdB:     math.NaN(),
		SNRdB:      math.NaN(),
		NoiseDB:    math.NaN(),
	}, sink, s.logger)
}

// Flush forces delivery of whatever burst is in progress at end of
// stream (see pulse.Detector.Flush) and dispatches it exactly like a
// burst delivered from FeedBuffer.
func (s *Session) Flush(sink protocol.EventSink) {
	delivery, ok := s.detector.Flush()
	if !ok {
		return
	}
	if s.registry != nil && sink != nil {
		s.dispatch(delivery, sink)
	}
}

func bytesToInt16LE(b []byte) []int16 {
	n := len(b) / 2
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8)
	}
	return out
}

// cf32ToCS16 converts interleaved little-endian float32 IQ samples in
// [-1,1] to the same fixed-point CS16 representation a native CS16
// capture would carry, clamping out-of-range input rather than
// wrapping it.
func cf32ToCS16(b []byte) ([]int16, error) {
	if len(b)%4 != 0 {
		return nil, ErrBufferTooShort
	}
	n := len(b) / 4
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		bits := uint32(b[4*i]) | uint32(b[4*i+1])<<8 | uint32(b[4*i+2])<<16 | uint32(b[4*i+3])<<24
		f := math.Float32frombits(bits)
		switch {
		case f > 1:
			f = 1
		case f < -1:
			f = -1
		}
		out[i] = int16(f * 32767)
	}
	return out, nil
}
