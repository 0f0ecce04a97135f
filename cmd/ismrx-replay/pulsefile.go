package main

import (
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ismband/ismrx/protocol"
	"github.com/ismband/ismrx/pulse"
	"github.com/ismband/ismrx/pulsefile"
)

// replayPulseFile drives the demodulator bank and decoder dispatch
// directly from a pulse-file listing, bypassing the baseband front-end
// and pulse detector entirely — useful for testing a protocol's timing
// parameters against a hand-crafted or captured interval list without
// needing a raw IQ recording.
func replayPulseFile(opts RunOptions, logger *log.Logger) error {
	f, err := os.Open(opts.Input)
	if err != nil {
		return fmt.Errorf("opening pulse file: %w", err)
	}
	defer f.Close()

	bursts, err := pulsefile.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding pulse file: %w", err)
	}

	reg := protocol.NewRegistry()
	sink := loggingSink{logger: logger}

	for _, b := range bursts {
		data := burstToData(b)
		kind := pulse.DeliveryOOK
		if b.Modulation == pulsefile.FSK {
			kind = pulse.DeliveryFSK
			data.FSK = true
		}
		nan := math.NaN()
		protocol.Dispatch(pulse.Delivery{Kind: kind, Data: data}, reg,
			protocol.SidebandMetadata{SampleRate: b.SampleRate, FreqHz: nan, RSSIdB: nan, SNRdB: nan, NoiseDB: nan},
			sink, logger)
	}
	logger.Info("replay complete", "input", opts.Input, "bursts", len(bursts))
	return nil
}

func burstToData(b pulsefile.Burst) pulse.Data {
	var d pulse.Data
	d.Reset()
	d.SampleRate = b.SampleRate
	n := len(b.MarkUs)
	if n > pulse.MaxPulses {
		n = pulse.MaxPulses
	}
	for i := 0; i < n; i++ {
		d.Pulse[i] = usToSamples(b.MarkUs[i], b.SampleRate)
		d.Gap[i] = usToSamples(b.GapUs[i], b.SampleRate)
	}
	d.Count = n
	return d
}

func usToSamples(us int64, sampleRate uint) int32 {
	if sampleRate == 0 {
		return 0
	}
	return int32(us * int64(sampleRate) / 1_000_000)
}
