// Package ismrx implements the receiver DSP core for short-range
// ISM-band telemetry devices: a baseband front-end (AM/FM
// demodulation), a pulse detector, a pulse demodulator bank, and
// protocol decoder dispatch. Acquisition, configuration, and output
// formatting live outside this package; a Session bundles exactly the
// DSP state that must carry across input buffers.
package ismrx
