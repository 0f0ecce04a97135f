// ismrx-replay is a small demonstration driver: it loads a YAML run
// configuration, replays either a raw CU8/CS16 capture or a pulse-file
// listing through an ismrx.Session, and prints emitted events. Tuner
// acquisition, dump writers, and unit conversion are not its concern;
// it exists to exercise the DSP core end to end from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ismband/ismrx"
	"github.com/ismband/ismrx/fmfront"
	"github.com/ismband/ismrx/protocol"
	"hz.tools/rf"
)

// RunOptions is the YAML-loadable configuration this driver accepts.
// It mirrors the recognized run-time options: level_limit overrides
// the adaptive threshold, and format/sample-rate/input select the
// source.
type RunOptions struct {
	Input      string  `yaml:"input"`
	PulseFile  bool    `yaml:"pulse_file"`
	Format     string  `yaml:"format"`
	SampleRate uint    `yaml:"sample_rate"`
	LevelLimit int32   `yaml:"level_limit"`
	FMCutoffHz float64 `yaml:"fm_cutoff_hz"`
}

func main() {
	var (
		configFile = pflag.StringP("config-file", "c", "", "YAML run configuration file.")
		input      = pflag.StringP("input", "i", "", "Input capture or pulse-file path (overrides config).")
		verbose    = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
		help       = pflag.BoolP("help", "h", false, "Display help text.")
	)
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	opts, err := loadOptions(*configFile)
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}
	if *input != "" {
		opts.Input = *input
	}
	if opts.Input == "" {
		logger.Fatal("no input specified; use --input or config input:")
	}

	if opts.PulseFile {
		if err := replayPulseFile(opts, logger); err != nil {
			logger.Fatal("replay failed", "err", err)
		}
		return
	}
	if err := replayCapture(opts, logger); err != nil {
		logger.Fatal("replay failed", "err", err)
	}
}

func loadOptions(path string) (RunOptions, error) {
	var opts RunOptions
	if path == "" {
		return opts, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return opts, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&opts); err != nil {
		return opts, fmt.Errorf("decoding config: %w", err)
	}
	return opts, nil
}

func replayCapture(opts RunOptions, logger *log.Logger) error {
	f, err := os.Open(opts.Input)
	if err != nil {
		return fmt.Errorf("opening capture: %w", err)
	}
	defer f.Close()

	format := ismrx.SampleCU8
	switch opts.Format {
	case "cs16":
		format = ismrx.SampleCS16
	case "cf32":
		format = ismrx.SampleCF32
	case "am-only":
		format = ismrx.SampleAMOnly
	case "fm-only":
		format = ismrx.SampleFMOnly
	}

	cfg := ismrx.Config{
		Format:     format,
		SampleRate: opts.SampleRate,
		FMCutoff:   fmfront.Config{Cutoff: rf.Hz(opts.FMCutoffHz)},
		LevelLimit: opts.LevelLimit,
	}
	sess := ismrx.NewSession(cfg, protocol.NewRegistry())
	sess.SetLogger(logger)
	sink := loggingSink{logger: logger}

	bps := format.BytesPerSample()
	buf := make([]byte, 64*1024)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if rem := n % bps; rem != 0 {
				n -= rem
			}
			if perr := sess.FeedBuffer(buf[:n], sink); perr != nil {
				return perr
			}
		}
		if err != nil {
			break
		}
	}
	sess.Flush(sink)
	logger.Info("replay complete", "input", opts.Input)
	return nil
}

type loggingSink struct {
	logger *log.Logger
}

func (s loggingSink) Emit(ev protocol.Event) {
	s.logger.Info("event", "protocol", ev.Protocol, "count", ev.Count, "fields", ev.Fields)
}
