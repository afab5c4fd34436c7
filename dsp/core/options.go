package core

import (
	"runtime"

	"github.com/go-logr/logr"
)

// DefaultFrameRate is the imaging frame rate assumed when none is given.
const DefaultFrameRate = 30

// ProcessorConfig defines processing settings shared by every transformer.
type ProcessorConfig struct {
	// FrameRate is the trace sampling rate in frames per second.
	FrameRate float64
	// Workers bounds how many columns are processed concurrently.
	Workers int
	// Logger receives progress messages. The zero value discards them.
	Logger logr.Logger
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns sequential processing at 30 fps without
// logging.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		FrameRate: DefaultFrameRate,
		Workers:   1,
		Logger:    logr.Discard(),
	}
}

// WithFrameRate sets the trace frame rate.
func WithFrameRate(frameRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if frameRate > 0 {
			cfg.FrameRate = frameRate
		}
	}
}

// WithWorkers sets the number of columns processed concurrently. Values
// below 1 select runtime.GOMAXPROCS(0).
func WithWorkers(workers int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if workers < 1 {
			workers = runtime.GOMAXPROCS(0)
		}
		cfg.Workers = workers
	}
}

// WithLogger sets the logger. A zero logr.Logger discards all messages.
func WithLogger(logger logr.Logger) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		cfg.Logger = logger
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
