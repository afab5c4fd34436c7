package chain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/cwbudde/algo-calcium/calcium"
)

// Config is the YAML form of a chain:
//
//	workers: 4
//	frame_rate: 30
//	steps:
//	  - type: median-detrend
//	    params: {window: 101}
//	  - type: deconvolve
//	    params:
//	      output: spikes
//	      extra: {smin_frac: 0.4}
type Config struct {
	// Workers bounds concurrent columns per step; 0 keeps the default.
	Workers int `yaml:"workers,omitempty" validate:"gte=0"`
	// FrameRate in Hz converts window_seconds parameters; 0 keeps the default.
	FrameRate float64      `yaml:"frame_rate,omitempty" validate:"gte=0"`
	Steps     []StepConfig `yaml:"steps" validate:"required,min=1,dive"`
}

// StepConfig is one step of a Config.
type StepConfig struct {
	// Name identifies the step in results and logs; it defaults to Type.
	Name     string         `yaml:"name,omitempty"`
	Type     string         `yaml:"type" validate:"required"`
	Bypassed bool           `yaml:"bypassed,omitempty"`
	Params   map[string]any `yaml:"params,omitempty"`
}

// ParseConfig decodes and validates a YAML chain definition. Unknown
// top-level or step fields are rejected.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidChain, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads and parses a YAML chain definition from path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("chain: read config: %w", err)
	}
	return ParseConfig(data)
}

// Marshal encodes cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks field constraints and step name uniqueness.
func (c *Config) Validate() error {
	if err := calcium.ValidateConfig(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChain, err)
	}

	seen := make(map[string]struct{}, len(c.Steps))
	for i, s := range c.Steps {
		name := s.stepName()
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: step %d: duplicate name %q", ErrInvalidChain, i, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func (s StepConfig) stepName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Type
}
