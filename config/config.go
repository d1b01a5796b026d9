// Package config loads the layer configuration.
//
// Configuration is a YAML file. The layer reads the file named by the
// XR_INPUT_LAYER_CONFIG environment variable and falls back to defaults
// when the variable is unset.
package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/xr-input-layer/binding"
	"github.com/wippyai/xr-input-layer/input"
	"github.com/wippyai/xr-input-layer/input/local"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "XR_INPUT_LAYER_CONFIG"

// Config is the layer configuration.
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Input    InputConfig    `yaml:"input"`
	Bindings BindingsConfig `yaml:"bindings"`
}

// LogConfig configures the zap logger built by Logger.
type LogConfig struct {
	// Level is the console level.
	Level string `yaml:"level"`
	// File, when set, receives a second copy of the log at FileLevel.
	File      string `yaml:"file,omitempty"`
	FileLevel string `yaml:"file_level"`
	// JSON switches the console encoder to JSON.
	JSON bool `yaml:"json,omitempty"`
}

// InputConfig configures the in-process input runtime.
type InputConfig struct {
	Profiles []string `yaml:"profiles"`
}

// BindingsConfig configures binding translation.
type BindingsConfig struct {
	DPad DPadConfig `yaml:"dpad"`
	// Snapshot, when set, is the path a CBOR snapshot of the suggested
	// bindings is written to on session attach.
	Snapshot string `yaml:"snapshot,omitempty"`
}

// DPadConfig holds the dpad parameters used when an application suggests
// dpad paths without a dpad binding record.
type DPadConfig struct {
	ForceThreshold         float32 `yaml:"force_threshold"`
	ForceThresholdReleased float32 `yaml:"force_threshold_released"`
	CenterRegion           float32 `yaml:"center_region"`
	WedgeAngle             float32 `yaml:"wedge_angle"`
	Sticky                 bool    `yaml:"sticky"`
}

// Params converts the configuration to input dpad parameters.
func (d DPadConfig) Params() input.DPadParams {
	return input.DPadParams{
		ForceThreshold:         d.ForceThreshold,
		ForceThresholdReleased: d.ForceThresholdReleased,
		CenterRegion:           d.CenterRegion,
		WedgeAngle:             d.WedgeAngle,
		Sticky:                 d.Sticky,
	}
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:     "debug",
			FileLevel: "info",
		},
		Input: InputConfig{
			Profiles: append([]string(nil), local.DefaultProfiles...),
		},
		Bindings: BindingsConfig{
			DPad: DPadConfig{
				ForceThreshold:         0.5,
				ForceThresholdReleased: 0.4,
				CenterRegion:           0.5,
				WedgeAngle:             math.Pi / 2,
			},
		},
	}
}

// LoadError describes a configuration file that could not be used.
type LoadError struct {
	Cause   error
	File    string
	Message string
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Cause }

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, err
	}
	return cfg, nil
}

// FromEnv loads the file named by EnvVar, or the defaults when it is unset.
func FromEnv() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks levels, profiles and dpad defaults.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return &LoadError{Message: "invalid log.level", Cause: err}
	}
	if _, err := parseLevel(c.Log.FileLevel); err != nil {
		return &LoadError{Message: "invalid log.file_level", Cause: err}
	}
	if len(c.Input.Profiles) == 0 {
		return &LoadError{Message: "input.profiles must not be empty"}
	}
	for _, p := range c.Input.Profiles {
		if !strings.HasPrefix(p, "/interaction_profiles/") {
			return &LoadError{Message: fmt.Sprintf("interaction profile %q outside /interaction_profiles/", p)}
		}
		if _, err := local.New(local.Options{Profiles: []string{p}}).Path(p); err != nil {
			return &LoadError{Message: fmt.Sprintf("invalid interaction profile %q", p), Cause: err}
		}
	}
	if err := binding.ValidateDPad(c.Bindings.DPad.Params()); err != nil {
		return &LoadError{Message: "invalid bindings.dpad", Cause: err}
	}
	return nil
}
