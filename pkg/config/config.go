// Package config loads and validates the YAML run configuration consumed by
// the command surface.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Validatable is implemented by configuration types that can check their own
// invariants beyond struct tags.
type Validatable interface {
	Validate() error
}

// DefenseTokens are the recognized defense policy names; a config may join
// several with "+" to compose them.
var DefenseTokens = map[string]bool{
	"rov":              true,
	"peer_rov":         true,
	"aspa":             true,
	"path_end":         true,
	"otc":              true,
	"enforce_first_as": true,
	"peerlock_lite":    true,
}

// Config is one simulation run: topology source, batch shape, attack and
// defense selection.
type Config struct {
	// Topology is the path to a serial-2 AS-relationship file.
	Topology string `yaml:"topology" validate:"required"`
	// TopologyCache, when set, holds the snappy snapshot of the parsed file.
	TopologyCache string `yaml:"topology_cache"`

	Trials           int       `yaml:"trials" validate:"required,min=1"`
	AdoptionPercents []float64 `yaml:"adoption_percents" validate:"required,min=1,dive,min=0,max=100"`

	Attack string `yaml:"attack" validate:"required,oneof=no_attack prefix_hijack subprefix_hijack origin_spoof"`
	// Defense names the adopted policy, or several joined with "+".
	Defense string `yaml:"defense" validate:"required"`

	Seed    int64 `yaml:"seed"`
	Workers int   `yaml:"workers" validate:"min=0"`

	Output   string `yaml:"output"`
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

var validate = validator.New()

// Load reads and validates a YAML run configuration.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	c := Default()
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns a configuration with the defaults applied; callers fill
// in the required fields.
func Default() *Config {
	return &Config{
		Trials:           100,
		AdoptionPercents: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		Attack:           "subprefix_hijack",
		Defense:          "rov",
		LogLevel:         "info",
	}
}

// Validate checks struct tags and the defense token list.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for _, tok := range strings.Split(c.Defense, "+") {
		if !DefenseTokens[tok] {
			return fmt.Errorf("config: unknown defense %q", tok)
		}
	}
	return nil
}
