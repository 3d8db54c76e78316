// Package config loads a run's full tuning surface from a YAML file, the
// same outer/inner envelope shape the teacher used for training configs:
// an OuterConfig carries a Kind discriminator plus a raw Def block, which is
// re-marshaled and decoded into the typed RunConfig once read. This keeps
// one file format extensible to future problem kinds without touching the
// loader itself.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"colonyopt/genetics"
	"colonyopt/simplex"
	"colonyopt/vertex"
)

// OuterConfig is the envelope every config file starts with.
type OuterConfig struct {
	Kind string                 `yaml:"kind" mapstructure:"kind"`
	Def  map[string]interface{} `yaml:"def" mapstructure:"def"`
}

// RunConfig is the full spec §6 configuration surface for a single
// optimization run.
type RunConfig struct {
	Population int       `yaml:"population"`
	Upper      []float64 `yaml:"upper"`
	Lower      []float64 `yaml:"lower"`

	Simplex  simplex.Config  `yaml:"simplex"`
	Genetics genetics.Config `yaml:"genetics"`
}

// DefaultRunConfig returns a RunConfig with every sub-config at its spec §6
// default, dimension-agnostic (Population/Upper/Lower left for the caller to
// fill in).
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Simplex:  simplex.DefaultConfig(),
		Genetics: genetics.DefaultConfig(),
	}
}

// FromYaml reads path as an OuterConfig envelope, requires Kind ==
// "colonyopt", and decodes Def into a RunConfig. viper reads and parses the
// file; yaml.v3 then decodes the envelope from the file's own bytes, since
// viper's own decode step loses custom UnmarshalYAML hooks on the enum
// types and its settings map lower-cases every key, which would never match
// the camelCase yaml tags of the sub-configs.
func FromYaml(path string) (RunConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return RunConfig{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var outer OuterConfig
	if err := yaml.Unmarshal(raw, &outer); err != nil {
		return RunConfig{}, fmt.Errorf("config: parsing envelope: %w", err)
	}
	if outer.Kind != "colonyopt" {
		return RunConfig{}, fmt.Errorf("config: unrecognized kind %q", outer.Kind)
	}

	defBytes, err := yaml.Marshal(outer.Def)
	if err != nil {
		return RunConfig{}, fmt.Errorf("config: re-marshaling def block: %w", err)
	}

	cfg := DefaultRunConfig()
	if err := yaml.Unmarshal(defBytes, &cfg); err != nil {
		return RunConfig{}, fmt.Errorf("config: decoding run config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

func validate(cfg RunConfig) error {
	if cfg.Population < 1 {
		return fmt.Errorf("config: population=%d must be >= 1", cfg.Population)
	}
	if len(cfg.Upper) != len(cfg.Lower) {
		return fmt.Errorf("config: upper/lower dimension mismatch")
	}
	bounds := vertex.Bounds{Upper: cfg.Upper, Lower: cfg.Lower}
	for i := 0; i < bounds.Dim(); i++ {
		if bounds.Upper[i] <= bounds.Lower[i] {
			return fmt.Errorf("config: upper[%d] must exceed lower[%d]", i, i)
		}
	}
	return nil
}
