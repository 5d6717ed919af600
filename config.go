package deepmatch

import (
	"io"

	"gopkg.in/yaml.v3"
)

// ConfigFile mirrors the Options record for declaration in fixture files,
// so test harnesses can keep comparison rules next to their test data.
// YAML is a superset of JSON here, both decode
type ConfigFile struct {
	IgnoredKeys      []string                 `yaml:"ignoredKeys"`
	EquivalentValues map[string][]interface{} `yaml:"equivalentValues"`
	PatternChecks    map[string]string        `yaml:"patternChecks"`
	StrictTypes      *bool                    `yaml:"strictTypes"`
	IgnoreExtraKeys  bool                     `yaml:"ignoreExtraKeys"`
	MatchKeysByName  bool                     `yaml:"matchKeysByName"`
	ArrayStrategies  map[string]ArrayStrategy `yaml:"arrayComparisonStrategies"`
	MaxDepth         int                      `yaml:"maxDepth"`
}

// ParseConfig decodes a configuration document into options for New.
// Absent fields keep their documented defaults. Pattern syntax isn't
// checked here, New compiles patterns & reports the ConfigurationError
func ParseConfig(data []byte) ([]Option, error) {
	cfg := &ConfigFile{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigurationError{Field: "config", Err: err}
	}
	return cfg.Options(), nil
}

// ReadConfig decodes a configuration document from r
func ReadConfig(r io.Reader) ([]Option, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// Options converts a decoded configuration into options for New
func (cfg *ConfigFile) Options() []Option {
	var opts []Option
	if len(cfg.IgnoredKeys) > 0 {
		opts = append(opts, OptionIgnoreKeys(cfg.IgnoredKeys...))
	}
	for name, values := range cfg.EquivalentValues {
		opts = append(opts, OptionEquivalentValues(name, values...))
	}
	if len(cfg.PatternChecks) > 0 {
		opts = append(opts, OptionPatternChecks(cfg.PatternChecks))
	}
	if cfg.StrictTypes != nil {
		opts = append(opts, OptionStrictTypes(*cfg.StrictTypes))
	}
	if cfg.IgnoreExtraKeys {
		opts = append(opts, OptionIgnoreExtraKeys(true))
	}
	if cfg.MatchKeysByName {
		opts = append(opts, OptionMatchKeysByName(true))
	}
	for path, strategy := range cfg.ArrayStrategies {
		opts = append(opts, OptionArrayStrategy(path, strategy))
	}
	if cfg.MaxDepth > 0 {
		opts = append(opts, OptionMaxDepth(cfg.MaxDepth))
	}
	return opts
}
