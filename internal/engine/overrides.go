package engine

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// OverrideSet applies per-service threshold overrides loaded from a YAML rule
// pack, so a slow-emitting batch job and a chatty API can share one analysis.
type OverrideSet struct {
	rules  []Override
	logger *slog.Logger
}

// Override pins custom expectations for services matching an exact name or a
// name prefix. Zero-valued fields leave the analysis default in place.
type Override struct {
	Service         string  `yaml:"service"`
	Prefix          string  `yaml:"prefix"`
	IntervalSeconds float64 `yaml:"interval_seconds"`
	AllowedMisses   *int    `yaml:"allowed_misses"`
}

// overrideFile is the YAML root structure.
type overrideFile struct {
	Overrides []Override `yaml:"overrides"`
}

// LoadOverrides reads the rule pack at path. An empty path or a missing file
// yields a nil set, which applies no overrides.
func LoadOverrides(path string, logger *slog.Logger) (*OverrideSet, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OverrideSet{rules: file.Overrides, logger: logger}, nil
}

// Lookup returns the effective expected interval and allowed misses for a
// service. Later matching rules win over earlier ones.
func (s *OverrideSet) Lookup(service string, interval float64, allowed int) (float64, int) {
	if s == nil {
		return interval, allowed
	}
	for _, rule := range s.rules {
		if rule.Service == "" && rule.Prefix == "" {
			continue
		}
		if rule.Service != "" && !strings.EqualFold(rule.Service, service) {
			continue
		}
		if rule.Prefix != "" && !strings.HasPrefix(service, rule.Prefix) {
			continue
		}
		if rule.IntervalSeconds > 0 {
			interval = rule.IntervalSeconds
		}
		if rule.AllowedMisses != nil && *rule.AllowedMisses >= 0 {
			allowed = *rule.AllowedMisses
		}
	}
	return interval, allowed
}
