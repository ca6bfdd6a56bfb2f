// Copyright 2025 Stefan Prodan.
// SPDX-License-Identifier: AGPL-3.0

package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"sigs.k8s.io/yaml"
)

// Load reads, validates, and applies default values to missing fields in
// the launcher configuration. If the filename is empty it returns the
// configuration object with default values applied.
func Load(filename string) (*Config, error) {
	if filename == "" {
		var conf Config
		conf.ApplyDefaults()
		return &conf, nil
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	conf, err := parse(b)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration in file '%s': %w", filename, err)
	}
	return conf, nil
}

// parse unmarshals, validates and applies default values to
// missing fields in the configuration.
func parse(b []byte) (*Config, error) {
	var conf Config
	if err := yaml.Unmarshal(b, &conf); err != nil {
		return nil, err
	}
	if err := checkUnknownFields(b, &conf); err != nil {
		return nil, fmt.Errorf("unknown fields: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	conf.ApplyDefaults()
	return &conf, nil
}

// checkUnknownFields checks for any fields in the raw YAML
// that are not defined in the Config struct schema.
func checkUnknownFields(b []byte, conf *Config) error {
	// Unmarshal the raw YAML into a generic map.
	var withoutSchema map[string]any
	if err := yaml.Unmarshal(b, &withoutSchema); err != nil {
		return err
	}

	// Recast the Config struct back to YAML and then into a generic map.
	b, err := yaml.Marshal(conf)
	if err != nil {
		return err
	}
	var withSchema map[string]any
	if err := yaml.Unmarshal(b, &withSchema); err != nil {
		return err
	}

	var unknownFields []string
	for k := range withoutSchema {
		if _, found := withSchema[k]; !found {
			unknownFields = append(unknownFields, k)
		}
	}
	if len(unknownFields) == 0 {
		return nil
	}

	slices.Sort(unknownFields)
	return errors.New(strings.Join(unknownFields, ", "))
}
