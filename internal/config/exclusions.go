package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ExclusionsFile is the YAML document named by EXCLUSIONS_FILE.
//
//	replace_defaults: false
//	descrs:
//	  - Lab Safety Orientation
//	  - Teaching Practicum
type ExclusionsFile struct {
	// ReplaceDefaults drops the built-in list instead of extending it.
	ReplaceDefaults bool     `yaml:"replace_defaults"`
	Descrs          []string `yaml:"descrs"`
}

// LoadExclusions reads and parses an exclusions file.
func LoadExclusions(path string) (*ExclusionsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exclusions file: %w", err)
	}

	var f ExclusionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse exclusions file %s: %w", path, err)
	}
	return &f, nil
}

// mergeFile adds the file's entries to ExcludedDescrs.
func (c *NormalizeConfig) mergeFile(path string) error {
	f, err := LoadExclusions(path)
	if err != nil {
		return err
	}
	c.ReplaceDefaults = c.ReplaceDefaults || f.ReplaceDefaults
	c.ExcludedDescrs = append(c.ExcludedDescrs, f.Descrs...)
	return nil
}

// Resolve returns the Descr values to exclude. Entries configured through
// the environment or the exclusions file extend defaults unless
// ReplaceDefaults is set. Blank and repeated entries are dropped.
func (c NormalizeConfig) Resolve(defaults []string) []string {
	var base []string
	if !c.ReplaceDefaults {
		base = defaults
	}

	seen := make(map[string]bool, len(base)+len(c.ExcludedDescrs))
	out := make([]string, 0, len(base)+len(c.ExcludedDescrs))
	for _, list := range [][]string{base, c.ExcludedDescrs} {
		for _, d := range list {
			d = strings.TrimSpace(d)
			if d == "" || seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
