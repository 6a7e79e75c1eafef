// Package config decodes the YAML analysis file that drives one run:
// the codebase's root/exclude description plus the set of platforms and
// their compile databases, using gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// CodebaseSpec is the "codebase:" section of an analysis file.
type CodebaseSpec struct {
	Exclude []string `yaml:"exclude"`
}

// PlatformSpec is one entry of the "platform:" map: the path to that
// platform's compile_commands.json, relative to the analysis file's
// directory unless absolute.
type PlatformSpec struct {
	Commands string `yaml:"commands"`
}

// Analysis is the fully-decoded analysis file.
type Analysis struct {
	Codebase CodebaseSpec `yaml:"codebase"`
	Platform map[string]PlatformSpec `yaml:"platform"`
}

// Load reads and decodes the analysis file at path.
func Load(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading analysis file %s: %w", path, err)
	}
	var a Analysis
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing analysis file %s: %w", path, err)
	}
	if len(a.Platform) == 0 {
		return nil, fmt.Errorf("analysis file %s declares no platforms", path)
	}
	for name, spec := range a.Platform {
		if spec.Commands == "" {
			return nil, fmt.Errorf("platform %q is missing 'commands'", name)
		}
	}
	return &a, nil
}

// SelectedPlatforms returns the platform names to analyze: names, if
// non-empty (validated against a.Platform), else every platform in a,
// per codebasin/tree.py's "-p" filtering behaviour.
func (a *Analysis) SelectedPlatforms(names []string) ([]string, error) {
	if len(names) == 0 {
		all := make([]string, 0, len(a.Platform))
		for name := range a.Platform {
			all = append(all, name)
		}
		sort.Strings(all)
		return all, nil
	}
	for _, name := range names {
		if _, ok := a.Platform[name]; !ok {
			return nil, fmt.Errorf("platform %q requested on the command line does not exist in the configuration file", name)
		}
	}
	return names, nil
}
