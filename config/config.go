// Package config — .reskit.yaml configuration file support.
//
// When a .reskit.yaml file exists in the project root, reskit uses it to
// override the built-in conventions: the resource file extension, the
// fallback language pair, display names, and the extra culture tags the
// file-name heuristic accepts literally. Without the file, the defaults
// apply unchanged.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .reskit.yaml structure.
type File struct {
	// ResourceExt is the resource file extension (default ".resx").
	ResourceExt string `yaml:"resource_ext,omitempty"`
	// Primary and Secondary are the fallback language pair assumed for a
	// family with no files yet (defaults "en" / "de"). They must differ.
	Primary   string `yaml:"primary,omitempty"`
	Secondary string `yaml:"secondary,omitempty"`
	// Languages adds or overrides language display names, e.g. de: Deutsch.
	Languages map[string]string `yaml:"languages,omitempty"`
	// Cultures replaces the literal culture tags accepted verbatim by the
	// file-name heuristic (default zh-Hans, zh-Hant).
	Cultures []string `yaml:"cultures,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FileName is the default config file name.
const FileName = ".reskit.yaml"

// Load reads and validates .reskit.yaml from the given directory.
// Returns nil if no .reskit.yaml exists.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if f.ResourceExt != "" && f.ResourceExt[0] != '.' {
		f.ResourceExt = "." + f.ResourceExt
	}
	if f.Primary != "" && f.Primary == f.Secondary {
		return nil, fmt.Errorf("%s: primary and secondary languages must differ (both %q)", path, f.Primary)
	}
	for code := range f.Languages {
		if code == "" {
			return nil, fmt.Errorf("%s: empty language code in languages map", path)
		}
	}
	for _, tag := range f.Cultures {
		if tag == "" {
			return nil, fmt.Errorf("%s: empty culture tag in cultures list", path)
		}
	}

	return &f, nil
}
