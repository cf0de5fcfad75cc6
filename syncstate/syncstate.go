// Package syncstate implements reskit.lock — a state file that tracks
// MD5 checksums of primary-language values per resource family. A
// secondary translation is stale when the primary value changed since
// the checksum was recorded; status reporting uses this to show which
// keys need a translation pass.
//
// The state file is stored in the project root as reskit.lock.
package syncstate

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileName is the default state file name.
const FileName = "reskit.lock"

// Version is the state file format version.
const Version = 1

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// File represents the reskit.lock structure.
type File struct {
	Version  int                          `yaml:"version"`
	Families map[string]map[string]string `yaml:"families"` // family -> key -> md5

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads the state file from the given directory.
// Returns an empty state when the file doesn't exist.
func Load(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)
	f := &File{
		Version:  Version,
		Families: make(map[string]map[string]string),
		path:     path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	f.path = path

	if f.Families == nil {
		f.Families = make(map[string]map[string]string)
	}

	return f, nil
}

// Save writes the state file to disk.
func (f *File) Save() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.path == "" {
		return fmt.Errorf("state file path not set")
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling state file: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", f.path, err)
	}

	return nil
}

// Path returns the state file path.
func (f *File) Path() string {
	return f.path
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// EntryContent builds the content string hashed for a key. The key is
// included so renaming a key flags it as pending again.
func EntryContent(key, value string) string {
	return key + "\x00" + value
}

// IsStale reports whether a key's primary value changed since its
// checksum was recorded. New keys count as stale.
func (f *File) IsStale(family, key, primaryValue string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	keys, ok := f.Families[family]
	if !ok {
		return true
	}
	oldHash, ok := keys[key]
	if !ok {
		return true
	}
	return oldHash != Hash(EntryContent(key, primaryValue))
}

// Record stores the checksum of a key's primary value after the family
// was brought in sync.
func (f *File) Record(family, key, primaryValue string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Families[family] == nil {
		f.Families[family] = make(map[string]string)
	}
	f.Families[family][key] = Hash(EntryContent(key, primaryValue))
}

// RecordBatch stores checksums for multiple keys at once.
// The input is a map of key -> primary value.
func (f *File) RecordBatch(family string, entries map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Families[family] == nil {
		f.Families[family] = make(map[string]string)
	}
	for key, value := range entries {
		f.Families[family][key] = Hash(EntryContent(key, value))
	}
}

// Pending returns the keys whose primary value is new or changed since
// the last recording. The input and output map key -> primary value.
func (f *File) Pending(family string, entries map[string]string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing := f.Families[family]
	pending := make(map[string]string)

	for key, value := range entries {
		hash := Hash(EntryContent(key, value))
		if existing == nil || existing[key] != hash {
			pending[key] = value
		}
	}

	return pending
}

// Prune removes checksums for keys no longer present in the family, so
// deleted keys don't accumulate in the state file.
func (f *File) Prune(family string, currentKeys []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing := f.Families[family]
	if existing == nil {
		return
	}

	valid := make(map[string]bool, len(currentKeys))
	for _, k := range currentKeys {
		valid[k] = true
	}

	for k := range existing {
		if !valid[k] {
			delete(existing, k)
		}
	}
}

// RemoveFamily drops all checksums for a family.
func (f *File) RemoveFamily(family string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Families, family)
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of families and total keys tracked.
func (f *File) Stats() (families, keys int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	families = len(f.Families)
	for _, m := range f.Families {
		keys += len(m)
	}
	return
}

// FamilyNames returns the tracked family names, sorted.
func (f *File) FamilyNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.Families))
	for name := range f.Families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary returns a human-readable summary string.
func (f *File) Summary() string {
	families, keys := f.Stats()
	if families == 0 {
		return "empty"
	}

	var parts []string
	for _, name := range f.FamilyNames() {
		n := len(f.Families[name])
		parts = append(parts, fmt.Sprintf("%s: %d keys", name, n))
	}
	return fmt.Sprintf("%d families, %d keys (%s)", families, keys, strings.Join(parts, ", "))
}
