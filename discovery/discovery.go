// Package discovery enumerates the .resx files that belong to one logical
// resource family and derives culture tags from their file names.
//
// A family is identified by a base name: Strings.resx, Strings.de.resx and
// Strings.fr-FR.resx all belong to the family "Strings". The culture-less
// file is the family's default file. Base-name comparison is always
// case-insensitive.
package discovery

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/minios-linux/reskit/resx"
)

// DefaultCulture is the sentinel culture of a file without a culture suffix.
const DefaultCulture = "default"

// DefaultExtension is the resource file extension scanned by default.
const DefaultExtension = ".resx"

// defaultCultureLiterals is the literal allow-list consulted when a name
// suffix matches neither the two-letter nor the xx-YY shape. Script-tagged
// Chinese is the common case that slips through the length checks.
var defaultCultureLiterals = []string{"zh-Hans", "zh-Hant"}

// designerSuffix is the conventional name suffix of the generated accessor
// source paired with a resource file (Strings.resx → Strings.Designer.cs).
const designerSuffix = ".Designer.cs"

// ---------------------------------------------------------------------------
// Descriptor
// ---------------------------------------------------------------------------

// Descriptor describes one physical resource file.
type Descriptor struct {
	// Path is the absolute file location.
	Path string
	// BaseName is the family name with any culture suffix stripped.
	BaseName string
	// Culture is the culture tag, or DefaultCulture when none was present.
	Culture string
	// IsDefault is true iff no valid culture suffix was present.
	IsDefault bool
}

// ---------------------------------------------------------------------------
// Finder
// ---------------------------------------------------------------------------

// Options configures a Finder. The zero value selects the defaults.
type Options struct {
	// Extension is the resource file extension (default ".resx").
	Extension string
	// CultureLiterals replaces the literal culture allow-list when non-nil.
	CultureLiterals []string
}

// Finder scans a project tree for resource files. It only reads; it never
// holds file handles between calls.
type Finder struct {
	root     string
	ext      string
	literals map[string]bool
}

// NewFinder returns a Finder rooted at the given project directory.
// A nil opts selects the defaults.
func NewFinder(root string, opts *Options) *Finder {
	f := &Finder{root: root, ext: DefaultExtension}
	literals := defaultCultureLiterals
	if opts != nil {
		if opts.Extension != "" {
			f.ext = opts.Extension
		}
		if opts.CultureLiterals != nil {
			literals = opts.CultureLiterals
		}
	}
	f.literals = make(map[string]bool, len(literals))
	for _, l := range literals {
		f.literals[l] = true
	}
	return f
}

// IsValidCulture reports whether tag passes the culture heuristic: exactly
// two ASCII letters, five characters with a hyphen at position 2, or a
// member of the literal allow-list.
//
// The rule is deliberately narrow and misclassifies some real locale tags
// (and a base name that happens to end in a two-letter word). Round-trip
// behavior elsewhere depends on this exact rule, so it stays as is.
func (f *Finder) IsValidCulture(tag string) bool {
	if len(tag) == 2 && isAlpha(tag) {
		return true
	}
	if len(tag) == 5 && tag[2] == '-' {
		return true
	}
	return f.literals[tag]
}

func isAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// describe derives a Descriptor from a resource file path.
func (f *Finder) describe(path string) Descriptor {
	name := filepath.Base(path)
	stem := name[:len(name)-len(f.ext)]

	if idx := strings.LastIndex(stem, "."); idx >= 0 {
		if tag := stem[idx+1:]; f.IsValidCulture(tag) {
			return Descriptor{Path: path, BaseName: stem[:idx], Culture: tag}
		}
	}
	return Descriptor{Path: path, BaseName: stem, Culture: DefaultCulture, IsDefault: true}
}

// walkResourceFiles calls fn for every resource file under the root.
// Hidden directories are skipped. Walk errors end the scan silently: an
// unreadable subtree means "no files there", not a failure.
func (f *Finder) walkResourceFiles(fn func(path string)) {
	filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			// The root itself is never skipped, even when its own name is
			// dotted (e.g. scanning inside ~/.config).
			if path != f.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), f.ext) {
			fn(path)
		}
		return nil
	})
}

// FindFiles returns the descriptors of every resource file whose derived
// base name case-insensitively equals baseName, sorted default-first and
// then alphabetically by culture.
func (f *Finder) FindFiles(baseName string) []Descriptor {
	var files []Descriptor
	f.walkResourceFiles(func(path string) {
		desc := f.describe(path)
		if strings.EqualFold(desc.BaseName, baseName) {
			files = append(files, desc)
		}
	})

	sort.Slice(files, func(i, j int) bool {
		if files[i].IsDefault != files[j].IsDefault {
			return files[i].IsDefault
		}
		return files[i].Culture < files[j].Culture
	})
	return files
}

// FindDefaultFile returns the family's culture-less file, or the first
// file found when no culture-less one exists. Returns nil for an empty
// family.
func (f *Finder) FindDefaultFile(baseName string) *Descriptor {
	files := f.FindFiles(baseName)
	for i := range files {
		if files[i].IsDefault {
			return &files[i]
		}
	}
	if len(files) > 0 {
		return &files[0]
	}
	return nil
}

// KeyExists reports whether any file of the family contains key
// (case-insensitive). Unparseable files contribute no keys.
func (f *Finder) KeyExists(baseName, key string) bool {
	for _, desc := range f.FindFiles(baseName) {
		doc, err := resx.ParseFile(desc.Path)
		if err != nil {
			continue
		}
		if doc.Has(key) {
			return true
		}
	}
	return false
}

// ExistingKeys returns the case-insensitive union of keys across all files
// of the family, keyed by the lower-cased key name.
func (f *Finder) ExistingKeys(baseName string) map[string]bool {
	keys := make(map[string]bool)
	for _, desc := range f.FindFiles(baseName) {
		doc, err := resx.ParseFile(desc.Path)
		if err != nil {
			continue
		}
		for _, k := range doc.Keys() {
			keys[strings.ToLower(k)] = true
		}
	}
	return keys
}

// FindFilesByGeneratedClassName locates the family whose generated
// accessor source declares className and returns its files. When no
// companion declaration is found, className itself is tried as the base
// name.
func (f *Finder) FindFilesByGeneratedClassName(className string) []Descriptor {
	classRe := regexp.MustCompile(`\bclass\s+` + regexp.QuoteMeta(className) + `\b`)

	var base string
	filepath.WalkDir(f.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || base != "" {
			return nil
		}
		if d.IsDir() {
			// The root itself is never skipped, even when its own name is
			// dotted (e.g. scanning inside ~/.config).
			if path != f.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), designerSuffix) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if classRe.Match(data) {
			base = strings.TrimSuffix(d.Name(), designerSuffix)
		}
		return nil
	})

	if base == "" {
		base = className
	}
	return f.FindFiles(base)
}

// Families returns every distinct base name under the root, sorted. Base
// names differing only in case are reported once, first spelling wins.
func (f *Finder) Families() []string {
	seen := make(map[string]string)
	f.walkResourceFiles(func(path string) {
		desc := f.describe(path)
		lower := strings.ToLower(desc.BaseName)
		if _, ok := seen[lower]; !ok {
			seen[lower] = desc.BaseName
		}
	})

	families := make([]string, 0, len(seen))
	for _, name := range seen {
		families = append(families, name)
	}
	sort.Strings(families)
	return families
}

// DefaultPath returns the path where a family's culture-less file would
// live when the family has no files yet.
func (f *Finder) DefaultPath(baseName string) string {
	return filepath.Join(f.root, baseName+f.ext)
}
