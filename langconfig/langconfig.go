// Package langconfig decides which languages a resource family carries:
// which file is the primary one, which is the secondary one, and how the
// two languages are displayed to the user.
//
// Resolution is a pure function of the discovered file set. It never
// fails: an empty family still resolves to a default English/German pair
// so that downstream code never sees an unresolved configuration.
package langconfig

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/minios-linux/reskit/discovery"
)

// defaultNames is the fixed language-code → display-name table. Codes
// outside this table fall back to a locale-name lookup in DisplayName.
var defaultNames = map[string]string{
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"it": "Italian",
}

// ---------------------------------------------------------------------------
// Config
// ---------------------------------------------------------------------------

// Config is the resolved view of a family's languages.
type Config struct {
	PrimaryLanguage      string
	PrimaryDisplayName   string
	SecondaryLanguage    string
	SecondaryDisplayName string

	// PrimaryFile and SecondaryFile are the bound resource files. Either
	// may be nil: a brand-new family has no files at all, and a family
	// kept in a single file has no secondary binding.
	PrimaryFile   *discovery.Descriptor
	SecondaryFile *discovery.Descriptor

	// HasMultipleLanguages is true iff SecondaryFile is bound. When false,
	// both translations go into the one primary file.
	HasMultipleLanguages bool
}

// ---------------------------------------------------------------------------
// Resolver
// ---------------------------------------------------------------------------

// Options configures a Resolver. The zero value selects the defaults.
type Options struct {
	// Names adds or overrides display names in the fixed language table.
	Names map[string]string
	// FallbackPrimary and FallbackSecondary are the language pair assumed
	// for a family with no files yet (defaults: en / de).
	FallbackPrimary   string
	FallbackSecondary string
}

// Resolver resolves language configurations against an immutable
// display-name table.
type Resolver struct {
	names             map[string]string
	fallbackPrimary   string
	fallbackSecondary string
}

// NewResolver returns a Resolver. A nil opts selects the defaults.
func NewResolver(opts *Options) *Resolver {
	r := &Resolver{
		names:             make(map[string]string, len(defaultNames)),
		fallbackPrimary:   "en",
		fallbackSecondary: "de",
	}
	for code, name := range defaultNames {
		r.names[code] = name
	}
	if opts != nil {
		for code, name := range opts.Names {
			r.names[code] = name
		}
		if opts.FallbackPrimary != "" {
			r.fallbackPrimary = opts.FallbackPrimary
		}
		if opts.FallbackSecondary != "" {
			r.fallbackSecondary = opts.FallbackSecondary
		}
		if r.fallbackSecondary == r.fallbackPrimary {
			// The pair must stay distinct.
			if r.fallbackPrimary == "de" {
				r.fallbackSecondary = "en"
			} else {
				r.fallbackSecondary = "de"
			}
		}
	}
	return r
}

// DisplayName returns the display name for a language code: the fixed
// table first, then an English locale-name lookup, then the upper-cased
// code itself.
func (r *Resolver) DisplayName(code string) string {
	if name, ok := r.names[code]; ok {
		return name
	}
	if tag, err := language.Parse(code); err == nil {
		if name := display.English.Languages().Name(tag); name != "" {
			return name
		}
	}
	return strings.ToUpper(code)
}

// TranslationLabel returns the prompt label for a language, e.g.
// "German Translation".
func (r *Resolver) TranslationLabel(code string) string {
	return r.DisplayName(code) + " Translation"
}

// ---------------------------------------------------------------------------
// Resolution
// ---------------------------------------------------------------------------

// Resolve derives a Config from a family's discovered files. The slice is
// expected in FindFiles order (default file first, then by culture).
func (r *Resolver) Resolve(files []discovery.Descriptor) Config {
	switch len(files) {
	case 0:
		// Brand-new family about to be created.
		return r.pair(r.fallbackPrimary, r.fallbackSecondary, nil, nil)
	case 1:
		return r.resolveSingle(&files[0])
	}
	return r.resolveMulti(files)
}

// resolveSingle handles a family kept in one file: both translations go
// into it, so no secondary file is bound.
func (r *Resolver) resolveSingle(file *discovery.Descriptor) Config {
	primary := r.knownLanguage(file.Culture)
	secondary := "de"
	if primary != "en" {
		secondary = "en"
	}
	return r.pair(primary, secondary, file, nil)
}

// resolveMulti handles families with two or more files.
func (r *Resolver) resolveMulti(files []discovery.Descriptor) Config {
	var def, german, english, firstNonDefault *discovery.Descriptor
	for i := range files {
		f := &files[i]
		if f.IsDefault && def == nil {
			def = f
		}
		if f.Culture == "de" && german == nil {
			german = f
		}
		if f.Culture == "en" && english == nil {
			english = f
		}
		if !f.IsDefault && firstNonDefault == nil {
			firstNonDefault = f
		}
	}

	switch {
	case def != nil && german != nil:
		// Decide what language the culture-less file itself is from the
		// tagged siblings that exist next to it.
		switch {
		case german != nil && english == nil:
			return r.pair("en", "de", def, german)
		case english != nil && german == nil:
			secondary := english
			if secondary == nil {
				secondary = german
			}
			return r.pair("de", "en", def, secondary)
		default:
			// Ambiguous signal: assume English/German, bind whichever
			// English file exists, fall back to the German one.
			secondary := english
			if secondary == nil {
				secondary = german
			}
			return r.pair("en", "de", def, secondary)
		}

	case def != nil:
		// No German sibling. The culture-less file is always reported as
		// English here, even when an .en variant exists alongside it and
		// the default file plainly holds another language. Resolution is
		// by naming convention, not content; kept as is.
		secondaryLang := "de"
		if firstNonDefault != nil {
			secondaryLang = r.languageCode(firstNonDefault.Culture)
		}
		return r.pair("en", secondaryLang, def, firstNonDefault)

	default:
		// No culture-less file at all: take the two files in sorted order.
		primary := r.languageCode(files[0].Culture)
		secondaryLang := "en"
		var secondary *discovery.Descriptor
		if len(files) > 1 {
			secondary = &files[1]
			secondaryLang = r.languageCode(files[1].Culture)
		}
		return r.pair(primary, secondaryLang, &files[0], secondary)
	}
}

// knownLanguage maps a culture tag onto the fixed language table; anything
// unknown (including the default sentinel) counts as English.
func (r *Resolver) knownLanguage(culture string) string {
	if culture == discovery.DefaultCulture {
		return "en"
	}
	if _, ok := r.names[culture]; ok {
		return culture
	}
	return "en"
}

// languageCode passes a culture tag through as a language code; only the
// default sentinel is rewritten to English.
func (r *Resolver) languageCode(culture string) string {
	if culture == discovery.DefaultCulture {
		return "en"
	}
	return culture
}

// pair assembles a Config, copying the descriptors so the result does not
// alias the caller's slice.
func (r *Resolver) pair(primary, secondary string, primaryFile, secondaryFile *discovery.Descriptor) Config {
	cfg := Config{
		PrimaryLanguage:      primary,
		PrimaryDisplayName:   r.DisplayName(primary),
		SecondaryLanguage:    secondary,
		SecondaryDisplayName: r.DisplayName(secondary),
	}
	if primaryFile != nil {
		f := *primaryFile
		cfg.PrimaryFile = &f
	}
	if secondaryFile != nil {
		f := *secondaryFile
		cfg.SecondaryFile = &f
		cfg.HasMultipleLanguages = true
	}
	return cfg
}
