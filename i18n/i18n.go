// Package i18n translates reskit's own user-facing strings.
//
// It wraps gotext: catalogs are embedded in the binary under
// locales/{lang}/LC_MESSAGES/reskit.po and loaded once via Init. When no
// catalog matches the user's locale, T and N pass the original strings
// through, so callers never check for missing translations.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "reskit"

var catalog *gotext.Locale

// Init loads the catalog for lang, or for the locale detected from the
// environment when lang is empty. Call once at startup.
func Init(lang string) {
	if lang == "" {
		lang = systemLanguage()
	}

	catalog = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	catalog.AddDomain(domain)
	catalog.SetDomain(domain)
}

// T translates a message, returning it unchanged when no translation
// exists.
func T(msgid string) string {
	if catalog == nil {
		return msgid
	}
	return catalog.Get(msgid)
}

// N translates a message with plural forms for count n.
func N(singular, plural string, n int) string {
	if catalog == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return catalog.GetN(singular, plural, n)
}

// systemLanguage determines the user's language from the environment,
// in GNU gettext priority order: LANGUAGE, LC_ALL, LC_MESSAGES, LANG.
func systemLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE may hold a colon-separated preference list.
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// Strip the encoding suffix ("de_DE.UTF-8" -> "de_DE").
		val, _, _ = strings.Cut(val, ".")
		// C and POSIX mean untranslated output.
		if val == "" || val == "C" || val == "POSIX" {
			continue
		}
		return val
	}
	return "en"
}
