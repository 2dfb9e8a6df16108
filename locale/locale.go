// Package locale loads the USSD message bundles and holds the handful of
// messages shown before the subscriber has picked a language.
package locale

import (
	"embed"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed ussd.*.toml
var files embed.FS

// Shown while the language is still unknown, so they carry both languages.
const (
	LanguageMenu    = "1. English\n2. Kinyarwanda"
	InvalidLanguage = "Invalid language selection. / Ururimi rwahiswemo ntirwemewe."
	InvalidRequest  = "Invalid request. / Icyifuzo ntikemewe."
	SystemError     = "System error. Please try again later. / Habaye ikibazo. Ongera ugerageze nyuma."
)

var bundle *i18n.Bundle

func init() {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, name := range []string{"ussd.en.toml", "ussd.sw.toml"} {
		data, err := files.ReadFile(name)
		if err != nil {
			panic(fmt.Sprintf("locale: reading %s: %v", name, err))
		}
		if _, err := bundle.ParseMessageFileBytes(data, name); err != nil {
			panic(fmt.Sprintf("locale: loading %s: %v", name, err))
		}
	}
}

// Localizer returns a localizer for locale, falling back to English for
// anything the locale's bundle does not define.
func Localizer(locale string) *i18n.Localizer {
	// go-i18n has no plural rule for rw, the Kinyarwanda bundle is filed under sw
	if locale == "rw" {
		locale = "sw"
	}
	return i18n.NewLocalizer(bundle, locale, language.English.String())
}
