// ABOUTME: Translation bundle for the backoffice: fr, en and ar string tables with French fallback
// ABOUTME: Handles {param} interpolation, text direction and Accept-Language matching

package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Supported language codes. The first one is the fallback.
const (
	French  = "fr"
	English = "en"
	Arabic  = "ar"
)

// Default is the language used when nothing else is known.
const Default = French

var supported = []language.Tag{language.French, language.English, language.Arabic}

// Language describes one selectable language.
type Language struct {
	Code       string
	NativeName string
	Dir        string
}

// Bundle holds the loaded string tables.
type Bundle struct {
	tables  map[string]map[string]string
	matcher language.Matcher
}

// Load parses the embedded locale files.
func Load() (*Bundle, error) {
	return load(localeFS)
}

// MustLoad is Load for package initialisation; the tables are compiled in.
func MustLoad() *Bundle {
	b, err := Load()
	if err != nil {
		panic(err)
	}
	return b
}

func load(fsys fs.FS) (*Bundle, error) {
	b := &Bundle{
		tables:  make(map[string]map[string]string),
		matcher: language.NewMatcher(supported),
	}
	for _, tag := range supported {
		code := tag.String()
		data, err := fs.ReadFile(fsys, path.Join("locales", code+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("reading %s strings: %w", code, err)
		}
		table := make(map[string]string)
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parsing %s strings: %w", code, err)
		}
		b.tables[code] = table
	}
	return b, nil
}

// Supports reports whether lang has a string table.
func (b *Bundle) Supports(lang string) bool {
	_, ok := b.tables[lang]
	return ok
}

// Normalize returns lang when supported, else Default.
func (b *Bundle) Normalize(lang string) string {
	if b.Supports(lang) {
		return lang
	}
	return Default
}

// Languages lists the selectable languages in display order.
func (b *Bundle) Languages() []Language {
	out := make([]Language, 0, len(supported))
	for _, tag := range supported {
		code := tag.String()
		out = append(out, Language{
			Code:       code,
			NativeName: b.tables[code]["language.name"],
			Dir:        Dir(code),
		})
	}
	return out
}

// Lookup returns the string for key in lang, falling back to French.
func (b *Bundle) Lookup(lang, key string) (string, bool) {
	if s, ok := b.tables[lang][key]; ok {
		return s, true
	}
	s, ok := b.tables[Default][key]
	return s, ok
}

// T translates key. Extra arguments are name/value pairs substituted into
// {name} placeholders. A key missing everywhere is returned as is.
func (b *Bundle) T(lang, key string, params ...any) string {
	s, ok := b.Lookup(lang, key)
	if !ok {
		return key
	}
	if len(params) < 2 {
		return s
	}
	pairs := make([]string, 0, len(params))
	for i := 0; i+1 < len(params); i += 2 {
		pairs = append(pairs, "{"+fmt.Sprint(params[i])+"}", fmt.Sprint(params[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

// Match picks the best supported language for an Accept-Language header.
func (b *Bundle) Match(acceptLanguage string) string {
	_, idx := language.MatchStrings(b.matcher, acceptLanguage)
	return supported[idx].String()
}

// Dir returns the text direction for lang.
func Dir(lang string) string {
	if lang == Arabic {
		return "rtl"
	}
	return "ltr"
}
