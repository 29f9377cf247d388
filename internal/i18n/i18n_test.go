// ABOUTME: Tests for the translation bundle and locale formatting
// ABOUTME: Covers fallback, interpolation, language matching and relative times

package i18n

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestT(t *testing.T) {
	b := MustLoad()

	assert.Equal(t, "Tableau de bord", b.T(French, "nav.dashboard"))
	assert.Equal(t, "Dashboard", b.T(English, "nav.dashboard"))
	assert.Equal(t, "لوحة التحكم", b.T(Arabic, "nav.dashboard"))
}

func TestT_Interpolation(t *testing.T) {
	b := MustLoad()

	assert.Equal(t, "Welcome, walid", b.T(English, "dashboard.welcome", "username", "walid"))
	assert.Equal(t, "Bienvenue, imane", b.T(French, "dashboard.welcome", "username", "imane"))
	// unpaired trailing argument is ignored
	assert.Equal(t, "Welcome, {username}", b.T(English, "dashboard.welcome", "username"))
}

func TestT_Fallback(t *testing.T) {
	b := MustLoad()

	// present in fr only
	assert.Equal(t, "Retour", b.T(Arabic, "entity.back"))
	// unknown language
	assert.Equal(t, "Connexion", b.T("de", "login.title"))
	// unknown key
	assert.Equal(t, "no.such.key", b.T(English, "no.such.key"))

	_, ok := b.Lookup(English, "no.such.key")
	assert.False(t, ok)
}

func TestLanguages(t *testing.T) {
	b := MustLoad()

	langs := b.Languages()
	require.Len(t, langs, 3)
	assert.Equal(t, "fr", langs[0].Code)
	assert.Equal(t, "Français", langs[0].NativeName)
	assert.Equal(t, "rtl", langs[2].Dir)
	assert.Equal(t, "ltr", Dir(English))

	assert.True(t, b.Supports("ar"))
	assert.False(t, b.Supports("de"))
	assert.Equal(t, "fr", b.Normalize("de"))
	assert.Equal(t, "en", b.Normalize("en"))
}

func TestMatch(t *testing.T) {
	b := MustLoad()

	tests := []struct {
		header string
		want   string
	}{
		{"en-US,en;q=0.9", "en"},
		{"ar-MA", "ar"},
		{"fr-CA,fr;q=0.8,en;q=0.5", "fr"},
		{"de-DE", "fr"},
		{"", "fr"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Match(tt.header), "header %q", tt.header)
	}
}

func TestLoad_MissingTable(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/fr.yaml": {Data: []byte("a: b\n")},
	}
	_, err := load(fsys)
	assert.Error(t, err)
}

func TestRelativeTime(t *testing.T) {
	b := MustLoad()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "À l'instant", b.RelativeTime(French, now.Add(-30*time.Second), now))
	assert.Equal(t, "Il y a 5 min", b.RelativeTime(French, now.Add(-5*time.Minute), now))
	assert.Equal(t, "Il y a 3 h", b.RelativeTime(French, now.Add(-3*time.Hour), now))
	assert.Equal(t, "Il y a 2 j", b.RelativeTime(French, now.Add(-50*time.Hour), now))
	assert.Equal(t, "5 min ago", b.RelativeTime(English, now.Add(-5*time.Minute), now))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "1,234.5", FormatNumber(English, 1234.5))
	assert.Contains(t, FormatNumber(French, 1234.5), ",5")
	assert.Contains(t, FormatCurrency(English, 12.5), "€")
	assert.Contains(t, FormatCurrency(English, 12.5), "12.50")

	d := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "09/03/2025", FormatDate(French, d))
	assert.Equal(t, "03/09/2025", FormatDate(English, d))
}
