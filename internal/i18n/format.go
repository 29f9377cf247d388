// ABOUTME: Locale-aware number, currency, date and relative time formatting
// ABOUTME: Built on golang.org/x/text message printers

package i18n

import (
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

func printer(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.French
	}
	return message.NewPrinter(tag)
}

// FormatNumber renders v with locale grouping and at most two decimals.
func FormatNumber(lang string, v float64) string {
	return printer(lang).Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// FormatCurrency renders an amount in euros.
func FormatCurrency(lang string, amount float64) string {
	return printer(lang).Sprint(currency.Symbol(currency.EUR.Amount(amount)))
}

// FormatDate renders a calendar date the way each locale writes it short.
func FormatDate(lang string, t time.Time) string {
	switch lang {
	case English:
		return t.Format("01/02/2006")
	case Arabic:
		return t.Format("2006/01/02")
	default:
		return t.Format("02/01/2006")
	}
}

// RelativeTime describes how long ago then was, relative to now.
func (b *Bundle) RelativeTime(lang string, then, now time.Time) string {
	diff := now.Sub(then)
	mins := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case mins < 1:
		return b.T(lang, "time.justNow")
	case mins < 60:
		return b.T(lang, "time.minutesAgo", "n", mins)
	case hours < 24:
		return b.T(lang, "time.hoursAgo", "n", hours)
	default:
		return b.T(lang, "time.daysAgo", "n", days)
	}
}
