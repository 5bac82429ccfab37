// Package i18n resolves the caller's language to a message printer and
// holds the translated operation messages.
package i18n

import (
	"cmp"
	"context"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLang is used whenever nothing better matches.
var DefaultLang = language.English

// SupportedLangs lists every language with a full catalog.
var SupportedLangs = []language.Tag{language.English, language.Turkish}

var matcher = language.NewMatcher(SupportedLangs)

// MatchLanguage picks the supported tag that best serves an
// Accept-Language header value.
func MatchLanguage(acceptLang string) language.Tag {
	tags, _, _ := language.ParseAcceptLanguage(acceptLang)
	return supported(tags...)
}

// supported collapses regional variants onto their catalog ("tr-TR" to "tr").
func supported(tags ...language.Tag) language.Tag {
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLang
	}
	return SupportedLangs[idx]
}

// ForLanguage returns a printer for a configured language name such as
// "tr". Unknown or empty names fall back to DefaultLang.
func ForLanguage(name string) *message.Printer {
	tag, err := language.Parse(name)
	if err != nil {
		return message.NewPrinter(DefaultLang)
	}
	return message.NewPrinter(supported(tag))
}

// NewCLIPrinter reads the locale from LC_ALL, then LANG
// ("tr_TR.UTF-8" selects Turkish).
func NewCLIPrinter() *message.Printer {
	locale := cmp.Or(os.Getenv("LC_ALL"), os.Getenv("LANG"))
	locale, _, _ = strings.Cut(locale, ".")
	return ForLanguage(strings.ReplaceAll(locale, "_", "-"))
}

type printerKey struct{}

// WithPrinter attaches p to ctx.
func WithPrinter(ctx context.Context, p *message.Printer) context.Context {
	return context.WithValue(ctx, printerKey{}, p)
}

// PrinterFrom returns the printer stored in ctx, if any.
func PrinterFrom(ctx context.Context) (*message.Printer, bool) {
	p, ok := ctx.Value(printerKey{}).(*message.Printer)
	return p, ok
}

// GetPrinter is PrinterFrom with a DefaultLang fallback.
func GetPrinter(ctx context.Context) *message.Printer {
	if p, ok := PrinterFrom(ctx); ok {
		return p
	}
	return message.NewPrinter(DefaultLang)
}
