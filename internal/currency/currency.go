// Package currency holds the supported display currencies and formats
// amounts for them.
package currency

import (
	"strings"

	"fintrack/internal/cache"
	"fintrack/internal/core"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Info describes a supported currency.
type Info struct {
	core.Currency
	Name        string
	SymbolAfter bool // "12,00 €" rather than "€12.00"
}

var table = []Info{
	{Currency: core.Currency{Code: "EUR", Symbol: "€", Locale: "fr-FR"}, Name: "Euro", SymbolAfter: true},
	{Currency: core.Currency{Code: "USD", Symbol: "$", Locale: "en-US"}, Name: "Dollar"},
	{Currency: core.Currency{Code: "GBP", Symbol: "£", Locale: "en-GB"}, Name: "Pound"},
	{Currency: core.Currency{Code: "MGA", Symbol: "Ar", Locale: "mg-MG"}, Name: "Ariary", SymbolAfter: true},
}

// Default is the currency of a fresh store.
func Default() core.Currency {
	return table[0].Currency
}

// All returns the supported currencies in display order.
func All() []Info {
	return append([]Info(nil), table...)
}

// Lookup finds a currency by ISO code, case-insensitively.
func Lookup(code string) (Info, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, info := range table {
		if info.Code == code {
			return info, nil
		}
	}
	return Info{}, core.ErrUnknownCurrency
}

// Format renders amount in cur with exactly two fraction digits, using the
// grouping and decimal separators of the currency's locale. Codes outside the
// table are formatted as EUR. Digits come from the decimal itself, so large
// amounts keep every digit.
func Format(cur core.Currency, amount decimal.Decimal) string {
	info, err := Lookup(cur.Code)
	if err != nil {
		info = table[0]
	}
	group, point := separators(printerFor(info.Locale))
	whole, frac, _ := strings.Cut(amount.Abs().StringFixed(2), ".")
	digits := groupThousands(whole, group) + point + frac

	sign := ""
	if amount.Round(2).IsNegative() {
		sign = "-"
	}
	if info.SymbolAfter {
		return sign + digits + " " + info.Symbol
	}
	return sign + info.Symbol + digits
}

// separators reads the grouping and decimal separators off a sample number
// rendered by p.
func separators(p *message.Printer) (group, point string) {
	s := p.Sprint(number.Decimal(1234.5, number.Scale(1)))
	s = strings.TrimSuffix(strings.TrimPrefix(s, "1"), "5")
	group, point, ok := strings.Cut(s, "234")
	if !ok || point == "" {
		return ",", "."
	}
	return group, point
}

func groupThousands(whole, sep string) string {
	if len(whole) <= 3 || sep == "" {
		return whole
	}
	var b strings.Builder
	head := len(whole) % 3
	if head > 0 {
		b.WriteString(whole[:head])
	}
	for i := head; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(whole[i : i+3])
	}
	return b.String()
}

// printers holds one message.Printer per locale.
var printers = cache.NewLRU[string, *message.Printer](len(table))

func printerFor(locale string) *message.Printer {
	if p, ok := printers.Get(locale); ok {
		return p
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	p := message.NewPrinter(tag)
	printers.Set(locale, p)
	return p
}
