package view

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	idPrinter = message.NewPrinter(language.Indonesian)
	enPrinter = message.NewPrinter(language.AmericanEnglish)
)

// PriceLabel formats an IDR amount without decimals, "Rp 150.000" in
// Indonesian and "IDR 150,000" in English. nil gives "".
func PriceLabel(price *float64, lang string) string {
	if price == nil {
		return ""
	}
	n := int64(math.Round(*price))
	if lang == "en" {
		return enPrinter.Sprintf("IDR %d", n)
	}
	return idPrinter.Sprintf("Rp %d", n)
}
