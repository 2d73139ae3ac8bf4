package ai

import (
	"regexp"
	"strconv"
	"strings"
)

// SalaryFigures is a parsed salary mention.
type SalaryFigures struct {
	Min      *int
	Max      *int
	Currency string
}

// salaryNumber matches a figure like 150000, 150,000 or 150k.
var salaryNumber = regexp.MustCompile(`(?i)(\d{1,3}(?:[ ,.]\d{3})+|\d+)\s*(k)?`)

var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"₽": "RUB",
}

// ParseSalaryText parses a free-text salary mention, tolerating ranges,
// single values and "k" suffixes. Text with no usable figure returns
// (nil, false): an unparseable salary is "not mentioned", never zero.
func ParseSalaryText(text string) (*SalaryFigures, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	currency := detectCurrency(text)

	var values []int
	for _, m := range salaryNumber.FindAllStringSubmatch(text, -1) {
		digits := strings.NewReplacer(" ", "", ",", "", ".", "").Replace(m[1])
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		if strings.EqualFold(m[2], "k") {
			n *= 1000
		}
		// Small numbers are almost always hours or years, not pay.
		if n < 1000 {
			continue
		}
		values = append(values, n)
	}

	if len(values) == 0 {
		return nil, false
	}

	low, high := values[0], values[0]
	for _, v := range values[1:] {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}

	return &SalaryFigures{Min: &low, Max: &high, Currency: currency}, true
}

func detectCurrency(text string) string {
	for symbol, code := range currencySymbols {
		if strings.Contains(text, symbol) {
			return code
		}
	}

	upper := strings.ToUpper(text)
	for _, code := range []string{"USD", "EUR", "GBP", "RUB"} {
		if strings.Contains(upper, code) {
			return code
		}
	}

	return ""
}
