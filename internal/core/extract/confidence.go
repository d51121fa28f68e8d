package extract

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// validCurrencies is the whitelist the prompt restricts the model to.
var validCurrencies = map[string]bool{
	"TRY": true,
	"USD": true,
	"EUR": true,
	"GBP": true,
}

var dateShape = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

var maxReasonableAmount = decimal.NewFromInt(1_000_000)

// scoreFields recomputes every confidence from the raw OCR text. Values the
// AI returned are evidence-checked: present in the text, parseable, within
// plausible bounds. The AI's own certainty is never trusted.
func scoreFields(fields *DocumentFields, ocrText string) {
	if fields.CompanyName != nil {
		fields.CompanyNameConfidence = fuzzyMatch(*fields.CompanyName, ocrText)
	} else {
		fields.CompanyNameConfidence = 0.0
	}

	if fields.Date != nil {
		valid := isValidDate(*fields.Date)
		inText := strings.Contains(ocrText, *fields.Date)
		switch {
		case valid && inText:
			fields.DateConfidence = 0.95
		case valid:
			fields.DateConfidence = 0.7
		default:
			fields.DateConfidence = 0.3
		}
	} else {
		fields.DateConfidence = 0.0
	}

	if fields.DocumentNumber != nil {
		fields.DocumentNumberConfidence = fuzzyMatch(*fields.DocumentNumber, ocrText)
	} else {
		fields.DocumentNumberConfidence = 0.0
	}

	if fields.TotalAmount != nil {
		reasonable := fields.TotalAmount.IsPositive() && fields.TotalAmount.LessThan(maxReasonableAmount)
		if reasonable {
			fields.TotalAmountConfidence = 0.9
		} else {
			fields.TotalAmountConfidence = 0.4
		}
	} else {
		fields.TotalAmountConfidence = 0.0
	}

	if fields.VatAmount != nil {
		if !fields.VatAmount.IsNegative() {
			fields.VatAmountConfidence = 0.8
		} else {
			fields.VatAmountConfidence = 0.3
		}
	} else {
		fields.VatAmountConfidence = 0.0
	}

	if fields.Currency != nil {
		if validCurrencies[strings.ToUpper(*fields.Currency)] {
			fields.CurrencyConfidence = 0.95
		} else {
			fields.CurrencyConfidence = 0.5
		}
	} else {
		fields.CurrencyConfidence = 0.0
	}

	// Aggregate over the four business-critical fields only; documentNumber
	// and vatAmount stay out of the average.
	sum, count := 0.0, 0
	for _, conf := range []float64{
		fields.CompanyNameConfidence,
		fields.DateConfidence,
		fields.TotalAmountConfidence,
		fields.CurrencyConfidence,
	} {
		if conf > 0 {
			sum += conf
			count++
		}
	}
	if count > 0 {
		fields.OverallConfidence = sum / float64(count)
	} else {
		fields.OverallConfidence = 0.0
	}
}

// fuzzyMatch scores how well an extracted value is supported by the source
// text: 1.0 for an exact substring, 0.95 case-insensitive, otherwise the
// token-overlap ratio over words longer than 3 characters, capped at 0.9.
func fuzzyMatch(extracted, source string) float64 {
	if strings.TrimSpace(extracted) == "" {
		return 0.0
	}

	if strings.Contains(source, extracted) {
		return 1.0
	}

	lowerSource := lowerBoth(source)
	if strings.Contains(lowerSource, strings.ToLower(extracted)) ||
		strings.Contains(lowerSource, strings.ToLowerSpecial(unicode.TurkishCase, extracted)) {
		return 0.95
	}

	words := strings.Fields(extracted)
	if len(words) == 0 {
		return 0.3
	}

	matches := 0
	for _, word := range words {
		if len([]rune(word)) > 3 &&
			(strings.Contains(lowerSource, strings.ToLower(word)) ||
				strings.Contains(lowerSource, strings.ToLowerSpecial(unicode.TurkishCase, word))) {
			matches++
		}
	}

	ratio := float64(matches) / float64(len(words))
	if ratio > 0.9 {
		return 0.9
	}
	return ratio
}

// lowerBoth concatenates the standard and Turkish lowerings so substring
// checks work for both dotted and dotless capital I.
func lowerBoth(s string) string {
	return strings.ToLower(s) + "\n" + strings.ToLowerSpecial(unicode.TurkishCase, s)
}

// isValidDate reports whether the value is a real DD/MM/YYYY calendar date.
func isValidDate(date string) bool {
	if !dateShape.MatchString(date) {
		return false
	}
	_, err := time.Parse("02/01/2006", date)
	return err == nil
}

func getString(node map[string]json.RawMessage, key string) *string {
	raw, ok := node[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// getDecimal accepts both bare numbers and quoted numeric strings, since the
// model is inconsistent about which it emits.
func getDecimal(node map[string]json.RawMessage, key string) *decimal.Decimal {
	raw, ok := node[key]
	if !ok {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		n = json.Number(strings.TrimSpace(s))
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return nil
	}
	return &d
}

func getInt(node map[string]json.RawMessage, key string) *int {
	raw, ok := node[key]
	if !ok {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	v, err := n.Int64()
	if err != nil {
		return nil
	}
	i := int(v)
	return &i
}
