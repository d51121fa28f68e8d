package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onmuhasebe/pre-accounting-be/internal/core/classify"
)

type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

const invoiceText = `ACME Teknoloji A.Ş.
FATURA No: INV-2024-001
Tarih: 15/01/2024
Toplam: 1500.50 TRY
KDV: 270.09`

func TestExtractInvoiceHappyPath(t *testing.T) {
	ai := &fakeCompleter{response: `{
		"companyName": "ACME Teknoloji A.Ş.",
		"date": "15/01/2024",
		"documentNumber": "INV-2024-001",
		"totalAmount": 1500.50,
		"vatAmount": 270.09,
		"currency": "TRY"
	}`}
	e := NewExtractor(ai)

	fields := e.Extract(context.Background(), invoiceText, classify.TypeInvoice)

	require.NotNil(t, fields.CompanyName)
	assert.Equal(t, "ACME Teknoloji A.Ş.", *fields.CompanyName)
	assert.Equal(t, 1.0, fields.CompanyNameConfidence, "exact substring match")
	assert.Equal(t, 0.95, fields.DateConfidence, "valid date present in text")
	assert.Equal(t, 0.9, fields.TotalAmountConfidence)
	assert.Equal(t, 0.8, fields.VatAmountConfidence)
	assert.Equal(t, 0.95, fields.CurrencyConfidence)
	assert.Equal(t, invoiceText, fields.RawOcrText)

	require.NotNil(t, fields.TotalAmount)
	assert.True(t, fields.TotalAmount.Equal(decimal.RequireFromString("1500.50")))

	// Overall averages companyName, date, totalAmount and currency only.
	expected := (1.0 + 0.95 + 0.9 + 0.95) / 4
	assert.InDelta(t, expected, fields.OverallConfidence, 0.0001)
}

func TestExtractOverallIgnoresDocumentNumberAndVat(t *testing.T) {
	withAll := &fakeCompleter{response: `{
		"companyName": "ACME Teknoloji A.Ş.",
		"date": "15/01/2024",
		"documentNumber": "INV-2024-001",
		"totalAmount": 1500.50,
		"vatAmount": 270.09,
		"currency": "TRY"
	}`}
	withoutAux := &fakeCompleter{response: `{
		"companyName": "ACME Teknoloji A.Ş.",
		"date": "15/01/2024",
		"totalAmount": 1500.50,
		"currency": "TRY"
	}`}

	a := NewExtractor(withAll).Extract(context.Background(), invoiceText, classify.TypeInvoice)
	b := NewExtractor(withoutAux).Extract(context.Background(), invoiceText, classify.TypeInvoice)

	assert.Equal(t, a.OverallConfidence, b.OverallConfidence)
}

func TestExtractDateConfidence(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected float64
	}{
		{"valid and present in text", "15/01/2024", 0.95},
		{"valid but absent from text", "28/02/2023", 0.7},
		{"wrong format", "2024-01-15", 0.3},
		{"impossible calendar date", "31/02/2024", 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := &fakeCompleter{response: `{"date": "` + tt.date + `"}`}
			fields := NewExtractor(ai).Extract(context.Background(), invoiceText, classify.TypeInvoice)
			assert.Equal(t, tt.expected, fields.DateConfidence)
		})
	}
}

func TestExtractAmountConfidence(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		expected float64
	}{
		{"plausible amount", "123.45", 0.9},
		{"zero is implausible", "0", 0.4},
		{"negative is implausible", "-50", 0.4},
		{"above the sanity ceiling", "2000000", 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := &fakeCompleter{response: `{"totalAmount": ` + tt.amount + `}`}
			fields := NewExtractor(ai).Extract(context.Background(), invoiceText, classify.TypeInvoice)
			assert.Equal(t, tt.expected, fields.TotalAmountConfidence)
		})
	}
}

func TestExtractVatConfidence(t *testing.T) {
	ai := &fakeCompleter{response: `{"vatAmount": 0}`}
	fields := NewExtractor(ai).Extract(context.Background(), invoiceText, classify.TypeInvoice)
	assert.Equal(t, 0.8, fields.VatAmountConfidence, "zero VAT is legitimate")

	ai = &fakeCompleter{response: `{"vatAmount": -1}`}
	fields = NewExtractor(ai).Extract(context.Background(), invoiceText, classify.TypeInvoice)
	assert.Equal(t, 0.3, fields.VatAmountConfidence)
}

func TestExtractCurrencyConfidence(t *testing.T) {
	ai := &fakeCompleter{response: `{"currency": "usd"}`}
	fields := NewExtractor(ai).Extract(context.Background(), invoiceText, classify.TypeInvoice)
	assert.Equal(t, 0.95, fields.CurrencyConfidence, "whitelist check is case-insensitive")

	ai = &fakeCompleter{response: `{"currency": "XYZ"}`}
	fields = NewExtractor(ai).Extract(context.Background(), invoiceText, classify.TypeInvoice)
	assert.Equal(t, 0.5, fields.CurrencyConfidence)
}

func TestExtractQuotedNumbersAccepted(t *testing.T) {
	ai := &fakeCompleter{response: `{"totalAmount": "1500.50"}`}
	fields := NewExtractor(ai).Extract(context.Background(), invoiceText, classify.TypeInvoice)

	require.NotNil(t, fields.TotalAmount)
	assert.True(t, fields.TotalAmount.Equal(decimal.RequireFromString("1500.50")))
}

func TestExtractStripsMarkdownFences(t *testing.T) {
	ai := &fakeCompleter{response: "```json\n{\"currency\": \"EUR\"}\n```"}
	fields := NewExtractor(ai).Extract(context.Background(), invoiceText, classify.TypeInvoice)

	require.NotNil(t, fields.Currency)
	assert.Equal(t, "EUR", *fields.Currency)
}

func TestExtractMalformedResponse(t *testing.T) {
	ai := &fakeCompleter{response: "sorry, I cannot help with that"}
	fields := NewExtractor(ai).Extract(context.Background(), invoiceText, classify.TypeInvoice)

	assert.Nil(t, fields.CompanyName)
	assert.Equal(t, 0.0, fields.OverallConfidence)
	assert.Equal(t, invoiceText, fields.RawOcrText)
}

func TestExtractNullFieldsStayAbsent(t *testing.T) {
	ai := &fakeCompleter{response: `{"companyName": null, "date": null, "totalAmount": null}`}
	fields := NewExtractor(ai).Extract(context.Background(), invoiceText, classify.TypeInvoice)

	assert.Nil(t, fields.CompanyName)
	assert.Nil(t, fields.Date)
	assert.Nil(t, fields.TotalAmount)
	assert.Equal(t, 0.0, fields.OverallConfidence)
}

func TestExtractAIFailureDegrades(t *testing.T) {
	ai := &fakeCompleter{err: errors.New("rate limited")}
	fields := NewExtractor(ai).Extract(context.Background(), invoiceText, classify.TypeInvoice)

	assert.Nil(t, fields.CompanyName)
	assert.Nil(t, fields.TotalAmount)
	assert.Equal(t, 0.0, fields.OverallConfidence)
	assert.Equal(t, invoiceText, fields.RawOcrText)
}

func TestExtractBlankTextSkipsAI(t *testing.T) {
	ai := &fakeCompleter{response: `{}`}
	fields := NewExtractor(ai).Extract(context.Background(), "  ", classify.TypeInvoice)

	assert.Equal(t, 0, ai.calls)
	assert.Equal(t, 0.0, fields.OverallConfidence)
}

func TestExtractInvoiceItems(t *testing.T) {
	ai := &fakeCompleter{response: `{
		"companyName": "ACME",
		"items": [
			{"name": "Consulting", "quantity": 2, "unitPrice": 500.00, "totalPrice": 1000.00},
			"not an object",
			{"name": "Support", "quantity": 1}
		]
	}`}
	fields := NewExtractor(ai).Extract(context.Background(), invoiceText, classify.TypeInvoice)

	// The malformed entry is dropped, the rest survive.
	require.Len(t, fields.Items, 2)
	assert.Equal(t, "Consulting", *fields.Items[0].Name)
	assert.Equal(t, 2, *fields.Items[0].Quantity)
	assert.True(t, fields.Items[0].UnitPrice.Equal(decimal.RequireFromString("500.00")))
	assert.Equal(t, "Support", *fields.Items[1].Name)
	assert.Nil(t, fields.Items[1].UnitPrice)
}

func TestFuzzyMatch(t *testing.T) {
	source := "ACME Teknoloji A.Ş. SATIŞ FİŞİ toplam 150 TL"

	tests := []struct {
		name      string
		extracted string
		expected  float64
	}{
		{"exact substring", "ACME Teknoloji", 1.0},
		{"case insensitive", "acme teknoloji", 0.95},
		{"turkish dotted capital", "satış fişi", 0.95},
		{"partial token overlap", "ACME Teknoloji Limited Şirketi", 0.5},
		{"no overlap", "Globex Corporation", 0.0},
		{"blank", "   ", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, fuzzyMatch(tt.extracted, source), 0.0001)
		})
	}
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, isValidDate("15/01/2024"))
	assert.True(t, isValidDate("29/02/2024"))
	assert.False(t, isValidDate("29/02/2023"))
	assert.False(t, isValidDate("1/1/2024"))
	assert.False(t, isValidDate("2024-01-15"))
	assert.False(t, isValidDate(""))
}
