package extract

import "github.com/shopspring/decimal"

// InvoiceItem is a single line item extracted from an invoice-shaped
// document. Sub-fields the AI could not find stay nil.
type InvoiceItem struct {
	Name        *string          `json:"name,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unitPrice,omitempty"`
	TotalPrice  *decimal.Decimal `json:"totalPrice,omitempty"`
	Description *string          `json:"description,omitempty"`
}

// DocumentFields is the structured extraction result, serialized as-is into
// Document.ExtractedData. Every scalar field carries its own confidence;
// a nil field always has confidence 0, and confidences are recomputed from
// the raw OCR text rather than trusted from the AI response.
type DocumentFields struct {
	CompanyName           *string `json:"companyName,omitempty"`
	CompanyNameConfidence float64 `json:"companyNameConfidence"`

	Date           *string `json:"date,omitempty"` // DD/MM/YYYY
	DateConfidence float64 `json:"dateConfidence"`

	DocumentNumber           *string `json:"documentNumber,omitempty"`
	DocumentNumberConfidence float64 `json:"documentNumberConfidence"`

	TotalAmount           *decimal.Decimal `json:"totalAmount,omitempty"`
	TotalAmountConfidence float64          `json:"totalAmountConfidence"`

	VatAmount           *decimal.Decimal `json:"vatAmount,omitempty"`
	VatAmountConfidence float64          `json:"vatAmountConfidence"`

	Currency           *string `json:"currency,omitempty"` // 3-letter code
	CurrencyConfidence float64 `json:"currencyConfidence"`

	// Invoice-specific
	Items []InvoiceItem `json:"items,omitempty"`

	TaxID       *string `json:"taxId,omitempty"`
	Address     *string `json:"address,omitempty"`
	Description *string `json:"description,omitempty"`

	OverallConfidence float64 `json:"overallConfidence"`

	// Original OCR text for reference
	RawOcrText string `json:"rawOcrText,omitempty"`
}
