package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/onmuhasebe/pre-accounting-be/internal/core/classify"
)

// Completer is the narrow AI collaborator the extractor needs; tests
// substitute deterministic doubles.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
}

const extractorSystemPrompt = "You are an expert at extracting structured data from business documents."

// fallbackJSON is substituted when the AI call fails or no credential is
// configured: a schema-shaped response with every field unknown.
const fallbackJSON = `{
    "companyName": null,
    "date": null,
    "documentNumber": null,
    "totalAmount": null,
    "vatAmount": null,
    "currency": null
}`

// Extractor turns OCR text plus a document type into structured fields with
// per-field confidence scores.
type Extractor struct {
	ai Completer
}

// NewExtractor creates a field extractor
func NewExtractor(ai Completer) *Extractor {
	return &Extractor{ai: ai}
}

// Extract asks the AI model for structured fields and scores every value
// against the raw OCR text. It never fails: AI errors degrade to an
// all-empty result carrying the raw text.
func (e *Extractor) Extract(ctx context.Context, ocrText string, docType classify.DocumentType) *DocumentFields {
	if strings.TrimSpace(ocrText) == "" {
		log.Printf("⚠️ Empty OCR text, returning empty fields")
		return &DocumentFields{RawOcrText: ocrText, OverallConfidence: 0.0}
	}

	prompt := buildExtractionPrompt(ocrText, docType)

	// Temperature 0: extraction must be deterministic.
	response, err := e.ai.Complete(ctx, extractorSystemPrompt, prompt, 0)
	if err != nil {
		log.Printf("⚠️ AI extraction unavailable, using fallback: %v", err)
		response = fallbackJSON
	}

	fields := parseFields(response)
	fields.RawOcrText = ocrText

	scoreFields(fields, ocrText)

	log.Printf("📊 Field extraction complete: overall_confidence=%.2f", fields.OverallConfidence)
	return fields
}

// buildExtractionPrompt composes a document-type-specific JSON schema plus
// the universal extraction rules.
func buildExtractionPrompt(text string, docType classify.DocumentType) string {
	var schema string
	switch docType {
	case classify.TypeInvoice:
		schema = `JSON schema:
{
    "companyName": "Company name (if present)",
    "date": "Date in DD/MM/YYYY format",
    "documentNumber": "Invoice number",
    "totalAmount": 0.00,
    "vatAmount": 0.00,
    "currency": "TRY, USD or EUR",
    "taxId": "Tax identification number",
    "address": "Address",
    "items": [
        {
            "name": "Product/service name",
            "quantity": 1,
            "unitPrice": 0.00,
            "totalPrice": 0.00,
            "description": "Description"
        }
    ]
}`
	case classify.TypeReceipt:
		schema = `JSON schema:
{
    "companyName": "Store/business name",
    "date": "Date in DD/MM/YYYY format",
    "documentNumber": "Receipt number",
    "totalAmount": 0.00,
    "currency": "TRY",
    "address": "Address"
}`
	case classify.TypeBankStatement:
		schema = `JSON schema:
{
    "companyName": "Bank name",
    "date": "Date in DD/MM/YYYY format",
    "documentNumber": "Transaction/reference number",
    "totalAmount": 0.00,
    "currency": "TRY",
    "description": "Transaction description"
}`
	default:
		schema = `JSON schema:
{
    "companyName": "Company/institution name",
    "date": "Date in DD/MM/YYYY format",
    "documentNumber": "Document number",
    "totalAmount": 0.00,
    "currency": "TRY",
    "description": "Description"
}`
	}

	return fmt.Sprintf(`The following text was read with OCR from a %s document.
Extract the information below and return it as JSON.

OCR text:
%s

%s

RULES:
- If you cannot find a field, use null (never invent values!)
- Use a dot (.) as the decimal separator, not a comma (e.g. 1500.00)
- Dates must be in DD/MM/YYYY format
- Currency must be TRY, USD, EUR or GBP
- Return ONLY the JSON, no explanation
- Turkish characters are allowed inside the JSON`, docType, text, schema)
}

// parseFields defensively parses the model response: markdown fences are
// stripped, malformed JSON yields an empty fields object, and each field is
// set only when present, non-null and of a usable type. Field-by-field
// parsing keeps one bad value from discarding the rest of the response.
func parseFields(response string) *DocumentFields {
	cleaned := stripCodeFences(response)

	var node map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &node); err != nil {
		log.Printf("⚠️ Failed to parse AI JSON response: %v", err)
		return &DocumentFields{}
	}

	fields := &DocumentFields{
		CompanyName:    getString(node, "companyName"),
		Date:           getString(node, "date"),
		DocumentNumber: getString(node, "documentNumber"),
		TotalAmount:    getDecimal(node, "totalAmount"),
		VatAmount:      getDecimal(node, "vatAmount"),
		Currency:       getString(node, "currency"),
		TaxID:          getString(node, "taxId"),
		Address:        getString(node, "address"),
		Description:    getString(node, "description"),
	}

	var items []json.RawMessage
	if raw, ok := node["items"]; ok {
		if err := json.Unmarshal(raw, &items); err == nil {
			for _, rawItem := range items {
				var itemNode map[string]json.RawMessage
				if err := json.Unmarshal(rawItem, &itemNode); err != nil {
					continue
				}
				fields.Items = append(fields.Items, InvoiceItem{
					Name:        getString(itemNode, "name"),
					Quantity:    getInt(itemNode, "quantity"),
					UnitPrice:   getDecimal(itemNode, "unitPrice"),
					TotalPrice:  getDecimal(itemNode, "totalPrice"),
					Description: getString(itemNode, "description"),
				})
			}
		}
	}

	return fields
}

// stripCodeFences removes a markdown ```json ... ``` wrapper if the model
// added one despite the prompt.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
