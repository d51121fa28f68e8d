package classify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode"
)

// DocumentType is the business classification of an uploaded document.
type DocumentType string

const (
	TypeInvoice       DocumentType = "INVOICE"
	TypeReceipt       DocumentType = "RECEIPT"
	TypeContract      DocumentType = "CONTRACT"
	TypeBankStatement DocumentType = "BANK_STATEMENT"
	TypeOther         DocumentType = "OTHER"
)

// Completer is the narrow AI collaborator needed for fallback
// classification; tests substitute deterministic doubles.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
}

// keywordEntry pairs a type with its language-specific keyword variants.
// The slice is scanned in a fixed order so texts matching keywords of more
// than one type classify reproducibly.
type keywordEntry struct {
	docType  DocumentType
	keywords []string
}

var keywordTable = []keywordEntry{
	{TypeInvoice, []string{"fatura", "invoice", "fatura no", "invoice no", "invoice number"}},
	{TypeReceipt, []string{"fiş", "makbuz", "receipt", "perakende", "satış fişi"}},
	{TypeContract, []string{"sözleşme", "contract", "agreement", "anlaşma"}},
	{TypeBankStatement, []string{"dekont", "eft", "havale", "statement", "banka dekontu", "transfer"}},
}

// Classifier maps OCR text to a document type: keyword pass first, AI
// fallback when no keyword hits.
type Classifier struct {
	ai Completer
}

// NewClassifier creates a document classifier
func NewClassifier(ai Completer) *Classifier {
	return &Classifier{ai: ai}
}

// Classify returns the document type for the given OCR text.
// Blank text classifies as OTHER immediately.
func (c *Classifier) Classify(ctx context.Context, ocrText string) DocumentType {
	if strings.TrimSpace(ocrText) == "" {
		log.Printf("⚠️ Empty OCR text, classifying as OTHER")
		return TypeOther
	}

	if t := classifyByKeywords(ocrText); t != TypeOther {
		log.Printf("📋 Keyword classification: %s", t)
		return t
	}

	log.Printf("🤖 No keywords matched, attempting AI classification")
	return c.classifyByAI(ctx, ocrText)
}

// classifyByKeywords scans the ordered keyword table and returns the first
// type with any keyword appearing as a case-insensitive substring.
func classifyByKeywords(text string) DocumentType {
	// Uppercase Turkish text needs the Turkish lowering (İ→i) while
	// uppercase English text needs the standard one (I→i); match against
	// both so "SATIŞ FİŞİ" and "INVOICE" each find their keyword.
	lower := strings.ToLower(text)
	lowerTR := strings.ToLowerSpecial(unicode.TurkishCase, text)

	for _, entry := range keywordTable {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) || strings.Contains(lowerTR, keyword) {
				return entry.docType
			}
		}
	}
	return TypeOther
}

func (c *Classifier) classifyByAI(ctx context.Context, ocrText string) DocumentType {
	// First 500 characters are enough to identify the type; saves tokens.
	sample := []rune(ocrText)
	if len(sample) > 500 {
		sample = sample[:500]
	}

	prompt := fmt.Sprintf(`The following text was read from a business document with OCR.
Determine the document type and return EXACTLY ONE of these words:
- INVOICE (if it is an invoice)
- RECEIPT (if it is a sales receipt)
- CONTRACT (if it is a contract or agreement)
- BANK_STATEMENT (if it is a bank slip, EFT or transfer receipt)
- OTHER (if none of the above)

Text:
%s

Answer (single word):`, string(sample))

	response, err := c.ai.Complete(ctx, "You classify business documents.", prompt, 0)
	if err != nil {
		log.Printf("❌ AI classification failed: %v", err)
		return TypeOther
	}

	switch DocumentType(strings.ToUpper(strings.TrimSpace(response))) {
	case TypeInvoice:
		return TypeInvoice
	case TypeReceipt:
		return TypeReceipt
	case TypeContract:
		return TypeContract
	case TypeBankStatement:
		return TypeBankStatement
	case TypeOther:
		return TypeOther
	default:
		log.Printf("⚠️ AI returned unknown document type %q, defaulting to OTHER", response)
		return TypeOther
	}
}
