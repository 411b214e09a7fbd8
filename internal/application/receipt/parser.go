package receipt

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/transaction"
)

// Prompt is sent with every receipt image
const Prompt = `Analyze this receipt image and extract the following information in JSON format:
- Total amount (just the number)
- Date (in ISO format)
- Description or items purchased (brief summary)
- Merchant/store name
- Suggested category (one of: housing,transportation,groceries,utilities,entertainment,food,shopping,healthcare,education,personal,travel,insurance,gifts,bills,other-expense )

Only respond with valid JSON in this exact format:
{
  "amount": number,
  "date": "ISO date string",
  "description": "string",
  "merchantName": "string",
  "category": "string"
}

If its not a recipt, return an empty object`

var codeFence = regexp.MustCompile("```(?:json)?\\n?")

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type modelReply struct {
	Amount       decimal.Decimal `json:"amount"`
	Date         string          `json:"date"`
	Description  string          `json:"description"`
	MerchantName string          `json:"merchantName"`
	Category     string          `json:"category"`
}

// StripCodeFences removes markdown code fences the model wraps around JSON
func StripCodeFences(text string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(text, ""))
}

// ParseReply turns the model's text into a scan result. An empty JSON
// object means the image was not a receipt.
func ParseReply(text string) (*ScanResult, error) {
	cleaned := StripCodeFences(text)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return &ScanResult{IsReceipt: false}, nil
	}

	var reply modelReply
	if err := json.Unmarshal([]byte(cleaned), &reply); err != nil {
		return nil, err
	}

	result := &ScanResult{
		IsReceipt:    true,
		Amount:       reply.Amount,
		Description:  strings.TrimSpace(reply.Description),
		MerchantName: strings.TrimSpace(reply.MerchantName),
		Category:     normalizeCategory(reply.Category),
	}
	if d, ok := parseDate(reply.Date); ok {
		result.Date = &d
	}
	return result, nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// normalizeCategory maps the suggestion onto a known expense category
func normalizeCategory(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if c, ok := transaction.LookupCategory(id); ok && c.Type == transaction.TransactionTypeExpense {
		return c.ID
	}
	return transaction.OtherExpense
}
