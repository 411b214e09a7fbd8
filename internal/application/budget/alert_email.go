package budget

import (
	"bytes"
	"html/template"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/welth/backend/internal/domain/transaction"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// maxAlertCategories caps the category breakdown in the alert email
const maxAlertCategories = 5

var (
	titleCaser = cases.Title(language.English)
	printer    = message.NewPrinter(language.English)
)

// CategorySpend is one line of the category breakdown
type CategorySpend struct {
	Name   string
	Amount string
}

// AlertEmailData fills the budget alert template
type AlertEmailData struct {
	UserName      string
	AccountName   string
	Percentage    string
	Budget        string
	Spent         string
	Remaining     string
	TopCategories []CategorySpend
}

var alertTemplate = template.Must(template.New("budget_alert").Parse(`<!DOCTYPE html>
<html>
<body style="background-color:#f6f9fc;font-family:-apple-system,sans-serif;">
  <div style="background-color:#ffffff;margin:0 auto;padding:20px;border-radius:5px;">
    <h1 style="color:#1f2937;text-align:center;">Budget Alert</h1>
    <p>Hello {{.UserName}},</p>
    <p>You&rsquo;ve used {{.Percentage}}% of your monthly budget for <strong>{{.AccountName}}</strong>.</p>
    <table style="width:100%;margin:20px 0;">
      <tr><td>Budget Amount</td><td style="text-align:right;">{{.Budget}}</td></tr>
      <tr><td>Spent So Far</td><td style="text-align:right;">{{.Spent}}</td></tr>
      <tr><td>Remaining</td><td style="text-align:right;">{{.Remaining}}</td></tr>
    </table>
    {{- if .TopCategories}}
    <h2 style="color:#1f2937;font-size:18px;">Top categories this month</h2>
    <ul>
      {{- range .TopCategories}}
      <li>{{.Name}}: {{.Amount}}</li>
      {{- end}}
    </ul>
    {{- end}}
    <p style="color:#6b7280;font-size:12px;">Sent by Welth, your AI finance platform.</p>
  </div>
</body>
</html>
`))

// AlertSubject is the subject line for an account's budget alert
func AlertSubject(accountName string) string {
	return "Budget Alert for " + accountName
}

// RenderAlertEmail renders the budget alert HTML
func RenderAlertEmail(data AlertEmailData) (string, error) {
	var buf bytes.Buffer
	if err := alertTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatMoney renders an amount with grouping separators, e.g. $1,234.50
func formatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("$%.2f", f)
}

// CategoryDisplayName returns the display name of a category ID.
// Unknown IDs are title-cased, so "pet-care" becomes "Pet Care".
func CategoryDisplayName(id string) string {
	if c, ok := transaction.LookupCategory(id); ok {
		return c.Name
	}
	return titleCaser.String(strings.ReplaceAll(id, "-", " "))
}

// topExpenseCategories sums expenses per category and returns the largest first
func topExpenseCategories(txs []*transaction.Transaction, limit int) []CategorySpend {
	totals := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if t.Type != transaction.TransactionTypeExpense {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}

	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if c := totals[ids[i]].Cmp(totals[ids[j]]); c != 0 {
			return c > 0
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}

	out := make([]CategorySpend, len(ids))
	for i, id := range ids {
		out[i] = CategorySpend{Name: CategoryDisplayName(id), Amount: formatMoney(totals[id])}
	}
	return out
}
