// Package receipt renders printable receipts for finalized print jobs.
package receipt

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/printshop/backend/internal/domain/printing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// TemplateEngine renders receipt HTML with formatting helpers
type TemplateEngine struct {
	tmpl    *template.Template
	printer *message.Printer
	caser   cases.Caser
}

// TemplateOption configures the template engine
type TemplateOption func(*TemplateEngine)

// WithLanguage formats numbers and words for tag
func WithLanguage(tag language.Tag) TemplateOption {
	return func(e *TemplateEngine) {
		e.printer = message.NewPrinter(tag)
		e.caser = cases.Title(tag)
	}
}

// NewTemplateEngine parses content, or the built-in receipt layout when
// content is empty
func NewTemplateEngine(content string, opts ...TemplateOption) (*TemplateEngine, error) {
	e := &TemplateEngine{
		printer: message.NewPrinter(language.English),
		caser:   cases.Title(language.English),
	}
	for _, opt := range opts {
		opt(e)
	}
	if strings.TrimSpace(content) == "" {
		content = defaultTemplate
	}

	tmpl, err := template.New("receipt").Funcs(template.FuncMap{
		"formatMoney":    e.formatMoney,
		"formatDateTime": formatDateTime,
		"formatDate":     formatDate,
		"shortUUID":      shortUUID,
		"statusText":     e.statusText,
		"colorText":      colorText,
	}).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt template: %w", err)
	}
	e.tmpl = tmpl
	return e, nil
}

// Render executes the template against data
func (e *TemplateEngine) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := e.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute receipt template: %w", err)
	}
	return buf.String(), nil
}

// formatMoney renders an amount with two decimals and digit grouping
func (e *TemplateEngine) formatMoney(d decimal.Decimal) string {
	return e.printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.Scale(2)))
}

// statusText turns an enum such as PENDING_PAYMENT into "Pending Payment"
func (e *TemplateEngine) statusText(status string) string {
	return e.caser.String(strings.ReplaceAll(strings.ToLower(status), "_", " "))
}

func colorText(mode printing.ColorMode) string {
	if mode == printing.ColorModeColor {
		return "Color"
	}
	return "Black and white"
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

func shortUUID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}

const defaultTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Receipt {{shortUUID .Receipt.ID}}</title>
<style>
body { font-family: sans-serif; font-size: 12pt; color: #222; }
h1 { font-size: 18pt; margin-bottom: 0; }
.shop { color: #555; margin-top: 4px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
td { padding: 6px 0; border-bottom: 1px solid #ddd; }
td.value { text-align: right; }
.total td { font-weight: bold; border-bottom: none; }
.footer { margin-top: 24px; font-size: 9pt; color: #777; }
</style>
</head>
<body>
<h1>{{.ShopName}}</h1>
<div class="shop">{{.Location}}</div>
<table>
<tr><td>Receipt</td><td class="value">{{shortUUID .Receipt.ID}}</td></tr>
<tr><td>Print job</td><td class="value">{{shortUUID .Job.ID}}</td></tr>
<tr><td>Queue number</td><td class="value">{{.Job.QueueNumber}}</td></tr>
<tr><td>Paid at</td><td class="value">{{formatDateTime .Receipt.CreatedAt}}</td></tr>
<tr><td>Payment reference</td><td class="value">{{.Receipt.PaymentRef}}</td></tr>
<tr><td>Copies</td><td class="value">{{.Job.PrintOptions.Copies}}</td></tr>
<tr><td>Color</td><td class="value">{{colorText .Job.PrintOptions.Color}}</td></tr>
<tr><td>Status</td><td class="value">{{statusText .Job.Status}}</td></tr>
<tr class="total"><td>Amount</td><td class="value">{{formatMoney .Receipt.Amount}}</td></tr>
</table>
<div class="footer">Valid until {{formatDate .Receipt.ExpiresAt}}</div>
</body>
</html>
`
