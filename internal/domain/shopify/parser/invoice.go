package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Line prefixes of a Shopify Payments invoice, as rendered by pdftotext.
const (
	AmountPrefix       = "Amount (EUR) "
	DescriptionPrefix  = "Shopify Payments Invoice for "
	ReferencePrefix    = "Invoice Reference #"
	referenceSeparator = " - "
	issuedPrefix       = "Issued "
)

// InvoiceDateLayout is the layout of the issue date, e.g. "January 5, 2024".
const InvoiceDateLayout = "January 2, 2006"

// ErrMissingField is wrapped by invoice parse errors.
var ErrMissingField = errors.New("missing field")

// Invoice holds the bookable values of one invoice.
type Invoice struct {
	Amount      string // verbatim last token of the amount line, e.g. "45.99"
	Description string
	Issued      time.Time
}

// InvoiceFields holds the raw captures of a scan. Later matching lines
// overwrite earlier ones.
type InvoiceFields struct {
	Amount      string
	Description string
	IssuedRaw   string
	hasIssued   bool
}

// SplitLines splits extracted PDF text into lines, dropping empty ones and
// trailing carriage returns.
func SplitLines(text string) []string {
	parts := strings.Split(text, "\n")
	lines := make([]string, 0, len(parts))
	for _, line := range parts {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ScanInvoice applies the three prefix rules to every line.
func ScanInvoice(lines []string) InvoiceFields {
	var f InvoiceFields

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, AmountPrefix):
			tokens := strings.Split(strings.TrimPrefix(line, AmountPrefix), " ")
			f.Amount = tokens[len(tokens)-1]

		case strings.HasPrefix(line, DescriptionPrefix):
			f.Description = strings.TrimPrefix(line, DescriptionPrefix)

		case strings.HasPrefix(line, ReferencePrefix):
			var issued string
			if segments := strings.Split(line, referenceSeparator); len(segments) > 1 {
				issued = segments[1]
			}
			f.IssuedRaw = strings.TrimPrefix(issued, issuedPrefix)
			f.hasIssued = true
		}
	}

	return f
}

// ParseInvoice extracts an Invoice from the full text of one PDF.
func ParseInvoice(file, text string) (*Invoice, *ParseError) {
	f := ScanInvoice(SplitLines(text))

	var missing []string
	if isBlank(f.Amount) {
		missing = append(missing, "amount")
	}
	if isBlank(f.Description) {
		missing = append(missing, "description")
	}

	var issued time.Time
	if !f.hasIssued {
		missing = append(missing, "invoice date")
	} else {
		t, err := time.Parse(InvoiceDateLayout, f.IssuedRaw)
		if err != nil {
			missing = append(missing, "invoice date")
		}
		issued = t
	}

	if len(missing) > 0 {
		return nil, &ParseError{
			File: file,
			Err:  fmt.Errorf("could not find all data: %w: %s", ErrMissingField, strings.Join(missing, ", ")),
			Raw: []RawValue{
				{Name: "amount", Value: f.Amount},
				{Name: "description", Value: f.Description},
				{Name: "invoice_date", Value: f.IssuedRaw},
			},
		}
	}

	return &Invoice{
		Amount:      f.Amount,
		Description: f.Description,
		Issued:      issued,
	}, nil
}

// isBlank reports a capture that carries no value. A lone "0" counts as
// blank, so an invoice for "Amount (EUR) 0" is reported instead of booked.
func isBlank(s string) bool {
	return s == "" || s == "0"
}
