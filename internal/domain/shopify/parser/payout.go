package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/money"
)

// PayoutDateLayout is the strict layout of the "Payout Date" column.
const PayoutDateLayout = "2006-01-02"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// PayoutRow is a raw row of a Shopify payout report. Only the two columns
// needed for booking are mapped; gocsv ignores the rest.
type PayoutRow struct {
	Total      string `csv:"Total"`
	PayoutDate string `csv:"Payout Date"`
}

// Payout is a successfully parsed payout row.
type Payout struct {
	Row    int // data row number, 1-based, header excluded
	Amount *money.Money
	Date   time.Time
}

// PayoutResult contains the results of parsing one payout report.
type PayoutResult struct {
	Payouts   []Payout
	Errors    []ParseError
	TotalRows int
}

// PayoutParser parses Shopify payout CSV reports.
type PayoutParser struct {
	currency string
}

// NewPayoutParser creates a payout parser for EUR reports.
func NewPayoutParser() *PayoutParser {
	return &PayoutParser{currency: money.EUR}
}

// Parse reads all rows of a payout report. Rows with a missing or invalid
// Total or Payout Date end up in Errors; only unreadable CSV is an error.
func (p *PayoutParser) Parse(file string, r io.Reader) (*PayoutResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // Variable field count

	var rows []PayoutRow
	if err := gocsv.UnmarshalCSV(reader, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return &PayoutResult{}, nil
		}
		return nil, fmt.Errorf("failed to parse CSV %s: %w", file, err)
	}

	result := &PayoutResult{
		Payouts:   make([]Payout, 0, len(rows)),
		TotalRows: len(rows),
	}

	for i, row := range rows {
		payout, parseErr := p.parseRow(file, i+1, row)
		if parseErr != nil {
			result.Errors = append(result.Errors, *parseErr)
			continue
		}
		result.Payouts = append(result.Payouts, *payout)
	}

	return result, nil
}

func (p *PayoutParser) parseRow(file string, rowNum int, row PayoutRow) (*Payout, *ParseError) {
	raw := []RawValue{
		{Name: "total", Value: row.Total},
		{Name: "payout_date", Value: row.PayoutDate},
	}

	amount, amountErr := money.NewFromString(row.Total, p.currency)
	date, dateErr := ParsePayoutDate(row.PayoutDate)

	if err := errors.Join(amountErr, dateErr); err != nil {
		return nil, &ParseError{
			File: file,
			Row:  rowNum,
			Err:  fmt.Errorf("could not find all data: %w", err),
			Raw:  raw,
		}
	}

	return &Payout{Row: rowNum, Amount: amount, Date: date}, nil
}

// ParsePayoutDate parses a strict YYYY-MM-DD date.
func ParsePayoutDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty payout date")
	}
	t, err := time.Parse(PayoutDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid payout date %q: %w", s, err)
	}
	return t, nil
}
