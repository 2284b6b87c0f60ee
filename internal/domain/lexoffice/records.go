// Package lexoffice defines the rows of the CSV files the Lexoffice bank
// import understands.
package lexoffice

import "time"

// DateLayout is the date format Lexoffice expects (DD.MM.YYYY).
const DateLayout = "02.01.2006"

// Fixed counterparty and purpose values.
const (
	TransactionCounterparty = "Shopify Payments"
	PayoutCounterparty      = "Shopify Stripe AG"
	PayoutDescription       = "Sammelauszahlung"
)

// TransactionRecord is one Shopify Payments invoice, booked as an expense.
type TransactionRecord struct {
	Amount       string `csv:"Betrag"`
	Counterparty string `csv:"Auftraggeber / Empfänger"`
	Description  string `csv:"Verwendungszweck"`
	Date         string `csv:"Datum"`
}

// PayoutRecord is one payout row transferred out of Shopify.
type PayoutRecord struct {
	Amount       string `csv:"Ausgabe"`
	Counterparty string `csv:"Auftraggeber"`
	Description  string `csv:"Verwendungszweck"`
	Date         string `csv:"Datum"`
}

// NewTransactionRecord builds a record from the raw invoice amount (taken
// verbatim from the PDF), the invoice description and the issue date.
func NewTransactionRecord(amount, description string, issued time.Time) TransactionRecord {
	return TransactionRecord{
		Amount:       Debit(amount),
		Counterparty: TransactionCounterparty,
		Description:  description,
		Date:         FormatDate(issued),
	}
}

// NewPayoutRecord builds a record from an already formatted amount ("1234,50").
func NewPayoutRecord(amount string, paidOut time.Time) PayoutRecord {
	return PayoutRecord{
		Amount:       Debit(amount),
		Counterparty: PayoutCounterparty,
		Description:  PayoutDescription,
		Date:         FormatDate(paidOut),
	}
}

// Debit marks an amount as outgoing by prefixing it with "-". The prefix is
// applied textually: a source value that is already negative ends up with
// two signs, which makes such rows stand out in Lexoffice.
func Debit(amount string) string {
	return "-" + amount
}

// FormatDate renders t as DD.MM.YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
