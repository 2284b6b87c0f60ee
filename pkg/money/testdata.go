package money

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// TestDataGenerator generates realistic Shopify report values using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(seed),
	}
}

// PayoutTotal returns a payout total the way Shopify writes it in the
// "Total" column: a dot decimal with up to two fraction digits.
func (g *TestDataGenerator) PayoutTotal() string {
	cents := g.faker.Int64() % 2_000_000
	if cents < 0 {
		cents = -cents
	}
	cents++
	return decimal.New(cents, -2).String()
}

// PayoutDate returns a random calendar date within the last five years.
func (g *TestDataGenerator) PayoutDate() time.Time {
	now := time.Now().UTC()
	d := g.faker.DateRange(now.AddDate(-5, 0, 0), now)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// InvoicePeriod returns a description such as "Mar 2024" as it appears after
// "Shopify Payments Invoice for ".
func (g *TestDataGenerator) InvoicePeriod() string {
	return g.PayoutDate().Format("Jan 2006")
}
