package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/shopify-lexoffice-export/pkg/money"
)

const payoutsHeader = "Ausgabe,Auftraggeber,Verwendungszweck,Datum\n"

func TestPayoutPipeline_Process(t *testing.T) {
	t.Run("books rows across files in order", func(t *testing.T) {
		store, layout := newStore(t, "payouts")
		put(t, layout.NewDir, "payouts-jan.csv", "Payout Date,Status,Total,Currency\n2024-01-15,paid,116.50,EUR\n2024-01-22,paid,1234.5,EUR\n")
		put(t, layout.NewDir, "payouts-feb.csv", "Payout Date,Status,Total,Currency\n2024-02-05,paid,20,EUR\n")

		var logs bytes.Buffer
		res, err := NewPayoutPipeline(store, testLogger(&logs)).
			WithClock(fixedClock).
			Process(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, res.FilesSeen)
		assert.Equal(t, 2, res.FilesArchived)
		assert.Equal(t, 3, res.Records)
		assert.Empty(t, res.Skipped)
		assert.Equal(t, filepath.Join(layout.BaseDir, "2024-02-03-shopify-payouts.csv"), res.OutputPath)

		// payouts-feb.csv sorts before payouts-jan.csv
		assert.Equal(t, payoutsHeader+
			`"-20,00",Shopify Stripe AG,Sammelauszahlung,05.02.2024`+"\n"+
			`"-116,50",Shopify Stripe AG,Sammelauszahlung,15.01.2024`+"\n"+
			`"-1234,50",Shopify Stripe AG,Sammelauszahlung,22.01.2024`+"\n",
			readFile(t, res.OutputPath))

		assert.FileExists(t, filepath.Join(layout.ProcessedDir, "payouts-jan.csv"))
		assert.FileExists(t, filepath.Join(layout.ProcessedDir, "payouts-feb.csv"))
	})

	t.Run("empty total is skipped but the file is archived", func(t *testing.T) {
		store, layout := newStore(t, "payouts")
		put(t, layout.NewDir, "bad.csv", "Payout Date,Total\n2024-01-15,\n")

		var logs bytes.Buffer
		res, err := NewPayoutPipeline(store, testLogger(&logs)).
			WithClock(fixedClock).
			Process(context.Background())
		require.NoError(t, err)

		assert.Zero(t, res.Records)
		require.Len(t, res.Skipped, 1)
		assert.True(t, errors.Is(res.Skipped[0], money.ErrEmptyAmount))
		assert.Equal(t, 1, res.FilesArchived)
		assert.FileExists(t, filepath.Join(layout.ProcessedDir, "bad.csv"))
		assert.NoFileExists(t, filepath.Join(layout.NewDir, "bad.csv"))

		// Zero records: no output at all.
		assert.Empty(t, res.OutputPath)
		assert.NoFileExists(t, filepath.Join(layout.BaseDir, "2024-02-03-shopify-payouts.csv"))
		assert.Contains(t, logs.String(), "could not find all data for payout row")
		assert.Contains(t, logs.String(), "bad.csv")
	})

	t.Run("partially valid file keeps its valid rows", func(t *testing.T) {
		store, layout := newStore(t, "payouts")
		put(t, layout.NewDir, "mixed.csv", "Payout Date,Total\n2024-01-15,\nnot-a-date,5.00\n2024-01-17,7.25\n")

		var logs bytes.Buffer
		res, err := NewPayoutPipeline(store, testLogger(&logs)).
			WithClock(fixedClock).
			Process(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, res.Records)
		assert.Len(t, res.Skipped, 2)
		assert.Equal(t, payoutsHeader+`"-7,25",Shopify Stripe AG,Sammelauszahlung,17.01.2024`+"\n", readFile(t, res.OutputPath))
		assert.FileExists(t, filepath.Join(layout.ProcessedDir, "mixed.csv"))
	})

	t.Run("no input files writes nothing", func(t *testing.T) {
		store, layout := newStore(t, "payouts")

		var logs bytes.Buffer
		res, err := NewPayoutPipeline(store, testLogger(&logs)).
			WithClock(fixedClock).
			Process(context.Background())
		require.NoError(t, err)

		assert.Zero(t, res.FilesSeen)
		assert.Empty(t, res.OutputPath)
		assert.NoFileExists(t, filepath.Join(layout.BaseDir, "2024-02-03-shopify-payouts.csv"))
	})

	t.Run("write empty enabled writes the header", func(t *testing.T) {
		store, _ := newStore(t, "payouts")

		var logs bytes.Buffer
		res, err := NewPayoutPipeline(store, testLogger(&logs)).
			WithClock(fixedClock).
			WithWriteEmpty(true).
			Process(context.Background())
		require.NoError(t, err)

		require.NotEmpty(t, res.OutputPath)
		assert.Equal(t, payoutsHeader, readFile(t, res.OutputPath))
	})
}

func TestPayoutPipeline_GeneratedReports(t *testing.T) {
	gen := money.NewTestDataGeneratorWithSeed(11)
	store, layout := newStore(t, "payouts")

	var b bytes.Buffer
	b.WriteString("Payout Date,Total\n")
	wantDates := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		d := gen.PayoutDate()
		b.WriteString(d.Format("2006-01-02") + "," + gen.PayoutTotal() + "\n")
		wantDates = append(wantDates, d.Format("02.01.2006"))
	}
	put(t, layout.NewDir, "generated.csv", b.String())

	var logs bytes.Buffer
	res, err := NewPayoutPipeline(store, testLogger(&logs)).
		WithClock(fixedClock).
		Process(context.Background())
	require.NoError(t, err)
	require.Equal(t, 25, res.Records)

	out := readFile(t, res.OutputPath)
	for _, d := range wantDates {
		assert.Contains(t, out, ",Shopify Stripe AG,Sammelauszahlung,"+d+"\n")
	}
	assert.Regexp(t, `(?m)^"-\d+,\d{2}",Shopify Stripe AG`, out)
}
