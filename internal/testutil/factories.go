package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ndewijer/mf-folio-backend/internal/model"
	"github.com/ndewijer/mf-folio-backend/internal/repository"
)

// HoldingBuilder provides a fluent interface for creating test holding records.
//
// Example usage:
//
//	// Simple creation with defaults
//	rec := testutil.NewHolding().Record()
//
//	// Customized holding
//	rec := testutil.NewHolding().
//	    WithPurchaseAmount("10000").
//	    WithCurrentValue("11000").
//	    WithPurchaseDate(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)).
//	    Record()
type HoldingBuilder struct {
	FundName       string
	SchemeCode     string
	FolioNumber    string
	PurchaseAmount string
	CurrentValue   string
	PurchaseDate   string
	UnitsAllocated string
}

// NewHolding creates a HoldingBuilder with sensible defaults: an active position
// bought a year before 2024-01-01 for 10000, now worth 11000.
func NewHolding() *HoldingBuilder {
	return &HoldingBuilder{
		FundName:       MakeFundName("Test Fund"),
		SchemeCode:     MakeSchemeCode(),
		FolioNumber:    MakeFolioNumber(),
		PurchaseAmount: "10000",
		CurrentValue:   "11000",
		PurchaseDate:   "2023-01-01",
		UnitsAllocated: "100",
	}
}

// WithFundName sets the fund name.
func (b *HoldingBuilder) WithFundName(name string) *HoldingBuilder {
	b.FundName = name
	return b
}

// WithSchemeCode sets the scheme code.
func (b *HoldingBuilder) WithSchemeCode(code string) *HoldingBuilder {
	b.SchemeCode = code
	return b
}

// WithPurchaseAmount sets the raw purchase amount.
func (b *HoldingBuilder) WithPurchaseAmount(amount string) *HoldingBuilder {
	b.PurchaseAmount = amount
	return b
}

// WithCurrentValue sets the raw current value.
func (b *HoldingBuilder) WithCurrentValue(value string) *HoldingBuilder {
	b.CurrentValue = value
	return b
}

// WithPurchaseDate sets the purchase date in YYYY-MM-DD form.
func (b *HoldingBuilder) WithPurchaseDate(date time.Time) *HoldingBuilder {
	b.PurchaseDate = date.Format("2006-01-02")
	return b
}

// WithRawPurchaseDate sets the purchase date text verbatim, for malformed input tests.
func (b *HoldingBuilder) WithRawPurchaseDate(raw string) *HoldingBuilder {
	b.PurchaseDate = raw
	return b
}

// WithUnits sets the raw allocated units.
func (b *HoldingBuilder) WithUnits(units string) *HoldingBuilder {
	b.UnitsAllocated = units
	return b
}

// Redeemed marks the holding as fully sold: zero units allocated.
func (b *HoldingBuilder) Redeemed() *HoldingBuilder {
	b.UnitsAllocated = "0"
	return b
}

// Record returns the built holding record without touching a database.
func (b *HoldingBuilder) Record() model.HoldingRecord {
	return model.HoldingRecord{
		FundName:       b.FundName,
		SchemeCode:     b.SchemeCode,
		FolioNumber:    b.FolioNumber,
		PurchaseAmount: b.PurchaseAmount,
		CurrentValue:   b.CurrentValue,
		PurchaseDate:   b.PurchaseDate,
		UnitsAllocated: b.UnitsAllocated,
	}
}

// Convenience functions

// CreateHoldings creates count default holding records with unique names.
func CreateHoldings(count int) []model.HoldingRecord {
	records := make([]model.HoldingRecord, count)
	for i := range count {
		records[i] = NewHolding().Record()
	}
	return records
}

// SeedHoldings stores records for userID in the local holding table and records a
// successful sync run, as a completed sync would.
//
// Example usage:
//
//	testutil.SeedHoldings(t, db, "42", testutil.NewHolding().Record())
func SeedHoldings(t *testing.T, db *sql.DB, userID string, records ...model.HoldingRecord) {
	t.Helper()

	ctx := context.Background()
	repo := repository.NewHoldingRepository(db)

	n, err := repo.ReplaceHoldings(ctx, userID, records)
	if err != nil {
		t.Fatalf("Failed to seed holdings: %v", err)
	}

	now := time.Now().UTC()
	err = repo.RecordSyncRun(ctx, model.SyncRun{
		UserID:      userID,
		StartedAt:   now,
		FinishedAt:  now,
		RecordCount: n,
		Status:      model.SyncStatusOK,
	})
	if err != nil {
		t.Fatalf("Failed to seed sync run: %v", err)
	}
}
