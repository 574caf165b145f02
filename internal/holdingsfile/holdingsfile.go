// Package holdingsfile loads exported folios from disk for offline valuation.
package holdingsfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
	"github.com/ndewijer/mf-folio-backend/internal/folio"
	"github.com/ndewijer/mf-folio-backend/internal/model"
)

// Load reads holdings from path. Files ending in .csv are read as CSV with a
// header row; anything else is read as JSON.
func Load(path string) ([]model.HoldingRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open holdings file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return ReadCSV(f)
	}
	return ReadJSON(f)
}

// ReadJSON decodes a getFolioData.php response or its bare statusData array.
func ReadJSON(r io.Reader) ([]model.HoldingRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read holdings: %w", err)
	}
	return folio.DecodeHoldings(data)
}

// ReadCSV decodes rows with the columns
// fund_name,scheme_code,folio_number,purchase_amount,current_value,bought_date,units_allocated.
// Missing columns are left empty; cells are kept verbatim.
func ReadCSV(r io.Reader) ([]model.HoldingRecord, error) {
	records := []model.HoldingRecord{}
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidPayload, err)
	}
	return records, nil
}
