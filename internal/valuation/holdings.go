package valuation

import "github.com/ndewijer/mf-folio-backend/internal/model"

// IsActive reports whether a record is a live position: both its purchase amount
// and its allocated units parse to positive values.
func IsActive(r model.HoldingRecord) bool {
	invested, ok := ParseAmount(r.PurchaseAmount)
	if !ok || !invested.IsPositive() {
		return false
	}
	units, ok := ParseAmount(r.UnitsAllocated)
	return ok && units.IsPositive()
}

// ActiveHoldings returns the active records in their original order.
func ActiveHoldings(records []model.HoldingRecord) []model.HoldingRecord {
	active := make([]model.HoldingRecord, 0, len(records))
	for _, r := range records {
		if IsActive(r) {
			active = append(active, r)
		}
	}
	return active
}
