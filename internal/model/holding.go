package model

import (
	"encoding/json"
	"time"
)

// HoldingRecord is one fund position as delivered by a holding source.
// Amounts and dates are kept as the raw strings the upstream folio API sends;
// they are parsed at valuation time, never here.
type HoldingRecord struct {
	FundName       string `json:"fund_name" csv:"fund_name"`
	SchemeCode     string `json:"scheme_code" csv:"scheme_code"`
	FolioNumber    string `json:"folio_number,omitempty" csv:"folio_number"`
	PurchaseAmount string `json:"purchase_amount" csv:"purchase_amount"`
	CurrentValue   string `json:"current_value" csv:"current_value"`
	PurchaseDate   string `json:"bought_date" csv:"bought_date"`
	UnitsAllocated string `json:"units_allocated" csv:"units_allocated"`
}

// UnmarshalJSON accepts numeric fields as JSON strings or numbers, the way the
// folio API delivers them. Values keep their literal text.
func (h *HoldingRecord) UnmarshalJSON(data []byte) error {
	var row struct {
		FundName       FlexString `json:"fund_name"`
		SchemeCode     FlexString `json:"scheme_code"`
		FolioNumber    FlexString `json:"folio_number"`
		PurchaseAmount FlexString `json:"purchase_amount"`
		CurrentValue   FlexString `json:"current_value"`
		PurchaseDate   FlexString `json:"bought_date"`
		UnitsAllocated FlexString `json:"units_allocated"`
	}
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}

	*h = HoldingRecord{
		FundName:       string(row.FundName),
		SchemeCode:     string(row.SchemeCode),
		FolioNumber:    string(row.FolioNumber),
		PurchaseAmount: string(row.PurchaseAmount),
		CurrentValue:   string(row.CurrentValue),
		PurchaseDate:   string(row.PurchaseDate),
		UnitsAllocated: string(row.UnitsAllocated),
	}
	return nil
}

// StoredHolding is a HoldingRecord persisted in the local holding table.
type StoredHolding struct {
	ID       string
	UserID   string
	Record   HoldingRecord
	SyncedAt time.Time
}

// ActiveHoldings is the list of live positions for a user. Message carries the
// upstream notice when the source had no folio.
type ActiveHoldings struct {
	Holdings []HoldingRecord
	Message  string
}

// Sync run statuses.
const (
	SyncStatusOK     = "ok"
	SyncStatusEmpty  = "empty"
	SyncStatusFailed = "failed"
)

// SyncRun records one attempt to copy a user's holdings from the upstream API.
type SyncRun struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	StartedAt   time.Time `json:"startedAt"`
	FinishedAt  time.Time `json:"finishedAt"`
	RecordCount int       `json:"recordCount"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
}
