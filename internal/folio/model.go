package folio

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ndewijer/mf-folio-backend/internal/apperrors"
	"github.com/ndewijer/mf-folio-backend/internal/model"
)

// folioResponse is the envelope returned by Portfolio/getFolioData.php.
// StatusData is kept raw because the endpoint sends a string or null instead of
// an array when a user has no folio.
type folioResponse struct {
	Success    bool            `json:"Success"`
	Message    string          `json:"Message"`
	StatusData json.RawMessage `json:"statusData"`
}

// profileResponse is the envelope returned by userDetails/getuserdetails.php.
type profileResponse struct {
	Success  bool           `json:"Success"`
	Message  string         `json:"Message"`
	UserData map[string]any `json:"userData"`
}

// holdingRow is one element of statusData.
type holdingRow struct {
	FundName       model.FlexString `json:"fund_name"`
	SchemeName     model.FlexString `json:"scheme_name"`
	SchemeCode     model.FlexString `json:"scheme_code"`
	FolioNumber    model.FlexString `json:"folio_no"`
	PurchaseAmount model.FlexString `json:"purchase_amount"`
	CurrentValue   model.FlexString `json:"current_value"`
	BoughtDate     model.FlexString `json:"bought_date"`
	UnitsAllocated model.FlexString `json:"units_allocated"`
}

func (r holdingRow) toRecord() model.HoldingRecord {
	name := string(r.FundName)
	if name == "" {
		name = string(r.SchemeName)
	}
	return model.HoldingRecord{
		FundName:       name,
		SchemeCode:     string(r.SchemeCode),
		FolioNumber:    string(r.FolioNumber),
		PurchaseAmount: string(r.PurchaseAmount),
		CurrentValue:   string(r.CurrentValue),
		PurchaseDate:   string(r.BoughtDate),
		UnitsAllocated: string(r.UnitsAllocated),
	}
}

// isJSONArray reports whether raw holds a JSON array.
func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func decodeRows(raw json.RawMessage) ([]model.HoldingRecord, error) {
	var rows []holdingRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}

	records := make([]model.HoldingRecord, len(rows))
	for i, row := range rows {
		records[i] = row.toRecord()
	}
	return records, nil
}

// DecodeHoldings decodes a saved folio export: either a whole getFolioData.php
// response or its bare statusData array. An envelope without holdings yields a
// *NoDataError.
func DecodeHoldings(data []byte) ([]model.HoldingRecord, error) {
	raw := json.RawMessage(data)
	if !isJSONArray(raw) {
		var env folioResponse
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidPayload, err)
		}
		if !env.Success || !isJSONArray(env.StatusData) {
			return nil, &NoDataError{Message: env.Message}
		}
		raw = env.StatusData
	}

	records, err := decodeRows(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidPayload, err)
	}
	return records, nil
}
