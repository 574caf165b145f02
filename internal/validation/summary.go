package validation

import (
	"fmt"

	"github.com/ndewijer/mf-folio-backend/internal/api/request"
)

// MaxSummaryRecords caps the records accepted by one summary request.
const MaxSummaryRecords = 5000

// ValidateSummaryRequest checks a POST summary body.
func ValidateSummaryRequest(req request.SummaryRequest) error {
	errors := make(map[string]string)

	if len(req.Records) > MaxSummaryRecords {
		errors["records"] = fmt.Sprintf("at most %d records are accepted", MaxSummaryRecords)
	}

	if _, err := ParseDate(req.Today); err != nil {
		errors["today"] = "today must be a date in YYYY-MM-DD format"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
