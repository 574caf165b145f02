package valuation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are the purchase-date shapes seen in folio payloads, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02-01-2006",
}

// ParseAmount parses a monetary field. Blank or unparsable input yields zero and ok=false.
// Thousands separators are ignored.
func ParseAmount(raw string) (amount decimal.Decimal, ok bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return decimal.Zero, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseDate parses a purchase date and truncates it to the calendar day in UTC.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return calendarDay(t), true
		}
	}
	return time.Time{}, false
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
