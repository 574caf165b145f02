package valuation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"10000", "10000", true},
		{"12000.55", "12000.55", true},
		{"  42.10 ", "42.1", true},
		{"1,23,456.78", "123456.78", true},
		{"-15", "-15", true},
		{"", "0", false},
		{"   ", "0", false},
		{"abc", "0", false},
		{"12abc", "0", false},
		{"NaN", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC)

	valid := []string{
		"2023-04-05",
		" 2023-04-05 ",
		"2023-04-05 13:22:01",
		"2023-04-05T23:10:00+05:30",
		"05-04-2023",
	}
	for _, in := range valid {
		t.Run(in, func(t *testing.T) {
			got, ok := ParseDate(in)
			assert.True(t, ok)
			assert.Equal(t, want, got)
		})
	}

	invalid := []string{"", "tomorrow", "2023/04/05", "2023-13-01"}
	for _, in := range invalid {
		t.Run("invalid "+in, func(t *testing.T) {
			_, ok := ParseDate(in)
			assert.False(t, ok)
		})
	}
}
