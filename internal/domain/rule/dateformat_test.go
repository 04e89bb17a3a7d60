package rule

import (
	"errors"
	"testing"
	"time"
)

func TestTranslateDateFormat(t *testing.T) {
	tests := []struct {
		pattern string
		layout  string
		hasYear bool
	}{
		{"dd-MM-yy", "2-1-06", true},
		{"dd/MM/yyyy", "2/1/2006", true},
		{"ddMMMyy", "2Jan06", true},
		{"dd-MMM-yy", "2-Jan-06", true},
		{"d MMMM yyyy", "2 January 2006", true},
		{"yyyy-MM-dd:HH:mm:ss", "2006-1-2:15:4:5", true},
		{"dd-MM-yy HH:mm:ss", "2-1-06 15:4:5", true},
		{"hh:mm a", "3:4 PM", false},
		{"EEE, dd MMM", "Mon, 2 Jan", false},
		{"EEEE", "Monday", false},
		{"dd MMM 'at' HH:mm", "2 Jan at 15:4", false},
		{"dd''MM", "2'1", false},
		{"yyyy-MM-dd HH:mm Z", "2006-1-2 15:4 -0700", true},
		{"HH:mm XXX", "15:4 -07:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			layout, hasYear, err := TranslateDateFormat(tt.pattern)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if layout != tt.layout {
				t.Errorf("layout = %q, want %q", layout, tt.layout)
			}
			if hasYear != tt.hasYear {
				t.Errorf("hasYear = %v, want %v", hasYear, tt.hasYear)
			}
		})
	}
}

func TestTranslateDateFormat_Unsupported(t *testing.T) {
	patterns := []string{
		"",
		"dd-MM-yy HH:mm:ss.SSS",
		"dd 'of' MMM 'unterminated",
		"dd-MM-2024",
		"'day 1' dd",
		"ww/yyyy",
		"G yyyy",
	}

	for _, p := range patterns {
		t.Run(p, func(t *testing.T) {
			_, _, err := TranslateDateFormat(p)
			if !errors.Is(err, errUntranslatableDate) {
				t.Errorf("expected errUntranslatableDate, got %v", err)
			}
		})
	}
}

func TestTranslateDateFormat_ParsesPaddedAndUnpadded(t *testing.T) {
	layout, _, err := TranslateDateFormat("dd-MMM-yy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, value := range []string{"05-Jan-24", "5-Jan-24", "05-JAN-24"} {
		got, err := time.Parse(layout, value)
		if err != nil {
			t.Errorf("parse %q: %v", value, err)
			continue
		}
		if got.Year() != 2024 || got.Month() != time.January || got.Day() != 5 {
			t.Errorf("parse %q = %v", value, got)
		}
	}
}
