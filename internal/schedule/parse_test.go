package schedule

import (
	"testing"
	"time"
)

func TestParseDateFormats(t *testing.T) {
	want := time.Date(2025, time.November, 24, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name  string
		input string
	}{
		{"abbreviated month", "24 Nov 2025"},
		{"full month", "24 November 2025"},
		{"slash separated", "24/11/2025"},
		{"dash separated", "24-11-2025"},
		{"iso", "2025-11-24"},
		{"surrounding whitespace", "  24 Nov 2025  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if err != nil {
				t.Fatalf("ParseDate(%q) returned error: %v", tt.input, err)
			}
			if !got.Equal(want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, want)
			}
		})
	}
}

func TestParseDateNonPadded(t *testing.T) {
	got, err := ParseDate("4/3/2025")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	want := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("ParseDate(4/3/2025) = %v, want %v", got, want)
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, input := range []string{"", "next tuesday", "24 Movember 2025", "2025/24/11"} {
		if _, err := ParseDate(input); err != ErrInvalidDate {
			t.Errorf("ParseDate(%q) error = %v, want ErrInvalidDate", input, err)
		}
	}
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock("14:30")
	if err != nil {
		t.Fatalf("ParseClock returned error: %v", err)
	}
	if want := 14*time.Hour + 30*time.Minute; got != want {
		t.Errorf("ParseClock = %v, want %v", got, want)
	}

	for _, input := range []string{"", "2pm", "25:00", "14:61", "14.30"} {
		if _, err := ParseClock(input); err != ErrInvalidTime {
			t.Errorf("ParseClock(%q) error = %v, want ErrInvalidTime", input, err)
		}
	}
}

func TestWindow(t *testing.T) {
	date := time.Date(2025, time.November, 24, 0, 0, 0, 0, time.Local)
	start, end := Window(date, 14*time.Hour, 2*time.Hour)

	if want := time.Date(2025, time.November, 24, 14, 0, 0, 0, time.Local); !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
	if want := time.Date(2025, time.November, 24, 16, 0, 0, 0, time.Local); !end.Equal(want) {
		t.Errorf("end = %v, want %v", end, want)
	}
	if !start.Before(end) {
		t.Error("start must precede end")
	}
}
