package backend

import (
	"testing"
	"time"
)

func TestAddMonths(t *testing.T) {
	cases := []struct {
		start  string
		months int
		want   string
	}{
		{"2024-01-15", 12, "2025-01-15"},
		{"2024-01-31", 1, "2024-02-29"},
		{"2023-01-31", 1, "2023-02-28"},
		{"2024-03-31", 1, "2024-04-30"},
		{"2024-12-31", 2, "2025-02-28"},
		{"2024-02-29", 12, "2025-02-28"},
		{"2024-05-10", 6, "2024-11-10"},
		{"2025-01-16", 12, "2026-01-16"},
	}

	for _, c := range cases {
		start, err := ParseDate(c.start)
		if err != nil {
			t.Fatal(err)
		}
		if got := FormatDate(AddMonths(start, c.months)); got != c.want {
			t.Errorf("AddMonths(%s, %d) => %s, want %s", c.start, c.months, got, c.want)
		}
	}
}

func TestDate(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	got := Date(time.Date(2024, time.March, 1, 2, 0, 0, 0, loc))
	if want := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("Date() => %s, want %s", got, want)
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "2024-02-30", "15/01/2024", "2024-1-5"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) => nil, want error", s)
		}
	}
}
