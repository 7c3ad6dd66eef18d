package etfcap

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := NewDate(2026, 10, 31)
	d2 := NewDate(2026, 10, 31)

	if d1.time() != d2.time() {
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		on   Date
		days int
		want Date
	}{
		{NewDate(2026, 10, 19), -1, NewDate(2026, 10, 18)},
		{NewDate(2026, 3, 1), -1, NewDate(2026, 2, 28)},
		{NewDate(2024, 3, 1), -1, NewDate(2024, 2, 29)},
		{NewDate(2026, 12, 31), 1, NewDate(2027, 1, 1)},
	}
	for _, tt := range tests {
		if got := tt.on.Add(tt.days); got != tt.want {
			t.Errorf("%v.Add(%d) = %v, want %v", tt.on, tt.days, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected Date
		err      bool
	}{
		{"2026-10-19", NewDate(2026, 10, 19), false},
		{"2026-1-2", NewDate(2026, 1, 2), false},
		{"19/10/2026", Date{}, true},
		{"", Date{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.input)
		if (err != nil) != tt.err {
			t.Errorf("ParseDate(%q) error = %v, want error %v", tt.input, err, tt.err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestDate_JSON(t *testing.T) {
	var got struct {
		On Date `json:"date"`
	}
	if err := json.Unmarshal([]byte(`{"date": "2026-10-16"}`), &got); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if want := NewDate(2026, 10, 16); got.On != want {
		t.Errorf("Unmarshal() = %v, want %v", got.On, want)
	}
	data, err := json.Marshal(got.On)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	if string(data) != `"2026-10-16"` {
		t.Errorf("Marshal() = %s, want \"2026-10-16\"", data)
	}
}

func TestToday(t *testing.T) {
	y, m, d := time.Now().Date()
	if got := Today(); got != NewDate(y, m, d) && got != NewDate(y, m, d).Add(1) {
		t.Errorf("Today() = %v, want %v", got, NewDate(y, m, d))
	}
}
