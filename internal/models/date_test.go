package models

import (
	"testing"
	"time"
)

func TestDateOf(t *testing.T) {
	t.Parallel()

	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	instant := time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		loc  *time.Location
		want Date
	}{
		{name: "utc", loc: time.UTC, want: "2024-01-02"},
		{name: "nil location means utc", loc: nil, want: "2024-01-02"},
		{name: "ahead of utc rolls over", loc: kolkata, want: "2024-01-03"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DateOf(instant, tt.loc); got != tt.want {
				t.Errorf("DateOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDate_AddDays(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		date Date
		n    int
		want Date
	}{
		{name: "previous day", date: "2024-01-03", n: -1, want: "2024-01-02"},
		{name: "across month", date: "2024-03-01", n: -1, want: "2024-02-29"},
		{name: "across year", date: "2024-01-01", n: -1, want: "2023-12-31"},
		{name: "forward", date: "2024-12-31", n: 1, want: "2025-01-01"},
		{name: "zero", date: "2024-06-15", n: 0, want: "2024-06-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.date.AddDays(tt.n); got != tt.want {
				t.Errorf("AddDays(%d) = %s, want %s", tt.n, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	if _, err := ParseDate("2024-02-30"); err == nil {
		t.Error("expected error for impossible date")
	}
	if _, err := ParseDate("yesterday"); err == nil {
		t.Error("expected error for non-date")
	}
	got, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "2024-02-29" {
		t.Errorf("ParseDate() = %s, want 2024-02-29", got)
	}
}

func TestDate_Scan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     any
		want    Date
		wantErr bool
	}{
		{name: "time from driver", src: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), want: "2024-01-01"},
		{name: "plain string", src: "2024-01-05", want: "2024-01-05"},
		{name: "timestamp string", src: "2024-01-05T00:00:00Z", want: "2024-01-05"},
		{name: "bytes", src: []byte("2024-01-06"), want: "2024-01-06"},
		{name: "nil", src: nil, want: ""},
		{name: "garbage", src: "nope", wantErr: true},
		{name: "wrong type", src: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var d Date
			err := d.Scan(tt.src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Scan() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d != tt.want {
				t.Errorf("Scan() = %s, want %s", d, tt.want)
			}
		})
	}
}

func TestDate_Value(t *testing.T) {
	t.Parallel()

	v, err := Date("2024-01-01").Value()
	if err != nil || v != "2024-01-01" {
		t.Errorf("Value() = %v, %v", v, err)
	}
	v, err = Date("").Value()
	if err != nil || v != nil {
		t.Errorf("Value() of empty date = %v, %v; want nil", v, err)
	}
}
