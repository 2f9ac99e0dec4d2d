package ui

import (
	"testing"
	"time"
)

func TestAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		ageSecs int
		want    string
	}{
		{"zero", 0, "0 minutes ago"},
		{"under a minute", 59, "0 minutes ago"},
		{"one minute", 60, "1 minute ago"},
		{"minutes", 125, "2 minutes ago"},
		{"last second of minutes", 3599, "59 minutes ago"},
		{"first second of hours", 3600, "1 hour ago"},
		{"hours", 7200, "2 hours ago"},
		{"last second of hours", 86399, "23 hours ago"},
		{"first second of days", 86400, "1 day ago"},
		{"one full day more", 172799, "1 day ago"},
		{"two days", 172800, "2 days ago"},
		{"many days", 864000, "10 days ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated := now.Add(-time.Duration(tt.ageSecs) * time.Second)
			if got := Age(updated, now); got != tt.want {
				t.Errorf("Age(-%ds) = %q, want %q", tt.ageSecs, got, tt.want)
			}
		})
	}
}

func TestAgeFutureTimestampClamps(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	updated := now.Add(5 * time.Minute)
	if got := Age(updated, now); got != "0 minutes ago" {
		t.Errorf("Age(future) = %q, want clamped to zero", got)
	}
}

func TestAgeCompact(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ageSecs int
		want    string
	}{
		{0, "0m"},
		{125, "2m"},
		{3599, "59m"},
		{3600, "1h"},
		{86399, "23h"},
		{86400, "1d"},
		{172800, "2d"},
	}

	for _, tt := range tests {
		updated := now.Add(-time.Duration(tt.ageSecs) * time.Second)
		if got := AgeCompact(updated, now); got != tt.want {
			t.Errorf("AgeCompact(-%ds) = %q, want %q", tt.ageSecs, got, tt.want)
		}
	}
}
