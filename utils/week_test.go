package utils

import (
	"testing"
	"time"
)

func TestWeekStart(t *testing.T) {
	// Thursday 2026-09-03 15:30 UTC
	thursday := time.Date(2026, 9, 3, 15, 30, 0, 0, time.UTC)
	got := WeekStart(thursday)
	want := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC) // Monday
	if !got.Equal(want) {
		t.Fatalf("WeekStart = %v, want %v", got, want)
	}

	// a Monday maps to itself
	monday := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)
	if got := WeekStart(monday); !got.Equal(want) {
		t.Fatalf("WeekStart(monday) = %v, want %v", got, want)
	}
}

func TestNextMondayIsStrictlyAfter(t *testing.T) {
	// from a Monday, the next Monday is a week out
	monday := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	got := NextMonday(monday)
	want := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("NextMonday(monday) = %v, want %v", got, want)
	}

	// from a Sunday, it is tomorrow
	sunday := time.Date(2026, 9, 6, 10, 0, 0, 0, time.UTC)
	if got := NextMonday(sunday); !got.Equal(want) {
		t.Fatalf("NextMonday(sunday) = %v, want %v", got, want)
	}
}

func TestLastWeekStart(t *testing.T) {
	thursday := time.Date(2026, 9, 3, 12, 0, 0, 0, time.UTC)
	got := LastWeekStart(thursday)
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("LastWeekStart = %v, want %v", got, want)
	}
}

func TestDayStart(t *testing.T) {
	moment := time.Date(2026, 9, 3, 23, 45, 12, 0, time.UTC)
	got := DayStart(moment)
	want := time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("DayStart = %v, want %v", got, want)
	}
}
