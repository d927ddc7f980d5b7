package importer

import (
	"math/rand"
	"testing"
	"time"
)

func TestParseTimestampZuluAndOffsetAgree(t *testing.T) {
	zulu, err := parseTimestamp("2024-01-01T12:30:45Z", time.UTC)
	if err != nil {
		t.Fatalf("parse zulu: %v", err)
	}
	offset, err := parseTimestamp("2024-01-01T12:30:45+00:00", time.UTC)
	if err != nil {
		t.Fatalf("parse offset: %v", err)
	}
	if !zulu.Equal(offset) {
		t.Fatalf("zulu %v != offset %v", zulu, offset)
	}
	want := time.Date(2024, 1, 1, 12, 30, 45, 0, time.UTC)
	if !zulu.Equal(want) {
		t.Fatalf("got %v, want %v", zulu, want)
	}
}

func TestParseTimestampNaiveUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	got, err := parseTimestamp("2024-03-01T10:00:00", loc)
	if err != nil {
		t.Fatalf("parse naive: %v", err)
	}
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestParseTimestampEmpty(t *testing.T) {
	got, err := parseTimestamp("", time.UTC)
	if err != nil {
		t.Fatalf("empty input: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("expected zero time, got %v", got)
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	if _, err := parseTimestamp("not-a-date", time.UTC); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestRemapAuthorID(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, id := range []int{1, 5, 40, 50} {
		if got := remapAuthorID(id, rng); got != id {
			t.Fatalf("id %d should pass through, got %d", id, got)
		}
	}
	for i := 0; i < 1000; i++ {
		got := remapAuthorID(51+i, rng)
		if got < authorPoolMin || got > authorPoolMax {
			t.Fatalf("remapped id %d outside [%d, %d]", got, authorPoolMin, authorPoolMax)
		}
	}
}
