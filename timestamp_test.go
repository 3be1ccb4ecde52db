package ledger

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want Timestamp
	}{
		{"2025-01-15 10:30:00", At(2025, time.January, 15, 10, 30, 0)},
		{"2025-01-15T10:30:00Z", At(2025, time.January, 15, 10, 30, 0)},
		{"2025-01-15", At(2025, time.January, 15, 0, 0, 0)},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q): %v", tc.in, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseTimestamp(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}

	if _, err := ParseTimestamp("15/01/2025"); err == nil {
		t.Error("ParseTimestamp accepted an unsupported format")
	}
}

func TestTimestamp_RoundTrip(t *testing.T) {
	orig := At(2025, time.June, 30, 23, 59, 59)
	parsed, err := ParseTimestamp(orig.String())
	if err != nil {
		t.Fatalf("ParseTimestamp(%q): %v", orig.String(), err)
	}
	if !parsed.Equal(orig) {
		t.Errorf("round trip changed the instant: %s to %s", orig, parsed)
	}
}

func TestKey_Compare(t *testing.T) {
	early := K(on(1), 5)
	late := K(on(2), 1)
	if !early.Less(late) {
		t.Error("time dominates the ordering, seq is only the tiebreak")
	}
	// Same instant: insertion sequence decides.
	if !K(on(1), 1).Less(K(on(1), 2)) {
		t.Error("equal instants must order by seq")
	}
	if K(on(1), 2).Compare(K(on(1), 2)) != 0 {
		t.Error("a key must compare equal to itself")
	}
	if !late.After(early) {
		t.Error("After is the inverse of Less")
	}
}
