package ledger

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeFormat is the canonical representation of an instant in persisted files.
const TimeFormat = time.RFC3339

// readTimeFormats are the accepted input formats, most specific first.
// A bare date reads as midnight UTC of that day.
var readTimeFormats = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// Timestamp is an instant with second granularity, always UTC.
type Timestamp struct {
	t time.Time
}

// T returns a Timestamp for the given instant, truncated to the second in UTC.
func T(t time.Time) Timestamp {
	return Timestamp{t: t.UTC().Truncate(time.Second)}
}

// Now returns the current instant.
func Now() Timestamp {
	return T(time.Now())
}

// At is a convenience constructor used pervasively in tests.
func At(year int, month time.Month, day, hour, min, sec int) Timestamp {
	return Timestamp{t: time.Date(year, month, day, hour, min, sec, 0, time.UTC)}
}

func (t Timestamp) Time() time.Time        { return t.t }
func (t Timestamp) Unix() int64            { return t.t.Unix() }
func (t Timestamp) IsZero() bool           { return t.t.IsZero() }
func (t Timestamp) Before(x Timestamp) bool { return t.t.Before(x.t) }
func (t Timestamp) After(x Timestamp) bool  { return t.t.After(x.t) }
func (t Timestamp) Equal(x Timestamp) bool  { return t.t.Equal(x.t) }

// Compare returns -1, 0 or +1 comparing t to x.
func (t Timestamp) Compare(x Timestamp) int { return t.t.Compare(x.t) }

// String formats the timestamp in its canonical format.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.t.Format(TimeFormat)
}

// ParseTimestamp parses an instant from a string. It accepts a full RFC3339
// instant, a "2006-01-02 15:04:05" instant, or a bare date.
func ParseTimestamp(str string) (Timestamp, error) {
	for _, format := range readTimeFormats {
		if on, err := time.Parse(format, str); err == nil {
			return T(on), nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q, want format %q", str, TimeFormat)
}

// MustParseTimestamp is like ParseTimestamp but panics on error.
func MustParseTimestamp(str string) Timestamp {
	t, err := ParseTimestamp(str)
	if err != nil {
		panic(err.Error())
	}
	return t
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (t *Timestamp) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	str := t.String()
	return json.Marshal(&str)
}

// Key is the total ordering of the journal: instant first, insertion sequence
// as the stable tiebreak. Ordering by Key is a load-bearing contract, not an
// incidental property of storage.
type Key struct {
	Time Timestamp
	Seq  int64
}

// K is a convenience Key constructor.
func K(t Timestamp, seq int64) Key { return Key{Time: t, Seq: seq} }

// Compare returns -1, 0 or +1 comparing k to x in (time, seq) order.
func (k Key) Compare(x Key) int {
	if c := k.Time.Compare(x.Time); c != 0 {
		return c
	}
	switch {
	case k.Seq < x.Seq:
		return -1
	case k.Seq > x.Seq:
		return 1
	default:
		return 0
	}
}

func (k Key) Less(x Key) bool  { return k.Compare(x) < 0 }
func (k Key) After(x Key) bool { return k.Compare(x) > 0 }
func (k Key) IsZero() bool     { return k.Time.IsZero() && k.Seq == 0 }

func (k Key) String() string {
	return fmt.Sprintf("%s#%d", k.Time, k.Seq)
}
