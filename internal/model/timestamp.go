package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// wireTimeLayout is the serialization format for measurement timestamps:
// ISO-8601 with six-digit microseconds and a Z suffix for UTC.
const wireTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Timestamp is a measurement time. It wraps time.Time to pin the JSON wire
// format to microsecond precision UTC, independent of what precision or zone
// the platform submitted.
type Timestamp time.Time

// NewTimestamp converts a time.Time.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// After reports whether t is strictly after u.
func (t Timestamp) After(u time.Time) bool {
	return time.Time(t).After(u)
}

// String renders the timestamp in the wire format, e.g.
// "2020-02-26T12:29:05.059173Z".
func (t Timestamp) String() string {
	return time.Time(t).UTC().Format(wireTimeLayout)
}

// MarshalJSON renders the timestamp as a quoted wire-format string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts any RFC 3339 timestamp, with or without fractional
// seconds or an explicit offset.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid timestamp %s", s)
	}
	parsed, err := time.Parse(time.RFC3339Nano, s[1:len(s)-1])
	if err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", s, err)
	}
	*t = Timestamp(parsed)
	return nil
}

// Value implements driver.Valuer.
func (t Timestamp) Value() (driver.Value, error) {
	return time.Time(t), nil
}

// Scan implements sql.Scanner.
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*t = Timestamp(v)
		return nil
	case []byte:
		parsed, err := time.Parse(time.RFC3339Nano, string(v))
		if err != nil {
			return err
		}
		*t = Timestamp(parsed)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}
