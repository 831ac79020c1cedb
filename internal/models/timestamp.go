package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is fixed width so string ordering matches time ordering.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Timestamp is a UTC instant stored with microsecond precision.
type Timestamp struct {
	time.Time
}

// Now returns the current instant truncated to the stored precision.
func Now() Timestamp {
	return NewTimestamp(time.Now())
}

// NewTimestamp normalises t to UTC microseconds.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Microsecond)}
}

// String renders the stored form.
func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

// MarshalJSON encodes the fixed-width form.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts the stored layout and any RFC 3339 value.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := time.Parse(TimestampLayout, raw)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return fmt.Errorf("invalid timestamp %q", raw)
		}
	}
	*t = NewTimestamp(parsed)
	return nil
}
