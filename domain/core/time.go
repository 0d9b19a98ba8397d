package core

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Timestamp wraps time.Time for consistent serialization across the domain
type Timestamp struct {
	time.Time
}

// Now returns the current timestamp in UTC
func Now() Timestamp {
	return Timestamp{time.Now().UTC()}
}

// NewTimestamp creates a timestamp from a time.Time
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t.UTC()}
}

// IsZero reports whether the timestamp is unset
func (t Timestamp) IsZero() bool {
	return t.Time.IsZero()
}

// Value implements driver.Valuer for database storage
func (t Timestamp) Value() (driver.Value, error) {
	return t.Time, nil
}

// Scan implements sql.Scanner
func (t *Timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}
