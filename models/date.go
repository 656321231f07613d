package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// DisplayDateLayout is the day-first format entered and shown by the desktop front-end
	DisplayDateLayout = "02/01/2006"
	// StorageDateLayout is the layout dates are persisted with, so they sort and compare as text
	StorageDateLayout = "2006-01-02"
)

// Date is a calendar date with no time component
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts DD/MM/YYYY or YYYY-MM-DD
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{DisplayDateLayout, StorageDateLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return Date{t}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q: expected DD/MM/YYYY", value)
}

// String returns the storage form, or "" for the zero date
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(StorageDateLayout)
}

// Display returns the DD/MM/YYYY form
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DisplayDateLayout)
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.String() < other.String()
}

// After reports whether d is strictly later than other
func (d Date) After(other Date) bool {
	return d.String() > other.String()
}

// GormDataType maps Date to a DATE column
func (Date) GormDataType() string {
	return "date"
}

// Value implements driver.Valuer
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
}

func (d *Date) scanString(v string) error {
	// sqlite may hand back a full timestamp for DATE columns
	if len(v) > len(StorageDateLayout) {
		v = v[:len(StorageDateLayout)]
	}
	parsed, err := ParseDate(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON renders the date as DD/MM/YYYY
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Display())
}

// UnmarshalJSON accepts DD/MM/YYYY or YYYY-MM-DD
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
