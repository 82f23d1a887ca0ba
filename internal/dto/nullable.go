package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

var jsonNull = []byte("null")

// NullableID is a request field that tells an absent key apart from an
// explicit null. Numeric strings are accepted as form clients send them.
type NullableID struct {
	Set   bool
	Value *uint64
}

func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		n.Value = nil
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var id uint64
	switch v := raw.(type) {
	case float64:
		if v < 0 || v != float64(uint64(v)) {
			return fmt.Errorf("invalid id %v", v)
		}
		id = uint64(v)
	case string:
		if v == "" {
			n.Value = nil
			return nil
		}
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", v)
		}
		id = parsed
	default:
		return fmt.Errorf("invalid id %s", string(data))
	}

	n.Value = &id
	return nil
}

// NullableDate is a request date that may be absent, null, an RFC 3339
// timestamp or a plain YYYY-MM-DD date.
type NullableDate struct {
	Set   bool
	Value *time.Time
}

func (n *NullableDate) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		n.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("due date must be a string")
	}
	if s == "" {
		n.Value = nil
		return nil
	}

	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	n.Value = &t
	return nil
}

// ParseDate accepts RFC 3339 timestamps and YYYY-MM-DD dates (as UTC midnight).
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected RFC 3339 or YYYY-MM-DD", s)
}
