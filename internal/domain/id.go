package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a server-assigned identifier. Backends hand out either integers or
// strings; ID keeps the raw text and remembers which shape it arrived in so
// it can be sent back the same way.
type ID struct {
	raw     string
	numeric bool
}

// NewID builds an ID from user input. Only canonical integers ("7", "-3")
// are numeric; "007" and "+5" stay strings.
func NewID(s string) ID {
	if s == "" {
		return ID{}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return ID{raw: s, numeric: err == nil && strconv.FormatInt(n, 10) == s}
}

func (id ID) String() string { return id.raw }

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool { return id.raw == "" }

// Equal compares ids by value, ignoring the JSON shape they arrived in.
func (id ID) Equal(other ID) bool { return id.raw == other.raw }

func (id ID) MarshalJSON() ([]byte, error) {
	if id.raw == "" {
		return []byte("null"), nil
	}
	if id.numeric {
		return []byte(id.raw), nil
	}
	return json.Marshal(id.raw)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID{raw: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID{raw: n.String(), numeric: true}
	return nil
}
