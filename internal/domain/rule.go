package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Filter is one required category value of a rule.
type Filter struct {
	Category string
	Value    string
}

// Filters keeps the category/value pairs of a rule in the order they were
// submitted. On the wire it is a plain JSON object.
type Filters []Filter

func (f Filters) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, flt := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(flt.Category)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(flt.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (f *Filters) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*f = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("filters must be a JSON object")
	}

	out := Filters{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("filter %q: value must be a string", key)
		}
		out = append(out, Filter{Category: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*f = out
	return nil
}

// String renders the filters as "key=value, key=value".
func (f Filters) String() string {
	parts := make([]string, 0, len(f))
	for _, flt := range f {
		parts = append(parts, flt.Category+"="+flt.Value)
	}
	return strings.Join(parts, ", ")
}

// FilterRule pairs a filter set with a message template and a send time.
type FilterRule struct {
	Filters  Filters   `json:"filters"`
	Template string    `json:"template"`
	SendAt   time.Time `json:"sendAt"`
}

// DispatchRequest is everything a job needs to run.
type DispatchRequest struct {
	Table ContactTable `json:"table"`
	Rules []FilterRule `json:"rules"`
}

var sendTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseSendTime accepts RFC 3339 timestamps and the zone-less forms produced
// by HTML datetime-local inputs, which are read in loc. An empty string means
// "send now" and yields the zero time.
func ParseSendTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range sendTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid send time %q", s)
}
