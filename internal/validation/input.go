// Package validation turns raw key/value input into the typed insertable
// records of package core.
//
// There is one function per entity kind. Each collects every failing field
// into a *core.ValidationError rather than stopping at the first.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
)

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses the date forms a browser or API client sends.
// Values without a zone are taken as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// reader walks a raw record and records failures on the shared error.
type reader struct {
	raw  map[string]any
	errs *core.ValidationError
}

func newReader(raw map[string]any) *reader {
	if raw == nil {
		raw = map[string]any{}
	}
	return &reader{raw: raw, errs: &core.ValidationError{}}
}

func (r *reader) present(key string) bool {
	v, ok := r.raw[key]
	return ok && v != nil
}

// requiredString returns the trimmed value; an empty string fails like a missing key.
func (r *reader) requiredString(key, message string) string {
	if message == "" {
		message = key + " is required"
	}
	v, ok := r.raw[key]
	if !ok || v == nil {
		r.errs.Add(key, message)
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.errs.Add(key, key+" must be a string")
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		r.errs.Add(key, message)
	}
	return s
}

func (r *reader) optionalString(key string) string {
	if !r.present(key) {
		return ""
	}
	s, ok := r.raw[key].(string)
	if !ok {
		r.errs.Add(key, key+" must be a string")
		return ""
	}
	return strings.TrimSpace(s)
}

func (r *reader) optionalBool(key string) (bool, bool) {
	if !r.present(key) {
		return false, false
	}
	b, ok := r.raw[key].(bool)
	if !ok {
		r.errs.Add(key, key+" must be a boolean")
		return false, false
	}
	return b, true
}

// amount reads a required decimal string and checks it is positive.
// JSON numbers are accepted too, formatted without exponent.
func (r *reader) amount(key, message string) core.Money {
	if message == "" {
		message = key + " is required"
	}
	v, ok := r.raw[key]
	if !ok || v == nil {
		r.errs.Add(key, message)
		return core.Money{}
	}
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		s = val.String()
	default:
		r.errs.Add(key, key+" must be a decimal string")
		return core.Money{}
	}
	if strings.TrimSpace(s) == "" {
		r.errs.Add(key, message)
		return core.Money{}
	}
	m, err := core.ParseMoney(s)
	if err != nil {
		switch err {
		case core.ErrAmountTooLarge:
			r.errs.Add(key, key+" exceeds 9999999999.99")
		default:
			r.errs.Add(key, key+" must be a positive decimal with at most two fractional digits")
		}
		return core.Money{}
	}
	return m
}

func (r *reader) date(key, message string) time.Time {
	s := r.requiredString(key, message)
	if s == "" {
		return time.Time{}
	}
	t, err := ParseDate(s)
	if err != nil {
		r.errs.Add(key, key+" must be a valid date")
		return time.Time{}
	}
	return t
}

// integer accepts JSON numbers without a fractional part and numeric strings.
func (r *reader) integer(key string) (int, bool) {
	if !r.present(key) {
		return 0, false
	}
	switch val := r.raw[key].(type) {
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < math.MaxInt32 {
			return int(val), true
		}
	case int:
		return val, true
	case int64:
		return int(val), true
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return int(n), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return n, true
		}
	}
	r.errs.Add(key, key+" must be an integer")
	return 0, false
}

func (r *reader) stringList(key string) []string {
	if !r.present(key) {
		return nil
	}
	switch val := r.raw[key].(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				r.errs.Add(key, key+" must be an array of strings")
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	r.errs.Add(key, key+" must be an array of strings")
	return nil
}

func (r *reader) object(key string) (map[string]any, bool) {
	if !r.present(key) {
		return nil, false
	}
	m, ok := r.raw[key].(map[string]any)
	if !ok {
		r.errs.Add(key, key+" must be an object")
		return nil, false
	}
	return m, true
}

func (r *reader) err() error {
	return r.errs.Err()
}
