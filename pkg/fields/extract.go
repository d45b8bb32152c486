// Package fields turns a line item's custom fields into canonical
// (name, value) pairs and resolves the booking fields the port resolver
// needs from them.
package fields

import (
	"bytes"
	"encoding/json"
	"strings"

	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

// rawEntry is satisfied by both raw custom-field shapes.
type rawEntry interface {
	Label() string
	RawValue() json.RawMessage
}

// Extract flattens a line item's properties and customAttributes into a
// single list, properties first, each in source order. Entries without a
// name or with a blank value are dropped.
func Extract(item *domain.LineItem) []domain.LineItemProperty {
	if item == nil {
		return nil
	}

	out := make([]domain.LineItemProperty, 0, len(item.Properties)+len(item.CustomAttributes))
	for _, e := range item.Properties {
		out = appendEntry(out, e)
	}
	for _, e := range item.CustomAttributes {
		out = appendEntry(out, e)
	}
	return out
}

func appendEntry(out []domain.LineItemProperty, e rawEntry) []domain.LineItemProperty {
	name := e.Label()
	if name == "" {
		return out
	}

	value := strings.TrimSpace(StringValue(e.RawValue()))
	if value == "" {
		return out
	}

	return append(out, domain.LineItemProperty{Name: name, Value: value})
}

// StringValue renders a raw JSON value as text. Strings are unquoted,
// numbers and booleans keep their literal form, null and missing values
// become "", and objects or arrays are returned as compact JSON.
func StringValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
		return string(raw)
	}

	if raw[0] == '{' || raw[0] == '[' {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			return buf.String()
		}
	}

	return string(raw)
}
