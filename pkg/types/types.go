// Package domain defines the core business types for the cruise port resolver.
package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// ResolutionSource identifies where a resolved port list came from.
type ResolutionSource string

// Resolution source constants.
const (
	SourceCustomerOverride ResolutionSource = "customer_override"
	SourceApifyScrape      ResolutionSource = "apify_scrape"
)

// OrderID is a platform order identifier. Shopify sends numeric ids but
// some tooling re-encodes them as strings, so both are accepted.
type OrderID string

// UnmarshalJSON accepts a JSON number or string.
func (id *OrderID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = OrderID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = OrderID(n.String())
	return nil
}

// Text is a label decoded from any JSON scalar. Numbers and booleans keep
// their literal form; null, objects and arrays decode to "".
type Text string

// UnmarshalJSON never fails on well-formed JSON.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0:
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case data[0] == '{', data[0] == '[', bytes.Equal(data, []byte("null")):
		*t = ""
	default:
		*t = Text(data)
	}
	return nil
}

// Order is the subset of an "order paid" webhook body the resolver reads.
type Order struct {
	ID              OrderID    `json:"id"`
	Name            Text       `json:"name"`
	Email           Text       `json:"email"`
	FinancialStatus Text       `json:"financial_status"`
	LineItems       []LineItem `json:"line_items"`
}

// LineItem is a single product entry within an order. Custom fields arrive
// in one or both of two list shapes depending on the checkout surface.
type LineItem struct {
	Title            Text             `json:"title,omitempty"`
	Properties       []PropertyEntry  `json:"properties"`
	CustomAttributes []AttributeEntry `json:"customAttributes"`
}

// PropertyEntry is one raw entry of a line item's "properties" list.
// The label is read from name first, then key.
type PropertyEntry struct {
	Name  Text            `json:"name"`
	Key   Text            `json:"key"`
	Value json.RawMessage `json:"value"`
}

// UnmarshalJSON decodes an entry that is not a JSON object as an empty
// entry, which extraction skips.
func (e *PropertyEntry) UnmarshalJSON(data []byte) error {
	type plain PropertyEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		*e = PropertyEntry{}
		return nil //nolint:nilerr // malformed entries are skipped individually
	}
	*e = PropertyEntry(p)
	return nil
}

// Label returns the entry's field name, or "" when none is present.
func (e PropertyEntry) Label() string {
	return firstPresent(e.Name, e.Key)
}

// RawValue returns the undecoded value.
func (e PropertyEntry) RawValue() json.RawMessage { return e.Value }

// AttributeEntry is one raw entry of a line item's "customAttributes" list.
// The label is read from key first, then name.
type AttributeEntry struct {
	Key   Text            `json:"key"`
	Name  Text            `json:"name"`
	Value json.RawMessage `json:"value"`
}

// UnmarshalJSON decodes an entry that is not a JSON object as an empty
// entry, which extraction skips.
func (e *AttributeEntry) UnmarshalJSON(data []byte) error {
	type plain AttributeEntry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		*e = AttributeEntry{}
		return nil //nolint:nilerr // malformed entries are skipped individually
	}
	*e = AttributeEntry(p)
	return nil
}

// Label returns the entry's field name, or "" when none is present.
func (e AttributeEntry) Label() string {
	return firstPresent(e.Key, e.Name)
}

// RawValue returns the undecoded value.
func (e AttributeEntry) RawValue() json.RawMessage { return e.Value }

func firstPresent(candidates ...Text) string {
	for _, c := range candidates {
		if strings.TrimSpace(string(c)) != "" {
			return string(c)
		}
	}
	return ""
}

// LineItemProperty is a canonical (name, value) custom field. Value is
// never empty after trimming.
type LineItemProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ResolvedFields holds the semantic booking fields derived from a line
// item's properties. Nil pointers mean the field was not supplied.
type ResolvedFields struct {
	CruiseLine    *string  `json:"cruise_line"`
	ShipName      *string  `json:"ship_name"`
	SailDate      *string  `json:"sail_date"`
	PortsChanged  bool     `json:"ports_changed"`
	OverridePorts []string `json:"override_ports"`
}

// SailingRecord is one opaque item of a scraped dataset.
type SailingRecord map[string]any

// PortList is an itinerary in sailing order, departure port first.
// Duplicates are kept.
type PortList []string

// MatchMetadata identifies the dataset record a scraped port list came from.
type MatchMetadata struct {
	RunID       string `json:"run_id,omitempty"`
	DatasetID   string `json:"dataset_id,omitempty"`
	ShipName    string `json:"ship_name"`
	CruiseDate  string `json:"cruise_date"`
	RecordIndex int    `json:"record_index"`
	DatasetSize int    `json:"dataset_size"`
	// Degraded is set when no record matched the sailing and the first
	// dataset record was used instead.
	Degraded bool `json:"degraded"`
}

// ResolutionResult is the outcome of resolving one webhook event.
type ResolutionResult struct {
	Source ResolutionSource `json:"source"`
	Ports  PortList         `json:"ports"`
	Match  *MatchMetadata   `json:"match_metadata,omitempty"`
}

// EventStatus is the processing status of a recorded webhook event.
type EventStatus string

// Event status constants.
const (
	EventProcessed EventStatus = "processed"
	EventFailed    EventStatus = "failed"
)

// Event is one entry of the recent-events log.
type Event struct {
	ID              string             `json:"id"`
	ReceivedAt      time.Time          `json:"received_at"`
	Status          EventStatus        `json:"status"`
	Topic           string             `json:"topic,omitempty"`
	ShopDomain      string             `json:"shop_domain,omitempty"`
	OrderID         string             `json:"order_id,omitempty"`
	OrderName       string             `json:"order_name,omitempty"`
	Email           string             `json:"email,omitempty"`
	FinancialStatus string             `json:"financial_status,omitempty"`
	Fields          []LineItemProperty `json:"fields,omitempty"`
	Resolved        *ResolvedFields    `json:"resolved,omitempty"`
	Result          *ResolutionResult  `json:"result,omitempty"`
	Error           string             `json:"error,omitempty"`
}
