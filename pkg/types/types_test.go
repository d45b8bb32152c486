package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderID_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    OrderID
		wantErr bool
	}{
		{name: "number", input: `820982911946154508`, want: "820982911946154508"},
		{name: "string", input: `"gid://shopify/Order/1"`, want: "gid://shopify/Order/1"},
		{name: "null", input: `null`, want: ""},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var o struct {
				ID OrderID `json:"id"`
			}
			err := json.Unmarshal([]byte(`{"id":`+tt.input+`}`), &o)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, o.ID)
		})
	}
}

func TestEntryLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "property prefers name",
			got:  PropertyEntry{Name: "Ship", Key: "ship_key"}.Label(),
			want: "Ship",
		},
		{
			name: "property falls back to key",
			got:  PropertyEntry{Name: "  ", Key: "ship_key"}.Label(),
			want: "ship_key",
		},
		{
			name: "attribute prefers key",
			got:  AttributeEntry{Key: "Ship", Name: "ship_name"}.Label(),
			want: "Ship",
		},
		{
			name: "attribute falls back to name",
			got:  AttributeEntry{Name: "ship_name"}.Label(),
			want: "ship_name",
		},
		{
			name: "no label",
			got:  AttributeEntry{}.Label(),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestOrder_Decode(t *testing.T) {
	t.Parallel()

	body := `{
		"id": 1001,
		"name": "#1001",
		"financial_status": "paid",
		"line_items": [{
			"title": "Cruise Map",
			"properties": [{"name": "Ship", "value": "Wonder of the Seas"}],
			"customAttributes": [{"key": "Sail Date", "value": "3/9/2025"}]
		}]
	}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(body), &o))
	assert.Equal(t, OrderID("1001"), o.ID)
	require.Len(t, o.LineItems, 1)
	assert.Equal(t, "Ship", o.LineItems[0].Properties[0].Label())
	assert.JSONEq(t, `"3/9/2025"`, string(o.LineItems[0].CustomAttributes[0].RawValue()))
}

func TestText_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Text
	}{
		{name: "string", input: `"#1001"`, want: "#1001"},
		{name: "number", input: `1001`, want: "1001"},
		{name: "bool", input: `true`, want: "true"},
		{name: "null", input: `null`, want: ""},
		{name: "object", input: `{"a":1}`, want: ""},
		{name: "array", input: `[1]`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got Text
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEntry_NonObjectDecodesEmpty(t *testing.T) {
	t.Parallel()

	var item LineItem
	require.NoError(t, json.Unmarshal(
		[]byte(`{"properties":["x",{"name":"Ship","value":"A"}],"customAttributes":[3]}`), &item))
	require.Len(t, item.Properties, 2)
	assert.Empty(t, item.Properties[0].Label())
	assert.Equal(t, "Ship", item.Properties[1].Label())
	require.Len(t, item.CustomAttributes, 1)
	assert.Empty(t, item.CustomAttributes[0].Label())
}
