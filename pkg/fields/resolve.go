package fields

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cploetz77/port-to-port-map-generator/pkg/dates"
	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

// Field is a semantic booking field looked up by label substring.
type Field string

// Field constants.
const (
	CruiseLine   Field = "cruise_line"
	ShipName     Field = "ship_name"
	SailDate     Field = "sail_date"
	PortsChanged Field = "ports_changed"
)

// Synonyms lists, per field, the label substrings accepted for it. They are
// tried in order and the first one that matches any label wins.
var Synonyms = map[Field][]string{
	CruiseLine:   {"cruise line"},
	ShipName:     {"ship", "ships"},
	SailDate:     {"sail date", "sailing date", "departure date"},
	PortsChanged: {"ports changed", "port changes", "itinerary changed"},
}

const (
	overridePortLabel = "actual port"
	unnumberedOrdinal = 9999
)

var digitRun = regexp.MustCompile(`\d+`)

var truthy = map[string]struct{}{
	"true": {}, "yes": {}, "y": {}, "1": {}, "on": {}, "checked": {},
}

// FindField returns the value of the first field whose name contains
// substring, ignoring case. Later fields with a matching name are shadowed.
func FindField(fields []domain.LineItemProperty, substring string) (string, bool) {
	needle := strings.ToLower(substring)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f.Name), needle) {
			return f.Value, true
		}
	}
	return "", false
}

// FindAny tries each substring in order and returns the first hit.
func FindAny(fields []domain.LineItemProperty, substrings ...string) (string, bool) {
	for _, s := range substrings {
		if v, ok := FindField(fields, s); ok {
			return v, true
		}
	}
	return "", false
}

// Lookup resolves a semantic field through the synonym table.
func Lookup(fields []domain.LineItemProperty, f Field) (string, bool) {
	return FindAny(fields, Synonyms[f]...)
}

// IsTruthy reports whether a checkbox-style value means "yes".
func IsTruthy(v string) bool {
	_, ok := truthy[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

type numberedPort struct {
	ordinal int
	value   string
}

// CollectOverridePorts returns the customer's "Actual Port N" values ordered
// by N. Labels without a number sort after all numbered ones; equal
// ordinals keep their original order.
func CollectOverridePorts(fields []domain.LineItemProperty) []string {
	var ports []numberedPort
	for _, f := range fields {
		if !strings.Contains(strings.ToLower(f.Name), overridePortLabel) {
			continue
		}
		v := strings.TrimSpace(f.Value)
		if v == "" {
			continue
		}
		ports = append(ports, numberedPort{ordinal: ordinalOf(f.Name), value: v})
	}

	sort.SliceStable(ports, func(i, j int) bool {
		return ports[i].ordinal < ports[j].ordinal
	})

	out := make([]string, 0, len(ports))
	for _, p := range ports {
		out = append(out, p.value)
	}
	return out
}

func ordinalOf(name string) int {
	m := digitRun.FindString(name)
	if m == "" {
		return unnumberedOrdinal
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return unnumberedOrdinal
	}
	return n
}

// Resolve derives the booking fields for one line item.
func Resolve(fields []domain.LineItemProperty) domain.ResolvedFields {
	var rf domain.ResolvedFields

	if v, ok := Lookup(fields, CruiseLine); ok {
		rf.CruiseLine = &v
	}
	if v, ok := Lookup(fields, ShipName); ok {
		rf.ShipName = &v
	}
	if v, ok := Lookup(fields, SailDate); ok {
		iso := dates.ToISO(v)
		rf.SailDate = &iso
	}

	for _, label := range Synonyms[PortsChanged] {
		if v, ok := FindField(fields, label); ok && IsTruthy(v) {
			rf.PortsChanged = true
			break
		}
	}

	rf.OverridePorts = CollectOverridePorts(fields)
	return rf
}
