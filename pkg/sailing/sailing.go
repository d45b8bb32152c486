// Package sailing selects the scraped dataset record for a specific sailing
// and turns its numbered stop fields into an ordered port list.
package sailing

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cploetz77/port-to-port-map-generator/pkg/dates"
	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

// Dataset field names.
const (
	FieldShipName   = "ship_name"
	FieldCruiseDate = "cruise_date"
)

const departingPrefix = "departing from "

var stopKey = regexp.MustCompile(`^stop_(\d+)_text$`)

// ErrNoSailingRecords is returned when the dataset holds no records at all.
var ErrNoSailingRecords = errors.New("no sailing records in dataset")

// NoPortsExtractedError is returned when a record has no usable stop
// fields. Keys lists the record's field names for diagnosis.
type NoPortsExtractedError struct {
	Keys []string
}

func (e *NoPortsExtractedError) Error() string {
	return fmt.Sprintf("no ports extracted from sailing record (keys: %s)", strings.Join(e.Keys, ", "))
}

// Match is the record chosen for a sailing.
type Match struct {
	Record domain.SailingRecord
	Index  int
	// Degraded is true when nothing matched and the first record was used.
	Degraded bool
}

// Metadata describes the match for inclusion in a resolution result.
func (m *Match) Metadata(datasetSize int) *domain.MatchMetadata {
	return &domain.MatchMetadata{
		ShipName:    StringField(m.Record, FieldShipName),
		CruiseDate:  StringField(m.Record, FieldCruiseDate),
		RecordIndex: m.Index,
		DatasetSize: datasetSize,
		Degraded:    m.Degraded,
	}
}

// FindMatch returns the first record whose ship name (case-insensitive)
// and cruise date equal the target sailing. When no record matches, the
// dataset's first record is returned with Degraded set.
func FindMatch(records []domain.SailingRecord, shipName, isoSailDate string) (*Match, error) {
	if len(records) == 0 {
		return nil, ErrNoSailingRecords
	}

	wantShip := strings.ToLower(strings.TrimSpace(shipName))
	wantDate := dates.ToDisplayDate(isoSailDate)

	for i, r := range records {
		ship := strings.ToLower(strings.TrimSpace(StringField(r, FieldShipName)))
		date := strings.TrimSpace(StringField(r, FieldCruiseDate))
		if ship == wantShip && date == wantDate {
			return &Match{Record: r, Index: i}, nil
		}
	}

	return &Match{Record: records[0], Index: 0, Degraded: true}, nil
}

type stop struct {
	ordinal int
	key     string
}

// ExtractPorts returns the record's stop_<n>_text values in ascending n.
// Blank stops are skipped and a leading "Departing from " is removed.
func ExtractPorts(record domain.SailingRecord) (domain.PortList, error) {
	var stops []stop
	for k := range record {
		m := stopKey.FindStringSubmatch(k)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		stops = append(stops, stop{ordinal: n, key: k})
	}

	sort.Slice(stops, func(i, j int) bool {
		if stops[i].ordinal != stops[j].ordinal {
			return stops[i].ordinal < stops[j].ordinal
		}
		return stops[i].key < stops[j].key
	})

	ports := make(domain.PortList, 0, len(stops))
	for _, s := range stops {
		text := strings.TrimSpace(StringField(record, s.key))
		if text == "" {
			continue
		}
		if len(text) >= len(departingPrefix) && strings.EqualFold(text[:len(departingPrefix)], departingPrefix) {
			text = strings.TrimSpace(text[len(departingPrefix):])
		}
		if text == "" {
			continue
		}
		ports = append(ports, text)
	}

	if len(ports) == 0 {
		return nil, &NoPortsExtractedError{Keys: keysOf(record)}
	}
	return ports, nil
}

// StringField returns record[key] as a string. Non-string values are
// formatted with fmt; a missing key or nil value yields "".
func StringField(record domain.SailingRecord, key string) string {
	v, ok := record[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func keysOf(record domain.SailingRecord) []string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
