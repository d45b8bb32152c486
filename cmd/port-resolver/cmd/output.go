package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	domain "github.com/cploetz77/port-to-port-map-generator/pkg/types"
)

const timeLayout = "2006-01-02 15:04:05"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printEventsTable(w io.Writer, events []domain.Event) error {
	tw := newTabWriter(w)
	tw.writef("RECEIVED\tSTATUS\tORDER\tSOURCE\tPORTS\tERROR\n")
	for i := range events {
		ev := &events[i]
		source, ports := "-", "-"
		if ev.Result != nil {
			source = string(ev.Result.Source)
			if ev.Result.Match != nil && ev.Result.Match.Degraded {
				source += " (degraded)"
			}
			ports = truncate(strings.Join(ev.Result.Ports, ", "), 50)
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			ev.ReceivedAt.Local().Format(timeLayout),
			ev.Status,
			orDash(orderLabel(ev.OrderName, ev.OrderID)),
			source,
			ports,
			orDash(truncate(ev.Error, 50)),
		)
	}
	return tw.finish()
}

func printResolution(w io.Writer, result *domain.ResolutionResult, resolved *domain.ResolvedFields) error {
	tw := newTabWriter(w)
	if resolved != nil {
		tw.writef("Cruise Line:\t%s\n", orDash(deref(resolved.CruiseLine)))
		tw.writef("Ship:\t%s\n", orDash(deref(resolved.ShipName)))
		tw.writef("Sail Date:\t%s\n", orDash(deref(resolved.SailDate)))
		tw.writef("Ports Changed:\t%v\n", resolved.PortsChanged)
	}
	tw.writef("Source:\t%s\n", result.Source)
	if m := result.Match; m != nil {
		tw.writef("Matched Record:\t%d of %d (%s, %s)\n", m.RecordIndex+1, m.DatasetSize, m.ShipName, m.CruiseDate)
		tw.writef("Degraded:\t%v\n", m.Degraded)
		if m.RunID != "" {
			tw.writef("Apify Run:\t%s\n", m.RunID)
		}
	}
	for i, p := range result.Ports {
		tw.writef("Port %d:\t%s\n", i+1, p)
	}
	return tw.finish()
}

func printQuota(w io.Writer, limit, used, remaining int64, resetAt string) error {
	tw := newTabWriter(w)
	tw.writef("Daily Limit:\t%d\n", limit)
	tw.writef("Used:\t%d\n", used)
	tw.writef("Remaining:\t%d\n", remaining)
	tw.writef("Resets At:\t%s\n", resetAt)
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orderLabel(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// truncate shortens s to maxLen runes, ending in "...".
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
