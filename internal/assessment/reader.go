// Package assessment builds the per-request system context from the risk
// engine's last published result and formats it for prompt injection.
package assessment

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/logimind/advisor/internal/logging"
	"github.com/logimind/advisor/internal/riskengine"
)

// HistoryProvider supplies previously assessed shipments for comparisons
// and trends. Optional collaborator.
type HistoryProvider interface {
	RecentShipments() []map[string]any
}

// SystemContext is the ephemeral per-request view of everything the
// advisor knows. Absent data is simply empty, never an error.
type SystemContext struct {
	SessionID        string
	Assessment       map[string]any
	Shipment         map[string]any
	Financial        map[string]any
	ESG              map[string]any
	Scenarios        map[string]any
	History          []map[string]any
	AvailableActions []string
	PageContext      map[string]any
}

// HasAssessment reports whether a current assessment is present.
func (c SystemContext) HasAssessment() bool { return len(c.Assessment) > 0 }

// Reader assembles SystemContext values.
type Reader struct {
	slot    *riskengine.Slot
	history HistoryProvider
	log     *logging.Logger
}

// NewReader creates a context reader. history may be nil.
func NewReader(slot *riskengine.Slot, history HistoryProvider, log *logging.Logger) *Reader {
	return &Reader{slot: slot, history: history, log: log.Sub("assessment")}
}

// SystemContext builds the context for one request. The assessment slot is
// read, never mutated.
func (r *Reader) SystemContext(sessionID string, pageContext map[string]any) SystemContext {
	ctx := SystemContext{
		SessionID:   sessionID,
		PageContext: pageContext,
	}

	if a := r.slot.Latest(); len(a) > 0 {
		ctx.Assessment = a
		ctx.Shipment = subMap(a, "shipment")
		ctx.Financial = subMap(a, "financial")
		ctx.ESG = subMap(a, "esg")
		ctx.Scenarios = subMap(a, "scenarios")
	}

	if r.history != nil {
		ctx.History = r.history.RecentShipments()
	}

	ctx.AvailableActions = availableActions(ctx)
	return ctx
}

// availableActions computes the tools that are meaningful given the data
// at hand: scenario analysis requires a scenario catalog, comparisons
// require historical shipments.
func availableActions(ctx SystemContext) []string {
	actions := []string{"export_pdf", "export_excel", "get_recommendations", "get_summary"}
	if len(ctx.Scenarios) > 0 {
		actions = append(actions, "run_scenario")
	}
	if len(ctx.History) > 0 {
		actions = append(actions, "compare_shipments")
	}
	return actions
}

// Driver is a named risk factor with its impact share.
type Driver struct {
	Name   string
	Impact float64
}

// TopDrivers returns up to n risk drivers ordered by impact descending.
func TopDrivers(a map[string]any, n int) []Driver {
	raw, ok := a["drivers"].([]any)
	if !ok {
		raw, _ = a["top_risk_factors"].([]any)
	}

	var drivers []Driver
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		if name == "" {
			continue
		}
		impact, _ := Number(m, "impact")
		drivers = append(drivers, Driver{Name: name, Impact: impact})
	}

	sort.SliceStable(drivers, func(i, j int) bool { return drivers[i].Impact > drivers[j].Impact })
	if len(drivers) > n {
		drivers = drivers[:n]
	}
	return drivers
}

// FormatForPrompt renders a deterministic context block enumerating
// present fields in a fixed order. Absent fields are omitted; when nothing
// is present a single no-assessment sentence is produced.
func FormatForPrompt(ctx SystemContext) string {
	if !ctx.HasAssessment() {
		return "No risk assessment is currently available for this session."
	}

	a := ctx.Assessment
	var b strings.Builder
	b.WriteString("Current shipment risk assessment:\n")

	if score, ok := Number(a, "risk_score"); ok {
		if level, _ := a["risk_level"].(string); level != "" {
			fmt.Fprintf(&b, "- Risk score: %.1f (%s)\n", score, level)
		} else {
			fmt.Fprintf(&b, "- Risk score: %.1f\n", score)
		}
	}

	origin := str(a, ctx.Shipment, "origin")
	destination := str(a, ctx.Shipment, "destination")
	if origin != "" && destination != "" {
		fmt.Fprintf(&b, "- Route: %s → %s\n", origin, destination)
	}

	if ctx.Financial != nil {
		if v, ok := Number(ctx.Financial, "expected_loss"); ok {
			fmt.Fprintf(&b, "- Expected loss: $%s\n", humanize.Comma(int64(v)))
		}
		if v, ok := Number(ctx.Financial, "var_95"); ok {
			fmt.Fprintf(&b, "- 95th percentile loss: $%s\n", humanize.Comma(int64(v)))
		}
	}

	if drivers := TopDrivers(a, 3); len(drivers) > 0 {
		b.WriteString("- Top risk drivers:\n")
		for _, d := range drivers {
			fmt.Fprintf(&b, "  - %s: %.1f%%\n", d.Name, d.Impact)
		}
	}

	if len(ctx.AvailableActions) > 0 {
		fmt.Fprintf(&b, "- Available actions: %s\n", strings.Join(ctx.AvailableActions, ", "))
	}

	return strings.TrimRight(b.String(), "\n")
}

// Number fetches a numeric field, coercing the JSON-shaped value kinds.
func Number(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// subMap returns a nested mapping field, or nil.
func subMap(m map[string]any, key string) map[string]any {
	sub, _ := m[key].(map[string]any)
	return sub
}

// str returns a string field from the assessment, falling back to the
// shipment identity mapping.
func str(a, shipment map[string]any, key string) string {
	if s, ok := a[key].(string); ok {
		return s
	}
	if shipment != nil {
		if s, ok := shipment[key].(string); ok {
			return s
		}
	}
	return ""
}
