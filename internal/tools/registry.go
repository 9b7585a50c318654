package tools

import (
	"github.com/logimind/advisor/internal/llm"
)

// Descriptor declares a callable tool: its name, the description shown to
// the model, and the parameter schema arguments are validated against.
type Descriptor struct {
	Name        string
	Description string
	Parameters  Schema
}

// Registry holds the tool catalog in a stable registration order.
type Registry struct {
	ordered []Descriptor
	byName  map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Descriptor)}
}

func (r *Registry) Register(d Descriptor) {
	if _, exists := r.byName[d.Name]; !exists {
		r.ordered = append(r.ordered, d)
	}
	r.byName[d.Name] = d
}

func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// List returns descriptors in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Definitions renders the catalog as provider tool definitions.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.ordered))
	for _, d := range r.ordered {
		defs = append(defs, llm.ToolDefinition{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.Parameters.AsMap(),
		})
	}
	return defs
}

func fptr(f float64) *float64 { return &f }

// DefaultRegistry builds the standard advisor tool catalog.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(Descriptor{
		Name:        "export_pdf",
		Description: "Generate a PDF risk report for the current shipment assessment",
		Parameters: Schema{
			Type: "object",
			Properties: map[string]Property{
				"template": {
					Type:        "string",
					Description: "Report template to use",
					Enum:        []string{"standard", "executive", "detailed"},
					Default:     "standard",
				},
				"include_charts": {
					Type:        "boolean",
					Description: "Whether to embed charts in the report",
					Default:     true,
				},
				"language": {
					Type:        "string",
					Description: "Report language",
					Enum:        []string{"en", "vi", "zh"},
					Default:     "en",
				},
			},
		},
	})

	r.Register(Descriptor{
		Name:        "export_excel",
		Description: "Export the current assessment data as an Excel workbook",
		Parameters: Schema{
			Type: "object",
			Properties: map[string]Property{
				"include_raw_data": {
					Type:        "boolean",
					Description: "Include raw simulation data sheets",
					Default:     true,
				},
				"include_charts": {
					Type:        "boolean",
					Description: "Embed charts in the workbook",
					Default:     false,
				},
			},
		},
	})

	r.Register(Descriptor{
		Name:        "compare_shipments",
		Description: "Compare risk metrics across multiple shipments",
		Parameters: Schema{
			Type: "object",
			Properties: map[string]Property{
				"shipment_ids": {
					Type:        "array",
					Description: "Identifiers of the shipments to compare",
					Items:       &Property{Type: "string"},
					MinItems:    2,
					MaxItems:    5,
				},
				"metrics": {
					Type:        "array",
					Description: "Metrics to include in the comparison",
					Items: &Property{
						Type: "string",
						Enum: []string{"risk_score", "expected_loss", "delay_probability", "esg_score"},
					},
					Default: []any{"risk_score", "expected_loss"},
				},
			},
			Required: []string{"shipment_ids"},
		},
	})

	r.Register(Descriptor{
		Name:        "run_scenario",
		Description: "Run a what-if scenario against the current assessment",
		Parameters: Schema{
			Type: "object",
			Properties: map[string]Property{
				"scenario_type": {
					Type:        "string",
					Description: "Kind of scenario to simulate",
					Enum:        []string{"weather_shock", "port_congestion", "carrier_change", "route_change"},
				},
				"parameters": {
					Type:        "object",
					Description: "Scenario-specific knobs",
					Properties: map[string]Property{
						"weather_severity": {
							Type:    "number",
							Minimum: fptr(0),
							Maximum: fptr(1),
						},
						"port_congestion_level": {
							Type:    "number",
							Minimum: fptr(0),
							Maximum: fptr(1),
						},
					},
				},
			},
			Required: []string{"scenario_type"},
		},
	})

	r.Register(Descriptor{
		Name:        "get_recommendations",
		Description: "Get risk mitigation recommendations for the current shipment",
		Parameters: Schema{
			Type: "object",
			Properties: map[string]Property{
				"limit": {
					Type:        "integer",
					Description: "Maximum number of recommendations to return",
					Minimum:     fptr(1),
					Maximum:     fptr(10),
					Default:     5,
				},
				"sort_by": {
					Type:        "string",
					Description: "Ordering of the returned recommendations",
					Enum:        []string{"risk_reduction", "cost_benefit", "feasibility"},
					Default:     "risk_reduction",
				},
			},
		},
	})

	r.Register(Descriptor{
		Name:        "get_summary",
		Description: "Get an executive summary of the current risk assessment",
		Parameters: Schema{
			Type: "object",
			Properties: map[string]Property{
				"length": {
					Type:        "string",
					Description: "How detailed the summary should be",
					Enum:        []string{"short", "medium", "long"},
					Default:     "medium",
				},
				"language": {
					Type:        "string",
					Description: "Summary language",
					Enum:        []string{"en", "vi", "zh"},
					Default:     "en",
				},
				"include_recommendations": {
					Type:        "boolean",
					Description: "Append top recommendations to the summary",
					Default:     true,
				},
			},
		},
	})

	r.Register(Descriptor{
		Name:        "get_financial_metrics",
		Description: "Get financial risk metrics such as expected loss, VaR and CVaR",
		Parameters: Schema{
			Type: "object",
			Properties: map[string]Property{
				"include_distributions": {
					Type:        "boolean",
					Description: "Include the full loss distribution",
					Default:     false,
				},
				"confidence_levels": {
					Type:        "array",
					Description: "Confidence levels for VaR and CVaR",
					Items: &Property{
						Type:    "number",
						Minimum: fptr(0),
						Maximum: fptr(1),
					},
					Default: []any{0.95, 0.99},
				},
			},
		},
	})

	r.Register(Descriptor{
		Name:        "get_historical_trend",
		Description: "Get the historical trend of a risk metric across shipments",
		Parameters: Schema{
			Type: "object",
			Properties: map[string]Property{
				"shipment_ids": {
					Type:        "array",
					Description: "Restrict the trend to these shipments",
					Items:       &Property{Type: "string"},
				},
				"time_range": {
					Type:        "string",
					Description: "Lookback window",
					Enum:        []string{"30d", "90d", "1y"},
					Default:     "90d",
				},
				"metric": {
					Type:        "string",
					Description: "Metric to trend",
					Enum:        []string{"risk_score", "expected_loss", "delay_probability", "esg_score"},
					Default:     "risk_score",
				},
			},
		},
	})

	return r
}
