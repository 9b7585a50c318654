package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- registry tests ---

func TestDefaultRegistryCatalog(t *testing.T) {
	r := DefaultRegistry()

	names := make([]string, 0, 8)
	for _, d := range r.List() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		"export_pdf",
		"export_excel",
		"compare_shipments",
		"run_scenario",
		"get_recommendations",
		"get_summary",
		"get_financial_metrics",
		"get_historical_trend",
	}, names)

	for _, d := range r.List() {
		assert.NotEmpty(t, d.Description, d.Name)
		assert.Equal(t, "object", d.Parameters.Type, d.Name)
	}
}

func TestRegistryDefinitions(t *testing.T) {
	defs := DefaultRegistry().Definitions()
	require.Len(t, defs, 8)

	assert.Equal(t, "export_pdf", defs[0].Name)
	props, ok := defs[0].InputSchema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "template")
	assert.Contains(t, props, "include_charts")
	assert.Contains(t, props, "language")

	var scenario map[string]any
	for _, d := range defs {
		if d.Name == "run_scenario" {
			scenario = d.InputSchema
		}
	}
	require.NotNil(t, scenario)
	assert.Equal(t, []string{"scenario_type"}, scenario["required"])
}

// --- schema validation tests ---

func pdfSchema(t *testing.T) Schema {
	t.Helper()
	d, ok := DefaultRegistry().Get("export_pdf")
	require.True(t, ok)
	return d.Parameters
}

func TestValidateAppliesDefaults(t *testing.T) {
	args, err := pdfSchema(t).Validate(map[string]any{})
	require.NoError(t, err)

	assert.Equal(t, "standard", args["template"])
	assert.Equal(t, true, args["include_charts"])
	assert.Equal(t, "en", args["language"])
}

func TestValidateDropsUnknownParams(t *testing.T) {
	args, err := pdfSchema(t).Validate(map[string]any{
		"format":   "standard",
		"template": "executive",
	})
	require.NoError(t, err)

	assert.NotContains(t, args, "format")
	assert.Equal(t, "executive", args["template"])
}

func TestValidateEnumViolation(t *testing.T) {
	_, err := pdfSchema(t).Validate(map[string]any{"template": "fancy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template")
}

func TestValidateMissingRequired(t *testing.T) {
	d, ok := DefaultRegistry().Get("compare_shipments")
	require.True(t, ok)

	_, err := d.Parameters.Validate(map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shipment_ids")
}

func TestValidateArrayBounds(t *testing.T) {
	d, ok := DefaultRegistry().Get("compare_shipments")
	require.True(t, ok)

	_, err := d.Parameters.Validate(map[string]any{
		"shipment_ids": []any{"SHP-1"},
	})
	require.Error(t, err)

	_, err = d.Parameters.Validate(map[string]any{
		"shipment_ids": []any{"a", "b", "c", "d", "e", "f"},
	})
	require.Error(t, err)

	args, err := d.Parameters.Validate(map[string]any{
		"shipment_ids": []any{"SHP-1", "SHP-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"risk_score", "expected_loss"}, args["metrics"])
}

func TestValidateIntegerRange(t *testing.T) {
	d, ok := DefaultRegistry().Get("get_recommendations")
	require.True(t, ok)

	_, err := d.Parameters.Validate(map[string]any{"limit": float64(11)})
	require.Error(t, err)

	args, err := d.Parameters.Validate(map[string]any{"limit": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, args["limit"])
}

func TestValidateNestedObjectRange(t *testing.T) {
	d, ok := DefaultRegistry().Get("run_scenario")
	require.True(t, ok)

	_, err := d.Parameters.Validate(map[string]any{
		"scenario_type": "weather_shock",
		"parameters":    map[string]any{"weather_severity": 1.5},
	})
	require.Error(t, err)

	args, err := d.Parameters.Validate(map[string]any{
		"scenario_type": "weather_shock",
		"parameters":    map[string]any{"weather_severity": 0.7, "unrelated": true},
	})
	require.NoError(t, err)
	params, ok := args["parameters"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.7, params["weather_severity"])
	assert.NotContains(t, params, "unrelated")
}
