package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logimind/advisor/internal/logging"
	"github.com/logimind/advisor/internal/riskengine"
)

type stubHistory struct{ shipments []map[string]any }

func (s *stubHistory) RecentShipments() []map[string]any { return s.shipments }

func sampleAssessment() map[string]any {
	return map[string]any{
		"risk_score": 72.46,
		"risk_level": "high",
		"shipment": map[string]any{
			"id":          "SHP-001",
			"origin":      "Hai Phong",
			"destination": "Rotterdam",
		},
		"financial": map[string]any{
			"expected_loss": 125000.0,
			"var_95":        480000.0,
		},
		"drivers": []any{
			map[string]any{"name": "Weather", "impact": 35.0},
			map[string]any{"name": "Port congestion", "impact": 25.0},
			map[string]any{"name": "Carrier reliability", "impact": 20.0},
			map[string]any{"name": "Piracy", "impact": 5.0},
		},
	}
}

// --- Action gating ---

func TestAvailableActionsBaseSet(t *testing.T) {
	slot := riskengine.NewSlot()
	slot.Publish(sampleAssessment())
	r := NewReader(slot, nil, logging.Silent())

	ctx := r.SystemContext("sess-1", nil)
	assert.ElementsMatch(t,
		[]string{"export_pdf", "export_excel", "get_recommendations", "get_summary"},
		ctx.AvailableActions)
}

func TestAvailableActionsScenarioGating(t *testing.T) {
	slot := riskengine.NewSlot()
	a := sampleAssessment()
	a["scenarios"] = map[string]any{"weather_shock": map[string]any{"score": 80.0}}
	slot.Publish(a)
	r := NewReader(slot, nil, logging.Silent())

	ctx := r.SystemContext("sess-1", nil)
	assert.Contains(t, ctx.AvailableActions, "run_scenario")
	assert.NotContains(t, ctx.AvailableActions, "compare_shipments")
}

func TestAvailableActionsHistoryGating(t *testing.T) {
	slot := riskengine.NewSlot()
	slot.Publish(sampleAssessment())
	history := &stubHistory{shipments: []map[string]any{{"id": "SHP-000"}}}
	r := NewReader(slot, history, logging.Silent())

	ctx := r.SystemContext("sess-1", nil)
	assert.Contains(t, ctx.AvailableActions, "compare_shipments")
	assert.NotContains(t, ctx.AvailableActions, "run_scenario")
}

// --- Context assembly ---

func TestSystemContextEmptySlot(t *testing.T) {
	r := NewReader(riskengine.NewSlot(), nil, logging.Silent())
	ctx := r.SystemContext("sess-1", map[string]any{"page": "dashboard"})

	assert.False(t, ctx.HasAssessment())
	assert.Equal(t, "sess-1", ctx.SessionID)
	assert.Equal(t, "dashboard", ctx.PageContext["page"])
	assert.Len(t, ctx.AvailableActions, 4)
}

func TestSystemContextSubMaps(t *testing.T) {
	slot := riskengine.NewSlot()
	slot.Publish(sampleAssessment())
	r := NewReader(slot, nil, logging.Silent())

	ctx := r.SystemContext("sess-1", nil)
	require.True(t, ctx.HasAssessment())
	assert.Equal(t, "SHP-001", ctx.Shipment["id"])
	assert.NotNil(t, ctx.Financial)
	assert.Nil(t, ctx.Scenarios)
}

// --- Prompt formatting ---

func TestFormatForPromptNoAssessment(t *testing.T) {
	r := NewReader(riskengine.NewSlot(), nil, logging.Silent())
	got := FormatForPrompt(r.SystemContext("sess-1", nil))
	assert.Equal(t, "No risk assessment is currently available for this session.", got)
}

func TestFormatForPromptFull(t *testing.T) {
	slot := riskengine.NewSlot()
	slot.Publish(sampleAssessment())
	r := NewReader(slot, nil, logging.Silent())

	got := FormatForPrompt(r.SystemContext("sess-1", nil))
	assert.Contains(t, got, "Risk score: 72.5 (high)")
	assert.Contains(t, got, "Route: Hai Phong → Rotterdam")
	assert.Contains(t, got, "Expected loss: $125,000")
	assert.Contains(t, got, "95th percentile loss: $480,000")
	assert.Contains(t, got, "Weather: 35.0%")
	// Top three only.
	assert.NotContains(t, got, "Piracy")
	assert.Contains(t, got, "Available actions: export_pdf")
}

func TestFormatForPromptDeterministic(t *testing.T) {
	slot := riskengine.NewSlot()
	slot.Publish(sampleAssessment())
	r := NewReader(slot, nil, logging.Silent())

	first := FormatForPrompt(r.SystemContext("sess-1", nil))
	second := FormatForPrompt(r.SystemContext("sess-1", nil))
	assert.Equal(t, first, second)
}

func TestFormatForPromptOmitsAbsentFields(t *testing.T) {
	slot := riskengine.NewSlot()
	slot.Publish(map[string]any{"risk_score": 12.0})
	r := NewReader(slot, nil, logging.Silent())

	got := FormatForPrompt(r.SystemContext("sess-1", nil))
	assert.Contains(t, got, "Risk score: 12.0")
	assert.NotContains(t, got, "Route:")
	assert.NotContains(t, got, "Expected loss")
}

// --- Helpers ---

func TestTopDriversSortedAndCapped(t *testing.T) {
	drivers := TopDrivers(sampleAssessment(), 3)
	require.Len(t, drivers, 3)
	assert.Equal(t, "Weather", drivers[0].Name)
	assert.Equal(t, "Port congestion", drivers[1].Name)
	assert.Equal(t, "Carrier reliability", drivers[2].Name)
}

func TestNumberCoercion(t *testing.T) {
	m := map[string]any{"f": 1.5, "i": 7, "s": "nope"}

	v, ok := Number(m, "f")
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)

	v, ok = Number(m, "i")
	assert.True(t, ok)
	assert.Equal(t, 7.0, v)

	_, ok = Number(m, "s")
	assert.False(t, ok)

	_, ok = Number(m, "missing")
	assert.False(t, ok)
}
