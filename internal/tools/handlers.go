package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/logimind/advisor/internal/assessment"
	"github.com/logimind/advisor/internal/logging"
	"github.com/logimind/advisor/internal/riskengine"
)

var (
	errNoAssessment = errors.New("No risk assessment available")
	errNoHistory    = errors.New("No historical shipment data available")
	errNoScenarios  = errors.New("Scenario engine not available")
	errNoExcel      = errors.New("Excel export not yet implemented")
)

// PDFBuilder renders a full risk report. When none is wired in, exports
// fall back to a minimal placeholder document.
type PDFBuilder interface {
	BuildReport(ctx context.Context, a map[string]any, template string, includeCharts bool, language string) ([]byte, error)
}

// ExcelWriter renders the assessment as a workbook.
type ExcelWriter interface {
	BuildWorkbook(ctx context.Context, a map[string]any, includeRawData, includeCharts bool) ([]byte, error)
}

// ScenarioEngine re-runs the risk model under perturbed conditions. The
// result map carries at least "risk_score" and may carry per-metric
// "deltas".
type ScenarioEngine interface {
	Run(baseline map[string]any, scenarioType string, params map[string]any) (map[string]any, error)
}

// Handlers implements the advisor tool catalog against the latest
// published assessment and the shipment history.
type Handlers struct {
	slot      *riskengine.Slot
	history   assessment.HistoryProvider
	exports   *ExportStore
	pdf       PDFBuilder
	excel     ExcelWriter
	scenarios ScenarioEngine
	log       *logging.Logger
}

func NewHandlers(slot *riskengine.Slot, history assessment.HistoryProvider, exports *ExportStore, log *logging.Logger) *Handlers {
	return &Handlers{
		slot:    slot,
		history: history,
		exports: exports,
		log:     log.Sub("handlers"),
	}
}

func (h *Handlers) WithPDFBuilder(b PDFBuilder) *Handlers      { h.pdf = b; return h }
func (h *Handlers) WithExcelWriter(w ExcelWriter) *Handlers    { h.excel = w; return h }
func (h *Handlers) WithScenarioEngine(s ScenarioEngine) *Handlers { h.scenarios = s; return h }

// RegisterAll wires every handler into the executor.
func (h *Handlers) RegisterAll(e *Executor) {
	e.Register("export_pdf", h.ExportPDF)
	e.Register("export_excel", h.ExportExcel)
	e.Register("compare_shipments", h.CompareShipments)
	e.Register("run_scenario", h.RunScenario)
	e.Register("get_recommendations", h.GetRecommendations)
	e.Register("get_summary", h.GetSummary)
	e.Register("get_financial_metrics", h.GetFinancialMetrics)
	e.Register("get_historical_trend", h.GetHistoricalTrend)
}

// ExportPDF generates a PDF report for the current assessment and stages
// it for download.
func (h *Handlers) ExportPDF(ctx context.Context, sessionID string, args map[string]any) (any, error) {
	a := h.slot.Latest()
	if a == nil {
		return nil, errNoAssessment
	}

	template := strArg(args, "template", "standard")
	includeCharts := boolArg(args, "include_charts", true)
	language := strArg(args, "language", "en")

	var data []byte
	if h.pdf != nil {
		built, err := h.pdf.BuildReport(ctx, a, template, includeCharts, language)
		if err != nil {
			h.log.Warn().Err(err).Msg("report builder failed, using placeholder")
		} else {
			data = built
		}
	}
	if data == nil {
		data = minimalPDF(placeholderReportLines(a, template)...)
	}

	name := fmt.Sprintf("risk-report-%s.pdf", reportStem(a, sessionID))
	f := h.exports.Put(name, "application/pdf", data)
	return exportResult(f), nil
}

// ExportExcel exports the assessment as a workbook when a writer is wired
// in.
func (h *Handlers) ExportExcel(ctx context.Context, sessionID string, args map[string]any) (any, error) {
	if h.excel == nil {
		return nil, errNoExcel
	}
	a := h.slot.Latest()
	if a == nil {
		return nil, errNoAssessment
	}

	data, err := h.excel.BuildWorkbook(ctx, a,
		boolArg(args, "include_raw_data", true),
		boolArg(args, "include_charts", false))
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("risk-data-%s.xlsx", reportStem(a, sessionID))
	f := h.exports.Put(name, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	return exportResult(f), nil
}

// CompareShipments builds a side-by-side view of the requested metrics
// from the shipment history.
func (h *Handlers) CompareShipments(ctx context.Context, sessionID string, args map[string]any) (any, error) {
	recent := h.recentShipments()
	if len(recent) == 0 {
		return nil, errNoHistory
	}

	ids := stringSlice(args["shipment_ids"])
	metrics := stringSlice(args["metrics"])

	byID := make(map[string]map[string]any, len(recent))
	for _, s := range recent {
		if id, ok := s["id"].(string); ok {
			byID[id] = s
		}
	}

	rows := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			continue
		}
		row := map[string]any{"shipment_id": id}
		for _, m := range metrics {
			if v, ok := assessment.Number(s, m); ok {
				row[m] = v
			}
		}
		rows = append(rows, row)
	}
	if len(rows) < 2 {
		return nil, errNoHistory
	}

	return map[string]any{
		"shipments": rows,
		"metrics":   metrics,
	}, nil
}

// RunScenario replays the risk model under a shock and reports the score
// movement.
func (h *Handlers) RunScenario(ctx context.Context, sessionID string, args map[string]any) (any, error) {
	if h.scenarios == nil {
		return nil, errNoScenarios
	}
	baseline := h.slot.Latest()
	if baseline == nil {
		return nil, errNoAssessment
	}

	scenarioType := strArg(args, "scenario_type", "")
	params, _ := args["parameters"].(map[string]any)

	result, err := h.scenarios.Run(baseline, scenarioType, params)
	if err != nil {
		return nil, err
	}

	baselineScore, _ := assessment.Number(baseline, "risk_score")
	scenarioScore, _ := assessment.Number(result, "risk_score")
	deltas, _ := result["deltas"].(map[string]any)
	if deltas == nil {
		deltas = map[string]any{}
	}

	return map[string]any{
		"baseline_score": baselineScore,
		"scenario_score": scenarioScore,
		"delta":          scenarioScore - baselineScore,
		"deltas":         deltas,
	}, nil
}

// GetRecommendations returns mitigation recommendations, preferring ones
// already attached to the assessment and synthesizing from the risk score
// band otherwise.
func (h *Handlers) GetRecommendations(ctx context.Context, sessionID string, args map[string]any) (any, error) {
	a := h.slot.Latest()
	if a == nil {
		return nil, errNoAssessment
	}

	limit := intArg(args, "limit", 5)
	sortBy := strArg(args, "sort_by", "risk_reduction")

	recs := attachedRecommendations(a)
	if len(recs) == 0 {
		score, _ := assessment.Number(a, "risk_score")
		recs = synthesizeRecommendations(score)
	}

	sortRecommendations(recs, sortBy)
	if len(recs) > limit {
		recs = recs[:limit]
	}

	return map[string]any{
		"recommendations": recs,
		"total":           len(recs),
		"sort_by":         sortBy,
	}, nil
}

// GetSummary produces a deterministic executive summary of the current
// assessment.
func (h *Handlers) GetSummary(ctx context.Context, sessionID string, args map[string]any) (any, error) {
	a := h.slot.Latest()
	if a == nil {
		return nil, errNoAssessment
	}

	length := strArg(args, "length", "medium")
	language := strArg(args, "language", "en")
	includeRecs := boolArg(args, "include_recommendations", true)

	text := buildSummary(a, length, language, includeRecs)
	return map[string]any{
		"summary":  text,
		"length":   length,
		"language": language,
	}, nil
}

// GetFinancialMetrics extracts the financial risk figures at the requested
// confidence levels.
func (h *Handlers) GetFinancialMetrics(ctx context.Context, sessionID string, args map[string]any) (any, error) {
	a := h.slot.Latest()
	if a == nil {
		return nil, errNoAssessment
	}

	fin, _ := a["financial"].(map[string]any)
	if fin == nil {
		fin = map[string]any{}
	}

	out := map[string]any{}
	if v, ok := assessment.Number(fin, "expected_loss"); ok {
		out["expected_loss"] = v
	}

	vars := map[string]any{}
	cvars := map[string]any{}
	for _, level := range floatSlice(args["confidence_levels"]) {
		suffix := fmt.Sprintf("%.0f", level*100)
		if v, ok := assessment.Number(fin, "var_"+suffix); ok {
			vars[suffix] = v
		}
		if v, ok := assessment.Number(fin, "cvar_"+suffix); ok {
			cvars[suffix] = v
		}
	}
	out["var"] = vars
	out["cvar"] = cvars

	if boolArg(args, "include_distributions", false) {
		if dist, ok := fin["distribution"]; ok {
			out["distribution"] = dist
		}
	}
	return out, nil
}

// GetHistoricalTrend reports one metric across the shipment history.
func (h *Handlers) GetHistoricalTrend(ctx context.Context, sessionID string, args map[string]any) (any, error) {
	recent := h.recentShipments()
	if len(recent) == 0 {
		return nil, errNoHistory
	}

	metric := strArg(args, "metric", "risk_score")
	timeRange := strArg(args, "time_range", "90d")
	ids := stringSlice(args["shipment_ids"])

	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}

	points := make([]map[string]any, 0, len(recent))
	for _, s := range recent {
		id, _ := s["id"].(string)
		if len(wanted) > 0 && !wanted[id] {
			continue
		}
		v, ok := assessment.Number(s, metric)
		if !ok {
			continue
		}
		point := map[string]any{"shipment_id": id, "value": v}
		if date, ok := s["date"].(string); ok {
			point["date"] = date
		}
		points = append(points, point)
	}

	return map[string]any{
		"metric":     metric,
		"time_range": timeRange,
		"points":     points,
	}, nil
}

func (h *Handlers) recentShipments() []map[string]any {
	if h.history == nil {
		return nil
	}
	return h.history.RecentShipments()
}

// --- recommendation synthesis ---

func attachedRecommendations(a map[string]any) []map[string]any {
	raw, _ := a["recommendations"].([]any)
	recs := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			recs = append(recs, m)
		}
	}
	return recs
}

func synthesizeRecommendations(score float64) []map[string]any {
	switch {
	case score >= 70:
		return []map[string]any{
			{
				"title":         "Immediate Risk Mitigation",
				"description":   "Reroute or reschedule the shipment to avoid the dominant risk drivers.",
				"riskReduction": 10.0,
				"costImpact":    2000.0,
				"feasibility":   0.8,
			},
			{
				"title":         "Enhanced Insurance Coverage",
				"description":   "Increase cargo insurance to cover the elevated expected loss.",
				"riskReduction": 5.0,
				"costImpact":    1500.0,
				"feasibility":   0.95,
			},
		}
	case score >= 40:
		return []map[string]any{
			{
				"title":         "Enhanced Monitoring",
				"description":   "Enable more frequent tracking checkpoints along the route.",
				"riskReduction": 3.0,
				"costImpact":    500.0,
				"feasibility":   0.9,
			},
		}
	default:
		return []map[string]any{}
	}
}

func sortRecommendations(recs []map[string]any, sortBy string) {
	key := func(r map[string]any) float64 {
		rr, _ := assessment.Number(r, "riskReduction")
		switch sortBy {
		case "cost_benefit":
			cost, _ := assessment.Number(r, "costImpact")
			if cost < 1 {
				cost = 1
			}
			return rr / cost
		case "feasibility":
			f, _ := assessment.Number(r, "feasibility")
			return f
		default:
			return rr
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return key(recs[i]) > key(recs[j])
	})
}

// --- summary rendering ---

func buildSummary(a map[string]any, length, language string, includeRecs bool) string {
	score, _ := assessment.Number(a, "risk_score")
	level, _ := a["risk_level"].(string)
	ship, _ := a["shipment"].(map[string]any)
	fin, _ := a["financial"].(map[string]any)
	drivers := assessment.TopDrivers(a, 3)

	var b strings.Builder
	vi := language == "vi"

	if vi {
		fmt.Fprintf(&b, "Điểm rủi ro hiện tại là %.1f (%s).", score, level)
	} else {
		fmt.Fprintf(&b, "The current risk score is %.1f (%s).", score, level)
	}

	if length == "short" {
		return b.String()
	}

	if origin, dest := str(ship, "origin"), str(ship, "destination"); origin != "" && dest != "" {
		if vi {
			fmt.Fprintf(&b, " Tuyến vận chuyển: %s đến %s.", origin, dest)
		} else {
			fmt.Fprintf(&b, " Route: %s to %s.", origin, dest)
		}
	}
	if loss, ok := assessment.Number(fin, "expected_loss"); ok {
		if vi {
			fmt.Fprintf(&b, " Tổn thất dự kiến: $%s.", humanize.Comma(int64(loss)))
		} else {
			fmt.Fprintf(&b, " Expected loss: $%s.", humanize.Comma(int64(loss)))
		}
	}
	if len(drivers) > 0 {
		names := make([]string, 0, len(drivers))
		for _, d := range drivers {
			names = append(names, d.Name)
		}
		if vi {
			fmt.Fprintf(&b, " Yếu tố rủi ro chính: %s.", strings.Join(names, ", "))
		} else {
			fmt.Fprintf(&b, " Main risk drivers: %s.", strings.Join(names, ", "))
		}
	}

	if length == "long" {
		if v, ok := assessment.Number(fin, "var_95"); ok {
			if vi {
				fmt.Fprintf(&b, " Tổn thất ở mức tin cậy 95%%: $%s.", humanize.Comma(int64(v)))
			} else {
				fmt.Fprintf(&b, " 95th percentile loss: $%s.", humanize.Comma(int64(v)))
			}
		}
		for _, d := range drivers {
			fmt.Fprintf(&b, " %s: %.1f%%.", d.Name, d.Impact)
		}
	}

	if includeRecs && score >= 40 {
		if vi {
			b.WriteString(" Có các biện pháp giảm thiểu rủi ro khả dụng.")
		} else {
			b.WriteString(" Risk mitigation measures are available.")
		}
	}
	return b.String()
}

// --- small helpers ---

func placeholderReportLines(a map[string]any, template string) []string {
	lines := []string{fmt.Sprintf("Shipment Risk Report (%s)", template)}
	if score, ok := assessment.Number(a, "risk_score"); ok {
		level, _ := a["risk_level"].(string)
		lines = append(lines, fmt.Sprintf("Risk score: %.1f (%s)", score, level))
	}
	if ship, ok := a["shipment"].(map[string]any); ok {
		if origin, dest := str(ship, "origin"), str(ship, "destination"); origin != "" && dest != "" {
			lines = append(lines, fmt.Sprintf("Route: %s to %s", origin, dest))
		}
	}
	if fin, ok := a["financial"].(map[string]any); ok {
		if loss, ok := assessment.Number(fin, "expected_loss"); ok {
			lines = append(lines, fmt.Sprintf("Expected loss: $%s", humanize.Comma(int64(loss))))
		}
	}
	lines = append(lines, "Generated "+time.Now().UTC().Format("2006-01-02 15:04 UTC"))
	return lines
}

func reportStem(a map[string]any, sessionID string) string {
	if ship, ok := a["shipment"].(map[string]any); ok {
		if id := str(ship, "id"); id != "" {
			return id
		}
	}
	return sessionID
}

func exportResult(f ExportedFile) map[string]any {
	return map[string]any{
		"file_id":    f.ID,
		"file_url":   f.URL(),
		"file_name":  f.Name,
		"file_size":  len(f.Data),
		"expires_at": f.ExpiresAt.Format(time.RFC3339),
	}
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

func strArg(args map[string]any, name, fallback string) string {
	if s, ok := args[name].(string); ok {
		return s
	}
	return fallback
}

func boolArg(args map[string]any, name string, fallback bool) bool {
	if b, ok := args[name].(bool); ok {
		return b
	}
	return fallback
}

func intArg(args map[string]any, name string, fallback int) int {
	switch v := args[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

func stringSlice(v any) []string {
	switch items := v.(type) {
	case []string:
		return items
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func floatSlice(v any) []float64 {
	switch items := v.(type) {
	case []float64:
		return items
	case []any:
		out := make([]float64, 0, len(items))
		for _, item := range items {
			if f, ok := toFloat(item); ok {
				out = append(out, f)
			}
		}
		return out
	}
	return nil
}
