package advisor

import (
	"strings"

	"github.com/logimind/advisor/internal/domain"
)

// FollowUpSuggestions derives next-action chips from the reply text. A
// tool that already ran this turn is never suggested again.
func FollowUpSuggestions(reply string, results []domain.ToolResult) []domain.Suggestion {
	executed := make(map[string]bool, len(results))
	for _, r := range results {
		executed[r.Tool] = true
	}

	lower := strings.ToLower(reply)
	var out []domain.Suggestion

	if (strings.Contains(lower, "export") || strings.Contains(lower, "pdf")) && !executed["export_pdf"] {
		out = append(out, domain.Suggestion{
			Kind:        "suggestion",
			Action:      "export_pdf",
			Label:       "Export PDF Report",
			Description: "Generate PDF report with full risk analysis",
		})
	}
	if strings.Contains(lower, "recommend") && !executed["get_recommendations"] {
		out = append(out, domain.Suggestion{
			Kind:        "suggestion",
			Action:      "get_recommendations",
			Label:       "Get Recommendations",
			Description: "Get risk mitigation recommendations for this shipment",
		})
	}
	if strings.Contains(lower, "compare") {
		out = append(out, domain.Suggestion{
			Kind:        "suggestion",
			Action:      "compare_shipments",
			Label:       "Compare Shipments",
			Description: "Compare risk metrics across shipments",
		})
	}
	return out
}
