package advisor

import (
	"fmt"
	"strings"

	"github.com/logimind/advisor/internal/assessment"
	"github.com/logimind/advisor/internal/domain"
)

// DeterministicReply is the offline responder's output: a reply text and
// the tool calls it wants dispatched.
type DeterministicReply struct {
	Text      string
	ToolCalls []domain.ToolCall
}

// Intent keyword sets, checked in a fixed order. The Vietnamese sets
// deliberately carry a few English words the source traffic mixes in.
var (
	recommendVI = []string{"đề xuất", "giảm thiểu", "nhận đề xuất", "biện pháp", "khuyến nghị", "đề nghị", "recommend"}
	recommendEN = []string{"recommend", "suggestion"}
	riskVI      = []string{"rủi ro", "đánh giá", "như thế nào", "như nào", "thế nào", "risk", "assessment", "đơn hàng"}
	exportAny   = []string{"xuất", "export", "pdf", "báo cáo", "file"}
	summaryAny  = []string{"tóm tắt", "summary", "tổng quan"}
)

const (
	noAssessmentVI = "Để phân tích rủi ro chi tiết, vui lòng cung cấp thông tin về đơn hàng hoặc đảm bảo có dữ liệu đánh giá trong hệ thống."
	noAssessmentEN = "To provide a detailed risk analysis, please provide shipment details or make sure assessment data is available in the system."

	recommendAckVI = "Tôi có thể cung cấp các đề xuất giảm thiểu rủi ro."
	recommendAckEN = "I can provide risk mitigation recommendations."

	exportAckVI = "Tôi có thể giúp bạn xuất báo cáo PDF. Bạn có muốn tôi tạo một bản không?"
	exportAckEN = "I can help you export a PDF report. Would you like me to generate one?"

	summaryPromptVI = "Bạn muốn bản tóm tắt ngắn, vừa hay dài?"
	summaryPromptEN = "Would you like a short, medium, or long summary?"

	limitedModeVI = "Xin lỗi, tôi đang hoạt động ở chế độ hạn chế nên chưa thể trả lời câu hỏi này."
	limitedModeEN = "Sorry, I am running in limited mode and cannot answer that right now."
)

// Respond produces a reply without contacting the LLM. It is a pure
// function of its inputs: same message, context and language always yield
// the same text and tool calls.
func Respond(message string, ctx assessment.SystemContext, language string) DeterministicReply {
	lang := DetectLanguage(message, language)
	vi := lang == "vi"
	lower := strings.ToLower(message)

	recommendKeywords := recommendEN
	if vi {
		recommendKeywords = recommendVI
	}
	if hasAny(lower, recommendKeywords) {
		return DeterministicReply{
			Text: pick(vi, recommendAckVI, recommendAckEN),
			ToolCalls: []domain.ToolCall{{
				ID:        "det-get_recommendations",
				Name:      "get_recommendations",
				Arguments: map[string]any{},
			}},
		}
	}

	if riskIntent(lower, vi) {
		if !ctx.HasAssessment() {
			return DeterministicReply{Text: pick(vi, noAssessmentVI, noAssessmentEN)}
		}
		return DeterministicReply{Text: riskExplanation(ctx.Assessment, vi)}
	}

	if hasAny(lower, exportAny) {
		reply := DeterministicReply{Text: pick(vi, exportAckVI, exportAckEN)}
		// Only queue the export when there is an assessment to render;
		// otherwise the reply stays a plain confirmation question.
		if ctx.HasAssessment() {
			reply.ToolCalls = []domain.ToolCall{{
				ID:        "det-export_pdf",
				Name:      "export_pdf",
				Arguments: map[string]any{"format": "standard"},
			}}
		}
		return reply
	}

	if hasAny(lower, summaryAny) {
		return DeterministicReply{Text: pick(vi, summaryPromptVI, summaryPromptEN)}
	}

	return DeterministicReply{Text: pick(vi, limitedModeVI, limitedModeEN)}
}

func riskIntent(lower string, vi bool) bool {
	if vi {
		return hasAny(lower, riskVI)
	}
	return strings.Contains(lower, "risk") &&
		(strings.Contains(lower, "driver") || strings.Contains(lower, "factor"))
}

func riskExplanation(a map[string]any, vi bool) string {
	score, _ := assessment.Number(a, "risk_score")
	level, _ := a["risk_level"].(string)
	drivers := assessment.TopDrivers(a, 5)

	var b strings.Builder
	if vi {
		fmt.Fprintf(&b, "Điểm rủi ro hiện tại là %.1f (%s).", score, level)
		if len(drivers) > 0 {
			b.WriteString("\nCác yếu tố rủi ro chính:")
		}
	} else {
		fmt.Fprintf(&b, "The current risk score is %.1f (%s).", score, level)
		if len(drivers) > 0 {
			b.WriteString("\nTop risk drivers:")
		}
	}
	for _, d := range drivers {
		fmt.Fprintf(&b, "\n- %s: %.1f%%", d.Name, d.Impact)
	}
	return b.String()
}

func hasAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func pick(vi bool, viText, enText string) string {
	if vi {
		return viText
	}
	return enText
}
