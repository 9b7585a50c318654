package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logimind/advisor/internal/assessment"
)

func assessedContext() assessment.SystemContext {
	return assessment.SystemContext{
		SessionID: "s1",
		Assessment: map[string]any{
			"risk_score": 72.46,
			"risk_level": "high",
			"drivers": []any{
				map[string]any{"name": "Weather Exposure", "impact": 34.2},
				map[string]any{"name": "Port Congestion", "impact": 27.8},
				map[string]any{"name": "Carrier Reliability", "impact": 18.1},
			},
		},
	}
}

// --- language detection tests ---

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "vi", DetectLanguage("hello", "vi"))
	assert.Equal(t, "vi", DetectLanguage("Rủi ro đơn hàng này như thế nào?", ""))
	assert.Equal(t, "vi", DetectLanguage("ĐƠN HÀNG", ""))
	assert.Equal(t, "en", DetectLanguage("Please export to PDF", "en"))
	assert.Equal(t, "en", DetectLanguage("what are the risk drivers", ""))
}

// --- responder tests ---

func TestRiskIntentWithoutAssessment(t *testing.T) {
	out := Respond("Rủi ro đơn hàng này như thế nào?", assessment.SystemContext{}, "vi")

	assert.Equal(t, "Để phân tích rủi ro chi tiết, vui lòng cung cấp thông tin về đơn hàng hoặc đảm bảo có dữ liệu đánh giá trong hệ thống.", out.Text)
	assert.Empty(t, out.ToolCalls)
}

func TestRecommendationIntent(t *testing.T) {
	out := Respond("Nhận đề xuất giảm thiểu rủi ro?", assessedContext(), "vi")

	assert.True(t, len(out.Text) > 0)
	assert.Contains(t, out.Text, "Tôi có thể cung cấp các đề xuất giảm thiểu rủi ro.")
	require.Len(t, out.ToolCalls, 1)
	assert.Equal(t, "get_recommendations", out.ToolCalls[0].Name)
	assert.Empty(t, out.ToolCalls[0].Arguments)
}

func TestRecommendationBeatsRiskIntent(t *testing.T) {
	// The message carries both recommendation and risk keywords; the
	// recommendation check runs first.
	out := Respond("Đề xuất giảm thiểu rủi ro cho đơn hàng", assessedContext(), "vi")
	require.Len(t, out.ToolCalls, 1)
	assert.Equal(t, "get_recommendations", out.ToolCalls[0].Name)
}

func TestRiskIntentWithAssessment(t *testing.T) {
	out := Respond("Rủi ro đơn hàng này như thế nào?", assessedContext(), "vi")

	assert.Contains(t, out.Text, "72.5")
	assert.Contains(t, out.Text, "Weather Exposure: 34.2%")
	assert.Contains(t, out.Text, "Port Congestion")
	assert.Empty(t, out.ToolCalls)
}

func TestEnglishRiskIntentNeedsDriverOrFactor(t *testing.T) {
	out := Respond("what are the risk drivers here", assessedContext(), "en")
	assert.Contains(t, out.Text, "The current risk score is 72.5")

	// "risk" alone is not enough in English.
	out = Respond("is this risky", assessedContext(), "en")
	assert.Contains(t, out.Text, "limited mode")
}

func TestExportIntentWithoutAssessment(t *testing.T) {
	out := Respond("Please export to PDF", assessment.SystemContext{}, "en")

	assert.Equal(t, "I can help you export a PDF report. Would you like me to generate one?", out.Text)
	assert.Empty(t, out.ToolCalls)
}

func TestExportIntentWithAssessment(t *testing.T) {
	out := Respond("Please export to PDF", assessedContext(), "en")

	require.Len(t, out.ToolCalls, 1)
	assert.Equal(t, "export_pdf", out.ToolCalls[0].Name)
	assert.Equal(t, map[string]any{"format": "standard"}, out.ToolCalls[0].Arguments)
}

func TestSummaryIntentAsksForLength(t *testing.T) {
	out := Respond("give me a summary", assessedContext(), "en")
	assert.Equal(t, "Would you like a short, medium, or long summary?", out.Text)
	assert.Empty(t, out.ToolCalls)

	out = Respond("tóm tắt giúp tôi", assessedContext(), "")
	assert.Equal(t, "Bạn muốn bản tóm tắt ngắn, vừa hay dài?", out.Text)
}

func TestDefaultApology(t *testing.T) {
	out := Respond("what's the weather like", assessedContext(), "en")
	assert.Contains(t, out.Text, "limited mode")
	assert.Empty(t, out.ToolCalls)

	out = Respond("bạn tên gì đó", assessedContext(), "")
	assert.Contains(t, out.Text, "chế độ hạn chế")
}

func TestResponderPurity(t *testing.T) {
	ctx := assessedContext()
	first := Respond("Nhận đề xuất giảm thiểu rủi ro?", ctx, "vi")
	for i := 0; i < 5; i++ {
		again := Respond("Nhận đề xuất giảm thiểu rủi ro?", ctx, "vi")
		assert.Equal(t, first, again)
	}
}
