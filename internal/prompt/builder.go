// Package prompt assembles the system prompt handed to the language model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/logimind/advisor/internal/assessment"
	"github.com/logimind/advisor/internal/llm"
	"github.com/logimind/advisor/internal/tools"
)

// DefaultTail is how many trailing messages the prompt replays.
const DefaultTail = 5

const maxMessageRunes = 200

const rolePreamble = `You are a logistics risk advisor helping users understand and mitigate shipment risk. You analyze risk assessments, explain risk drivers, and recommend concrete mitigation actions.`

const guidelines = `Guidelines:
- Ground every statement in the assessment data provided below. Never invent numbers.
- Be concise and concrete. Lead with the figure the user asked about.
- When the user asks for an action you have a tool for, call the tool instead of describing it.`

const vietnameseDirective = `- The user is writing in Vietnamese. You MUST answer in Vietnamese.`

const toolUsage = `You have tools for exporting reports, comparing shipments, running scenarios and fetching recommendations. Call a tool when the user's request matches one; answer directly otherwise.`

// Builder renders system prompts from the session context and the tool
// catalog.
type Builder struct {
	registry *tools.Registry
	tail     int
}

func NewBuilder(registry *tools.Registry, tail int) *Builder {
	if tail <= 0 {
		tail = DefaultTail
	}
	return &Builder{registry: registry, tail: tail}
}

// System renders the full prompt: role, guidelines, tool instructions, the
// current assessment context, the tool catalog and the recent turns.
func (b *Builder) System(ctx assessment.SystemContext, language string, history []llm.Message) string {
	var sb strings.Builder

	sb.WriteString(rolePreamble)
	sb.WriteString("\n\n")

	sb.WriteString(guidelines)
	if language == "vi" {
		sb.WriteString("\n")
		sb.WriteString(vietnameseDirective)
	}
	sb.WriteString("\n\n")

	sb.WriteString(toolUsage)
	sb.WriteString("\n\n")

	sb.WriteString("Current context:\n")
	sb.WriteString(assessment.FormatForPrompt(ctx))
	sb.WriteString("\n\n")

	sb.WriteString("Available tools:\n")
	for _, d := range b.registry.List() {
		fmt.Fprintf(&sb, "- %s: %s\n", d.Name, d.Description)
	}

	if tail := b.recentTurns(history); tail != "" {
		sb.WriteString("\nRecent conversation:\n")
		sb.WriteString(tail)
	}

	return sb.String()
}

func (b *Builder) recentTurns(history []llm.Message) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > b.tail {
		history = history[len(history)-b.tail:]
	}

	var sb strings.Builder
	for _, m := range history {
		fmt.Fprintf(&sb, "%s: %s\n", roleLabel(m.Role), truncateRunes(m.Content, maxMessageRunes))
	}
	return sb.String()
}

func roleLabel(role string) string {
	switch role {
	case llm.RoleUser:
		return "User"
	case llm.RoleAssistant:
		return "Assistant"
	case llm.RoleSystem:
		return "System"
	default:
		return role
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
