package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/rogersnm/taskdesk/internal/id"
	"github.com/rogersnm/taskdesk/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	inProgStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cancelSty   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Strikethrough(true)
	highSty     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	lowSty      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	plainStyle  = lipgloss.NewStyle()
)

func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

func ProcessStyle(p model.Process) lipgloss.Style {
	switch p {
	case model.ProcessDone:
		return doneStyle
	case model.ProcessInProcess:
		return inProgStyle
	case model.ProcessCancel:
		return cancelSty
	default:
		return plainStyle
	}
}

func PriorityStyle(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityHigh:
		return highSty
	case model.PriorityLow:
		return lowSty
	default:
		return plainStyle
	}
}

func RenderField(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

func RenderEntityHeader(title string, fields []string) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(title))
	sb.WriteString("\n")
	for _, f := range fields {
		sb.WriteString("  " + f + "\n")
	}
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// RecordDocument is the markdown shown by `show --pretty`.
func RecordDocument(r model.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", r.Task)
	sb.WriteString("| Field | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| ID | %s |\n", id.Format(r.ID))
	fmt.Fprintf(&sb, "| Status | %s |\n", orDash(string(r.Process)))
	fmt.Fprintf(&sb, "| Priority | %s |\n", orDash(string(r.Priority)))
	return sb.String()
}

// RenderRecord renders the detail view of r.
func RenderRecord(r model.Record) (string, error) {
	fields := []string{
		RenderField("ID", id.Format(r.ID)),
		RenderField("Status", ProcessStyle(r.Process).Render(orDash(string(r.Process)))),
		RenderField("Priority", PriorityStyle(r.Priority).Render(orDash(string(r.Priority)))),
	}
	body, err := RenderMarkdown(RecordDocument(r))
	if err != nil {
		return "", err
	}
	return RenderEntityHeader(r.Task, fields) + body, nil
}
