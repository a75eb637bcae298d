package markdown

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rogersnm/taskdesk/internal/id"
	"github.com/rogersnm/taskdesk/internal/model"
	"github.com/rogersnm/taskdesk/internal/view"
)

var (
	headerRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle      = lipgloss.NewStyle()
	taskCellStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

const (
	NoTasks   = "No tasks found."
	NoMatches = "No tasks match the current filters."
)

var columnTitles = map[view.Field]string{
	view.FieldID:       "ID",
	view.FieldTask:     "Task",
	view.FieldProcess:  "Status",
	view.FieldPriority: "Priority",
}

// Headers returns the column titles with a direction marker on the sorted column.
func Headers(sort view.SortSpec) []string {
	out := make([]string, len(view.Fields))
	for i, f := range view.Fields {
		out[i] = columnTitles[f]
		if sort.Field == f {
			if sort.Order == view.Desc {
				out[i] += " ▼"
			} else {
				out[i] += " ▲"
			}
		}
	}
	return out
}

// Row returns the plain cell values for r.
func Row(r model.Record) []string {
	return []string{id.Format(r.ID), r.Task, string(r.Process), string(r.Priority)}
}

// EmptyMessage distinguishes an empty collection from a query with no matches.
func EmptyMessage(p view.Projection) string {
	if p.Total > 0 && p.Applied {
		return NoMatches
	}
	return NoTasks
}

func RenderRecordTable(p view.Projection, sort view.SortSpec) string {
	if len(p.Rows) == 0 {
		return EmptyMessage(p)
	}
	rows := make([][]string, len(p.Rows))
	for i, r := range p.Rows {
		cells := Row(r)
		cells[2] = ProcessStyle(r.Process).Render(cells[2])
		cells[3] = PriorityStyle(r.Priority).Render(cells[3])
		rows[i] = cells
	}
	out := renderTable(Headers(sort), rows)
	if p.Applied && len(p.Rows) != p.Total {
		out += "\n" + labelStyle.Render(fmt.Sprintf("Showing %d of %d tasks", len(p.Rows), p.Total))
	}
	return out
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerRowStyle
			}
			if col == 0 {
				return cellStyle.Align(lipgloss.Right)
			}
			if col == 1 {
				return taskCellStyle
			}
			return cellStyle
		})
	return t.Render()
}
