// Package view derives the rows shown to the user from a snapshot of
// records. Every stage is a pure function; the snapshot is never mutated.
package view

import (
	"strings"

	"github.com/rogersnm/taskdesk/internal/model"
	"golang.org/x/text/language"
)

// Filters holds equality constraints. An unset field matches everything.
type Filters struct {
	Process  model.Process
	Priority model.Priority
}

func (f Filters) Active() bool {
	return f.Process != model.ProcessUnset || f.Priority != model.PriorityUnset
}

// Query is the full set of view parameters.
type Query struct {
	Filters Filters
	Search  string
	Sort    SortSpec
}

func (q Query) Active() bool {
	return q.Filters.Active() || q.Search != "" || q.Sort.Active()
}

// Projection is the sequence handed to the renderer.
type Projection struct {
	Rows []model.Record
	// Applied is true when any stage constrained or reordered the snapshot,
	// so an empty Rows means "nothing matches" rather than "nothing exists".
	Applied bool
	// Total is the size of the snapshot the projection was derived from.
	Total int
}

// Filter returns the records satisfying every set constraint, in input order.
func Filter(records []model.Record, f Filters) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if f.Process != model.ProcessUnset && r.Process != f.Process {
			continue
		}
		if f.Priority != model.PriorityUnset && r.Priority != f.Priority {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Search returns the records whose task contains query, ignoring case.
// An empty query matches every record.
func Search(records []model.Record, query string) []model.Record {
	q := strings.ToLower(query)
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Task), q) {
			out = append(out, r)
		}
	}
	return out
}

// Pipeline composes Filter, Search and Sort over a snapshot.
type Pipeline struct {
	// Lang selects the collation used for text columns.
	Lang language.Tag
}

func (p Pipeline) Apply(snapshot []model.Record, q Query) Projection {
	rows := Filter(snapshot, q.Filters)
	rows = Search(rows, q.Search)
	rows = NewSorter(p.Lang).Sort(rows, q.Sort)
	return Projection{Rows: rows, Applied: q.Active(), Total: len(snapshot)}
}

// Apply runs the pipeline with English collation.
func Apply(snapshot []model.Record, q Query) Projection {
	return Pipeline{Lang: language.English}.Apply(snapshot, q)
}
