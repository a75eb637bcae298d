package view

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/rogersnm/taskdesk/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Field string

const (
	FieldNone     Field = ""
	FieldID       Field = "id"
	FieldTask     Field = "task"
	FieldProcess  Field = "process"
	FieldPriority Field = "priority"
)

// Fields lists the sortable columns in table order.
var Fields = []Field{FieldID, FieldTask, FieldProcess, FieldPriority}

type Order int

const (
	Asc Order = iota
	Desc
)

func (o Order) String() string {
	if o == Desc {
		return "desc"
	}
	return "asc"
}

// SortSpec selects the sort column and direction. The zero value keeps
// snapshot order.
type SortSpec struct {
	Field Field
	Order Order
}

func (s SortSpec) Active() bool {
	return s.Field != FieldNone
}

func (s SortSpec) String() string {
	if !s.Active() {
		return ""
	}
	return string(s.Field) + ":" + s.Order.String()
}

// Toggle mimics a column header click: a new column sorts ascending, the
// same column flips to descending, and a third click clears the sort.
func (s SortSpec) Toggle(f Field) SortSpec {
	switch {
	case s.Field != f:
		return SortSpec{Field: f, Order: Asc}
	case s.Order == Asc:
		return SortSpec{Field: f, Order: Desc}
	default:
		return SortSpec{}
	}
}

// ParseSortSpec parses "field" or "field:asc|desc". Empty input is the zero spec.
func ParseSortSpec(s string) (SortSpec, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return SortSpec{}, nil
	}
	name, dir, _ := strings.Cut(s, ":")
	f, err := ParseField(name)
	if err != nil {
		return SortSpec{}, err
	}
	spec := SortSpec{Field: f}
	switch dir {
	case "", "asc":
	case "desc":
		spec.Order = Desc
	default:
		return SortSpec{}, fmt.Errorf("invalid sort direction %q: must be asc or desc", dir)
	}
	return spec, nil
}

func ParseField(s string) (Field, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "id":
		return FieldID, nil
	case "task":
		return FieldTask, nil
	case "process", "status":
		return FieldProcess, nil
	case "priority":
		return FieldPriority, nil
	}
	return FieldNone, fmt.Errorf("invalid sort field %q: must be one of id, task, process, priority", s)
}

// Sorter orders records using a collator for text columns. A Sorter is not
// safe for concurrent use.
type Sorter struct {
	col *collate.Collator
}

func NewSorter(lang language.Tag) *Sorter {
	if lang == language.Und {
		lang = language.English
	}
	return &Sorter{col: collate.New(lang)}
}

// Sort returns a sorted copy of records. Ties keep their input order.
func (s *Sorter) Sort(records []model.Record, spec SortSpec) []model.Record {
	out := slices.Clone(records)
	if !spec.Active() {
		return out
	}
	less := s.compare(spec.Field)
	slices.SortStableFunc(out, func(a, b model.Record) int {
		c := less(a, b)
		if spec.Order == Desc {
			return -c
		}
		return c
	})
	return out
}

func (s *Sorter) compare(f Field) func(a, b model.Record) int {
	switch f {
	case FieldID:
		return func(a, b model.Record) int { return cmp.Compare(a.ID, b.ID) }
	case FieldProcess:
		return func(a, b model.Record) int { return s.col.CompareString(string(a.Process), string(b.Process)) }
	case FieldPriority:
		return func(a, b model.Record) int { return s.col.CompareString(string(a.Priority), string(b.Priority)) }
	default:
		return func(a, b model.Record) int { return s.col.CompareString(a.Task, b.Task) }
	}
}

// Sort orders records with English collation.
func Sort(records []model.Record, spec SortSpec) []model.Record {
	return NewSorter(language.English).Sort(records, spec)
}
