package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrTaskRequired = errors.New("task is required")

// Record is a single task entry as served by the tasks API.
type Record struct {
	ID       int      `json:"id" yaml:"id"`
	Task     string   `json:"task" yaml:"task"`
	Process  Process  `json:"process,omitempty" yaml:"process,omitempty"`
	Priority Priority `json:"priority,omitempty" yaml:"priority,omitempty"`
}

func (r *Record) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("record id must be positive, got %d", r.ID)
	}
	return r.Input().Validate()
}

// Input returns the writable fields of r.
func (r *Record) Input() RecordInput {
	return RecordInput{Task: r.Task, Process: r.Process, Priority: r.Priority}
}

// RecordInput is the body of a create request.
type RecordInput struct {
	Task     string   `json:"task"`
	Process  Process  `json:"process,omitempty"`
	Priority Priority `json:"priority,omitempty"`
}

func (in RecordInput) Validate() error {
	if strings.TrimSpace(in.Task) == "" {
		return ErrTaskRequired
	}
	if !in.Process.Valid() {
		return fmt.Errorf("invalid status %q", in.Process)
	}
	if !in.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", in.Priority)
	}
	return nil
}

// RecordPatch is a partial update. Nil fields are left untouched.
type RecordPatch struct {
	Task     *string   `json:"task,omitempty"`
	Process  *Process  `json:"process,omitempty"`
	Priority *Priority `json:"priority,omitempty"`
}

func (p RecordPatch) Empty() bool {
	return p.Task == nil && p.Process == nil && p.Priority == nil
}

func (p RecordPatch) Validate() error {
	if p.Task != nil && strings.TrimSpace(*p.Task) == "" {
		return ErrTaskRequired
	}
	if p.Process != nil && !p.Process.Valid() {
		return fmt.Errorf("invalid status %q", *p.Process)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("invalid priority %q", *p.Priority)
	}
	return nil
}

// Apply returns a copy of r with the patch fields set.
func (p RecordPatch) Apply(r Record) Record {
	if p.Task != nil {
		r.Task = *p.Task
	}
	if p.Process != nil {
		r.Process = *p.Process
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	return r
}

// Diff returns the patch that turns r into next.
func Diff(r, next Record) RecordPatch {
	var p RecordPatch
	if r.Task != next.Task {
		t := next.Task
		p.Task = &t
	}
	if r.Process != next.Process {
		s := next.Process
		p.Process = &s
	}
	if r.Priority != next.Priority {
		pr := next.Priority
		p.Priority = &pr
	}
	return p
}
