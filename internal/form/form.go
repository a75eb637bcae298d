// Package form holds the interactive create/edit forms and the delete
// confirmation dialog.
package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rogersnm/taskdesk/internal/model"
	"github.com/rogersnm/taskdesk/internal/viewmodel"
)

const noneLabel = "(none)"

// Values is bound to the form fields.
type Values struct {
	Task     string
	Process  string
	Priority string
}

func FromRecord(r model.Record) *Values {
	return &Values{Task: r.Task, Process: string(r.Process), Priority: string(r.Priority)}
}

// Reset clears every field, as after a successful create.
func (v *Values) Reset() {
	*v = Values{}
}

func (v *Values) Input() (model.RecordInput, error) {
	process, err := model.ParseProcess(v.Process)
	if err != nil {
		return model.RecordInput{}, err
	}
	priority, err := model.ParsePriority(v.Priority)
	if err != nil {
		return model.RecordInput{}, err
	}
	in := model.RecordInput{Task: strings.TrimSpace(v.Task), Process: process, Priority: priority}
	return in, in.Validate()
}

// ValidateTask is the inline validator of the task field.
func ValidateTask(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("please enter a task")
	}
	return nil
}

func processOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption(noneLabel, "")}
	for _, p := range model.Processes() {
		opts = append(opts, huh.NewOption(string(p), string(p)))
	}
	return opts
}

func priorityOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption(noneLabel, "")}
	for _, p := range model.Priorities() {
		opts = append(opts, huh.NewOption(string(p), string(p)))
	}
	return opts
}

// New builds the record form bound to v.
func New(title string, v *Values) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Task").
				Placeholder("What needs doing?").
				Value(&v.Task).
				Validate(ValidateTask),
			huh.NewSelect[string]().
				Title("Status").
				Options(processOptions()...).
				Value(&v.Process),
			huh.NewSelect[string]().
				Title("Priority").
				Options(priorityOptions()...).
				Value(&v.Priority),
		).Title(title),
	)
}

// Run shows the form and returns the validated input.
func Run(title string, v *Values) (model.RecordInput, error) {
	if err := New(title, v).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return model.RecordInput{}, viewmodel.ErrCancelled
		}
		return model.RecordInput{}, fmt.Errorf("running form: %w", err)
	}
	return v.Input()
}

// NewConfirm builds the delete confirmation bound to ok.
func NewConfirm(title, detail string, ok *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(detail).
				Affirmative("Delete").
				Negative("Cancel").
				Value(ok),
		),
	)
}

// Confirm asks on the terminal. An aborted prompt counts as declined.
func Confirm(title, detail string) (bool, error) {
	var ok bool
	if err := NewConfirm(title, detail, &ok).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

var Confirmer viewmodel.Confirmer = viewmodel.ConfirmFunc(Confirm)
