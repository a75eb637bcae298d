// Package viewmodel holds the task list state: the last fetched snapshot,
// the view query, and the mutation flows that invalidate the snapshot.
package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rogersnm/taskdesk/internal/model"
	"github.com/rogersnm/taskdesk/internal/view"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

var (
	ErrCancelled = errors.New("cancelled")
	ErrNoChanges = errors.New("no changes to apply")
	ErrNotFound  = errors.New("task not found")
)

// Store is the remote CRUD collaborator.
type Store interface {
	List(ctx context.Context) ([]model.Record, error)
	Create(ctx context.Context, in model.RecordInput) (*model.Record, error)
	Update(ctx context.Context, id int, patch model.RecordPatch) (*model.Record, error)
	Delete(ctx context.Context, id int) error
}

// Notifier surfaces outcomes to the user without blocking.
type Notifier interface {
	Success(msg string)
	Error(msg string, err error)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(title, detail string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(title, detail string) (bool, error)

func (f ConfirmFunc) Confirm(title, detail string) (bool, error) { return f(title, detail) }

// ListViewModel is safe for concurrent use.
type ListViewModel struct {
	store    Store
	notify   Notifier
	log      log.FieldLogger
	pipeline view.Pipeline

	mu       sync.Mutex
	snapshot []model.Record
	loaded   bool
	query    view.Query
	issued   uint64
	applied  uint64
}

type Option func(*ListViewModel)

func WithLogger(l log.FieldLogger) Option {
	return func(vm *ListViewModel) { vm.log = l }
}

// WithLanguage sets the collation for text sorting.
func WithLanguage(tag language.Tag) Option {
	return func(vm *ListViewModel) { vm.pipeline.Lang = tag }
}

func WithQuery(q view.Query) Option {
	return func(vm *ListViewModel) { vm.query = q }
}

func New(store Store, notify Notifier, opts ...Option) *ListViewModel {
	vm := &ListViewModel{
		store:    store,
		notify:   notify,
		log:      log.StandardLogger(),
		pipeline: view.Pipeline{Lang: language.English},
	}
	for _, o := range opts {
		o(vm)
	}
	return vm
}

// --- Snapshot ---

// BeginRefresh issues a new request token. Only the response carrying the
// latest token may replace the snapshot.
func (vm *ListViewModel) BeginRefresh() uint64 {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.issued++
	return vm.issued
}

// ApplySnapshot installs records fetched under token. It returns false and
// leaves state untouched when a newer request has been issued since.
func (vm *ListViewModel) ApplySnapshot(token uint64, records []model.Record) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if token != vm.issued || token <= vm.applied {
		vm.log.WithFields(log.Fields{"token": token, "latest": vm.issued}).Debug("dropping stale snapshot")
		return false
	}
	vm.snapshot = slices.Clone(records)
	vm.loaded = true
	vm.applied = token
	return true
}

// Fetch performs the network half of a refresh without touching state.
func (vm *ListViewModel) Fetch(ctx context.Context) ([]model.Record, error) {
	recs, err := vm.store.List(ctx)
	if err != nil {
		vm.log.WithError(err).WithField("op", "list").Error("fetching tasks")
		vm.notify.Error("Could not load tasks", err)
		return nil, err
	}
	return recs, nil
}

// Refresh re-fetches the full collection and replaces the snapshot.
func (vm *ListViewModel) Refresh(ctx context.Context) error {
	token := vm.BeginRefresh()
	recs, err := vm.Fetch(ctx)
	if err != nil {
		return err
	}
	vm.ApplySnapshot(token, recs)
	return nil
}

func (vm *ListViewModel) Snapshot() []model.Record {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return slices.Clone(vm.snapshot)
}

// Loaded reports whether any snapshot has been installed.
func (vm *ListViewModel) Loaded() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.loaded
}

func (vm *ListViewModel) Find(id int) (model.Record, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, r := range vm.snapshot {
		if r.ID == id {
			return r, true
		}
	}
	return model.Record{}, false
}

// --- Query ---

func (vm *ListViewModel) Query() view.Query {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.query
}

func (vm *ListViewModel) SetQuery(q view.Query) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.query = q
}

func (vm *ListViewModel) SetProcessFilter(p model.Process) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.query.Filters.Process = p
}

func (vm *ListViewModel) SetPriorityFilter(p model.Priority) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.query.Filters.Priority = p
}

func (vm *ListViewModel) SetSearch(q string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.query.Search = q
}

func (vm *ListViewModel) SetSort(s view.SortSpec) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.query.Sort = s
}

// ToggleSort handles a click on a column header.
func (vm *ListViewModel) ToggleSort(f view.Field) view.SortSpec {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.query.Sort = vm.query.Sort.Toggle(f)
	return vm.query.Sort
}

// Projection recomputes the displayed rows from the stored snapshot.
func (vm *ListViewModel) Projection() view.Projection {
	vm.mu.Lock()
	snap, q := vm.snapshot, vm.query
	vm.mu.Unlock()
	return vm.pipeline.Apply(snap, q)
}

// --- Mutations ---

// Create validates in, posts it, and re-fetches on success.
func (vm *ListViewModel) Create(ctx context.Context, in model.RecordInput) (*model.Record, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	rec, err := vm.store.Create(ctx, in)
	if err != nil {
		vm.log.WithError(err).WithField("op", "create").Error("creating task")
		vm.notify.Error("Could not create task", err)
		return nil, err
	}
	if rec != nil {
		vm.notify.Success(fmt.Sprintf("Created task #%d", rec.ID))
	} else {
		vm.notify.Success("Task created")
	}
	vm.Refresh(ctx)
	return rec, nil
}

// Update patches the record with id and re-fetches on success.
func (vm *ListViewModel) Update(ctx context.Context, id int, patch model.RecordPatch) (*model.Record, error) {
	if patch.Empty() {
		return nil, ErrNoChanges
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	rec, err := vm.store.Update(ctx, id, patch)
	if err != nil {
		vm.log.WithError(err).WithFields(log.Fields{"op": "update", "id": id}).Error("updating task")
		vm.notify.Error(fmt.Sprintf("Could not update task #%d", id), err)
		return nil, err
	}
	vm.notify.Success(fmt.Sprintf("Updated task #%d", id))
	vm.Refresh(ctx)
	return rec, nil
}

// Delete asks confirm first; a declined confirmation issues no request and
// returns ErrCancelled.
func (vm *ListViewModel) Delete(ctx context.Context, id int, confirm Confirmer) error {
	detail := fmt.Sprintf("Delete task #%d?", id)
	if r, ok := vm.Find(id); ok {
		detail = fmt.Sprintf("Delete task #%d %q?", id, r.Task)
	}
	ok, err := confirm.Confirm("Confirm delete", detail)
	if err != nil {
		return fmt.Errorf("confirming delete: %w", err)
	}
	if !ok {
		return ErrCancelled
	}
	if err := vm.store.Delete(ctx, id); err != nil {
		vm.log.WithError(err).WithFields(log.Fields{"op": "delete", "id": id}).Error("deleting task")
		vm.notify.Error(fmt.Sprintf("Could not delete task #%d", id), err)
		return err
	}
	vm.notify.Success(fmt.Sprintf("Deleted task #%d", id))
	vm.Refresh(ctx)
	return nil
}

// Always is a Confirmer that approves without asking.
var Always Confirmer = ConfirmFunc(func(string, string) (bool, error) { return true, nil })
