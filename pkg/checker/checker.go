// Package checker runs architecture models against a live graph store and
// reports constraint violations. Two strategies are provided: trigger-based
// rejection (the store refuses invalid writes) and rule-query scanning (the
// model is written, then interrogated with violation queries).
package checker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dd0wney/archval/pkg/model"
	"github.com/dd0wney/archval/pkg/store"
)

// ErrNotConfigured indicates a checker was requested that the service was
// not set up with.
var ErrNotConfigured = errors.New("checker not configured")

// GraphStore is the slice of the store client the checkers need. Both
// checkers treat the store as disposable scratch space: every run ends with
// a cleanup.
type GraphStore interface {
	VerifyConnectivity(ctx context.Context) error
	ExecuteWrite(ctx context.Context, statement string) error
	Query(ctx context.Context, query string) (*store.QueryResult, error)
	Cleanup(ctx context.Context) error
}

// Checker validates one model and produces a report. Validation findings are
// data, not failures: a model full of violations still yields a Result, and
// only the Result says whether the model passed.
type Checker interface {
	Name() string
	Validate(ctx context.Context, m *model.ArchitectureModel) *Result
}

// Registry maps checker names to configured instances. A name that was never
// registered yields ErrNotConfigured rather than a silent nil.
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

// NewRegistry creates an empty checker registry.
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[string]Checker)}
}

// Register adds a checker under its own name, replacing any previous
// registration.
func (r *Registry) Register(c Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[c.Name()] = c
}

// Get returns the checker registered under name.
func (r *Registry) Get(name string) (Checker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.checkers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, name)
	}
	return c, nil
}

// Names lists the registered checker names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
