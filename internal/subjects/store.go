// ABOUTME: In-memory store of per-user pending subject selections
// ABOUTME: Drives the Idle -> Selecting -> Idle state machine with per-user serialization

package subjects

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Selection state machine errors.
var (
	// ErrNoSelection means the user has no pending selection (state Idle)
	ErrNoSelection = errors.New("no pending selection")

	// ErrUnknownSubject means the toggled subject is not in the catalog
	ErrUnknownSubject = errors.New("unknown subject")

	// ErrEmptySelection means commit was attempted with nothing chosen
	ErrEmptySelection = errors.New("selection is empty")
)

// selection is one user's pending working set. Its mutex serializes all
// mutations for that user; operations for different users run in parallel.
type selection struct {
	mu     sync.Mutex
	chosen map[string]struct{}
	// done marks a selection that was committed or abandoned while another
	// goroutine still held a pointer to it
	done bool
}

// Store owns all pending selections, keyed by owner identity.
// A user is in state Selecting while an entry exists for them, Idle otherwise.
type Store struct {
	mu      sync.Mutex
	pending map[int64]*selection
}

// NewStore creates an empty selection store.
func NewStore() *Store {
	return &Store{pending: make(map[int64]*selection)}
}

// Start begins a fresh selection for the owner, discarding any previous
// uncommitted selection. Restart is idempotent.
func (s *Store) Start(ownerID int64) {
	fresh := &selection{chosen: make(map[string]struct{})}

	s.mu.Lock()
	if old, ok := s.pending[ownerID]; ok {
		old.mu.Lock()
		old.done = true
		old.mu.Unlock()
	}
	s.pending[ownerID] = fresh
	s.mu.Unlock()
}

// Toggle flips membership of subject in the owner's pending selection.
// Returns ErrNoSelection if the owner is not currently selecting and
// ErrUnknownSubject for subjects outside the catalog; neither mutates state.
func (s *Store) Toggle(ownerID int64, subject string) error {
	if !Known(subject) {
		return fmt.Errorf("%w: %q", ErrUnknownSubject, subject)
	}

	sel, ok := s.lookup(ownerID)
	if !ok {
		return ErrNoSelection
	}

	sel.mu.Lock()
	defer sel.mu.Unlock()

	if sel.done {
		return ErrNoSelection
	}

	if _, chosen := sel.chosen[subject]; chosen {
		delete(sel.chosen, subject)
	} else {
		sel.chosen[subject] = struct{}{}
	}

	return nil
}

// Chosen returns the owner's currently chosen subjects, sorted.
// Returns ErrNoSelection if the owner is not selecting.
func (s *Store) Chosen(ownerID int64) ([]string, error) {
	sel, ok := s.lookup(ownerID)
	if !ok {
		return nil, ErrNoSelection
	}

	sel.mu.Lock()
	defer sel.mu.Unlock()

	if sel.done {
		return nil, ErrNoSelection
	}

	return sortedKeys(sel.chosen), nil
}

// Commit finalizes the owner's selection by handing the chosen set to persist.
// Commit is all-or-nothing: an empty selection fails with ErrEmptySelection and
// a persistence failure returns the error, in both cases leaving the pending
// selection intact for retry. Only a successful persist transitions the owner
// back to Idle.
func (s *Store) Commit(ctx context.Context, ownerID int64, persist func(ctx context.Context, chosen []string) error) error {
	sel, ok := s.lookup(ownerID)
	if !ok {
		return ErrNoSelection
	}

	// The selection lock is released before remove takes the store lock;
	// only Start acquires both at once (store, then selection).
	sel.mu.Lock()

	if sel.done {
		sel.mu.Unlock()
		return ErrNoSelection
	}

	if len(sel.chosen) == 0 {
		sel.mu.Unlock()
		return ErrEmptySelection
	}

	if err := persist(ctx, sortedKeys(sel.chosen)); err != nil {
		sel.mu.Unlock()
		return fmt.Errorf("persisting selection: %w", err)
	}

	sel.done = true
	sel.mu.Unlock()

	s.remove(ownerID, sel)
	return nil
}

// Abandon discards the owner's pending selection unconditionally.
func (s *Store) Abandon(ownerID int64) {
	sel, ok := s.lookup(ownerID)
	if !ok {
		return
	}

	sel.mu.Lock()
	sel.done = true
	sel.mu.Unlock()

	s.remove(ownerID, sel)
}

// lookup fetches the owner's pending selection under the store lock.
func (s *Store) lookup(ownerID int64) (*selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, ok := s.pending[ownerID]
	return sel, ok
}

// remove deletes the map entry only if it still points at sel; a concurrent
// Start may already have replaced it with a fresh selection.
func (s *Store) remove(ownerID int64, sel *selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending[ownerID] == sel {
		delete(s.pending, ownerID)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
