// Package store holds the in-memory expense collection, newest first.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/expenseiq/expenseiq/internal/model"
)

var (
	ErrNotFound    = errors.New("expense not found")
	ErrDuplicateID = errors.New("duplicate expense id")
)

// Store is an ordered expense collection. It is not safe for concurrent
// use; callers serialize access.
type Store struct {
	expenses []model.Expense
	revision uint64
}

// New returns a store holding a copy of expenses in the given order.
func New(expenses []model.Expense) (*Store, error) {
	s := &Store{}
	if err := s.Replace(expenses); err != nil {
		return nil, err
	}
	return s, nil
}

// Prepend inserts e at the front of the collection.
func (s *Store) Prepend(e model.Expense) error {
	if s.index(e.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
	}
	s.expenses = append([]model.Expense{e}, s.expenses...)
	s.revision++
	return nil
}

// Remove deletes the expense with id and returns it. The store is left
// unchanged when no such expense exists.
func (s *Store) Remove(id string) (model.Expense, error) {
	i := s.index(id)
	if i < 0 {
		return model.Expense{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	removed := s.expenses[i]
	s.expenses = append(s.expenses[:i:i], s.expenses[i+1:]...)
	s.revision++
	return removed, nil
}

// Get looks up an expense by id.
func (s *Store) Get(id string) (model.Expense, bool) {
	if i := s.index(id); i >= 0 {
		return s.expenses[i], true
	}
	return model.Expense{}, false
}

// All returns a copy of every expense in store order.
func (s *Store) All() []model.Expense {
	out := make([]model.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out
}

func (s *Store) Len() int { return len(s.expenses) }

// Replace swaps the whole collection. On error the store is untouched.
func (s *Store) Replace(expenses []model.Expense) error {
	seen := make(map[string]struct{}, len(expenses))
	for _, e := range expenses {
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	next := make([]model.Expense, len(expenses))
	copy(next, expenses)
	s.expenses = next
	s.revision++
	return nil
}

// Revision increases on every mutation. Adapters may key caches on it.
func (s *Store) Revision() uint64 { return s.revision }

func (s *Store) index(id string) int {
	for i, e := range s.expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Query narrows a listing. Zero fields match everything.
type Query struct {
	Search   string
	Category model.Category
	Limit    int
}

// Match reports whether e satisfies q. Search is a case-insensitive
// substring match on the description.
func (q Query) Match(e model.Expense) bool {
	if q.Category != "" && e.Category != q.Category {
		return false
	}
	if q.Search != "" && !strings.Contains(strings.ToLower(e.Description), strings.ToLower(strings.TrimSpace(q.Search))) {
		return false
	}
	return true
}

// Filter returns the expenses matching q in input order, truncated to
// q.Limit when positive.
func Filter(expenses []model.Expense, q Query) []model.Expense {
	out := []model.Expense{}
	for _, e := range expenses {
		if !q.Match(e) {
			continue
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}
