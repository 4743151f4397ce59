package store

import (
	"errors"
	"fmt"
	"sync"
)

// FavoritesKey is the global key holding the favorites list
const FavoritesKey = "Favorites"

// DefaultCapacity bounds the favorites list
const DefaultCapacity = 50

var (
	// ErrCapacityExceeded is returned when adding to a full favorites list
	ErrCapacityExceeded = errors.New("favorites list is full")
	// ErrNotPermutation is returned by Reorder for a list that is not a
	// permutation of the current favorites
	ErrNotPermutation = errors.New("new order is not a permutation of the favorites")
)

// Favorites is an ordered, duplicate-free, bounded list of entity ids kept
// in the global scope.
type Favorites struct {
	store    *Store
	capacity int
	mu       sync.Mutex
}

// NewFavorites returns the favorites list of s. A non-positive capacity
// means DefaultCapacity.
func NewFavorites(s *Store, capacity int) *Favorites {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Favorites{store: s, capacity: capacity}
}

// Capacity returns the maximum list length
func (f *Favorites) Capacity() int {
	return f.capacity
}

// List returns the favorites in user order
func (f *Favorites) List() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// Contains reports whether id is a favorite
func (f *Favorites) Contains(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return indexOf(f.load(), id) >= 0
}

// Toggle removes id when present, otherwise appends it. It reports whether
// id is a favorite afterwards; a full list is left unchanged and
// ErrCapacityExceeded is returned.
func (f *Favorites) Toggle(id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.load()
	if i := indexOf(list, id); i >= 0 {
		f.save(append(list[:i], list[i+1:]...))
		return false, nil
	}
	if len(list) >= f.capacity {
		return false, fmt.Errorf("%w: %d entries", ErrCapacityExceeded, f.capacity)
	}
	f.save(append(list, id))
	return true, nil
}

// Add appends id unless it is already present
func (f *Favorites) Add(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.load()
	if indexOf(list, id) >= 0 {
		return nil
	}
	if len(list) >= f.capacity {
		return fmt.Errorf("%w: %d entries", ErrCapacityExceeded, f.capacity)
	}
	f.save(append(list, id))
	return nil
}

// Remove drops id; removing an absent id is a no-op
func (f *Favorites) Remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.load()
	i := indexOf(list, id)
	if i < 0 {
		return
	}
	f.save(append(list[:i], list[i+1:]...))
}

// Reorder replaces the list with order, which must hold exactly the
// current ids.
func (f *Favorites) Reorder(order []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.load()
	if len(order) != len(list) {
		return fmt.Errorf("%w: got %d ids, have %d", ErrNotPermutation, len(order), len(list))
	}

	seen := make(map[string]bool, len(list))
	for _, id := range list {
		seen[id] = false
	}
	for _, id := range order {
		used, ok := seen[id]
		if !ok || used {
			return fmt.Errorf("%w: unexpected id %q", ErrNotPermutation, id)
		}
		seen[id] = true
	}

	f.save(append([]string(nil), order...))
	return nil
}

// Move shifts id by delta positions, clamped to the list bounds. It
// reports whether the list changed.
func (f *Favorites) Move(id string, delta int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.load()
	from := indexOf(list, id)
	if from < 0 {
		return false
	}
	to := min(max(from+delta, 0), len(list)-1)
	if to == from {
		return false
	}

	list = append(list[:from], list[from+1:]...)
	list = append(list[:to], append([]string{id}, list[to:]...)...)
	f.save(list)
	return true
}

// Prune removes every id for which exists reports false and returns them
func (f *Favorites) Prune(exists func(id string) bool) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.load()
	kept := make([]string, 0, len(list))
	var removed []string
	for _, id := range list {
		if exists(id) {
			kept = append(kept, id)
		} else {
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		f.save(kept)
	}
	return removed
}

// Clear empties the list
func (f *Favorites) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.save([]string{})
}

// load reads the stored list, dropping duplicates and anything past the
// capacity so a hand-edited record cannot break the invariants.
func (f *Favorites) load() []string {
	var stored []string
	if !f.store.GetJSON(Global(), FavoritesKey, &stored) {
		return []string{}
	}

	list := make([]string, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))
	for _, id := range stored {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		list = append(list, id)
		if len(list) == f.capacity {
			break
		}
	}
	return list
}

func (f *Favorites) save(list []string) {
	f.store.SetJSON(Global(), FavoritesKey, list)
}

func indexOf(list []string, id string) int {
	for i, v := range list {
		if v == id {
			return i
		}
	}
	return -1
}
