package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/HaiFongPan/scorepager/internal/paginate"
)

// SortMethodKey is the reserved directory key holding the sort policy
const SortMethodKey = "sort_method"

// Sort policies accepted by SetSortMethod
const (
	SortTimeDesc = "time_desc"
	SortTimeAsc  = "time_asc"
	SortNameDesc = "name_desc"
	SortNameAsc  = "name_asc"
)

// DefaultSortMethod applies to directories without a stored policy
const DefaultSortMethod = SortNameAsc

// SortMethods lists the policies in cycling order
var SortMethods = []string{SortNameAsc, SortNameDesc, SortTimeAsc, SortTimeDesc}

// ValidSortMethod reports whether m names a known policy
func ValidSortMethod(m string) bool {
	for _, s := range SortMethods {
		if s == m {
			return true
		}
	}
	return false
}

// NextSortMethod returns the policy following m in cycling order
func NextSortMethod(m string) string {
	for i, s := range SortMethods {
		if s == m {
			return SortMethods[(i+1)%len(SortMethods)]
		}
	}
	return DefaultSortMethod
}

// LoadViewState returns the stored view state of imagePath, or the
// defaults when there is none. Missing fields keep their defaults.
func (s *Store) LoadViewState(imagePath string) paginate.ViewState {
	dir, base := filepath.Split(filepath.Clean(imagePath))

	vs := paginate.DefaultViewState()
	if !s.GetJSON(Directory(dir), base, &vs) {
		return paginate.DefaultViewState()
	}
	return vs.Normalize()
}

// SaveViewState stores vs for imagePath. The directory record is rewritten
// as a whole, so entries of images that no longer exist are dropped on the
// way.
func (s *Store) SaveViewState(imagePath string, vs paginate.ViewState) {
	dir, base := filepath.Split(filepath.Clean(imagePath))
	dir = filepath.Clean(dir)

	data, err := json.Marshal(vs.Normalize())
	if err != nil {
		s.log.WithError(err).WithField("image", imagePath).Error("failed to encode view state")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.modifyDirectory(dir, func(rec dirRecord) bool {
		for key := range rec {
			if key == SortMethodKey || key == base {
				continue
			}
			if _, err := os.Stat(filepath.Join(dir, key)); os.IsNotExist(err) {
				s.log.WithField("dir", dir).WithField("entry", key).Debug("pruning orphaned view state")
				delete(rec, key)
			}
		}
		rec[base] = data
		return true
	})
}

// SortMethod returns the sort policy of dir, DefaultSortMethod when none
// is stored or the stored value is unknown.
func (s *Store) SortMethod(dir string) string {
	m, ok := s.Get(Directory(dir), SortMethodKey)
	if !ok || !ValidSortMethod(m) {
		return DefaultSortMethod
	}
	return m
}

// SetSortMethod stores the sort policy of dir
func (s *Store) SetSortMethod(dir, method string) {
	if !ValidSortMethod(method) {
		s.log.WithField("method", method).Warn("ignoring unknown sort method")
		return
	}
	s.Set(Directory(dir), SortMethodKey, method)
}
