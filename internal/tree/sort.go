package tree

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/HaiFongPan/scorepager/internal/store"
)

// SortEntries orders entries in place by the given policy. Ties fall back
// to case-insensitive name, then exact name, so the order is total.
func SortEntries(entries []Entry, method string) {
	less := func(a, b Entry) bool {
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.Name < b.Name
	}

	var primary func(a, b Entry) int
	switch method {
	case store.SortTimeDesc:
		primary = func(a, b Entry) int { return b.ModTime.Compare(a.ModTime) }
	case store.SortTimeAsc:
		primary = func(a, b Entry) int { return a.ModTime.Compare(b.ModTime) }
	case store.SortNameDesc:
		primary = func(a, b Entry) int {
			return strings.Compare(strings.ToLower(b.Name), strings.ToLower(a.Name))
		}
	default:
		primary = func(a, b Entry) int { return 0 }
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if c := primary(entries[i], entries[j]); c != 0 {
			return c < 0
		}
		return less(entries[i], entries[j])
	})
}

// Filter selects the file entries shown in the tree
type Filter func(name string) bool

// ImageFilter matches file names by extension, case-insensitively
func ImageFilter(exts []string) (Filter, error) {
	alts := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		if ext != "" {
			alts = append(alts, ext)
		}
	}
	if len(alts) == 0 {
		return func(string) bool { return false }, nil
	}

	pattern := "*." + alts[0]
	if len(alts) > 1 {
		pattern = "*.{" + strings.Join(alts, ",") + "}"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	return func(name string) bool {
		ok, _ := doublestar.Match(pattern, strings.ToLower(name))
		return ok
	}, nil
}

// DefaultExtensions is the built-in image allow-list
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp"}
