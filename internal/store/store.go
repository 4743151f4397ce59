// Package store persists view state in two kinds of scopes: one global
// key=value record for app-level settings and one JSON record per directory
// for the images living in it. Reads never fail: a missing or malformed
// record behaves as empty. Writes rewrite the whole record and report
// failures to the logger only.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// ScopeKind distinguishes the two persistence namespaces
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeDirectory
)

// Scope addresses one persisted record
type Scope struct {
	Kind ScopeKind
	Dir  string
}

// Global returns the app-level scope
func Global() Scope {
	return Scope{Kind: ScopeGlobal}
}

// Directory returns the scope colocated with dir
func Directory(dir string) Scope {
	return Scope{Kind: ScopeDirectory, Dir: filepath.Clean(dir)}
}

func (s Scope) String() string {
	if s.Kind == ScopeGlobal {
		return "global"
	}
	return "dir:" + s.Dir
}

// ErrUnencodable marks a global key or value the line format cannot hold
var ErrUnencodable = errors.New("not representable as a key=value line")

// ParseError describes a persisted record that could not be parsed.
// It is logged, never returned.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed config record %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Store is the ConfigStore. Every mutation re-reads the record, merges the
// change and rewrites it; concurrent external edits are not detected.
type Store struct {
	globalPath string
	dirFile    string
	log        logrus.FieldLogger
	mu         sync.Mutex
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the diagnostic sink
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// New creates a store whose global record lives at globalPath and whose
// directory records are named dirFile inside each directory.
func New(globalPath, dirFile string, opts ...Option) *Store {
	s := &Store{
		globalPath: globalPath,
		dirFile:    dirFile,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DirectoryFile returns the per-directory record name
func (s *Store) DirectoryFile() string {
	return s.dirFile
}

// Get returns the value stored under key in scope
func (s *Store) Get(scope Scope, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scope.Kind == ScopeGlobal {
		rec := s.readGlobal()
		return rec.get(key)
	}

	rec := s.readDirectory(scope.Dir)
	raw, ok := rec[key]
	if !ok {
		return "", false
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str, true
	}
	return string(raw), true
}

// Set upserts key in scope and rewrites the record immediately
func (s *Store) Set(scope Scope, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scope.Kind == ScopeGlobal {
		if err := validKV(key, value); err != nil {
			s.log.WithError(err).WithField("key", key).Error("refusing to store global config value")
			return
		}
		s.modifyGlobal(func(rec *kvRecord) bool {
			rec.set(key, value)
			return true
		})
		return
	}

	raw, _ := json.Marshal(value)
	s.modifyDirectory(scope.Dir, func(rec dirRecord) bool {
		rec[key] = raw
		return true
	})
}

// GetJSON decodes the value under key into v. It reports false, leaving v
// untouched, when the key is absent or does not decode.
func (s *Store) GetJSON(scope Scope, key string, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []byte
	if scope.Kind == ScopeGlobal {
		value, ok := s.readGlobal().get(key)
		if !ok {
			return false
		}
		raw = []byte(value)
	} else {
		value, ok := s.readDirectory(scope.Dir)[key]
		if !ok {
			return false
		}
		raw = value
	}

	if err := json.Unmarshal(raw, v); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"scope": scope.String(),
			"key":   key,
		}).Warn("ignoring undecodable config value")
		return false
	}
	return true
}

// SetJSON encodes v and stores it under key
func (s *Store) SetJSON(scope Scope, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("failed to encode config value")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if scope.Kind == ScopeGlobal {
		if err := validKV(key, string(data)); err != nil {
			s.log.WithError(err).WithField("key", key).Error("refusing to store global config value")
			return
		}
		s.modifyGlobal(func(rec *kvRecord) bool {
			rec.set(key, string(data))
			return true
		})
		return
	}

	s.modifyDirectory(scope.Dir, func(rec dirRecord) bool {
		rec[key] = data
		return true
	})
}

// Delete removes key from scope; deleting an absent key does not rewrite
func (s *Store) Delete(scope Scope, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scope.Kind == ScopeGlobal {
		s.modifyGlobal(func(rec *kvRecord) bool {
			return rec.delete(key)
		})
		return
	}

	s.modifyDirectory(scope.Dir, func(rec dirRecord) bool {
		if _, ok := rec[key]; !ok {
			return false
		}
		delete(rec, key)
		return true
	})
}

// Keys lists the keys present in scope
func (s *Store) Keys(scope Scope) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if scope.Kind == ScopeGlobal {
		rec := s.readGlobal()
		return append([]string(nil), rec.keys...)
	}

	rec := s.readDirectory(scope.Dir)
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
