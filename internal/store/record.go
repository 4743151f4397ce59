package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// kvRecord is the global scope: key=value lines, order preserved
type kvRecord struct {
	keys   []string
	values map[string]string
}

func newKVRecord() *kvRecord {
	return &kvRecord{values: make(map[string]string)}
}

func (r *kvRecord) get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *kvRecord) set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

func (r *kvRecord) delete(key string) bool {
	if _, ok := r.values[key]; !ok {
		return false
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
	return true
}

// parseKV reads key=value lines. Lines without '=' are skipped. Keys are
// trimmed; the value runs to the end of the line, may itself contain '='
// and keeps its surrounding spaces. Only a trailing '\r' is dropped.
func parseKV(data []byte) *kvRecord {
	rec := newKVRecord()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		rec.set(key, value)
	}
	return rec
}

// validKV reports whether key and value survive a write and re-read of the
// line format unchanged
func validKV(key, value string) error {
	switch {
	case key == "" || key != strings.TrimSpace(key):
		return fmt.Errorf("%w: key %q is empty or padded", ErrUnencodable, key)
	case strings.ContainsAny(key, "=\r\n"):
		return fmt.Errorf("%w: key %q contains '=' or a line break", ErrUnencodable, key)
	case strings.ContainsAny(value, "\r\n"):
		return fmt.Errorf("%w: value of %q contains a line break", ErrUnencodable, key)
	}
	return nil
}

func (r *kvRecord) encode() []byte {
	var b bytes.Buffer
	for _, k := range r.keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(r.values[k])
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// dirRecord is a directory scope: basename -> view state, plus sort_method
type dirRecord map[string]json.RawMessage

func (s *Store) readGlobal() *kvRecord {
	data, err := os.ReadFile(s.globalPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.WithError(err).WithField("path", s.globalPath).Warn("failed to read global config, using empty scope")
		}
		return newKVRecord()
	}
	return parseKV(data)
}

func (s *Store) modifyGlobal(fn func(rec *kvRecord) bool) {
	rec := s.readGlobal()
	if !fn(rec) {
		return
	}
	if err := writeFileAtomic(s.globalPath, rec.encode()); err != nil {
		s.log.WithError(err).WithField("path", s.globalPath).Error("failed to save global config")
	}
}

func (s *Store) directoryPath(dir string) string {
	return filepath.Join(dir, s.dirFile)
}

func (s *Store) readDirectory(dir string) dirRecord {
	path := s.directoryPath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.WithError(err).WithField("path", path).Warn("failed to read directory config, using empty scope")
		}
		return dirRecord{}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return dirRecord{}
	}

	rec := dirRecord{}
	if err := json.Unmarshal(data, &rec); err != nil {
		s.log.WithError(&ParseError{Path: path, Err: err}).Warn("ignoring malformed directory config")
		return dirRecord{}
	}
	// a JSON null decodes into a nil map
	if rec == nil {
		s.log.WithField("path", path).Warn("ignoring null directory config")
		return dirRecord{}
	}
	return rec
}

func (s *Store) modifyDirectory(dir string, fn func(rec dirRecord) bool) {
	rec := s.readDirectory(dir)
	if !fn(rec) {
		return
	}

	path := s.directoryPath(dir)
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		s.log.WithError(err).WithField("path", path).Error("failed to encode directory config")
		return
	}
	if err := writeFileAtomic(path, data); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"path": path,
			"dir":  dir,
		}).Error("failed to save directory config")
	}
}

// writeFileAtomic writes through a temp file and renames it into place
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
