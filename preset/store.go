// Package preset persists user-defined parameter presets.
//
// Presets live in a small JSON key-value file. User presets are stored as a
// single name -> Params map under StorageKey, the same key and layout the web
// build kept in local storage, so exported storage can be dropped in as is.
package preset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/noriah/mangler/effect"
	"github.com/pkg/errors"
)

// StorageKey is the key user presets are stored under.
const StorageKey = "videoManglerPresets"

// DefaultPath returns the default storage file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "mangler", "storage.json")
}

// Store is a preset store backed by a key-value JSON file.
type Store struct {
	path string
	user map[string]effect.Params
}

// Open loads the store at path. A missing file, unreadable file or malformed
// content yields an empty user preset set; the error is returned alongside a
// usable store so the caller can report it.
func Open(path string) (*Store, error) {
	s := &Store{
		path: path,
		user: map[string]effect.Params{},
	}

	kv, err := readKV(path)
	if err != nil {
		return s, err
	}

	raw, ok := kv[StorageKey]
	if !ok {
		return s, nil
	}

	var user map[string]effect.Params
	if err := json.Unmarshal(raw, &user); err != nil {
		return s, errors.Wrap(err, "could not load user presets")
	}

	if user != nil {
		s.user = user
	}

	return s, nil
}

// Names returns all preset names: built-ins in their fixed order, then user
// presets sorted by name. A user preset that shadows a built-in is listed once.
func (s *Store) Names() []string {
	var names []string
	builtin := map[string]bool{}

	for _, p := range effect.BuiltinPresets() {
		names = append(names, p.Name)
		builtin[p.Name] = true
	}

	for _, name := range s.UserNames() {
		if !builtin[name] {
			names = append(names, name)
		}
	}

	return names
}

// UserNames returns the user preset names, sorted.
func (s *Store) UserNames() []string {
	names := make([]string, 0, len(s.user))
	for name := range s.user {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the preset with the given name. User presets take
// precedence over built-ins.
func (s *Store) Lookup(name string) (effect.Params, bool) {
	if p, ok := s.user[name]; ok {
		return p, true
	}

	for _, p := range effect.BuiltinPresets() {
		if p.Name == name {
			return p.Params, true
		}
	}

	return effect.Params{}, false
}

// IsUser reports whether name is a user preset.
func (s *Store) IsUser(name string) bool {
	_, ok := s.user[name]
	return ok
}

// Save stores params under name and writes the file.
func (s *Store) Save(name string, params effect.Params) error {
	if name == "" {
		return errors.New("preset name is empty")
	}

	next := s.copyUser()
	next[name] = params

	if err := s.write(next); err != nil {
		return err
	}

	s.user = next
	return nil
}

// Delete removes the user preset called name. Built-ins cannot be deleted.
func (s *Store) Delete(name string) error {
	if !s.IsUser(name) {
		return errors.Errorf("no user preset named %q", name)
	}

	next := s.copyUser()
	delete(next, name)

	if err := s.write(next); err != nil {
		return err
	}

	s.user = next
	return nil
}

func (s *Store) copyUser() map[string]effect.Params {
	out := make(map[string]effect.Params, len(s.user)+1)
	for k, v := range s.user {
		out[k] = v
	}
	return out
}

func (s *Store) write(user map[string]effect.Params) error {
	// Keep unrelated keys of the storage file intact.
	kv, err := readKV(s.path)
	if err != nil {
		kv = map[string]json.RawMessage{}
	}

	raw, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, "failed to encode presets")
	}
	kv[StorageKey] = raw

	data, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode storage")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create storage directory")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "could not save user presets")
	}

	return errors.Wrap(os.Rename(tmp, s.path), "could not save user presets")
}

func readKV(path string) (map[string]json.RawMessage, error) {
	kv := map[string]json.RawMessage{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return kv, nil
	case err != nil:
		return kv, errors.Wrap(err, "failed to read preset storage")
	}

	if err := json.Unmarshal(data, &kv); err != nil {
		return map[string]json.RawMessage{}, errors.Wrap(err, "malformed preset storage")
	}

	return kv, nil
}
