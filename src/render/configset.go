package render

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrForeignFile is returned when a path the set owns holds a file tpgci did not generate.
var ErrForeignFile = errors.New("file not generated by tpgci")

// ConfigSet maps a slash-separated relative path to file content.
type ConfigSet map[string][]byte

// Files returns the sorted list of file names.
func (cs ConfigSet) Files() []string {
	return slices.Sorted(maps.Keys(cs))
}

// Digests returns the hex SHA256 of every file, keyed by name.
func (cs ConfigSet) Digests() map[string]string {
	out := make(map[string]string, len(cs))
	for name, body := range cs {
		out[name] = sum(body)
	}
	return out
}

// Digest is a single SHA256 over every file name and body, in sorted order.
// Two config sets with the same digest are byte-identical.
func (cs ConfigSet) Digest() string {
	h := sha256.New()
	for _, name := range cs.Files() {
		fmt.Fprintf(h, "%s\x00%d\x00", name, len(cs[name]))
		h.Write(cs[name])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Generated reports whether body starts with the marker Render writes on every file.
func Generated(body []byte) bool {
	return bytes.HasPrefix(body, []byte(header))
}

// Plan is what it takes to bring a directory in line with a config set. Only
// files carrying the generated marker are managed; other files are never touched.
type Plan struct {
	Write     []string // missing on disk or different
	Unchanged []string
	Remove    []string // generated files the set no longer holds
	Foreign   []string // set paths occupied by files tpgci did not generate
}

// UpToDate reports whether the directory already matches the set.
func (p *Plan) UpToDate() bool {
	return len(p.Write)+len(p.Remove)+len(p.Foreign) == 0
}

// Plan compares the set with dir. A missing dir plans every file for writing.
func (cs ConfigSet) Plan(dir string) (*Plan, error) {
	generated, foreign, err := scan(dir)
	if err != nil {
		return nil, err
	}

	want := cs.Digests()
	p := &Plan{}
	for _, name := range cs.Files() {
		switch {
		case foreign[name]:
			p.Foreign = append(p.Foreign, name)
		case generated[name] == want[name]:
			p.Unchanged = append(p.Unchanged, name)
		default:
			p.Write = append(p.Write, name)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(generated)) {
		if _, ok := cs[name]; !ok {
			p.Remove = append(p.Remove, name)
		}
	}
	return p, nil
}

// Write applies Plan(dir) and returns it. Nothing is written when a file the
// set owns was not generated by tpgci.
func (cs ConfigSet) Write(dir string) (*Plan, error) {
	p, err := cs.Plan(dir)
	if err != nil {
		return nil, err
	}
	if len(p.Foreign) > 0 {
		return p, fmt.Errorf("%w: %s", ErrForeignFile, strings.Join(p.Foreign, ", "))
	}

	for _, name := range p.Write {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return p, fmt.Errorf("failed to create directory for %s: %w", name, err)
		}
		if err := os.WriteFile(path, cs[name], 0o644); err != nil {
			return p, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	for _, name := range p.Remove {
		if err := os.Remove(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
			return p, fmt.Errorf("failed to remove stale %s: %w", name, err)
		}
	}
	return p, nil
}

// ReadDir reads the generated files under dir. Other files are skipped and a
// missing dir is an empty set.
func ReadDir(dir string) (ConfigSet, error) {
	cs := ConfigSet{}
	err := walkYAML(dir, func(name string, body []byte) {
		if Generated(body) {
			cs[name] = body
		}
	})
	if err != nil {
		return nil, err
	}
	return cs, nil
}

// scan returns the digests of the generated files under dir and the names of
// the other YAML files.
func scan(dir string) (generated map[string]string, foreign map[string]bool, err error) {
	generated = make(map[string]string)
	foreign = make(map[string]bool)
	err = walkYAML(dir, func(name string, body []byte) {
		if Generated(body) {
			generated[name] = sum(body)
		} else {
			foreign[name] = true
		}
	})
	return generated, foreign, err
}

func walkYAML(dir string, fn func(name string, body []byte)) error {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != Ext {
			return nil
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		fn(filepath.ToSlash(rel), body)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	return nil
}

func sum(body []byte) string {
	d := sha256.Sum256(body)
	return hex.EncodeToString(d[:])
}
