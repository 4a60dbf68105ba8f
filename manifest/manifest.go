// Package manifest reads and rewrites npm package.json files while
// preserving key order and unknown fields.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the manifest file name inside a package directory.
const FileName = "package.json"

// Dependency sections that carry version specs.
const (
	SectionDependencies    = "dependencies"
	SectionDevDependencies = "devDependencies"
)

var (
	// ErrMissingVersion means the version field is absent or not a string.
	ErrMissingVersion = errors.New(`package.json is missing "version"`)

	// ErrMissingScripts means the scripts field is absent or not an object.
	ErrMissingScripts = errors.New(`package.json is missing "scripts"`)

	// ErrMissingScript is matched by every *MissingScriptError.
	ErrMissingScript = errors.New("missing npm script")
)

// MissingScriptError names one required npm script that is absent.
type MissingScriptError struct {
	Script string
}

func (e *MissingScriptError) Error() string {
	return fmt.Sprintf("missing npm script %q in package.json", e.Script)
}

// Is reports whether target is ErrMissingScript.
func (e *MissingScriptError) Is(target error) bool {
	return target == ErrMissingScript
}

// Dependency is one entry of a dependency section.
type Dependency struct {
	Name string
	Spec string
}

// Manifest is a parsed package.json.
type Manifest struct {
	path string
	doc  *Object
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	m.path = path
	return m, nil
}

// LoadDir loads package.json from dir.
func LoadDir(dir string) (*Manifest, error) {
	return Load(filepath.Join(dir, FileName))
}

// Parse parses manifest bytes. A document that is valid JSON but not an
// object fails with ErrNotObject.
func Parse(data []byte) (*Manifest, error) {
	doc, err := ParseObject(data)
	if errors.Is(err, ErrNotObject) {
		return nil, fmt.Errorf("package.json is not valid: %w", err)
	}
	if err != nil {
		return nil, err
	}
	return &Manifest{doc: doc}, nil
}

// Path returns the file the manifest was loaded from, if any.
func (m *Manifest) Path() string { return m.path }

// Document returns the underlying ordered object.
func (m *Manifest) Document() *Object { return m.doc }

// Name returns the package name, or "" when absent.
func (m *Manifest) Name() string {
	name, _ := m.doc.String("name")
	return name
}

// Version returns the version field.
func (m *Manifest) Version() (string, error) {
	if !m.doc.Has("version") {
		return "", ErrMissingVersion
	}
	v, ok := m.doc.String("version")
	if !ok {
		return "", fmt.Errorf("%w: version must be a string", ErrMissingVersion)
	}
	return v, nil
}

// Scripts returns the scripts object.
func (m *Manifest) Scripts() (*Object, error) {
	if !m.doc.Has("scripts") {
		return nil, ErrMissingScripts
	}
	scripts, ok := m.doc.Object("scripts")
	if !ok {
		return nil, fmt.Errorf("%w: scripts must be an object", ErrMissingScripts)
	}
	return scripts, nil
}

// Private reports whether the manifest is marked private. Any truthy
// JSON value counts: true, a non-empty string other than "false", or a
// non-zero number.
func (m *Manifest) Private() bool {
	raw, ok := m.doc.Raw("private")
	if !ok {
		return false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != "" && val != "false"
	case float64:
		return val != 0
	case nil:
		return false
	default:
		return true
	}
}

// Validate checks that version is a string, scripts is an object and
// every required script exists. The first problem found is returned.
func (m *Manifest) Validate(required ...string) error {
	if _, err := m.Version(); err != nil {
		return err
	}
	scripts, err := m.Scripts()
	if err != nil {
		return err
	}
	for _, name := range required {
		if !scripts.Has(name) {
			return &MissingScriptError{Script: name}
		}
	}
	return nil
}

// SetVersion replaces the version field in place.
func (m *Manifest) SetVersion(v string) error {
	return m.doc.Set("version", v)
}

// Dependencies returns the string entries of a dependency section in
// document order. A missing section yields nil.
func (m *Manifest) Dependencies(section string) []Dependency {
	deps, ok := m.doc.Object(section)
	if !ok {
		return nil
	}
	var out []Dependency
	for _, name := range deps.Keys() {
		spec, ok := deps.String(name)
		if !ok {
			continue
		}
		out = append(out, Dependency{Name: name, Spec: spec})
	}
	return out
}

// SetDependency updates one entry in a dependency section, keeping the
// order of the section and of the document.
func (m *Manifest) SetDependency(section, name, spec string) error {
	deps, ok := m.doc.Object(section)
	if !ok {
		if m.doc.Has(section) {
			return fmt.Errorf("%s: %w", section, ErrNotObject)
		}
		deps = NewObject()
	}
	if err := deps.Set(name, spec); err != nil {
		return err
	}
	raw, err := deps.MarshalJSON()
	if err != nil {
		return err
	}
	m.doc.SetRaw(section, raw)
	return nil
}

// Bytes renders the manifest as 2-space indented JSON with a trailing newline.
func (m *Manifest) Bytes() ([]byte, error) {
	return m.doc.Indent()
}

// Save writes the manifest to path. An empty path means the file it was
// loaded from.
func (m *Manifest) Save(path string) error {
	if path == "" {
		path = m.path
	}
	if path == "" {
		return errors.New("manifest has no path")
	}

	data, err := m.Bytes()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	m.path = path
	return nil
}
