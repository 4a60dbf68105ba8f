// Package notes composes release notes from commit history and prepares
// them for transmission through a shell pipe.
package notes

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/randalmurphal/vrt/git"
)

// DefaultTemplate is the name of the release notes template.
const DefaultTemplate = "release-notes"

const templateExt = ".md.tmpl"

// ProjectTemplateDir is where a project may override templates,
// relative to the project root.
var ProjectTemplateDir = filepath.Join(".vrt", "templates")

//go:embed templates/*.md.tmpl
var embeddedTemplates embed.FS

var whitespace = regexp.MustCompile(`\s+`)

// Data is passed to release notes templates.
type Data struct {
	Version string
	// Commits are ordered oldest first.
	Commits []git.Commit
	// Bullets holds one "- message" line per commit, oldest first.
	Bullets []string
}

// NewData builds template data from newest-first commits.
func NewData(version string, commits []git.Commit) Data {
	d := Data{Version: version}
	for i := len(commits) - 1; i >= 0; i-- {
		c := commits[i]
		c.Message = Collapse(c.Message)
		d.Commits = append(d.Commits, c)
		d.Bullets = append(d.Bullets, "- "+c.Message)
	}
	return d
}

// Collapse replaces every run of whitespace with a single space.
func Collapse(s string) string {
	return whitespace.ReplaceAllString(s, " ")
}

// Loader loads and renders release notes templates.
type Loader struct {
	dirs    []string
	cache   map[string]*template.Template
	funcMap template.FuncMap
}

// NewLoader creates a loader for projectDir. Templates are looked up
// in the project's .vrt/templates directory, then in the embedded
// defaults.
func NewLoader(projectDir string) *Loader {
	return &Loader{
		dirs:    []string{filepath.Join(projectDir, ProjectTemplateDir)},
		cache:   make(map[string]*template.Template),
		funcMap: defaultFuncMap(),
	}
}

// AddSearchDir adds a directory searched before the existing ones.
func (l *Loader) AddSearchDir(dir string) {
	l.dirs = append([]string{dir}, l.dirs...)
}

// Render renders release notes for version from newest-first commits.
func (l *Loader) Render(version string, commits []git.Commit) (string, error) {
	return l.RenderTemplate(DefaultTemplate, NewData(version, commits))
}

// RenderTemplate renders the named template with data.
func (l *Loader) RenderTemplate(name string, data Data) (string, error) {
	tmpl, err := l.getTemplate(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (l *Loader) getTemplate(name string) (*template.Template, error) {
	if tmpl, ok := l.cache[name]; ok {
		return tmpl, nil
	}

	content, err := l.loadRaw(name)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(name).Funcs(l.funcMap).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}

	l.cache[name] = tmpl
	return tmpl, nil
}

func (l *Loader) loadRaw(name string) (string, error) {
	filename := name + templateExt

	for _, dir := range l.dirs {
		data, err := os.ReadFile(filepath.Join(dir, filename))
		if err == nil {
			return string(data), nil
		}
	}

	data, err := embeddedTemplates.ReadFile("templates/" + filename)
	if err != nil {
		return "", fmt.Errorf("template not found: %s", name)
	}
	return string(data), nil
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"join":     strings.Join,
		"trim":     strings.TrimSpace,
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"title":    cases.Title(language.English).String,
		"collapse": Collapse,
		"indent":   indentString,
	}
}

func indentString(indent int, s string) string {
	if s == "" {
		return s
	}
	prefix := strings.Repeat(" ", indent)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
