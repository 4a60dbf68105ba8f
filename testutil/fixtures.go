// Package testutil provides helpers for tests that need real git
// repositories and npm package manifests on disk.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// PackageJSON renders a minimal package.json with the given name,
// version and npm scripts. Script order is preserved.
func PackageJSON(name, version string, scripts ...string) string {
	var b strings.Builder
	b.WriteString("{\n")
	b.WriteString(`  "name": "` + name + `",` + "\n")
	b.WriteString(`  "version": "` + version + `"`)
	if len(scripts) > 0 {
		b.WriteString(",\n  \"scripts\": {\n")
		for i, s := range scripts {
			b.WriteString(`    "` + s + `": "echo ` + s + `"`)
			if i < len(scripts)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString("  }")
	}
	b.WriteString("\n}\n")
	return b.String()
}

// ReadFile reads a file under dir, failing the test on error.
func ReadFile(t *testing.T, dir, path string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, path))
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// LoadFixture loads a file from the calling package's testdata directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", path))
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", path, err)
	}
	return data
}
