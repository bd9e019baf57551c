package archive

import (
	"archive/zip"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type zipEntry struct {
	name    string
	content string
}

func makeBundle(t *testing.T, entries []zipEntry) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "bundle.zip")

	f, err := os.Create(name)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, e := range entries {
		if e.name[len(e.name)-1] == '/' {
			hdr := &zip.FileHeader{Name: e.name}
			hdr.SetMode(os.ModeDir | 0755)
			if _, err := w.CreateHeader(hdr); err != nil {
				t.Fatalf("Failed to create directory %s: %v", e.name, err)
			}
			continue
		}
		fw, err := w.Create(e.name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", e.name, err)
		}
		if _, err := fw.Write([]byte(e.content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", e.name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to finish zip: %v", err)
	}
	return name
}

var bundleEntries = []zipEntry{
	{"books/", ""},
	{"books/poems.json", `{"title": "Poems"}`},
	{"books/stories.YAML", "title: Stories"},
	{"images/cover.png", "png"},
	{"sounds/one.wav", "wav"},
	{"readme.txt", "readme"},
}

func TestBundleWalk(t *testing.T) {
	name := makeBundle(t, bundleEntries)

	b, err := Open(name)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()

	tests := []struct {
		name  string
		match func(string) bool
		want  []string
	}{
		{"content files", func(n string) bool { return HasExt(n, []string{".json", ".yaml"}) },
			[]string{"books/poems.json", "books/stories.YAML"}},
		{"everything", nil,
			[]string{"books/poems.json", "books/stories.YAML", "images/cover.png", "sounds/one.wav", "readme.txt"}},
		{"nothing", func(string) bool { return false }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var visited []string
			err := b.Walk(tt.match, func(bundle string, file *zip.File) error {
				if bundle != name {
					t.Errorf("bundle = %s, want %s", bundle, name)
				}
				visited = append(visited, file.Name)
				return nil
			})
			if err != nil {
				t.Fatalf("Walk() error = %v", err)
			}
			if !slices.Equal(visited, tt.want) {
				t.Errorf("visited %v, want %v", visited, tt.want)
			}
		})
	}
}

func TestBundleFS(t *testing.T) {
	b, err := Open(makeBundle(t, bundleEntries))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()

	data, err := fs.ReadFile(b, "images/cover.png")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "png" {
		t.Errorf("content = %q, want %q", data, "png")
	}
}

func openBundle(t *testing.T) *Bundle {
	t.Helper()
	b, err := Open(makeBundle(t, bundleEntries))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestWalkPrefix(t *testing.T) {
	b := openBundle(t)

	var visited int
	if err := b.Walk(func(n string) bool { return strings.HasPrefix(n, "books/") }, func(string, *zip.File) error {
		visited++
		return nil
	}); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if visited != 2 {
		t.Errorf("visited %d files, want 2 (directory entry skipped)", visited)
	}
}

func TestWalkEarlyTermination(t *testing.T) {
	b := openBundle(t)

	var visited int
	stopErr := errors.New("stop walking")
	err := b.Walk(nil, func(string, *zip.File) error {
		visited++
		if visited == 2 {
			return stopErr
		}
		return nil
	})
	if !errors.Is(err, stopErr) {
		t.Errorf("Walk() error = %v, want %v", err, stopErr)
	}
	if visited != 2 {
		t.Errorf("visited %d files, want 2 (early termination)", visited)
	}
}

func TestOpenInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	invalid := filepath.Join(tmpDir, "invalid.zip")
	if err := os.WriteFile(invalid, []byte("not a zip file"), 0644); err != nil {
		t.Fatalf("Failed to create invalid zip: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"nonexistent", filepath.Join(tmpDir, "absent.zip")},
		{"not a zip", invalid},
		{"traversal", makeBundle(t, []zipEntry{{"../evil.json", "{}"}})},
		{"absolute", makeBundle(t, []zipEntry{{"/etc/evil.json", "{}"}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if b, err := Open(tt.path); err == nil {
				b.Close()
				t.Error("expected error")
			}
		})
	}
}

func TestIsBundle(t *testing.T) {
	tmpDir := t.TempDir()
	text := filepath.Join(tmpDir, "book.json")
	if err := os.WriteFile(text, []byte(`{"title": "T"}`), 0644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(tmpDir, "empty")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"zip", makeBundle(t, bundleEntries), true},
		{"json", text, false},
		{"empty", empty, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsBundle(tt.path)
			if err != nil {
				t.Fatalf("IsBundle() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsBundle() = %t, want %t", got, tt.want)
			}
		})
	}

	if _, err := IsBundle(filepath.Join(tmpDir, "absent")); err == nil {
		t.Error("expected error for absent file")
	}
}

func TestHasExt(t *testing.T) {
	exts := []string{".json", ".yml"}
	tests := []struct {
		name string
		want bool
	}{
		{"a.json", true},
		{"dir/a.JSON", true},
		{"a.yml", true},
		{"a.yaml", false},
		{"json", false},
	}
	for _, tt := range tests {
		if got := HasExt(tt.name, exts); got != tt.want {
			t.Errorf("HasExt(%q) = %t, want %t", tt.name, got, tt.want)
		}
	}
}
