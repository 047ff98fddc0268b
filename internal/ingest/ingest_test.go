package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/jreader/yomitanctl/internal/progress"
	"github.com/jreader/yomitanctl/internal/registry"
)

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		// Store uncompressed so on-disk archive size tracks content size
		// directly; tests that exercise the size filter rely on this.
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip writer: %v", err)
	}
}

func sampleArchiveFiles() map[string]string {
	return map[string]string{
		"index.json":          `{"title":"TestDict","revision":"r1","format":3}`,
		"term_bank_1.json":    `[["犬","いぬ","","",0,["dog"],0,""]]`,
		"tag_bank_1.json":     `[["common","noun",0,"",0]]`,
		"kanji_bank_1.json":   `[["犬","ケン","いぬ","jouyou",["dog"],{}]]`,
		"readme.txt":          "generated for testing",
	}
}

func TestScanProcessesNewArchive(t *testing.T) {
	root := t.TempDir()
	writeZip(t, filepath.Join(root, "yomitan", "TestDict.zip"), sampleArchiveFiles())

	var registered []string
	sink := registerFunc(func(dir string) (*registry.RegisteredDictionary, error) {
		registered = append(registered, dir)
		return &registry.RegisteredDictionary{Dir: dir}, nil
	})

	prog, err := progress.New("")
	if err != nil {
		t.Fatalf("new progress tracker: %v", err)
	}
	defer prog.Close()

	in := New(log.New(os.Stderr, "", 0), prog, 2)
	stats, err := in.Scan(context.Background(), root, 0, sink)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if stats.Processed != 1 || stats.Errors != 0 {
		t.Fatalf("expected 1 processed archive with no errors, got %+v", stats)
	}
	if len(registered) != 1 {
		t.Fatalf("expected 1 registration call, got %d", len(registered))
	}

	destDir := filepath.Join(root, "db", "TestDict")
	if _, err := os.Stat(filepath.Join(destDir, "index.json")); err != nil {
		t.Fatalf("expected index.json to be written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(destDir, "term_bank_dict.db")); err != nil {
		t.Fatalf("expected a term bank store to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "static", "TestDict", "readme.txt")); err != nil {
		t.Fatalf("expected static asset readme.txt to be copied: %v", err)
	}
}

func TestScanSkipsIfDestAlreadyExists(t *testing.T) {
	root := t.TempDir()
	writeZip(t, filepath.Join(root, "yomitan", "TestDict.zip"), sampleArchiveFiles())
	if err := os.MkdirAll(filepath.Join(root, "db", "TestDict"), 0o755); err != nil {
		t.Fatalf("mkdir existing dest: %v", err)
	}

	registeredCount := 0
	sink := registerFunc(func(dir string) (*registry.RegisteredDictionary, error) {
		registeredCount++
		return &registry.RegisteredDictionary{Dir: dir}, nil
	})

	in := New(nil, nil, 1)
	stats, err := in.Scan(context.Background(), root, 0, sink)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if stats.Skipped != 1 || stats.Processed != 0 {
		t.Fatalf("expected the archive to be skipped (dest exists), got %+v", stats)
	}
	if registeredCount != 1 {
		t.Fatalf("expected the existing directory to still be registered, got %d calls", registeredCount)
	}
}

func TestScanSizeFiltersLargeArchive(t *testing.T) {
	root := t.TempDir()
	files := sampleArchiveFiles()
	files["padding.txt"] = string(bytes.Repeat([]byte("x"), 2*1024*1024))
	writeZip(t, filepath.Join(root, "yomitan", "BigDict.zip"), files)

	in := New(nil, nil, 1)
	stats, err := in.Scan(context.Background(), root, 1, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if stats.SizeFiltered != 1 || stats.Processed != 0 {
		t.Fatalf("expected the oversized archive to be size-filtered, got %+v", stats)
	}
}

func TestScanIsolatesPerArchiveErrors(t *testing.T) {
	root := t.TempDir()
	writeZip(t, filepath.Join(root, "yomitan", "Good.zip"), sampleArchiveFiles())
	writeZip(t, filepath.Join(root, "yomitan", "Broken.zip"), map[string]string{
		"readme.txt": "no index.json in this archive",
	})

	in := New(nil, nil, 2)
	stats, err := in.Scan(context.Background(), root, 0, nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if stats.Processed != 1 {
		t.Fatalf("expected the well-formed archive to still process, got %+v", stats)
	}
	if stats.Errors != 1 {
		t.Fatalf("expected the archive missing index.json to count as an error, got %+v", stats)
	}
}

func TestStripExtension(t *testing.T) {
	cases := map[string]string{
		"JMdict.zip":     "JMdict",
		"my.dict.zip":    "my.dict",
		"noextension":    "noextension",
	}
	for in, want := range cases {
		if got := stripExtension(in); got != want {
			t.Fatalf("stripExtension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHasSchemaPrefix(t *testing.T) {
	if !hasSchemaPrefix("term_bank_1.json", "term_bank_") {
		t.Fatalf("expected term_bank_1.json to match prefix term_bank_")
	}
	if hasSchemaPrefix("tag_bank_1.json", "term_bank_") {
		t.Fatalf("expected tag_bank_1.json to not match prefix term_bank_")
	}
	if !hasSchemaPrefix("sub/dir/kanji_bank_1.json", "kanji_bank_") {
		t.Fatalf("expected prefix match to apply to the base name only")
	}
}

type registerFunc func(dir string) (*registry.RegisteredDictionary, error)

func (f registerFunc) Register(dir string) (*registry.RegisteredDictionary, error) { return f(dir) }
