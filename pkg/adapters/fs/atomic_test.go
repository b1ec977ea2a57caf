package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Run("Creates New File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "draft.md")

		if err := WriteFileAtomic(filename, strings.NewReader("# Hello"), 0644); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}

		got, err := os.ReadFile(filename)
		if err != nil {
			t.Fatalf("Failed to read file: %v", err)
		}
		if string(got) != "# Hello" {
			t.Errorf("Expected '# Hello', got '%s'", string(got))
		}
	})

	t.Run("Overwrites Existing File", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "draft.md")
		if err := os.WriteFile(filename, []byte("initial"), 0644); err != nil {
			t.Fatalf("Setup failed: %v", err)
		}

		if err := WriteFileAtomic(filename, strings.NewReader("overwritten"), 0644); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}

		got, _ := os.ReadFile(filename)
		if string(got) != "overwritten" {
			t.Errorf("Expected 'overwritten', got '%s'", string(got))
		}
	})

	t.Run("Leaves No Temp Files", func(t *testing.T) {
		dir := t.TempDir()
		if err := WriteFileAtomic(filepath.Join(dir, "a.md"), strings.NewReader("x"), 0600); err != nil {
			t.Fatal(err)
		}
		entries, _ := os.ReadDir(dir)
		for _, e := range entries {
			if strings.HasPrefix(e.Name(), TempFilePrefix) {
				t.Errorf("temp file left behind: %s", e.Name())
			}
		}
	})

	t.Run("Fails if Directory Missing", func(t *testing.T) {
		filename := filepath.Join(t.TempDir(), "missing_folder", "draft.md")
		if err := WriteFileAtomic(filename, strings.NewReader("fail"), 0644); err == nil {
			t.Error("Expected error when directory is missing, got nil")
		}
	})
}

func TestSaveExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := SaveExport(dir, "../../Intro.pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("SaveExport failed: %v", err)
	}
	if path != filepath.Join(dir, "Intro.pdf") {
		t.Errorf("export escaped its directory: %s", path)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "%PDF-1.4" {
		t.Errorf("unexpected content %q", got)
	}

	if _, err := SaveExport(dir, "", nil); err == nil {
		t.Error("expected error for empty name")
	}
}
