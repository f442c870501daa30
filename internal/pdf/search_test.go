package pdf

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func TestSearchFindPDFs(t *testing.T) {
	search := NewSearch(1024 * 1024) // 1MB limit

	tempDir := t.TempDir()
	nestedDir := filepath.Join(tempDir, "2023", "annual")
	if err := os.MkdirAll(nestedDir, 0o755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	testFiles := map[string][]byte{
		"600941_annual.pdf":                 make([]byte, 1024),
		"000001_half_year.pdf":              make([]byte, 2048),
		filepath.Join("2023", "annual", "688981_annual.pdf"): make([]byte, 512),
		"listing.txt": []byte("not a pdf"),
		"empty.pdf":   {},
		"large.pdf":   make([]byte, 2*1024*1024),
	}

	for filename, content := range testFiles {
		filePath := filepath.Join(tempDir, filename)
		if err := os.WriteFile(filePath, content, 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", filename, err)
		}
	}

	files, err := search.FindPDFs(tempDir)
	if err != nil {
		t.Fatalf("FindPDFs(%q) unexpected error: %v", tempDir, err)
	}

	// Valid: the two top-level and one nested PDF. Excluded: txt,
	// empty.pdf, large.pdf.
	if len(files) != 3 {
		names := make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, f.Name)
		}
		t.Fatalf("FindPDFs returned %d files %v, want 3", len(files), names)
	}

	if !sort.SliceIsSorted(files, func(i, j int) bool { return files[i].Path < files[j].Path }) {
		t.Error("FindPDFs results are not sorted by path")
	}

	for _, f := range files {
		if !strings.HasSuffix(f.Name, ".pdf") {
			t.Errorf("non-PDF file in results: %s", f.Name)
		}
		if f.Size == 0 {
			t.Errorf("empty file in results: %s", f.Name)
		}
		if f.ModifiedTime == "" {
			t.Errorf("missing modified time for %s", f.Name)
		}
	}

	foundNested := false
	for _, f := range files {
		if f.Name == "688981_annual.pdf" {
			foundNested = true
		}
	}
	if !foundNested {
		t.Error("FindPDFs did not recurse into nested directories")
	}
}

func TestSearchFindPDFsErrors(t *testing.T) {
	search := NewSearch(1024 * 1024)

	tests := []struct {
		name      string
		directory string
		errMsg    string
	}{
		{name: "empty directory", directory: "", errMsg: "directory cannot be empty"},
		{name: "non-existent directory", directory: "/non/existent/dir", errMsg: "directory does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := search.FindPDFs(tt.directory)
			if err == nil {
				t.Fatalf("FindPDFs(%q) expected error but got none", tt.directory)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("FindPDFs(%q) error = %v, want error containing %q", tt.directory, err, tt.errMsg)
			}
		})
	}
}

func TestSearchFindPDFsEmptyDirectory(t *testing.T) {
	search := NewSearch(1024 * 1024)
	tempDir := t.TempDir()

	files, err := search.FindPDFs(tempDir)
	if err != nil {
		t.Fatalf("FindPDFs on empty dir: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("FindPDFs on empty dir returned %d files, want 0", len(files))
	}
}
