package pdf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidatorValidateFile(t *testing.T) {
	tempDir := t.TempDir()

	txtPath := filepath.Join(tempDir, "notes.txt")
	emptyPath := filepath.Join(tempDir, "empty.pdf")
	largePath := filepath.Join(tempDir, "large.pdf")
	fakePath := filepath.Join(tempDir, "fake.pdf")

	if err := os.WriteFile(txtPath, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("failed to create txt file: %v", err)
	}
	if err := os.WriteFile(emptyPath, nil, 0o644); err != nil {
		t.Fatalf("failed to create empty file: %v", err)
	}
	if err := os.WriteFile(largePath, make([]byte, 2048+1), 0o644); err != nil {
		t.Fatalf("failed to create large file: %v", err)
	}
	if err := os.WriteFile(fakePath, []byte("MZ not a pdf body"), 0o644); err != nil {
		t.Fatalf("failed to create fake pdf: %v", err)
	}

	validator := NewValidator(2048)

	tests := []struct {
		name   string
		path   string
		errMsg string
	}{
		{name: "empty path", path: "", errMsg: "path cannot be empty"},
		{name: "non-existent file", path: filepath.Join(tempDir, "missing.pdf"), errMsg: "file does not exist"},
		{name: "directory", path: tempDir, errMsg: "path is a directory"},
		{name: "wrong extension", path: txtPath, errMsg: "not a PDF"},
		{name: "empty file", path: emptyPath, errMsg: "empty"},
		{name: "oversized file", path: largePath, errMsg: "exceeds size limit"},
		{name: "pdf extension without header", path: fakePath, errMsg: "not a PDF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateFile(tt.path)
			if err == nil {
				t.Fatalf("ValidateFile(%q) expected error but got none", tt.path)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("ValidateFile(%q) error = %v, want error containing %q", tt.path, err, tt.errMsg)
			}
		})
	}
}

func TestValidatorValidateBytes(t *testing.T) {
	validator := NewValidator(2048)

	if err := validator.ValidateBytes(nil); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("ValidateBytes(nil) = %v, want ErrEmptyFile", err)
	}
	if err := validator.ValidateBytes([]byte("<html></html>")); !errors.Is(err, ErrNotPDF) {
		t.Errorf("ValidateBytes(html) = %v, want ErrNotPDF", err)
	}
	big := append([]byte("%PDF-1.4"), make([]byte, 2048)...)
	if err := validator.ValidateBytes(big); !errors.Is(err, ErrTooLarge) {
		t.Errorf("ValidateBytes(big) = %v, want ErrTooLarge", err)
	}

	// Header alone is not enough: the cross-reference read must fail.
	if err := validator.ValidateBytes([]byte("%PDF-1.4 then garbage")); err == nil {
		t.Error("ValidateBytes(truncated) expected structure error, got none")
	}
}

func TestValidatorIsValidPDF(t *testing.T) {
	tempDir := t.TempDir()

	txtPath := filepath.Join(tempDir, "doc.txt")
	if err := os.WriteFile(txtPath, []byte("text"), 0o644); err != nil {
		t.Fatalf("failed to create txt file: %v", err)
	}

	validator := NewValidator(2048)

	if validator.IsValidPDF("") {
		t.Error("IsValidPDF(empty path) = true, want false")
	}
	if validator.IsValidPDF(txtPath) {
		t.Error("IsValidPDF(txt) = true, want false")
	}
	if validator.IsValidPDF(filepath.Join(tempDir, "missing.pdf")) {
		t.Error("IsValidPDF(missing) = true, want false")
	}
}
