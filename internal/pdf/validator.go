package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Validator performs structural validation of filing PDFs before they
// enter the mining pass. Validation failures are per-document soft
// failures, never batch errors.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified size
// constraint.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateFile performs full validation on a PDF file on disk.
func (v *Validator) ValidateFile(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if err := v.ValidateFileInfo(path, fileInfo); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read file: %w", err)
	}
	return v.ValidateBytes(data)
}

// ValidateBytes checks that data is a structurally readable PDF: magic
// header, size bounds, and a relaxed pdfcpu read of the cross-reference
// structure and page tree.
func (v *Validator) ValidateBytes(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyFile
	}
	if int64(len(data)) > v.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrTooLarge, len(data), v.maxFileSize)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return ErrNotPDF
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return fmt.Errorf("invalid PDF structure: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return fmt.Errorf("invalid PDF page tree: %w", err)
	}
	return nil
}

// ValidateFileInfo performs the cheap checks that do not require opening
// the file: extension, emptiness, and size bound.
func (v *Validator) ValidateFileInfo(path string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("%w: %s", ErrNotPDF, path)
	}
	if fileInfo.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)",
			ErrTooLarge, fileInfo.Size(), v.maxFileSize)
	}
	return nil
}

// IsValidPDF reports whether a file passes full validation.
func (v *Validator) IsValidPDF(path string) bool {
	return v.ValidateFile(path) == nil
}
