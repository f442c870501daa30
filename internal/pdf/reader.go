package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Reader opens filing PDFs from disk or from fetched bytes and exposes
// per-page content with the per-page failure isolation malformed filings
// require.
type Reader struct {
	maxFileSize int64
	maxTextSize int
}

// NewReader creates a new PDF reader with the specified size constraint.
func NewReader(maxFileSize int64) *Reader {
	return &Reader{
		maxFileSize: maxFileSize,
		maxTextSize: 10 * 1024 * 1024, // 10MB text limit per page
	}
}

// OpenFile opens a PDF from a file path.
func (r *Reader) OpenFile(path string) (*Document, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return nil, fmt.Errorf("%w: %s", ErrNotPDF, path)
	}
	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	if fileInfo.Size() > r.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max: %d bytes)",
			ErrTooLarge, fileInfo.Size(), r.maxFileSize)
	}

	f, pdfReader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	return &Document{
		reader:      pdfReader,
		file:        f,
		source:      path,
		size:        fileInfo.Size(),
		maxTextSize: r.maxTextSize,
	}, nil
}

// OpenBytes opens a PDF from raw bytes, typically the body of a fetched
// attachment.
func (r *Reader) OpenBytes(data []byte, source string) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, source)
	}
	if int64(len(data)) > r.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes (max: %d bytes)",
			ErrTooLarge, len(data), r.maxFileSize)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, fmt.Errorf("%w: %s", ErrNotPDF, source)
	}

	pdfReader, err := newReaderSafe(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF bytes: %w", err)
	}

	return &Document{
		reader:      pdfReader,
		source:      source,
		size:        int64(len(data)),
		maxTextSize: r.maxTextSize,
	}, nil
}

// newReaderSafe guards pdf.NewReader against panics on corrupt input.
func newReaderSafe(data []byte) (reader *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reader = nil
			err = fmt.Errorf("panic while parsing PDF structure: %v", rec)
		}
	}()
	return pdf.NewReader(bytes.NewReader(data), int64(len(data)))
}

// Document is an open PDF ready for page-level extraction.
type Document struct {
	reader      *pdf.Reader
	file        *os.File // nil when byte-backed
	source      string
	size        int64
	maxTextSize int
}

// Source returns the path or URL the document was opened from.
func (d *Document) Source() string {
	return d.source
}

// Size returns the document size in bytes.
func (d *Document) Size() int64 {
	return d.size
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// Close releases the backing file, if any.
func (d *Document) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// PageText extracts the plain text of one page. Parser panics on
// malformed pages are converted to errors so one bad page never takes
// down the document pass.
func (d *Document) PageText(pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = &ParseError{Source: d.source, Page: pageNum, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	if pageNum < 1 || pageNum > d.reader.NumPage() {
		return "", fmt.Errorf("invalid page number %d (document has %d pages)", pageNum, d.reader.NumPage())
	}

	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return "", &ParseError{Source: d.source, Page: pageNum, Err: fmt.Errorf("null page object")}
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		return "", &ParseError{Source: d.source, Page: pageNum, Err: err}
	}
	if len(content) > d.maxTextSize {
		content = content[:d.maxTextSize]
	}
	return content, nil
}

// PageFragments extracts the positioned text runs of one page, with the
// same panic isolation as PageText. Runs with empty text are dropped;
// a zero font size falls back to the conventional 12pt line height.
func (d *Document) PageFragments(pageNum int) (fragments []Fragment, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			fragments = nil
			err = &ParseError{Source: d.source, Page: pageNum, Err: fmt.Errorf("panic: %v", rec)}
		}
	}()

	if pageNum < 1 || pageNum > d.reader.NumPage() {
		return nil, fmt.Errorf("invalid page number %d (document has %d pages)", pageNum, d.reader.NumPage())
	}

	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return nil, &ParseError{Source: d.source, Page: pageNum, Err: fmt.Errorf("null page object")}
	}

	content := page.Content()
	fragments = make([]Fragment, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		fontSize := t.FontSize
		if fontSize == 0 {
			fontSize = 12.0
		}
		fragments = append(fragments, Fragment{
			Text:     t.S,
			X:        t.X,
			Y:        t.Y,
			W:        t.W,
			FontSize: fontSize,
		})
	}
	return fragments, nil
}
