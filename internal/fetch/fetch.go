// Package fetch downloads filing PDFs. The core treats every failure
// here as "no bytes available": callers get an error for logging, and
// the document degrades to zero hits.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/finmine/datares/internal/filing"
)

// ErrNotPDF reports that the fetched body is not a PDF.
var ErrNotPDF = errors.New("fetched content is not a PDF")

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Fetcher downloads PDFs with a size cap and a %PDF sniff. Structural
// validation of the bytes happens downstream in the extraction engine.
// When SaveDir is set, downloads are written there and re-read on the
// next run instead of hitting the network again.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxSize   int64
	saveDir   string
}

// New creates a fetcher. saveDir may be empty to disable the local
// copy.
func New(timeout time.Duration, maxSize int64, saveDir string) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		maxSize:   maxSize,
		saveDir:   saveDir,
	}
}

// FetchDocument retrieves a document's PDF, preferring the local copy
// when one exists.
func (f *Fetcher) FetchDocument(ctx context.Context, doc filing.Document) ([]byte, error) {
	if f.saveDir != "" {
		path := filepath.Join(f.saveDir, FileName(doc))
		if data, err := os.ReadFile(path); err == nil && bytes.HasPrefix(data, []byte("%PDF")) {
			return data, nil
		}
	}

	data, err := f.Fetch(ctx, doc.SourceURL)
	if err != nil {
		return nil, err
	}

	if f.saveDir != "" {
		if err := f.save(doc, data); err != nil {
			// Losing the local copy is not losing the document.
			return data, nil
		}
	}
	return data, nil
}

// Fetch retrieves one URL and verifies the body looks like a PDF.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("url cannot be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	if resp.ContentLength > f.maxSize {
		return nil, fmt.Errorf("fetch %s: %d bytes exceeds limit %d", url, resp.ContentLength, f.maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("fetch %s: body exceeds limit %d", url, f.maxSize)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, fmt.Errorf("%w: %s", ErrNotPDF, url)
	}
	return data, nil
}

func (f *Fetcher) save(doc filing.Document, data []byte) error {
	if err := os.MkdirAll(f.saveDir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(f.saveDir, FileName(doc)), data, 0o640)
}

// unsafeNameChars strips characters that are path separators or
// otherwise unusable in file names on common filesystems.
var unsafeNameChars = regexp.MustCompile(`[\\/:*?"<>|]`)

// FileName builds the on-disk name for a saved filing:
// 公司名称：报告名称_[YYYY-MM-DD].pdf.
func FileName(doc filing.Document) string {
	base := fmt.Sprintf("%s：%s_[%s]", doc.CompanyName, doc.ReportTitle, doc.ReportDate)
	base = unsafeNameChars.ReplaceAllString(base, "_")
	base = strings.TrimSpace(base)
	return base + ".pdf"
}
