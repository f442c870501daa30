// Package mining orchestrates one extraction pass per document: pages
// out of the PDF layer, hits out of the scanner, unit adjustment,
// then reconciliation into canonical records.
package mining

import (
	"github.com/finmine/datares/internal/filing"
	"github.com/finmine/datares/internal/mining/reconcile"
	"github.com/finmine/datares/internal/mining/scan"
	"github.com/finmine/datares/internal/mining/units"
	"github.com/finmine/datares/internal/pdf"
)

// Options configures the extraction engine.
type Options struct {
	Strategy    scan.Strategy
	MaxFileSize int64
	Units       *units.Table
}

// Engine runs the extraction pass. It holds no per-document state, so
// one engine is shared by all workers of a batch.
type Engine struct {
	reader    *pdf.Reader
	validator *pdf.Validator
	layout    *pdf.Layout
	scanner   *scan.Scanner
	units     *units.Table
}

// NewEngine creates an extraction engine.
func NewEngine(opts Options) *Engine {
	unitTable := opts.Units
	if unitTable == nil {
		unitTable = units.Default()
	}
	return &Engine{
		reader:    pdf.NewReader(opts.MaxFileSize),
		validator: pdf.NewValidator(opts.MaxFileSize),
		layout:    pdf.NewLayout(),
		scanner:   scan.NewScanner(opts.Strategy),
		units:     unitTable,
	}
}

// Result is the outcome of one document's extraction pass. Records is
// always populated with one record per category, even when the pass
// degraded to zero hits; Err then describes the soft failure.
type Result struct {
	Document    filing.Document
	Hits        []filing.ExtractionHit
	KeywordSeen bool
	Records     []filing.CanonicalRecord
	Pages       int
	FailedPages int
	Err         error
}

// MineBytes mines a document from fetched PDF bytes. It never fails
// hard: bytes that fail the structural validation or the open path
// degrade to the zero-value synthesis path.
func (e *Engine) MineBytes(doc filing.Document, data []byte) Result {
	if err := e.validator.ValidateBytes(data); err != nil {
		return e.degraded(doc, err)
	}
	opened, err := e.reader.OpenBytes(data, doc.SourceURL)
	if err != nil {
		return e.degraded(doc, err)
	}
	defer opened.Close()
	return e.mine(doc, opened)
}

// MineFile mines a document from a PDF on disk.
func (e *Engine) MineFile(doc filing.Document, path string) Result {
	opened, err := e.reader.OpenFile(path)
	if err != nil {
		return e.degraded(doc, err)
	}
	defer opened.Close()
	return e.mine(doc, opened)
}

func (e *Engine) mine(doc filing.Document, opened *pdf.Document) Result {
	res := Result{Document: doc, Pages: opened.NumPages()}

	pages := make([]pdf.Page, 0, res.Pages)
	for n := 1; n <= res.Pages; n++ {
		page, err := e.buildPage(opened, n)
		if err != nil {
			// One malformed page never takes down the document.
			res.FailedPages++
			continue
		}
		pages = append(pages, page)
	}

	hits, keywordSeen := e.scanner.Scan(pages)
	for i := range hits {
		hits[i].RawValue = e.units.Adjust(doc.SecurityCode, hits[i].RawValue)
	}

	res.Hits = hits
	res.KeywordSeen = keywordSeen
	res.Records = reconcile.Reconcile(doc, hits, keywordSeen)
	return res
}

// buildPage extracts one page's plain text and rebuilds its tables.
func (e *Engine) buildPage(opened *pdf.Document, n int) (pdf.Page, error) {
	text, err := opened.PageText(n)
	if err != nil {
		return pdf.Page{}, err
	}

	fragments, err := opened.PageFragments(n)
	if err != nil {
		// Text-only page: keyword detection and the text strategy
		// still apply.
		return pdf.Page{Number: n, PlainText: text}, nil
	}

	return pdf.Page{
		Number:    n,
		PlainText: text,
		Tables:    e.layout.BuildTables(fragments),
	}, nil
}

// degraded returns the zero-hit outcome for a document whose bytes
// could not be mined at all.
func (e *Engine) degraded(doc filing.Document, err error) Result {
	return Result{
		Document: doc,
		Records:  reconcile.Reconcile(doc, nil, false),
		Err:      err,
	}
}
