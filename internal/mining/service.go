package mining

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/finmine/datares/internal/filing"
	"github.com/finmine/datares/internal/mining/project"
	"github.com/finmine/datares/internal/pdf"
)

// Service exposes the extraction engine over request/result structs for
// the CLI and the MCP tools.
type Service struct {
	engine *Engine
	search *pdf.Search
}

// NewService creates a mining service.
func NewService(opts Options) *Service {
	return &Service{
		engine: NewEngine(opts),
		search: pdf.NewSearch(opts.MaxFileSize),
	}
}

// Engine returns the underlying extraction engine, shared with the
// batch pipeline.
func (s *Service) Engine() *Engine {
	return s.engine
}

// ScanFileRequest asks for one local PDF to be mined.
type ScanFileRequest struct {
	Path string
}

// ScanFileResult carries the extraction outcome for one file.
type ScanFileResult struct {
	Path   string
	Result Result
}

// ScanFile mines a single PDF on disk. Document metadata is recovered
// from the file name where possible.
func (s *Service) ScanFile(req ScanFileRequest) (*ScanFileResult, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	doc := DocumentForFile(req.Path)
	res := s.engine.MineFile(doc, req.Path)
	return &ScanFileResult{Path: req.Path, Result: res}, nil
}

// ScanDirectoryRequest asks for every PDF under a directory to be
// mined.
type ScanDirectoryRequest struct {
	Directory string
}

// ScanDirectoryResult aggregates a directory pass: per-file outcomes,
// the combined long-format records, and the wide projection.
type ScanDirectoryResult struct {
	Directory string
	Files     []pdf.FileInfo
	Results   []Result
	Records   []filing.CanonicalRecord
	WideRows  []filing.WideRow
}

// ScanDirectory mines every readable PDF under a directory. Individual
// file failures degrade to zero-value records and never abort the pass.
func (s *Service) ScanDirectory(req ScanDirectoryRequest) (*ScanDirectoryResult, error) {
	files, err := s.search.FindPDFs(req.Directory)
	if err != nil {
		return nil, err
	}

	out := &ScanDirectoryResult{Directory: req.Directory, Files: files}
	for _, file := range files {
		res := s.engine.MineFile(DocumentForFile(file.Path), file.Path)
		out.Results = append(out.Results, res)
		out.Records = append(out.Records, res.Records...)
	}
	out.WideRows = project.Project(out.Records)
	return out, nil
}

// fileNamePattern matches the naming scheme used when saving fetched
// filings: 公司名称：报告名称_[YYYY-MM-DD].pdf.
var fileNamePattern = regexp.MustCompile(`^(.+?)：(.+)_\[(\d{4}-\d{2}-\d{2})\]$`)

// DocumentForFile reconstructs document metadata from a saved filing's
// file name, falling back to the bare name as the title for PDFs named
// some other way. The security code is unknown for offline files, so
// unit adjustment does not apply to them.
func DocumentForFile(path string) filing.Document {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if m := fileNamePattern.FindStringSubmatch(base); m != nil {
		return filing.Document{
			CompanyName: m[1],
			ReportTitle: m[2],
			ReportDate:  m[3],
			SourceURL:   path,
		}
	}
	return filing.Document{ReportTitle: base, SourceURL: path}
}
