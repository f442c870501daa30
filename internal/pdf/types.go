package pdf

// Fragment represents one positioned text run extracted from a page.
// Coordinates are PDF points with the origin at the lower-left corner.
type Fragment struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	FontSize float64 `json:"font_size"`
}

// Cell represents one reconstructed table cell: adjacent fragments of a
// row merged until a column-sized horizontal gap.
type Cell struct {
	Text string  `json:"text"`
	X0   float64 `json:"x0"`
	X1   float64 `json:"x1"`
}

// Row represents one reconstructed table row.
type Row struct {
	Y     float64 `json:"y"`
	Cells []Cell  `json:"cells"`
}

// CellTexts returns the row's cell contents in column order.
func (r Row) CellTexts() []string {
	texts := make([]string, len(r.Cells))
	for i, c := range r.Cells {
		texts[i] = c.Text
	}
	return texts
}

// Table represents one vertically contiguous block of rows on a page.
type Table struct {
	Rows []Row `json:"rows"`
}

// Page holds everything the mining engine needs from one PDF page: the
// plain text for keyword checks and line scanning, and the reconstructed
// row/cell grid for table scanning.
type Page struct {
	Number    int     `json:"number"`
	PlainText string  `json:"plain_text"`
	Tables    []Table `json:"tables"`
}

// FileInfo represents a PDF file found during a directory search.
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}
