package cninfo

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/finmine/datares/internal/filing"
)

// CollectRequest describes one metadata crawl.
type CollectRequest struct {
	Start      time.Time
	End        time.Time
	ReportType string   // key into ReportTypes
	Columns    []string // portal columns; nil means all exchanges
}

// Collect queries every (exchange, day) partition of the window,
// screens titles, and deduplicates down to the latest filing per
// security code. The per-day window matches the portal's result-size
// limits.
func (c *Client) Collect(ctx context.Context, req CollectRequest) ([]filing.Document, error) {
	reportType, ok := ReportTypes[req.ReportType]
	if !ok {
		return nil, fmt.Errorf("unknown report type %q", req.ReportType)
	}
	if req.End.Before(req.Start) {
		return nil, fmt.Errorf("end date %s before start date %s",
			req.End.Format("2006-01-02"), req.Start.Format("2006-01-02"))
	}

	columns := req.Columns
	if len(columns) == 0 {
		for _, ex := range Exchanges {
			columns = append(columns, ex.Column)
		}
	}

	years := TargetYears(req.Start, req.End)

	var docs []filing.Document
	seen := make(map[string]struct{})

	for _, column := range columns {
		for day := req.Start; !day.After(req.End); day = day.AddDate(0, 0, 1) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			date := day.Format("2006-01-02")
			anns, err := c.QueryAnnouncements(ctx, Query{
				Column:   column,
				Date:     date,
				Category: reportType.Category,
			})
			if err != nil {
				// One failed partition costs that partition only.
				c.logger.Printf("cninfo: query %s %s failed: %v", column, date, err)
				continue
			}

			for _, ann := range anns {
				if !ScreenTitle(ann.Title, years) {
					continue
				}
				doc := ann.Document()
				key := doc.Key()
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				docs = append(docs, doc)
			}
		}
	}

	return LatestPerSecurity(docs), nil
}

var digitPattern = regexp.MustCompile(`\d`)

// ScreenTitle decides whether an announcement title names a usable
// filing: summaries and English editions are excluded, and when target
// years are given the title must either mention one of them or carry no
// digits at all (undated titles are kept).
func ScreenTitle(title string, targetYears []int) bool {
	if strings.Contains(title, "摘要") || strings.Contains(title, "英文版") {
		return false
	}
	if len(targetYears) == 0 {
		return true
	}
	for _, year := range targetYears {
		if strings.Contains(title, strconv.Itoa(year)) {
			return true
		}
	}
	return !digitPattern.MatchString(title)
}

// TargetYears derives the reporting years a publication window covers:
// reports publish roughly a quarter after period end, so the window is
// shifted back three months before taking its year range.
func TargetYears(start, end time.Time) []int {
	from := start.AddDate(0, -3, 0).Year()
	to := end.AddDate(0, -3, 0).Year()
	if to < from {
		from, to = to, from
	}

	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}
	return years
}

// LatestPerSecurity keeps the newest filing per security code, ties
// broken by keeping the first encountered. Output is sorted by code.
func LatestPerSecurity(docs []filing.Document) []filing.Document {
	best := make(map[string]filing.Document)
	for _, doc := range docs {
		cur, ok := best[doc.SecurityCode]
		if !ok || doc.ReportDate > cur.ReportDate {
			best[doc.SecurityCode] = doc
		}
	}

	out := make([]filing.Document, 0, len(best))
	for _, doc := range best {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SecurityCode < out[j].SecurityCode
	})
	return out
}
