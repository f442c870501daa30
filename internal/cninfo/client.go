// Package cninfo queries the cninfo disclosure portal for announcement
// metadata: paginated history queries, title screening, and the
// security-code and attachment-URL conventions the portal uses.
package cninfo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/finmine/datares/internal/filing"
)

const (
	// DefaultBaseURL is the portal's history announcement query
	// endpoint.
	DefaultBaseURL = "http://www.cninfo.com.cn/new/hisAnnouncement/query"

	// AttachmentBase prefixes every adjunct URL in query responses.
	AttachmentBase = "https://static.cninfo.com.cn/"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

	pageSize = 30

	// Pagination stops: hard page cap, consecutive empty pages, and
	// overshoot past the reported total.
	maxPages      = 500
	maxEmptyPages = 3
	overshoot     = 3
)

// Exchange is one portal column to query.
type Exchange struct {
	Name   string
	Column string
}

// Exchanges lists the portal columns covered by a full crawl.
var Exchanges = []Exchange{
	{Name: "上交所", Column: "sse"},
	{Name: "深交所", Column: "szse"},
	{Name: "北交所", Column: "bj"},
	{Name: "新三板", Column: "neeq"},
	{Name: "科创板", Column: "star"},
}

// ExchangeByColumn finds an exchange by its portal column name.
func ExchangeByColumn(column string) (Exchange, bool) {
	for _, ex := range Exchanges {
		if ex.Column == column {
			return ex, true
		}
	}
	return Exchange{}, false
}

// ReportType describes one periodic report category.
type ReportType struct {
	Category string
	Label    string
}

// ReportTypes maps the short report-type keys to portal categories.
var ReportTypes = map[string]ReportType{
	"yjdbg": {Category: "category_yjdbg_szsh", Label: "一季度"},
	"bndbg": {Category: "category_bndbg_szsh", Label: "半年报"},
	"sjdbg": {Category: "category_sjdbg_szsh", Label: "三季度"},
	"ndbg":  {Category: "category_ndbg_szsh", Label: "年报"},
}

// Announcement is one metadata record from the portal.
type Announcement struct {
	SecCode    string      `json:"secCode"`
	SecName    string      `json:"secName"`
	Title      string      `json:"announcementTitle"`
	TimeMillis epochMillis `json:"announcementTime"`
	AdjunctURL string      `json:"adjunctUrl"`
}

// epochMillis tolerates the portal's two timestamp renderings: an epoch
// in milliseconds, or a "YYYY-MM-DD hh:mm:ss" string.
type epochMillis int64

func (m *epochMillis) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*m = 0
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*m = epochMillis(n)
		return nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local); err == nil {
		*m = epochMillis(t.UnixMilli())
		return nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		*m = epochMillis(t.UnixMilli())
		return nil
	}
	return fmt.Errorf("unrecognized announcement time %q", s)
}

// PDFURL returns the attachment's full download URL.
func (a Announcement) PDFURL() string {
	return AttachmentBase + a.AdjunctURL
}

// Date returns the announcement date as YYYY-MM-DD.
func (a Announcement) Date() string {
	if a.TimeMillis == 0 {
		return ""
	}
	return time.UnixMilli(int64(a.TimeMillis)).Format("2006-01-02")
}

// Document converts the announcement into a filing document with a
// normalized security code.
func (a Announcement) Document() filing.Document {
	return filing.NewDocument(a.SecCode, a.SecName, a.Title, a.Date(), a.PDFURL())
}

// dedupKey is the identity tuple used to drop duplicate records across
// pages and exchanges.
func (a Announcement) dedupKey() string {
	return fmt.Sprintf("%s|%s|%d|%s", a.SecCode, a.Title, a.TimeMillis, a.AdjunctURL)
}

// queryResponse is the portal's JSON envelope.
type queryResponse struct {
	Announcements []Announcement `json:"announcements"`
	HasMore       bool           `json:"hasMore"`
	TotalPages    int            `json:"totalpages"`
}

// Client queries the portal. The zero value is not usable; use
// NewClient.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	pause      time.Duration
	logger     *log.Logger
}

// Option customizes a client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithPause sets the delay between page requests.
func WithPause(d time.Duration) Option {
	return func(c *Client) { c.pause = d }
}

// NewClient creates a portal client.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultBaseURL,
		userAgent:  defaultUserAgent,
		pause:      300 * time.Millisecond,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query is one (exchange, date, category) page set.
type Query struct {
	Column   string // portal column, e.g. "sse"
	Date     string // YYYY-MM-DD; queried as a one-day window
	Category string // portal category, e.g. "category_bndbg_szsh"
}

// QueryAnnouncements pages through one query until the portal reports
// hasMore=false, three consecutive pages add nothing new, the page
// number overshoots the reported total, or the hard page cap is hit.
// Records are deduplicated by (code, title, time, adjunct URL).
func (c *Client) QueryAnnouncements(ctx context.Context, q Query) ([]Announcement, error) {
	var (
		all        []Announcement
		seen       = make(map[string]struct{})
		totalPages = -1
		emptyPages int
	)

	for page := 1; page <= maxPages; page++ {
		resp, err := c.queryPage(ctx, q, page)
		if err != nil {
			return all, err
		}
		if totalPages < 0 {
			totalPages = resp.TotalPages
		}

		fresh := 0
		for _, ann := range resp.Announcements {
			key := ann.dedupKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			all = append(all, ann)
			fresh++
		}

		if fresh == 0 {
			emptyPages++
			if emptyPages >= maxEmptyPages {
				break
			}
		} else {
			emptyPages = 0
		}

		if !resp.HasMore {
			break
		}
		if totalPages == 0 {
			// Portal sometimes reports zero pages yet returns a
			// first page of data; never go past it.
			break
		}
		if totalPages > 0 && page >= totalPages+overshoot {
			break
		}

		if c.pause > 0 {
			select {
			case <-ctx.Done():
				return all, ctx.Err()
			case <-time.After(c.pause):
			}
		}
	}

	return all, nil
}

func (c *Client) queryPage(ctx context.Context, q Query, page int) (*queryResponse, error) {
	form := url.Values{
		"pageNum":   {strconv.Itoa(page)},
		"pageSize":  {strconv.Itoa(pageSize)},
		"column":    {q.Column},
		"tabName":   {"fulltext"},
		"plate":     {""},
		"stock":     {""},
		"searchkey": {""},
		"secid":     {""},
		"category":  {q.Category},
		"trade":     {""},
		"seDate":    {q.Date + "~" + q.Date},
		"sortName":  {""},
		"sortType":  {""},
		"isHLtitle": {"true"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://www.cninfo.com.cn/new/commonUrl?url=disclosure/list/notice")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query %s %s page %d: %w", q.Column, q.Date, page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query %s %s page %d: status %d", q.Column, q.Date, page, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read query response: %w", err)
	}

	var out queryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	return &out, nil
}
