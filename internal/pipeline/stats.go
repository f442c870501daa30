package pipeline

import "sync/atomic"

// Stats holds the run counters. Workers update them without locking.
type Stats struct {
	Processed   atomic.Int64
	Skipped     atomic.Int64
	FetchFailed atomic.Int64
	MineFailed  atomic.Int64
	Panics      atomic.Int64
	Hits        atomic.Int64
	KeywordDocs atomic.Int64
	Pages       atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	Processed   int64 `json:"processed"`
	Skipped     int64 `json:"skipped"`
	FetchFailed int64 `json:"fetch_failed"`
	MineFailed  int64 `json:"mine_failed"`
	Panics      int64 `json:"panics"`
	Hits        int64 `json:"hits"`
	KeywordDocs int64 `json:"keyword_docs"`
	Pages       int64 `json:"pages"`
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Processed:   s.Processed.Load(),
		Skipped:     s.Skipped.Load(),
		FetchFailed: s.FetchFailed.Load(),
		MineFailed:  s.MineFailed.Load(),
		Panics:      s.Panics.Load(),
		Hits:        s.Hits.Load(),
		KeywordDocs: s.KeywordDocs.Load(),
		Pages:       s.Pages.Load(),
	}
}
