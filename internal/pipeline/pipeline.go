// Package pipeline runs the batch: fetch each document's PDF, mine it,
// and aggregate the outcomes into explicit batch state. Documents are
// independent, so the batch fans out over a bounded worker pool; one
// bad document never aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	"github.com/finmine/datares/internal/filing"
	"github.com/finmine/datares/internal/mining"
	"github.com/finmine/datares/internal/mining/project"
	"github.com/google/uuid"
)

// Fetcher retrieves a document's PDF bytes.
type Fetcher interface {
	FetchDocument(ctx context.Context, doc filing.Document) ([]byte, error)
}

// Miner runs one document's extraction pass.
type Miner interface {
	MineBytes(doc filing.Document, data []byte) mining.Result
}

// Options configures a batch run.
type Options struct {
	Workers      int
	FetchTimeout time.Duration
	ProgressPath string // empty disables resume state
	Logger       *log.Logger
}

// Orchestrator owns the batch dependencies. Construct with New;
// fetcher and miner are injected so tests can fake either side.
type Orchestrator struct {
	fetcher      Fetcher
	miner        Miner
	workers      int
	fetchTimeout time.Duration
	progressPath string
	logger       *log.Logger
	stats        Stats
}

// New creates an orchestrator.
func New(fetcher Fetcher, miner Miner, opts Options) *Orchestrator {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 60 * time.Second
	}
	return &Orchestrator{
		fetcher:      fetcher,
		miner:        miner,
		workers:      workers,
		fetchTimeout: fetchTimeout,
		progressPath: opts.ProgressPath,
		logger:       logger,
	}
}

// Stats returns a snapshot of the run counters.
func (o *Orchestrator) Stats() StatsSnapshot {
	return o.stats.Snapshot()
}

// Outcome records how one document fared.
type Outcome struct {
	Document    filing.Document `json:"document"`
	Hits        int             `json:"hits"`
	KeywordSeen bool            `json:"keyword_seen"`
	Pages       int             `json:"pages"`
	Error       string          `json:"error,omitempty"`
	Elapsed     time.Duration   `json:"elapsed"`
}

// Batch is the explicit state of one run: the reconciled long records,
// their wide projection, and per-document outcomes.
type Batch struct {
	RunID    string
	Long     []filing.CanonicalRecord
	Wide     []filing.WideRow
	Outcomes []Outcome
}

// Run processes docs through the worker pool and returns the collected
// batch. Already-processed documents recorded in the progress file are
// skipped, so an interrupted run resumes where it stopped. The returned
// error reflects only batch-level failures (context cancellation);
// per-document failures live in the outcomes.
func (o *Orchestrator) Run(ctx context.Context, docs []filing.Document) (*Batch, error) {
	batch := &Batch{RunID: uuid.NewString()}

	progress, err := loadProgress(o.progressPath)
	if err != nil {
		o.logger.Printf("pipeline: ignoring unreadable progress file: %v", err)
	}
	if progress != nil && len(progress.ProcessedKeys) > 0 {
		o.logger.Printf("pipeline: resuming run %s, %d documents already processed",
			progress.RunID, len(progress.ProcessedKeys))
		batch.RunID = progress.RunID
	} else {
		progress = newProgress(batch.RunID)
	}

	jobs := make(chan filing.Document)
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				outcome, records := o.processOne(ctx, doc)

				mu.Lock()
				batch.Outcomes = append(batch.Outcomes, outcome)
				batch.Long = append(batch.Long, records...)
				progress.mark(doc.Key())
				if err := progress.save(o.progressPath); err != nil {
					o.logger.Printf("pipeline: progress save failed: %v", err)
				}
				mu.Unlock()
			}
		}()
	}

	var cancelled error
feed:
	for _, doc := range docs {
		if progress.done(doc.Key()) {
			o.stats.Skipped.Add(1)
			continue
		}
		select {
		case jobs <- doc:
		case <-ctx.Done():
			cancelled = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	batch.Wide = project.Project(batch.Long)
	if cancelled != nil {
		return batch, cancelled
	}
	return batch, nil
}

// processOne fetches and mines a single document under its own timeout
// and panic guard.
func (o *Orchestrator) processOne(ctx context.Context, doc filing.Document) (outcome Outcome, records []filing.CanonicalRecord) {
	start := time.Now()
	outcome = Outcome{Document: doc}

	defer func() {
		if r := recover(); r != nil {
			o.stats.Panics.Add(1)
			o.logger.Printf("pipeline: panic mining %s: %v\n%s", doc.SecurityCode, r, debug.Stack())
			outcome.Error = fmt.Sprintf("panic: %v", r)
			res := o.miner.MineBytes(doc, nil)
			records = res.Records
		}
		outcome.Elapsed = time.Since(start)
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	data, err := o.fetcher.FetchDocument(fetchCtx, doc)
	cancel()
	if err != nil {
		// No bytes available: same path as zero hits.
		o.stats.FetchFailed.Add(1)
		outcome.Error = err.Error()
		data = nil
	}

	res := o.miner.MineBytes(doc, data)
	o.stats.Processed.Add(1)
	o.stats.Hits.Add(int64(len(res.Hits)))
	o.stats.Pages.Add(int64(res.Pages))
	if res.Err != nil {
		o.stats.MineFailed.Add(1)
		if outcome.Error == "" {
			outcome.Error = res.Err.Error()
		}
	}
	if res.KeywordSeen {
		o.stats.KeywordDocs.Add(1)
	}

	outcome.Hits = len(res.Hits)
	outcome.KeywordSeen = res.KeywordSeen
	outcome.Pages = res.Pages
	return outcome, res.Records
}
