package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/finmine/datares/internal/cninfo"
	"github.com/finmine/datares/internal/config"
	"github.com/finmine/datares/internal/fetch"
	"github.com/finmine/datares/internal/filing"
	"github.com/finmine/datares/internal/mcp"
	"github.com/finmine/datares/internal/mining"
	"github.com/finmine/datares/internal/mining/scan"
	"github.com/finmine/datares/internal/mining/units"
	"github.com/finmine/datares/internal/pipeline"
	"github.com/finmine/datares/internal/report"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// logWriter picks the log destination: serve mode keeps the MCP
// protocol stream clean, so non-debug runs discard log output entirely.
func logWriter(cfg *config.Config) io.Writer {
	if cfg.IsServeMode() && !cfg.IsDebug() {
		return io.Discard
	}
	return os.Stderr
}

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	log.SetOutput(logWriter(cfg))
	if !cfg.IsServeMode() {
		log.SetFlags(log.LstdFlags)
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load configuration from flags first
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging based on mode
	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	miner, err := buildMiner(cfg)
	if err != nil {
		log.Fatalf("Failed to build extraction service: %v", err)
	}
	portal := cninfo.NewClient(cfg.FetchTimeout)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	switch cfg.Mode {
	case config.ModeServe:
		runServeMode(ctx, cfg, miner, portal)
	default:
		runBatchMode(ctx, cancel, cfg, miner, portal)
	}
}

// buildMiner wires the extraction service from configuration.
func buildMiner(cfg *config.Config) (*mining.Service, error) {
	unitTable := units.Default()
	if cfg.UnitsFile != "" {
		loaded, err := units.Load(cfg.UnitsFile)
		if err != nil {
			return nil, fmt.Errorf("load units file: %w", err)
		}
		unitTable = loaded
	}
	return mining.NewService(mining.Options{
		Strategy:    scan.Strategy(cfg.Strategy),
		MaxFileSize: cfg.MaxFileSize,
		Units:       unitTable,
	}), nil
}

// runServeMode starts the MCP stdio server.
func runServeMode(ctx context.Context, cfg *config.Config, miner *mining.Service, portal *cninfo.Client) {
	server, err := mcp.NewServer(cfg, miner, portal)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	// In serve mode, the parent process controls our lifecycle.
	if err := server.Run(ctx); err != nil {
		// Only log to stderr in debug mode to avoid protocol interference
		if os.Getenv("DEBUG") != "" {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

// runBatchMode executes crawl, extract or run with signal handling.
func runBatchMode(ctx context.Context, cancel context.CancelFunc,
	cfg *config.Config, miner *mining.Service, portal *cninfo.Client,
) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-signalCh
		log.Printf("Received signal: %s, finishing in-flight documents", sig)
		cancel()
	}()

	var err error
	switch cfg.Mode {
	case config.ModeCrawl:
		_, err = crawl(ctx, cfg, portal, true)
	case config.ModeExtract:
		err = extract(ctx, cfg, miner)
	case config.ModeRun:
		err = run(ctx, cfg, miner, portal)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", cfg.Mode, err)
	}
}

// crawl collects announcement metadata; when writeCSV is set the list
// is also saved to the output directory.
func crawl(ctx context.Context, cfg *config.Config, portal *cninfo.Client, writeCSV bool) ([]filing.Document, error) {
	start, _ := time.Parse("2006-01-02", cfg.StartDate)
	end, _ := time.Parse("2006-01-02", cfg.EndDate)

	log.Printf("Crawling %s announcements %s ~ %s", cfg.ReportType, cfg.StartDate, cfg.EndDate)
	docs, err := portal.Collect(ctx, cninfo.CollectRequest{
		Start:      start,
		End:        end,
		ReportType: cfg.ReportType,
		Columns:    cfg.Exchanges,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("Collected %d announcements", len(docs))

	if writeCSV {
		name := report.AnnouncementsCSVName(cfg.StartDate, cfg.EndDate, cfg.ReportType, time.Now())
		path := filepath.Join(cfg.OutputDir, name)
		if err := report.WriteAnnouncementsCSV(path, docs); err != nil {
			return nil, err
		}
		log.Printf("Wrote %s", path)
	}
	return docs, nil
}

// extract mines documents from a crawled CSV or a directory of PDFs.
func extract(ctx context.Context, cfg *config.Config, miner *mining.Service) error {
	if cfg.InputCSV != "" {
		docs, err := report.ReadDocumentsCSV(cfg.InputCSV)
		if err != nil {
			return err
		}
		log.Printf("Loaded %d documents from %s", len(docs), cfg.InputCSV)
		return mineBatch(ctx, cfg, miner, docs)
	}

	result, err := miner.ScanDirectory(mining.ScanDirectoryRequest{Directory: cfg.PDFDirectory})
	if err != nil {
		return err
	}
	log.Printf("Scanned %d PDFs in %s", len(result.Files), result.Directory)
	return writeOutputs(cfg, result.Records, result.WideRows)
}

// run crawls and then mines the collected documents.
func run(ctx context.Context, cfg *config.Config, miner *mining.Service, portal *cninfo.Client) error {
	docs, err := crawl(ctx, cfg, portal, true)
	if err != nil {
		return err
	}
	return mineBatch(ctx, cfg, miner, docs)
}

// mineBatch fetches and mines docs through the worker pool, then writes
// the Excel outputs.
func mineBatch(ctx context.Context, cfg *config.Config, miner *mining.Service, docs []filing.Document) error {
	saveDir := ""
	if cfg.DownloadPDFs {
		saveDir = cfg.PDFDirectory
	}
	fetcher := fetch.New(cfg.FetchTimeout, cfg.MaxFileSize, saveDir)

	orchestrator := pipeline.New(fetcher, miner.Engine(), pipeline.Options{
		Workers:      cfg.Workers,
		FetchTimeout: cfg.FetchTimeout,
		ProgressPath: cfg.ProgressFile,
	})
	batch, err := orchestrator.Run(ctx, docs)
	if err != nil {
		return err
	}

	stats := orchestrator.Stats()
	log.Printf("Batch %s: processed=%d skipped=%d fetch_failed=%d mine_failed=%d panics=%d hits=%d",
		batch.RunID, stats.Processed, stats.Skipped, stats.FetchFailed,
		stats.MineFailed, stats.Panics, stats.Hits)

	if err := writeOutputs(cfg, batch.Long, batch.Wide); err != nil {
		return err
	}
	return pipeline.Clear(cfg.ProgressFile)
}

// writeOutputs saves the long and wide workbooks to the output
// directory.
func writeOutputs(cfg *config.Config, long []filing.CanonicalRecord, wide []filing.WideRow) error {
	now := time.Now()

	longPath := filepath.Join(cfg.OutputDir, report.LongOutputName(now))
	if err := report.WriteLongExcel(longPath, long); err != nil {
		return err
	}
	log.Printf("Wrote %s", longPath)

	widePath := filepath.Join(cfg.OutputDir, report.WideOutputName(now))
	if err := report.WriteWideExcel(widePath, wide); err != nil {
		return err
	}
	log.Printf("Wrote %s", widePath)
	return nil
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("Datares Miner\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
