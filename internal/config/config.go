package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/finmine/datares/internal/cninfo"
	"github.com/finmine/datares/internal/mining/scan"
)

const (
	// Mode constants
	ModeCrawl   = "crawl"
	ModeExtract = "extract"
	ModeRun     = "run"
	ModeServe   = "serve"

	// Default values
	DefaultReportType   = "ndbg"
	DefaultStrategy     = string(scan.StrategyTable)
	DefaultWorkers      = 4
	DefaultFetchTimeout = 60 * time.Second
	DefaultLogLevel     = "info"
	DefaultMaxFileSize  = 100 * 1024 * 1024 // 100MB
	DefaultOutputDir    = "output"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the disclosure miner.
type Config struct {
	// Run configuration
	Mode string // "crawl", "extract", "run" or "serve"

	// Crawl configuration
	StartDate  string // YYYY-MM-DD, inclusive
	EndDate    string // YYYY-MM-DD, inclusive
	ReportType string // key into cninfo.ReportTypes
	Exchanges  []string

	// Extraction configuration
	Strategy     string
	Workers      int
	FetchTimeout time.Duration
	MaxFileSize  int64
	UnitsFile    string

	// Input/output configuration
	OutputDir    string
	PDFDirectory string // where downloaded PDFs are cached; extract mode scans it
	InputCSV     string
	DownloadPDFs bool
	ProgressFile string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode:         ModeRun,
		StartDate:    "",
		EndDate:      "",
		ReportType:   DefaultReportType,
		Exchanges:    exchangeColumns(),
		Strategy:     DefaultStrategy,
		Workers:      DefaultWorkers,
		FetchTimeout: DefaultFetchTimeout,
		MaxFileSize:  DefaultMaxFileSize,
		UnitsFile:    "",
		OutputDir:    DefaultOutputDir,
		PDFDirectory: "",
		InputCSV:     "",
		DownloadPDFs: false,
		ProgressFile: "",
		Version:      "1.0.0",
		ServerName:   "datares-miner",
		LogLevel:     DefaultLogLevel,
	}
}

func exchangeColumns() []string {
	cols := make([]string, 0, len(cninfo.Exchanges))
	for _, ex := range cninfo.Exchanges {
		cols = append(cols, ex.Column)
	}
	return cols
}

// LoadFromFlags parses command line flags and returns a configuration.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.OutputDir != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDir); err == nil {
			cfg.OutputDir = expandedPath
		}
	}
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("DATARES")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("start", cfg.StartDate)
	viper.SetDefault("end", cfg.EndDate)
	viper.SetDefault("reporttype", cfg.ReportType)
	viper.SetDefault("exchanges", cfg.Exchanges)
	viper.SetDefault("strategy", cfg.Strategy)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("fetchtimeout", cfg.FetchTimeout)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("units", cfg.UnitsFile)
	viper.SetDefault("output", cfg.OutputDir)
	viper.SetDefault("pdfdir", cfg.PDFDirectory)
	viper.SetDefault("input", cfg.InputCSV)
	viper.SetDefault("download", cfg.DownloadPDFs)
	viper.SetDefault("progress", cfg.ProgressFile)
	viper.SetDefault("loglevel", cfg.LogLevel)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode,
		"Run mode: 'crawl' metadata only, 'extract' from CSV or PDF directory, 'run' end to end, 'serve' MCP stdio")
	pflag.String("start", cfg.StartDate, "Crawl window start date (YYYY-MM-DD)")
	pflag.String("end", cfg.EndDate, "Crawl window end date (YYYY-MM-DD)")
	pflag.String("reporttype", cfg.ReportType, "Report type: yjdbg, bndbg, sjdbg or ndbg")
	pflag.StringSlice("exchanges", cfg.Exchanges, "Portal columns to crawl")
	pflag.String("strategy", cfg.Strategy, "Scanning strategy: 'table' or 'table+text'")
	pflag.Int("workers", cfg.Workers, "Concurrent document workers")
	pflag.Duration("fetchtimeout", cfg.FetchTimeout, "Per-document download timeout")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("units", cfg.UnitsFile, "YAML file with per-security unit conventions")
	pflag.String("output", cfg.OutputDir, "Directory for CSV and Excel outputs")
	pflag.String("pdfdir", cfg.PDFDirectory, "Directory holding downloaded PDFs")
	pflag.String("input", cfg.InputCSV, "Announcement CSV to extract from (extract mode)")
	pflag.Bool("download", cfg.DownloadPDFs, "Keep downloaded PDFs in the PDF directory")
	pflag.String("progress", cfg.ProgressFile, "Progress file for interrupted-run resume")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "start", "end", "reporttype", "exchanges", "strategy",
		"workers", "fetchtimeout", "maxfilesize", "units", "output",
		"pdfdir", "input", "download", "progress", "loglevel",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nDatares Miner - mines data-resource line items from cninfo disclosures\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --mode=run --start=2025-01-01 --end=2025-04-30     # crawl and extract\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=crawl --start=2025-01-01 --end=2025-04-30   # metadata CSV only\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=extract --input=listed.csv                  # extract from a crawled CSV\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=extract --pdfdir=/path/to/pdfs              # extract from local PDFs\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=serve                                       # MCP stdio server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  DATARES_MODE         Run mode\n")
		fmt.Fprintf(os.Stderr, "  DATARES_START        Crawl window start\n")
		fmt.Fprintf(os.Stderr, "  DATARES_END          Crawl window end\n")
		fmt.Fprintf(os.Stderr, "  DATARES_REPORTTYPE   Report type key\n")
		fmt.Fprintf(os.Stderr, "  DATARES_STRATEGY     Scanning strategy\n")
		fmt.Fprintf(os.Stderr, "  DATARES_WORKERS      Concurrent workers\n")
		fmt.Fprintf(os.Stderr, "  DATARES_OUTPUT       Output directory\n")
		fmt.Fprintf(os.Stderr, "  DATARES_PDFDIR       PDF directory\n")
		fmt.Fprintf(os.Stderr, "  DATARES_LOGLEVEL     Log level\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.StartDate = viper.GetString("start")
	cfg.EndDate = viper.GetString("end")
	cfg.ReportType = viper.GetString("reporttype")
	cfg.Exchanges = viper.GetStringSlice("exchanges")
	cfg.Strategy = viper.GetString("strategy")
	cfg.Workers = viper.GetInt("workers")
	cfg.FetchTimeout = viper.GetDuration("fetchtimeout")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.UnitsFile = viper.GetString("units")
	cfg.OutputDir = viper.GetString("output")
	cfg.PDFDirectory = viper.GetString("pdfdir")
	cfg.InputCSV = viper.GetString("input")
	cfg.DownloadPDFs = viper.GetBool("download")
	cfg.ProgressFile = viper.GetString("progress")
	cfg.LogLevel = viper.GetString("loglevel")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeCrawl, ModeExtract, ModeRun, ModeServe:
	default:
		return errors.New("mode must be one of 'crawl', 'extract', 'run' or 'serve'")
	}

	if c.NeedsCrawl() {
		if err := c.validateWindow(); err != nil {
			return err
		}
		if _, ok := cninfo.ReportTypes[c.ReportType]; !ok {
			return fmt.Errorf("unknown report type: %s", c.ReportType)
		}
		if len(c.Exchanges) == 0 {
			return errors.New("at least one exchange column is required")
		}
		for _, col := range c.Exchanges {
			if _, ok := cninfo.ExchangeByColumn(col); !ok {
				return fmt.Errorf("unknown exchange column: %s", col)
			}
		}
	}

	if c.Mode == ModeExtract && c.InputCSV == "" && c.PDFDirectory == "" {
		return errors.New("extract mode needs --input or --pdfdir")
	}

	if !scan.ValidStrategy(c.Strategy) {
		return fmt.Errorf("invalid strategy: %s (must be 'table' or 'table+text')", c.Strategy)
	}

	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.Mode != ModeServe {
		if c.OutputDir == "" {
			return errors.New("output directory cannot be empty")
		}
		if err := ensureDir(c.OutputDir); err != nil {
			return err
		}
	}
	if c.PDFDirectory != "" {
		if err := ensureDir(c.PDFDirectory); err != nil {
			return err
		}
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// validateWindow checks the crawl date window.
func (c *Config) validateWindow() error {
	if c.StartDate == "" || c.EndDate == "" {
		return errors.New("crawl modes need --start and --end dates")
	}
	start, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date %q: %w", c.StartDate, err)
	}
	end, err := time.Parse("2006-01-02", c.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end date %q: %w", c.EndDate, err)
	}
	if end.Before(start) {
		return errors.New("end date must not precede start date")
	}
	return nil
}

func ensureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access directory %s: %w", dir, err)
	}
	return nil
}

// NeedsCrawl reports whether the mode queries the disclosure portal.
func (c *Config) NeedsCrawl() bool {
	return c.Mode == ModeCrawl || c.Mode == ModeRun
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsServeMode returns true when running as an MCP stdio server.
func (c *Config) IsServeMode() bool {
	return c.Mode == ModeServe
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Window: %s~%s, ReportType: %s, Strategy: %s, Workers: %d, OutputDir: %s, LogLevel: %s}",
		c.Mode, c.StartDate, c.EndDate, c.ReportType, c.Strategy, c.Workers, c.OutputDir, c.LogLevel)
}
