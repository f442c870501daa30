package mcp

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/finmine/datares/internal/cninfo"
	"github.com/finmine/datares/internal/config"
	"github.com/finmine/datares/internal/descriptions"
	"github.com/finmine/datares/internal/filing"
	"github.com/finmine/datares/internal/mining"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	miner     *mining.Service
	portal    *cninfo.Client
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, miner *mining.Service, portal *cninfo.Client) (*Server, error) {
	if miner == nil {
		return nil, fmt.Errorf("miner cannot be nil")
	}
	if portal == nil {
		return nil, fmt.Errorf("portal client cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		miner:     miner,
		portal:    portal,
		mcpServer: mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	scanFileTool := mcp.NewTool(
		"datares_scan_file",
		mcp.WithDescription(descriptions.GetToolDescription("datares_scan_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the financial-report PDF"),
		),
	)
	s.mcpServer.AddTool(scanFileTool, s.handleScanFile)

	scanDirectoryTool := mcp.NewTool(
		"datares_scan_directory",
		mcp.WithDescription(descriptions.GetToolDescription("datares_scan_directory")),
		mcp.WithString("directory",
			mcp.Description("Directory holding report PDFs (uses the configured PDF directory if empty)"),
		),
	)
	s.mcpServer.AddTool(scanDirectoryTool, s.handleScanDirectory)

	queryAnnouncementsTool := mcp.NewTool(
		"datares_query_announcements",
		mcp.WithDescription(descriptions.GetToolDescription("datares_query_announcements")),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Window start date, YYYY-MM-DD inclusive"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Window end date, YYYY-MM-DD inclusive"),
		),
		mcp.WithString("reporttype",
			mcp.Description("Report type key: yjdbg, bndbg, sjdbg or ndbg (uses the configured default if empty)"),
		),
		mcp.WithString("exchange",
			mcp.Description("Single portal column to query: sse, szse, bj, neeq or star (all when empty)"),
		),
	)
	s.mcpServer.AddTool(queryAnnouncementsTool, s.handleQueryAnnouncements)

	serverInfoTool := mcp.NewTool(
		"datares_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("datares_server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleScanFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.miner.ScanFile(mining.ScanFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatScanFileResult(result)), nil
}

func (s *Server) handleScanDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.PDFDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}
	if directory == "" {
		return mcp.NewToolResultError("no directory given and no PDF directory configured"), nil
	}

	result, err := s.miner.ScanDirectory(mining.ScanDirectoryRequest{Directory: directory})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatScanDirectoryResult(result)), nil
}

func (s *Server) handleQueryAnnouncements(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	startArg, err := request.RequireString("start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	endArg, err := request.RequireString("end")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start, err := time.Parse("2006-01-02", startArg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid start date %q: %v", startArg, err)), nil
	}
	end, err := time.Parse("2006-01-02", endArg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid end date %q: %v", endArg, err)), nil
	}

	args := request.GetArguments()
	reportType := s.config.ReportType
	if rt, ok := args["reporttype"].(string); ok && rt != "" {
		reportType = rt
	}
	var columns []string
	if col, ok := args["exchange"].(string); ok && col != "" {
		if _, known := cninfo.ExchangeByColumn(col); !known {
			return mcp.NewToolResultError(fmt.Sprintf("unknown exchange column: %s", col)), nil
		}
		columns = []string{col}
	}

	docs, err := s.portal.Collect(ctx, cninfo.CollectRequest{
		Start:      start,
		End:        end,
		ReportType: reportType,
		Columns:    columns,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatAnnouncements(startArg, endArg, reportType, docs)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.formatServerInfo()), nil
}

// Formatting methods
func (s *Server) formatScanFileResult(result *mining.ScanFileResult) string {
	res := result.Result
	text := fmt.Sprintf("Scanned: %s\n", result.Path)
	if res.Document.CompanyName != "" {
		text += fmt.Sprintf("Company: %s\n", res.Document.CompanyName)
	}
	text += fmt.Sprintf("Report: %s\n", res.Document.ReportTitle)
	if res.Document.ReportDate != "" {
		text += fmt.Sprintf("Date: %s\n", res.Document.ReportDate)
	}
	text += fmt.Sprintf("Pages: %d\n", res.Pages)
	if res.FailedPages > 0 {
		text += fmt.Sprintf("Unreadable pages: %d\n", res.FailedPages)
	}
	text += fmt.Sprintf("Keyword present: %t\n", res.KeywordSeen)
	if res.Err != nil {
		text += fmt.Sprintf("Degraded: %v\n", res.Err)
	}

	text += "\nData-resource values:\n"
	for _, record := range res.Records {
		text += fmt.Sprintf("  %s: %s\n", record.Category.Label(), record.Value)
	}

	if len(res.Hits) > 0 {
		text += "\nHits:\n"
		for i, hit := range res.Hits {
			text += fmt.Sprintf("  %d. page %d, %s under %s: %s\n",
				i+1, hit.Page, hit.Method, hit.Category.Label(), hit.RawValue)
		}
	}
	return text
}

func (s *Server) formatScanDirectoryResult(result *mining.ScanDirectoryResult) string {
	text := fmt.Sprintf("Scanned %d PDF file(s) in directory: %s\n", len(result.Files), result.Directory)

	var withKeyword int
	for _, res := range result.Results {
		if res.KeywordSeen {
			withKeyword++
		}
	}
	text += fmt.Sprintf("Documents mentioning 数据资源: %d\n", withKeyword)

	if len(result.WideRows) > 0 {
		text += "\nResults:\n"
		for i, row := range result.WideRows {
			name := row.CompanyName
			if name == "" {
				name = row.ReportTitle
			}
			text += fmt.Sprintf("%d. %s", i+1, name)
			if row.SecurityCode != "" {
				text += fmt.Sprintf(" (%s)", row.SecurityCode)
			}
			text += "\n"
			for _, category := range filing.Categories() {
				text += fmt.Sprintf("   %s: %s\n", category.Label(), row.Value(category))
			}
		}
	}
	return text
}

func (s *Server) formatAnnouncements(start, end, reportType string, docs []filing.Document) string {
	label := reportType
	if rt, ok := cninfo.ReportTypes[reportType]; ok {
		label = rt.Label
	}
	text := fmt.Sprintf("Found %d announcement(s) for %s between %s and %s\n", len(docs), label, start, end)

	for i, doc := range docs {
		text += fmt.Sprintf("\n%d. %s (%s)\n", i+1, doc.CompanyName, doc.SecurityCode)
		text += fmt.Sprintf("   Title: %s\n", doc.ReportTitle)
		text += fmt.Sprintf("   Date: %s\n", doc.ReportDate)
		text += fmt.Sprintf("   PDF: %s\n", doc.SourceURL)
	}
	return text
}

func (s *Server) formatServerInfo() string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	if s.config.PDFDirectory != "" {
		text += fmt.Sprintf("📁 PDF Directory: %s\n", s.config.PDFDirectory)
	}
	text += fmt.Sprintf("🔍 Scanning Strategy: %s\n", s.config.Strategy)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", s.config.MaxFileSize/(1024*1024))

	text += "\n🛠️  Available Tools:\n"
	for _, name := range []string{
		"datares_scan_file", "datares_scan_directory",
		"datares_query_announcements", "datares_server_info",
	} {
		text += fmt.Sprintf("\n• %s\n%s\n", name, descriptions.GetToolDescription(name))
	}

	text += "\n📑 Report Types:\n"
	for key, rt := range cninfo.ReportTypes {
		text += fmt.Sprintf("  • %s: %s\n", key, rt.Label)
	}

	text += "\n🏛️  Exchanges:\n"
	for _, ex := range cninfo.Exchanges {
		text += fmt.Sprintf("  • %s: %s\n", ex.Column, ex.Name)
	}
	return text
}

// Run starts the MCP server on standard I/O.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting datares MCP server in stdio mode")
		if s.config.PDFDirectory != "" {
			log.Printf("PDF directory: %s", s.config.PDFDirectory)
		}
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
