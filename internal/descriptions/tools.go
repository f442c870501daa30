package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	ScanFileDescription = `Mine a single financial-report PDF for disclosed data-resource values.

**When to use:** You have a report PDF on disk and want the 数据资源 amounts disclosed under 存货, 无形资产 and 开发支出.

**Why it's useful:** Finds the 其中：数据资源 sub-item wherever it appears in balance-sheet tables, resolves the parent category from the surrounding rows, and returns exactly one value per category (zero when undisclosed).

**Examples:**
• Single report check: "Scan 中国移动：2024年年度报告_[2025-03-20].pdf for data-resource disclosures"
• Spot verification: "Confirm whether annual-report.pdf discloses data resources under 无形资产"

**Common workflows:**
1. Spot Check: Scan one report → Review the three category values → Compare against prior periods
2. Debugging: Scan a report that failed in a batch → Inspect per-page hits → Adjust the strategy

**Best practices:** Use strategy 'table+text' when a report renders its balance sheet as flowing text instead of extractable tables.`

	ScanDirectoryDescription = `Mine every financial-report PDF in a directory and aggregate the results.

**When to use:** A directory holds downloaded report PDFs (for example from a previous crawl) and you want reconciled results for all of them.

**Why it's useful:** Walks the directory, recovers company name, report title and date from the saved file names, mines each PDF, and returns both long-format records and one wide row per document.

**Examples:**
• Batch analysis: "Scan /data/pdfs/ and list every company disclosing data resources"
• Re-run after tuning: "Re-scan the 2024 annual reports with strategy table+text"

**Common workflows:**
1. Offline Batch: Download PDFs once → Scan the directory → Export results for analysis
2. Incremental Review: Add new PDFs to the directory → Re-scan → Diff against the previous batch

**Best practices:** Keep the crawler's file naming (公司名称：报告名称_[YYYY-MM-DD].pdf) so document metadata survives the round trip.`

	QueryAnnouncementsDescription = `Query the cninfo disclosure portal for report announcements in a date window.

**When to use:** You need the list of periodic-report filings (title, security code, date, PDF link) before deciding what to mine.

**Why it's useful:** Handles the portal's pagination and retry quirks, deduplicates announcements, filters out 摘要 and English editions, and normalizes security codes to exchange-suffixed form.

**Examples:**
• Window survey: "List annual-report announcements between 2025-01-01 and 2025-04-30"
• Targeted crawl: "Find 半年报 filings on the STAR market for August 2025"

**Common workflows:**
1. Crawl Planning: Query a window → Review the filing count → Launch the batch extraction
2. Monitoring: Query yesterday's window daily → Alert on new filings of tracked companies

**Best practices:** Keep windows short (days, not months) for fast responses; the portal serves 30 records per page.`

	ServerInfoDescription = `Get server status, configuration and available tools.

**When to use:** Starting a session, troubleshooting, or checking which strategies and report types this server supports.

**Why it's useful:** Reports the server version, configured scanning strategy, PDF directory, and the report-type and exchange vocabularies accepted by the other tools.

**Examples:**
• Session startup: "Check the server is ready and which PDF directory it scans"
• Capability discovery: "List the report-type keys accepted by datares_query_announcements"

**Common workflows:**
1. Session Startup: Check server info → Verify configuration → Plan the mining session
2. Debugging: Review configured directories → Check tool availability → Diagnose empty results

**Best practices:** Run at the start of sessions to confirm directories and strategy before batch work.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"datares_scan_file":           ScanFileDescription,
	"datares_scan_directory":      ScanDirectoryDescription,
	"datares_query_announcements": QueryAnnouncementsDescription,
	"datares_server_info":         ServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
