package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/finmine/datares/internal/filing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRecords() []filing.CanonicalRecord {
	return []filing.CanonicalRecord{
		{
			SecurityCode: "600941.SH", CompanyName: "中国移动", ReportTitle: "2024年年度报告",
			ReportDate: "2025-03-20", Category: filing.Inventory, Value: "1,500,000",
			KeywordSeen: true, SourceURL: "https://static.cninfo.com.cn/a.PDF",
		},
		{
			SecurityCode: "600941.SH", CompanyName: "中国移动", ReportTitle: "2024年年度报告",
			ReportDate: "2025-03-20", Category: filing.IntangibleAssets, Value: "0",
			KeywordSeen: true, SourceURL: "https://static.cninfo.com.cn/a.PDF",
		},
		{
			SecurityCode: "600941.SH", CompanyName: "中国移动", ReportTitle: "2024年年度报告",
			ReportDate: "2025-03-20", Category: filing.DevelopmentExpenditure, Value: "0",
			KeywordSeen: true, SourceURL: "https://static.cninfo.com.cn/a.PDF",
		},
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	return rows
}

func TestWriteLongExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.xlsx")
	require.NoError(t, WriteLongExcel(path, sampleRecords()))

	rows := readRows(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, longHeaders, rows[0])
	assert.Equal(t, []string{
		"600941.SH", "中国移动", "2024年年度报告", "2025-03-20",
		"存货", "1,500,000", "1", "https://static.cninfo.com.cn/a.PDF",
	}, rows[1])
	assert.Equal(t, "无形资产", rows[2][4])
	assert.Equal(t, "0", rows[2][5])
}

func TestWriteWideExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.xlsx")
	wide := []filing.WideRow{
		{
			SecurityCode: "600941.SH", CompanyName: "中国移动", ReportTitle: "2024年年度报告",
			ReportDate:  "2025-03-20",
			Values:      map[string]string{"存货": "1,500,000"},
			KeywordSeen: true,
			SourceURL:   "https://static.cninfo.com.cn/a.PDF",
		},
		{
			SecurityCode: "000001.SZ", CompanyName: "平安银行", ReportTitle: "2024年年度报告",
			ReportDate: "2025-03-08",
			SourceURL:  "https://static.cninfo.com.cn/b.PDF",
		},
	}
	require.NoError(t, WriteWideExcel(path, wide))

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, wideHeaders, rows[0])
	assert.Equal(t, []string{
		"600941.SH", "中国移动", "2024年年度报告", "2025-03-20",
		"1,500,000", "0", "0", "1", "https://static.cninfo.com.cn/a.PDF",
	}, rows[1])
	// A document where the phrase never appeared still gets zero columns.
	assert.Equal(t, "0", rows[2][4])
	assert.Equal(t, "0", rows[2][7])
}

func TestWriteAnnouncementsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listed.csv")
	docs := []filing.Document{
		filing.NewDocument("600941", "中国移动", "2024年年度报告", "2025-03-20",
			"https://static.cninfo.com.cn/a.PDF"),
		filing.NewDocument("000001", "平安银行", "2024年年度报告", "2025-03-08",
			"https://static.cninfo.com.cn/b.PDF"),
	}
	require.NoError(t, WriteAnnouncementsCSV(path, docs))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, utf8BOM, raw[:3], "file must start with a UTF-8 BOM")

	got, err := ReadDocumentsCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "600941.SH", got[0].SecurityCode)
	assert.Equal(t, "中国移动", got[0].CompanyName)
	assert.Equal(t, "2024年年度报告", got[0].ReportTitle)
	assert.Equal(t, "https://static.cninfo.com.cn/b.PDF", got[1].SourceURL)
}

func TestReadDocumentsCSVAlternateHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alt.csv")
	content := "证券代码,公司名称,报告名称,报告日期,PDF链接\n" +
		"688981.SH,中芯国际,2024年年度报告,2025-03-28,https://static.cninfo.com.cn/c.PDF\n" +
		",空行公司,无链接,2025-01-01,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := ReadDocumentsCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "688981.SH", got[0].SecurityCode)
	assert.Equal(t, "2024年年度报告", got[0].ReportTitle)
}

func TestReadDocumentsCSVMissingCodeColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))
	_, err := ReadDocumentsCSV(path)
	assert.Error(t, err)
}

func TestOutputNames(t *testing.T) {
	now := time.Date(2025, 8, 20, 10, 30, 5, 0, time.UTC)
	assert.Equal(t, "long_output_20250820_103005.xlsx", LongOutputName(now))
	assert.Equal(t, "wide_output_20250820_103005.xlsx", WideOutputName(now))
	assert.Equal(t,
		"listed_companies_2025-01-01_2025-06-30_年报_20250820_103005.csv",
		AnnouncementsCSVName("2025-01-01", "2025-06-30", "年报", now))
}
