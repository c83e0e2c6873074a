package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/papermill/portal/internal/domain/shared"
)

func sampleTable() Table {
	day := shared.NewTimestamp(time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC))
	return Table{
		Sheet: "Cut Rolls",
		Columns: []Column{
			{Header: "Barcode"},
			{Header: "Weight (kg)", Width: 14},
			{Header: "Client"},
			{Header: "Created"},
		},
		Rows: [][]any{
			{"CR_00001", decimal.RequireFromString("512.50"), "Sharma Traders, Surat", day},
			{"CR_00002", decimal.RequireFromString("498"), "Gupta \"Paper\" Mart", shared.Timestamp{}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	f, err = ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestFilename(t *testing.T) {
	at := time.Date(2025, 3, 7, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, "cut_rolls_20250307.csv", Filename("cut_rolls", at, FormatCSV))
	assert.Equal(t, "dispatch_history_20250307.xlsx", Filename("dispatch_history", at, FormatXLSX))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, utf8BOM), "csv starts with a BOM")

	records, err := csv.NewReader(bytes.NewReader(raw[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Barcode", "Weight (kg)", "Client", "Created"}, records[0])
	assert.Equal(t, []string{"CR_00001", "512.5", "Sharma Traders, Surat", "2025-01-15 10:30"}, records[1])
	assert.Equal(t, "Gupta \"Paper\" Mart", records[2][2])
	assert.Equal(t, "", records[2][3], "zero timestamps are blank")
}

func TestWriteCSV_ShortRowsPadded(t *testing.T) {
	var buf bytes.Buffer
	tbl := Table{Columns: []Column{{Header: "A"}, {Header: "B"}}, Rows: [][]any{{1}}}
	require.NoError(t, WriteCSV(&buf, tbl))
	assert.Contains(t, buf.String(), "1,\n")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleTable()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Cut Rolls"}, f.GetSheetList())

	header, err := f.GetCellValue("Cut Rolls", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Weight (kg)", header)

	weight, err := f.GetCellValue("Cut Rolls", "B2")
	require.NoError(t, err)
	assert.Equal(t, "512.5", weight)

	width, err := f.GetColWidth("Cut Rolls", "B")
	require.NoError(t, err)
	assert.Equal(t, 14.0, width)

	styleID, err := f.GetCellStyle("Cut Rolls", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)

	panes, err := f.GetPanes("Cut Rolls")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
}

func TestWrite_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, Format("pdf"), sampleTable()))
}

func TestContentType(t *testing.T) {
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
}
