package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cards-extractor/constants"
	"github.com/joseph-ayodele/cards-extractor/internal/common"
	"github.com/joseph-ayodele/cards-extractor/internal/core"
	"github.com/joseph-ayodele/cards-extractor/internal/entity"
)

func record(t *testing.T, first, phone string) entity.CardRecord {
	t.Helper()
	values := map[constants.FieldName]string{}
	for _, f := range constants.Fields() {
		values[f] = constants.NotAvailable
	}
	values[constants.FirstName] = first
	values[constants.Phone] = phone
	values[constants.Mobile] = "+"
	r, err := entity.NewCardRecord(values)
	require.NoError(t, err)
	return r
}

func writeRun(t *testing.T, sink core.OutputSink, names ...string) {
	t.Helper()
	require.NoError(t, sink.WriteHeader(constants.AsStringSlice()))
	for _, n := range names {
		require.NoError(t, sink.Append(record(t, n, "+15551234567")))
	}
	require.NoError(t, sink.Close())
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVSinkAppendsWithoutReheading(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.csv")

	first, err := Open(path, common.OutputModeAppend, nil)
	require.NoError(t, err)
	writeRun(t, first, "Jane", "John")

	second, err := Open(path, "", nil)
	require.NoError(t, err)
	writeRun(t, second, "Ada")

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	require.Equal(t, constants.AsStringSlice(), rows[0])
	require.Equal(t, "Jane", rows[1][0])
	require.Equal(t, "+15551234567", rows[1][4])
	require.Equal(t, "+", rows[1][5])
	require.Equal(t, "Ada", rows[3][0])
	for _, r := range rows {
		require.Len(t, r, constants.FieldCount())
	}
}

func TestCSVSinkOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.csv")

	first, err := Open(path, common.OutputModeAppend, nil)
	require.NoError(t, err)
	writeRun(t, first, "Jane", "John")

	second, err := Open(path, common.OutputModeOverwrite, nil)
	require.NoError(t, err)
	writeRun(t, second, "Ada")

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	require.Equal(t, constants.AsStringSlice(), rows[0])
	require.Equal(t, "Ada", rows[1][0])
}

func TestCSVSinkQuotesAddresses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.csv")
	sink, err := NewCSVSink(path, common.OutputModeAppend, nil)
	require.NoError(t, err)

	values := map[constants.FieldName]string{}
	for _, f := range constants.Fields() {
		values[f] = "x"
	}
	values[constants.Address] = "1 Main St, Springfield\n\"Suite 5\""
	r, err := entity.NewCardRecord(values)
	require.NoError(t, err)
	require.NoError(t, sink.Append(r))
	require.NoError(t, sink.Close())

	rows := readCSV(t, path)
	require.Equal(t, values[constants.Address], rows[0][9])
}

func TestXLSXSinkAppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.xlsx")

	first, err := Open(path, common.OutputModeAppend, nil)
	require.NoError(t, err)
	require.IsType(t, &XLSXSink{}, first)
	writeRun(t, first, "Jane")

	second, err := Open(path, common.OutputModeAppend, nil)
	require.NoError(t, err)
	writeRun(t, second, "Ada")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(CardsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, constants.AsStringSlice(), rows[0])
	require.Equal(t, "Jane", rows[1][0])
	require.Equal(t, "+15551234567", rows[1][4])
	require.Equal(t, "Ada", rows[2][0])
}

func TestXLSXSinkOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.xlsx")

	first, err := NewXLSXSink(path, common.OutputModeAppend, nil)
	require.NoError(t, err)
	writeRun(t, first, "Jane", "John")

	second, err := NewXLSXSink(path, common.OutputModeOverwrite, nil)
	require.NoError(t, err)
	writeRun(t, second, "Ada")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(CardsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, f.GetSheetList(), []string{CardsSheet})
}

func TestOpenRejectsBadInput(t *testing.T) {
	_, err := Open("", common.OutputModeAppend, nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = Open(filepath.Join(t.TempDir(), "x.csv"), "merge", nil)
	require.ErrorIs(t, err, common.ErrInvalidInput)
}
