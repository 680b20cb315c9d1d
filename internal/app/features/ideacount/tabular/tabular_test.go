package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV_Basic(t *testing.T) {
	in := "code,pre_registration,vos_completed,group_formation,idea_submissions\n" +
		"ORG1,1,2,3,4\n" +
		"ORG2, 5 ,6,7,8\n"

	b, err := ParseCSV(strings.NewReader(in), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"code", "pre_registration", "vos_completed", "group_formation", "idea_submissions"}, b.Columns)
	require.Len(t, b.Rows, 2)
	assert.Equal(t, "ORG1", b.Rows[0].Get("code"))
	assert.Equal(t, 2, b.Rows[0].Line)
	assert.Equal(t, "5", b.Rows[1].Get("pre_registration"))
	assert.Equal(t, 3, b.Rows[1].Line)
}

func TestParseCSV_HeaderNormalization(t *testing.T) {
	in := "\ufeff Code ,IDEA_Submissions,,code\nA,1,x,B\n"

	b, err := ParseCSV(strings.NewReader(in), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"code", "idea_submissions"}, b.Columns)
	assert.True(t, b.HasColumn("code"))
	assert.False(t, b.HasColumn("Code"))
	require.Len(t, b.Rows, 1)
	assert.Equal(t, "A", b.Rows[0].Get("code"), "first duplicate header wins")
}

func TestParseCSV_RaggedRows(t *testing.T) {
	in := "code,a,b\nX\nY,1,2,3,4\n"

	b, err := ParseCSV(strings.NewReader(in), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, b.Rows, 2)

	assert.Equal(t, "X", b.Rows[0].Get("code"))
	assert.Equal(t, "", b.Rows[0].Get("b"))
	assert.Equal(t, "2", b.Rows[1].Get("b"))
	assert.Len(t, b.Rows[1].Values, 3)
}

func TestParseCSV_EmptyRows(t *testing.T) {
	in := "code,a\n,\nX,1\n"

	b, err := ParseCSV(strings.NewReader(in), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, b.Rows, 2)
	assert.True(t, b.Rows[0].IsEmpty())
	assert.False(t, b.Rows[1].IsEmpty())
}

func TestParseCSV_EmptyFile(t *testing.T) {
	b, err := ParseCSV(strings.NewReader(""), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, b.Columns)
	assert.Empty(t, b.Rows)
}

func TestParseCSV_TooManyRows(t *testing.T) {
	in := "code\nA\nB\nC\n"

	_, err := ParseCSV(strings.NewReader(in), Options{MaxRows: 2})
	assert.True(t, errors.Is(err, ErrTooManyRows))

	b, err := ParseCSV(strings.NewReader(in), Options{})
	require.NoError(t, err)
	assert.Len(t, b.Rows, 3)
}

func TestParseCSV_Malformed(t *testing.T) {
	in := "code,a\n\"unterminated,1\n"
	_, err := ParseCSV(strings.NewReader(in), DefaultOptions())
	assert.Error(t, err)
}

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := r
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseXLSX_MatchesCSV(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Code", "pre_registration", "vos_completed", "group_formation", "idea_submissions"},
		{"ORG1", 1, 2, 3, 4},
		{"ORG2", 5, 6, 7, 8},
	})

	x, err := Parse("counts.xlsx", buf, DefaultOptions())
	require.NoError(t, err)

	c, err := Parse("counts.csv", strings.NewReader(
		"code,pre_registration,vos_completed,group_formation,idea_submissions\nORG1,1,2,3,4\nORG2,5,6,7,8\n",
	), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, c.Columns, x.Columns)
	require.Len(t, x.Rows, len(c.Rows))
	for i := range c.Rows {
		assert.Equal(t, c.Rows[i].Values, x.Rows[i].Values)
		assert.Equal(t, c.Rows[i].Line, x.Rows[i].Line)
	}
}

func TestParse_RejectsLegacyExcel(t *testing.T) {
	_, err := Parse("counts.XLS", strings.NewReader("whatever"), DefaultOptions())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParseXLSX_NotAWorkbook(t *testing.T) {
	_, err := Parse("counts.xlsx", strings.NewReader("code,a\n"), DefaultOptions())
	assert.Error(t, err)
}
