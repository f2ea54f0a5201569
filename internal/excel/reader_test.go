package excel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/excel"
)

// buildWorkbook creates an in-memory xlsx from a grid of rows.
func buildWorkbook(t *testing.T, rows [][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestReadRowsMapsHeaders(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"First Name", "Last Name", "Passport No.", "EID", "DOB", "Mobile"},
		{"John", "Smith", "A1234567", "784-1990-1234567-1", "12/01/1990", "0501234567"},
	})

	rows, err := excel.ReadRows(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "John", rows[0]["first_name"])
	assert.Equal(t, "Smith", rows[0]["last_name"])
	assert.Equal(t, "A1234567", rows[0]["passport_no"])
	assert.Equal(t, "784-1990-1234567-1", rows[0]["emirates_id"])
	assert.Equal(t, "12/01/1990", rows[0]["dob"])
	assert.Equal(t, "0501234567", rows[0]["mobile_no"])
}

func TestReadRowsBlankCellsAtSentinel(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"First Name", "Last Name", "Email"},
		{"John", "", "nan"},
	})

	rows, err := excel.ReadRows(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.MissingValue, rows[0]["last_name"])
	assert.Equal(t, domain.MissingValue, rows[0]["email"])
}

func TestReadRowsSkipsEmptyRows(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"First Name"},
		{"John"},
		{""},
		{"Jane"},
	})

	rows, err := excel.ReadRows(data)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestReadRowsUnknownHeaderKept(t *testing.T) {
	data := buildWorkbook(t, [][]string{
		{"Favourite Colour"},
		{"blue"},
	})

	rows, err := excel.ReadRows(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "blue", rows[0]["favourite_colour"])
}

func TestReadRowsRejectsGarbage(t *testing.T) {
	_, err := excel.ReadRows([]byte("not an xlsx file"))
	assert.ErrorIs(t, err, domain.ErrWorkbookUnreadable)
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "passport_no", excel.NormalizeHeader(" Passport No. "))
	assert.Equal(t, "emirates_id_no", excel.NormalizeHeader("Emirates ID No:"))
	assert.Equal(t, "date_of_birth", excel.NormalizeHeader("Date of  Birth"))
}
