package excel_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/excel"
)

func templateRecord(overrides map[string]string) domain.ReconciledRecord {
	fm := domain.NewTemplateFieldMap()
	for k, v := range overrides {
		fm[k] = v
	}
	return domain.ReconciledRecord{Fields: fm, MissingFields: fm.MissingFields()}
}

func TestPopulateWritesRecords(t *testing.T) {
	template := buildWorkbook(t, [][]string{
		{"First Name", "Last Name", "Passport No", "Unified No", "Visa File Number"},
	})

	records := []domain.ReconciledRecord{
		templateRecord(map[string]string{
			"first_name":       "John",
			"last_name":        "Smith",
			"passport_no":      "A1234567",
			"unified_no":       "2401234567",
			"visa_file_number": "201/2023/1234567",
		}),
		templateRecord(map[string]string{
			"first_name": "Jane",
		}),
	}

	out, err := excel.Populate(template, records)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	get := func(cell string) string {
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "John", get("A2"))
	assert.Equal(t, "Smith", get("B2"))
	assert.Equal(t, "A1234567", get("C2"))
	assert.Equal(t, "2401234567", get("D2"))
	assert.Equal(t, "201/2023/1234567", get("E2"))

	// The second record's unfilled cells carry the sentinel through.
	assert.Equal(t, "Jane", get("A3"))
	assert.Equal(t, domain.MissingValue, get("B3"))
}

func TestPopulateRejectsUnrecognisableTemplate(t *testing.T) {
	template := buildWorkbook(t, [][]string{
		{"Quarterly Revenue", "Region Code"},
	})

	_, err := excel.Populate(template, []domain.ReconciledRecord{templateRecord(nil)})
	assert.ErrorIs(t, err, domain.ErrTemplateInvalid)
}

func TestPopulateRejectsGarbage(t *testing.T) {
	_, err := excel.Populate([]byte("junk"), nil)
	assert.ErrorIs(t, err, domain.ErrTemplateInvalid)
}
