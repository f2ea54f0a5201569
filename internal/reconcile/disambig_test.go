package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/reconcile"
)

func visaMap(overrides map[string]string) domain.FieldMap {
	fm := domain.NewFieldMap(domain.DocTypeVisa)
	for k, v := range overrides {
		fm[k] = v
	}
	return fm
}

func TestResolveSwapsCrossedIdentifiers(t *testing.T) {
	fm := visaMap(map[string]string{
		"unified_no":       "201/2023/1234567",
		"visa_file_number": "2401234567",
	})
	reconcile.ResolveUnifiedFileConfusion(fm)
	assert.Equal(t, "2401234567", fm["unified_no"])
	assert.Equal(t, "201/2023/1234567", fm["visa_file_number"])
}

func TestResolveMovesFileShapedUnified(t *testing.T) {
	fm := visaMap(map[string]string{
		"unified_no": "101/2024/7654321",
	})
	reconcile.ResolveUnifiedFileConfusion(fm)
	assert.Equal(t, "101/2024/7654321", fm["visa_file_number"])
	assert.Equal(t, domain.MissingValue, fm["unified_no"])
}

func TestResolveStripsSeparatorsFromUnified(t *testing.T) {
	fm := visaMap(map[string]string{
		"unified_no": "240-123-4567",
	})
	reconcile.ResolveUnifiedFileConfusion(fm)
	assert.Equal(t, "2401234567", fm["unified_no"])
}

func TestResolveRescuesUnifiedFromOtherField(t *testing.T) {
	fm := visaMap(map[string]string{
		"file": "98765432",
	})
	reconcile.ResolveUnifiedFileConfusion(fm)
	assert.Equal(t, "98765432", fm["unified_no"])
}

func TestResolveClearsBareDigitsInFileSlot(t *testing.T) {
	fm := visaMap(map[string]string{
		"visa_file_number": "2401234567",
	})
	reconcile.ResolveUnifiedFileConfusion(fm)
	assert.Equal(t, "2401234567", fm["unified_no"])
	assert.Equal(t, domain.MissingValue, fm["visa_file_number"])
}

func TestResolveClearsUnifiedEqualToStrippedFileNumber(t *testing.T) {
	fm := visaMap(map[string]string{
		"visa_file_number": "201/2023/1234567",
		"unified_no":       "20120231234567",
	})
	reconcile.ResolveUnifiedFileConfusion(fm)
	assert.Equal(t, domain.MissingValue, fm["unified_no"])
	assert.Equal(t, "201/2023/1234567", fm["visa_file_number"])
}

func TestResolveReplacesDuplicatedUnifiedFromOtherField(t *testing.T) {
	fm := visaMap(map[string]string{
		"visa_file_number": "201/2023/1234567",
		"unified_no":       "20120231234567",
		"entry_permit_no":  "98765432",
	})
	reconcile.ResolveUnifiedFileConfusion(fm)
	assert.Equal(t, "98765432", fm["unified_no"])
	assert.Equal(t, "201/2023/1234567", fm["visa_file_number"])
}

func TestResolveResetsUnifiedWithTooFewDigits(t *testing.T) {
	fm := visaMap(map[string]string{
		"unified_no": "12-34-56",
	})
	reconcile.ResolveUnifiedFileConfusion(fm)
	assert.Equal(t, domain.MissingValue, fm["unified_no"])
}

func TestResolveRescuesFromAnyOtherField(t *testing.T) {
	fm := visaMap(map[string]string{
		"uid": "2401234567",
	})
	reconcile.ResolveUnifiedFileConfusion(fm)
	assert.Equal(t, "2401234567", fm["unified_no"])
}

func TestResolveLeavesCorrectValuesAlone(t *testing.T) {
	fm := visaMap(map[string]string{
		"unified_no":       "2401234567",
		"visa_file_number": "201/2023/1234567",
	})
	reconcile.ResolveUnifiedFileConfusion(fm)
	assert.Equal(t, "2401234567", fm["unified_no"])
	assert.Equal(t, "201/2023/1234567", fm["visa_file_number"])
}

func TestResolveIdempotent(t *testing.T) {
	fm := visaMap(map[string]string{
		"unified_no":       "201/2023/1234567",
		"visa_file_number": "2401234567",
	})
	reconcile.ResolveUnifiedFileConfusion(fm)
	snapshot := fm.Clone()
	reconcile.ResolveUnifiedFileConfusion(fm)
	assert.Equal(t, snapshot, fm)
}
