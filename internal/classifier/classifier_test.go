package classifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/classifier"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
)

const passportText = `REPUBLIC OF EXAMPLAND
PASSPORT
Passport No A1234567
Surname SMITH Given Names JOHN ROBERT
Nationality EXAMPLANDER Date of Birth 12/01/1990
P<EXASMITH<<JOHN<ROBERT<<<<<<<<<<<<<<<<<<<<<`

const emiratesIDText = `UNITED ARAB EMIRATES FEDERAL AUTHORITY FOR IDENTITY ID CARD
ID Number 784-1990-1234567-1
Name JOHN ROBERT SMITH
Resident Identity Card`

const visaText = `UNITED ARAB EMIRATES
ENTRY PERMIT RESIDENCE VISA
Permit No 201/2023/1234567
U.I.D No 2401234567
Sponsor Name ACME TRADING LLC`

func TestClassifyByContent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.DocumentType
	}{
		{"passport", passportText, domain.DocTypePassport},
		{"emirates id", emiratesIDText, domain.DocTypeEmiratesID},
		{"visa", visaText, domain.DocTypeVisa},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := classifier.Classify(tt.text, "scan_001.jpg")
			assert.Equal(t, tt.want, res.Type)
			assert.GreaterOrEqual(t, res.Confidence, 0.5)
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	first := classifier.Classify(visaText, "scan.jpg")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, classifier.Classify(visaText, "scan.jpg"))
	}
}

func TestClassifyFallsBackToFilename(t *testing.T) {
	res := classifier.Classify("completely unrelated text", "john_passport.jpg")
	assert.Equal(t, domain.DocTypePassport, res.Type)

	res = classifier.Classify("", "eid_front.png")
	assert.Equal(t, domain.DocTypeEmiratesID, res.Type)

	res = classifier.Classify("", "residence_visa.pdf")
	assert.Equal(t, domain.DocTypeVisa, res.Type)
}

func TestClassifyExcelByExtension(t *testing.T) {
	res := classifier.Classify("", "members.xlsx")
	assert.Equal(t, domain.DocTypeExcel, res.Type)
}

func TestClassifyUnknownNeverErrors(t *testing.T) {
	res := classifier.Classify("no document vocabulary here", "scan_001.jpg")
	assert.Equal(t, domain.DocTypeUnknown, res.Type)
	assert.Less(t, res.Confidence, 0.5)

	res = classifier.Classify("", "")
	assert.Equal(t, domain.DocTypeUnknown, res.Type)
}
