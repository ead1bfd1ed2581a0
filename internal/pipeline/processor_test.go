package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reisekosten/reisekosten/constants"
	"github.com/reisekosten/reisekosten/internal/entity"
	"github.com/reisekosten/reisekosten/internal/parser"
)

type fakeReceiptRepo struct {
	byID    map[uuid.UUID]*entity.Receipt
	applied *entity.Receipt
}

func (f *fakeReceiptRepo) Create(context.Context, *entity.Receipt) error { return nil }
func (f *fakeReceiptRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Receipt, error) {
	if rc, ok := f.byID[id]; ok {
		return rc, nil
	}
	return nil, errors.New("not found")
}
func (f *fakeReceiptRepo) ListByTravel(context.Context, uuid.UUID) ([]*entity.Receipt, error) {
	return nil, nil
}
func (f *fakeReceiptRepo) Update(context.Context, *entity.Receipt) error { return nil }
func (f *fakeReceiptRepo) ApplyParseResult(_ context.Context, rc *entity.Receipt) error {
	f.applied = rc
	return nil
}
func (f *fakeReceiptRepo) SetVerified(context.Context, uuid.UUID, bool) error { return nil }
func (f *fakeReceiptRepo) Delete(context.Context, uuid.UUID) error            { return nil }

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractText(context.Context, string, string) (string, error) {
	return s.text, s.err
}

const hotelText = `HOTEL BERLIN

Datum: 15.01.2024
Rechnung Nr: 2024-001234

Gesamt: 101,51
MwSt. 19%: 14,01

Bezahlt mit Kreditkarte`

func newTestReceipt() (*fakeReceiptRepo, uuid.UUID) {
	id := uuid.New()
	path := "/tmp/receipt.pdf"
	mime := "application/pdf"
	repo := &fakeReceiptRepo{byID: map[uuid.UUID]*entity.Receipt{
		id: {ID: id, TravelID: uuid.New(), FilePath: &path, MimeType: &mime},
	}}
	return repo, id
}

func TestProcessParsedReceipt(t *testing.T) {
	repo, id := newTestReceipt()
	svc := parser.NewService(&stubExtractor{text: hotelText}, nil)
	p := NewProcessor(repo, svc, 50, nil)

	require.NoError(t, p.Process(context.Background(), id))

	rc := repo.applied
	require.NotNil(t, rc)
	require.NotNil(t, rc.ParsingStatus)
	assert.Equal(t, constants.ParsingStatusParsed, *rc.ParsingStatus)
	require.NotNil(t, rc.Amount)
	assert.Equal(t, "101.51", rc.Amount.StringFixed(2))
	require.NotNil(t, rc.Category)
	assert.Equal(t, constants.CategoryLodging, *rc.Category)
	require.NotNil(t, rc.Currency)
	assert.Equal(t, "EUR", *rc.Currency)
	require.NotNil(t, rc.ParsedAt)
	assert.NotEmpty(t, rc.ExtractedJSON)
}

func TestProcessLowConfidenceGoesManual(t *testing.T) {
	repo, id := newTestReceipt()
	// Only a merchant line: 30 base + 20 merchant = 50, below threshold 60.
	svc := parser.NewService(&stubExtractor{text: "Schmidt GmbH"}, nil)
	p := NewProcessor(repo, svc, 60, nil)

	require.NoError(t, p.Process(context.Background(), id))

	require.NotNil(t, repo.applied)
	require.NotNil(t, repo.applied.ParsingStatus)
	assert.Equal(t, constants.ParsingStatusManual, *repo.applied.ParsingStatus)
}

func TestProcessExtractionFailureGoesFailed(t *testing.T) {
	repo, id := newTestReceipt()
	svc := parser.NewService(&stubExtractor{err: errors.New("pdftotext: exit status 1")}, nil)
	p := NewProcessor(repo, svc, 50, nil)

	require.NoError(t, p.Process(context.Background(), id))

	rc := repo.applied
	require.NotNil(t, rc)
	require.NotNil(t, rc.ParsingStatus)
	assert.Equal(t, constants.ParsingStatusFailed, *rc.ParsingStatus)
	assert.Nil(t, rc.Amount)
	require.NotNil(t, rc.OCRText)
	assert.Contains(t, *rc.OCRText, "Parsing failed:")
}

func TestProcessSkipsVerifiedReceipt(t *testing.T) {
	repo, id := newTestReceipt()
	repo.byID[id].Verified = true
	svc := parser.NewService(&stubExtractor{text: hotelText}, nil)
	p := NewProcessor(repo, svc, 50, nil)

	require.NoError(t, p.Process(context.Background(), id))
	assert.Nil(t, repo.applied)
}

func TestProcessUnknownReceipt(t *testing.T) {
	repo := &fakeReceiptRepo{byID: map[uuid.UUID]*entity.Receipt{}}
	svc := parser.NewService(&stubExtractor{text: hotelText}, nil)
	p := NewProcessor(repo, svc, 50, nil)

	assert.Error(t, p.Process(context.Background(), uuid.New()))
}
