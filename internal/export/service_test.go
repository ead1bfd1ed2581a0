package export

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/reisekosten/reisekosten/constants"
	"github.com/reisekosten/reisekosten/internal/entity"
)

type fakeTravelRepo struct {
	travel *entity.Travel
}

func (f *fakeTravelRepo) Create(context.Context, *entity.Travel) error { return nil }
func (f *fakeTravelRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Travel, error) {
	if f.travel != nil && f.travel.ID == id {
		return f.travel, nil
	}
	return nil, os.ErrNotExist
}
func (f *fakeTravelRepo) ListByEmployee(context.Context, uuid.UUID) ([]*entity.Travel, error) {
	return nil, nil
}
func (f *fakeTravelRepo) ListForController(context.Context, uuid.UUID) ([]*entity.Travel, error) {
	return nil, nil
}
func (f *fakeTravelRepo) ListAll(context.Context) ([]*entity.Travel, error) { return nil, nil }
func (f *fakeTravelRepo) Update(context.Context, *entity.Travel) error     { return nil }
func (f *fakeTravelRepo) UpdateStatus(context.Context, uuid.UUID, constants.TravelStatus) error {
	return nil
}
func (f *fakeTravelRepo) Delete(context.Context, uuid.UUID) error { return nil }

type fakeReceiptRepo struct {
	receipts []*entity.Receipt
}

func (f *fakeReceiptRepo) Create(context.Context, *entity.Receipt) error { return nil }
func (f *fakeReceiptRepo) GetByID(context.Context, uuid.UUID) (*entity.Receipt, error) {
	return nil, os.ErrNotExist
}
func (f *fakeReceiptRepo) ListByTravel(context.Context, uuid.UUID) ([]*entity.Receipt, error) {
	return f.receipts, nil
}
func (f *fakeReceiptRepo) Update(context.Context, *entity.Receipt) error           { return nil }
func (f *fakeReceiptRepo) ApplyParseResult(context.Context, *entity.Receipt) error { return nil }
func (f *fakeReceiptRepo) SetVerified(context.Context, uuid.UUID, bool) error      { return nil }
func (f *fakeReceiptRepo) Delete(context.Context, uuid.UUID) error                 { return nil }

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func catPtr(c constants.ExpenseCategory) *constants.ExpenseCategory { return &c }

func TestExportTravelXLSX(t *testing.T) {
	travelID := uuid.New()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	travels := &fakeTravelRepo{travel: &entity.Travel{
		ID:                 travelID,
		EmployeeName:       "Anna Beispiel",
		StartAt:            time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC),
		EndAt:              time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
		DestinationCity:    "Berlin",
		DestinationCountry: "Germany",
		Purpose:            "Kundentermin",
		Status:             constants.TravelStatusSubmitted,
	}}
	receipts := &fakeReceiptRepo{receipts: []*entity.Receipt{
		{
			TravelID: travelID,
			Date:     &date,
			Merchant: strPtr("Hotel Berlin"),
			Category: catPtr(constants.CategoryLodging),
			Amount:   decPtr("101.51"),
			Currency: strPtr("EUR"),
			VAT:      decPtr("14.01"),
		},
		{
			TravelID: travelID,
			Merchant: strPtr("Taxi Meyer"),
			Category: catPtr(constants.CategoryTransport),
			Amount:   decPtr("24.50"),
			Currency: strPtr("EUR"),
			Verified: true,
		},
	}}

	svc := NewService(travels, receipts, nil)
	data, err := svc.ExportTravelXLSX(context.Background(), travelID)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	const sheet = "Reisekosten"

	got, err := f.GetCellValue(sheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "Anna Beispiel", got)

	got, err = f.GetCellValue(sheet, "A8")
	require.NoError(t, err)
	assert.Equal(t, "Date", got)

	got, err = f.GetCellValue(sheet, "B9")
	require.NoError(t, err)
	assert.Equal(t, "Hotel Berlin", got)

	got, err = f.GetCellValue(sheet, "D9")
	require.NoError(t, err)
	assert.Equal(t, "101.51", got)

	// Summary: lodging, transport, then the grand total.
	got, err = f.GetCellValue(sheet, "A12")
	require.NoError(t, err)
	assert.Equal(t, "Summary", got)

	got, err = f.GetCellValue(sheet, "D15")
	require.NoError(t, err)
	assert.Equal(t, "126.01", got)
}

func TestExportTravelXLSXUnknownTravel(t *testing.T) {
	svc := NewService(&fakeTravelRepo{}, &fakeReceiptRepo{}, nil)
	_, err := svc.ExportTravelXLSX(context.Background(), uuid.New())
	assert.Error(t, err)
}
