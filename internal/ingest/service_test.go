package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reisekosten/reisekosten/constants"
	"github.com/reisekosten/reisekosten/internal/async"
	"github.com/reisekosten/reisekosten/internal/entity"
)

type fakeTravelRepo struct {
	byID map[uuid.UUID]*entity.Travel
}

func (f *fakeTravelRepo) Create(context.Context, *entity.Travel) error { return nil }
func (f *fakeTravelRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Travel, error) {
	if t, ok := f.byID[id]; ok {
		return t, nil
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
	created []*entity.Receipt
}

func (f *fakeReceiptRepo) Create(_ context.Context, rc *entity.Receipt) error {
	rc.ID = uuid.New()
	f.created = append(f.created, rc)
	return nil
}
func (f *fakeReceiptRepo) GetByID(context.Context, uuid.UUID) (*entity.Receipt, error) {
	return nil, os.ErrNotExist
}
func (f *fakeReceiptRepo) ListByTravel(context.Context, uuid.UUID) ([]*entity.Receipt, error) {
	return nil, nil
}
func (f *fakeReceiptRepo) Update(context.Context, *entity.Receipt) error           { return nil }
func (f *fakeReceiptRepo) ApplyParseResult(context.Context, *entity.Receipt) error { return nil }
func (f *fakeReceiptRepo) SetVerified(context.Context, uuid.UUID, bool) error      { return nil }
func (f *fakeReceiptRepo) Delete(context.Context, uuid.UUID) error                 { return nil }

type fakeQueue struct {
	jobs []async.Job
}

func (f *fakeQueue) Enqueue(_ context.Context, job async.Job) error {
	f.jobs = append(f.jobs, job)
	return nil
}

func TestHandleFileRegistersAndQueues(t *testing.T) {
	travelID := uuid.New()
	travels := &fakeTravelRepo{byID: map[uuid.UUID]*entity.Travel{
		travelID: {ID: travelID, Status: constants.TravelStatusDraft},
	}}
	receipts := &fakeReceiptRepo{}
	queue := &fakeQueue{}
	svc := NewService(travels, receipts, queue, nil)

	dir := filepath.Join(t.TempDir(), travelID.String())
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "taxi.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	require.NoError(t, svc.HandleFile(context.Background(), path))

	require.Len(t, receipts.created, 1)
	rc := receipts.created[0]
	assert.Equal(t, travelID, rc.TravelID)
	require.NotNil(t, rc.OriginalFilename)
	assert.Equal(t, "taxi.pdf", *rc.OriginalFilename)
	require.NotNil(t, rc.ParsingStatus)
	assert.Equal(t, constants.ParsingStatusPending, *rc.ParsingStatus)

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, rc.ID, queue.jobs[0].ReceiptID)

	// A repeated event for the same path is a no-op.
	require.NoError(t, svc.HandleFile(context.Background(), path))
	assert.Len(t, receipts.created, 1)
}

func TestHandleFileRejectsNonTravelDirectory(t *testing.T) {
	svc := NewService(&fakeTravelRepo{}, &fakeReceiptRepo{}, &fakeQueue{}, nil)

	path := filepath.Join(t.TempDir(), "stray.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	assert.Error(t, svc.HandleFile(context.Background(), path))
}

func TestHandleFileRejectsSubmittedTravel(t *testing.T) {
	travelID := uuid.New()
	travels := &fakeTravelRepo{byID: map[uuid.UUID]*entity.Travel{
		travelID: {ID: travelID, Status: constants.TravelStatusSubmitted},
	}}
	receipts := &fakeReceiptRepo{}
	svc := NewService(travels, receipts, &fakeQueue{}, nil)

	dir := filepath.Join(t.TempDir(), travelID.String())
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "hotel.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.Error(t, svc.HandleFile(context.Background(), path))
	assert.Empty(t, receipts.created)
}
