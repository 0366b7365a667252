package services

import (
	"context"
	"testing"
	"time"

	"github.com/carechain/carechain/internal/common"
	"github.com/carechain/carechain/internal/server/models"
	"github.com/stretchr/testify/require"
)

type fakePatientRepo struct {
	byID   map[int64]*models.Patient
	nextID int64
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{byID: map[int64]*models.Patient{}, nextID: 1}
}

func (f *fakePatientRepo) Create(ctx context.Context, p *models.Patient) (*models.Patient, error) {
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.byID[p.ID] = &cp
	return p, nil
}

func (f *fakePatientRepo) GetAll(ctx context.Context) ([]models.Patient, error) {
	var result []models.Patient
	for i := int64(1); i < f.nextID; i++ {
		if p, ok := f.byID[i]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakePatientRepo) GetByID(ctx context.Context, id int64) (*models.Patient, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePatientRepo) GetByQRToken(ctx context.Context, token string) (*models.Patient, error) {
	for _, p := range f.byID {
		if p.QRToken == token {
			cp := *p
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakePatientRepo) Update(ctx context.Context, p *models.Patient) (*models.Patient, error) {
	stored, ok := f.byID[p.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.CreatedAt = stored.CreatedAt
	p.UpdatedAt = time.Now()
	p.QRToken = stored.QRToken
	cp := *p
	f.byID[p.ID] = &cp
	return p, nil
}

func (f *fakePatientRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePatientRepo) SetQRToken(ctx context.Context, id int64, token string) error {
	p, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	p.QRToken = token
	return nil
}

func validPatient() *models.Patient {
	return &models.Patient{FullName: "Jane Doe", Age: 34, Condition: "fever", Severity: "high"}
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := NewPatientService(newFakePatientRepo())

	created, err := svc.Create(ctx, validPatient(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)
	require.Equal(t, int64(1), created.CreatorID)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", got.FullName)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	svc := NewPatientService(newFakePatientRepo())

	tests := []struct {
		name   string
		mutate func(*models.Patient)
		field  string
	}{
		{"missing name", func(p *models.Patient) { p.FullName = "" }, "full_name"},
		{"zero age", func(p *models.Patient) { p.Age = 0 }, "age"},
		{"missing condition", func(p *models.Patient) { p.Condition = "" }, "condition"},
		{"bad severity", func(p *models.Patient) { p.Severity = "apocalyptic" }, "severity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPatient()
			tt.mutate(p)
			_, err := svc.Create(ctx, p, 1)
			require.ErrorIs(t, err, common.ErrorValidation)

			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			require.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := NewPatientService(newFakePatientRepo())

	p := validPatient()
	p.ID = 99
	_, err := svc.Update(context.Background(), p)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewPatientService(newFakePatientRepo())

	created, err := svc.Create(ctx, validPatient(), 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.ErrorIs(t, svc.Delete(ctx, created.ID), common.ErrorNotFound)
}

func TestQRCode_RotatesToken(t *testing.T) {
	ctx := context.Background()
	repo := newFakePatientRepo()
	svc := NewPatientService(repo)

	created, err := svc.Create(ctx, validPatient(), 1)
	require.NoError(t, err)

	first, err := svc.QRCode(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, first.PatientID)
	require.NotEmpty(t, first.Token)
	require.WithinDuration(t, time.Now().UTC().Add(time.Hour), first.Expires, 5*time.Second)

	second, err := svc.QRCode(ctx, created.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	// Only the latest token resolves.
	_, err = svc.GetByQRToken(ctx, first.Token)
	require.ErrorIs(t, err, common.ErrorNotFound)

	got, err := svc.GetByQRToken(ctx, second.Token)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestQRCode_NotFound(t *testing.T) {
	svc := NewPatientService(newFakePatientRepo())

	_, err := svc.QRCode(context.Background(), 99)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByQRToken_EmptyToken(t *testing.T) {
	svc := NewPatientService(newFakePatientRepo())

	_, err := svc.GetByQRToken(context.Background(), "")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
