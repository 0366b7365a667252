package services

import (
	"context"
	"fmt"
	"time"

	"github.com/carechain/carechain/internal/common"
	"github.com/carechain/carechain/internal/server/models"
	"github.com/carechain/carechain/internal/server/repositories/patients"
	"github.com/google/uuid"
)

const qrTokenValidity = time.Hour

// FieldError reports which payload field failed validation. It matches
// common.ErrorValidation via errors.Is.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Msg }
func (e *FieldError) Unwrap() error { return common.ErrorValidation }

// QRPayload is the content a QR code for a record would carry: the record id
// plus a rotating token with a short expiry.
type QRPayload struct {
	PatientID int64
	Token     string
	Expires   time.Time
}

// PatientService implements patient-record CRUD and QR token issuing on top
// of the patients repository.
type PatientService struct {
	repo patients.Repository
}

func NewPatientService(repo patients.Repository) *PatientService {
	return &PatientService{repo: repo}
}

func (s *PatientService) List(ctx context.Context) ([]models.Patient, error) {
	result, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing patients: %w", err)
	}
	return result, nil
}

func (s *PatientService) Get(ctx context.Context, id int64) (*models.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByQRToken resolves a previously issued QR token back to its record.
func (s *PatientService) GetByQRToken(ctx context.Context, token string) (*models.Patient, error) {
	if token == "" {
		return nil, common.ErrorNotFound
	}
	return s.repo.GetByQRToken(ctx, token)
}

func (s *PatientService) Create(ctx context.Context, patient *models.Patient, creatorID int64) (*models.Patient, error) {
	if err := validatePatient(patient); err != nil {
		return nil, err
	}

	patient.CreatorID = creatorID
	p, err := s.repo.Create(ctx, patient)
	if err != nil {
		return nil, fmt.Errorf("error creating patient: %w", err)
	}
	return p, nil
}

func (s *PatientService) Update(ctx context.Context, patient *models.Patient) (*models.Patient, error) {
	if err := validatePatient(patient); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, patient)
}

func (s *PatientService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// QRCode issues a fresh token for the record, persists it (invalidating any
// previously issued token) and returns the payload a QR image would encode.
func (s *PatientService) QRCode(ctx context.Context, id int64) (*QRPayload, error) {
	patient, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := s.repo.SetQRToken(ctx, patient.ID, token); err != nil {
		return nil, fmt.Errorf("error storing qr token: %w", err)
	}

	return &QRPayload{
		PatientID: patient.ID,
		Token:     token,
		Expires:   time.Now().UTC().Add(qrTokenValidity),
	}, nil
}

var validSeverities = map[string]bool{
	"": true, "low": true, "medium": true, "high": true, "critical": true, "emergency": true,
}

func validatePatient(p *models.Patient) error {
	if p.FullName == "" {
		return &FieldError{Field: "full_name", Msg: "field required"}
	}
	if p.Age <= 0 {
		return &FieldError{Field: "age", Msg: "must be a positive integer"}
	}
	if p.Condition == "" {
		return &FieldError{Field: "condition", Msg: "field required"}
	}
	if !validSeverities[p.Severity] {
		return &FieldError{Field: "severity", Msg: "unknown severity level"}
	}
	return nil
}
