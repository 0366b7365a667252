package patients

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/carechain/carechain/internal/common"
	"github.com/carechain/carechain/internal/dbx"
	"github.com/carechain/carechain/internal/server/models"
)

const patientColumns = `id, full_name, age, gender, blood_type, condition, severity, warnings,
		allergies, symptoms, emergency_contact, insurance, qr_token, creator_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, patient *models.Patient) (*models.Patient, error) {

	warnings, err := json.Marshal(warningsOrEmpty(patient.Warnings))
	if err != nil {
		return nil, fmt.Errorf("encoding warnings: %w", err)
	}

	query :=
		`INSERT INTO patients (full_name, age, gender, blood_type, condition, severity, warnings,
		                       allergies, symptoms, emergency_contact, insurance, creator_id)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		patient.FullName, patient.Age, patient.Gender, patient.BloodType,
		patient.Condition, patient.Severity, string(warnings),
		patient.Allergies, patient.Symptoms, patient.EmergencyContact,
		patient.Insurance, patient.CreatorID).
		Scan(&patient.ID, &patient.CreatedAt, &patient.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return patient, nil
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Patient
	for rows.Next() {
		p, err := scanPatient(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) GetByQRToken(ctx context.Context, token string) (*models.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE qr_token = $1`
	return r.getOne(ctx, query, token)
}

func (r *PostgresRepository) Update(ctx context.Context, patient *models.Patient) (*models.Patient, error) {

	warnings, err := json.Marshal(warningsOrEmpty(patient.Warnings))
	if err != nil {
		return nil, fmt.Errorf("encoding warnings: %w", err)
	}

	query :=
		`UPDATE patients
		 SET full_name = $1, age = $2, gender = $3, blood_type = $4, condition = $5,
		     severity = $6, warnings = $7, allergies = $8, symptoms = $9,
		     emergency_contact = $10, insurance = $11, updated_at = now()
		 WHERE id = $12
		 RETURNING created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		patient.FullName, patient.Age, patient.Gender, patient.BloodType,
		patient.Condition, patient.Severity, string(warnings),
		patient.Allergies, patient.Symptoms, patient.EmergencyContact,
		patient.Insurance, patient.ID).
		Scan(&patient.CreatedAt, &patient.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return patient, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) SetQRToken(ctx context.Context, id int64, token string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE patients SET qr_token = $1, updated_at = now() WHERE id = $2`, token, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Patient, error) {
	row := r.db.QueryRowContext(ctx, query, arg)

	p, err := scanPatient(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}

	return p, nil
}

func scanPatient(scan func(dest ...any) error) (*models.Patient, error) {
	p := &models.Patient{}
	var warnings string
	var creatorID sql.NullInt64

	err := scan(&p.ID, &p.FullName, &p.Age, &p.Gender, &p.BloodType,
		&p.Condition, &p.Severity, &warnings, &p.Allergies, &p.Symptoms,
		&p.EmergencyContact, &p.Insurance, &p.QRToken, &creatorID,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if creatorID.Valid {
		p.CreatorID = creatorID.Int64
	}
	if err := json.Unmarshal([]byte(warnings), &p.Warnings); err != nil {
		return nil, fmt.Errorf("decoding warnings: %w", err)
	}
	if len(p.Warnings) == 0 {
		p.Warnings = nil
	}

	return p, nil
}

func warningsOrEmpty(w []string) []string {
	if w == nil {
		return []string{}
	}
	return w
}
