package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/carechain/carechain/internal/client/migrations"
	"github.com/carechain/carechain/internal/client/models"
	"github.com/carechain/carechain/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the local database at dsn and applies migrations.
func Open(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating local store: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// NewSQLiteStore wraps an already-migrated database handle. Used by tests.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const timeFormat = time.RFC3339Nano

func encodeWarnings(w []string) (string, error) {
	if w == nil {
		w = []string{}
	}
	b, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encoding warnings: %w", err)
	}
	return string(b), nil
}

func decodeWarnings(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var w []string
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, fmt.Errorf("decoding warnings: %w", err)
	}
	if len(w) == 0 {
		return nil, nil
	}
	return w, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func upsertPatient(ctx context.Context, q dbx.DBTX, p *models.Patient) error {
	warnings, err := encodeWarnings(p.Warnings)
	if err != nil {
		return err
	}
	query := `INSERT INTO patients
			(id, full_name, age, gender, blood_type, condition, severity,
			 warnings, allergies, symptoms, emergency_contact, insurance,
			 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			age = excluded.age,
			gender = excluded.gender,
			blood_type = excluded.blood_type,
			condition = excluded.condition,
			severity = excluded.severity,
			warnings = excluded.warnings,
			allergies = excluded.allergies,
			symptoms = excluded.symptoms,
			emergency_contact = excluded.emergency_contact,
			insurance = excluded.insurance,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`
	_, err = q.ExecContext(ctx, query,
		p.ID, p.FullName, p.Age, p.Gender, p.BloodType, p.Condition,
		string(p.Severity), warnings, p.Allergies, p.Symptoms,
		p.EmergencyContact, p.Insurance,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert patient %d: %w", p.ID, err)
	}
	return nil
}

func (s *SQLiteStore) UpsertPatient(ctx context.Context, p *models.Patient) error {
	return upsertPatient(ctx, s.db, p)
}

func (s *SQLiteStore) ReplacePatients(ctx context.Context, patients []models.Patient) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM patients`); err != nil {
			return fmt.Errorf("failed to clear patients cache: %w", err)
		}
		for i := range patients {
			if err := upsertPatient(ctx, tx, &patients[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLiteStore) GetAllPatients(ctx context.Context) ([]models.Patient, error) {
	query := `SELECT id, full_name, age, gender, blood_type, condition, severity,
			warnings, allergies, symptoms, emergency_contact, insurance,
			created_at, updated_at
		FROM patients ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select patients: %w", err)
	}
	defer rows.Close()

	var result []models.Patient
	for rows.Next() {
		var p models.Patient
		var severity, warnings, createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.FullName, &p.Age, &p.Gender, &p.BloodType,
			&p.Condition, &severity, &warnings, &p.Allergies, &p.Symptoms,
			&p.EmergencyContact, &p.Insurance, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.Severity = models.Severity(severity)
		if p.Warnings, err = decodeWarnings(warnings); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = parseTime(updatedAt)
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SQLiteStore) AddPending(ctx context.Context, p *models.Patient) error {
	if p.TempID == "" {
		return fmt.Errorf("pending record without temporary id")
	}
	warnings, err := encodeWarnings(p.Warnings)
	if err != nil {
		return err
	}
	query := `INSERT INTO pending
			(temp_id, full_name, age, gender, blood_type, condition, severity,
			 warnings, allergies, symptoms, emergency_contact, insurance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		p.TempID, p.FullName, p.Age, p.Gender, p.BloodType, p.Condition,
		string(p.Severity), warnings, p.Allergies, p.Symptoms,
		p.EmergencyContact, p.Insurance, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to queue pending record: %w", err)
	}
	return nil
}

// GetAllPending returns the offline queue ordered by insertion sequence,
// which the sync engine relies on for its prefix-drain guarantee.
func (s *SQLiteStore) GetAllPending(ctx context.Context) ([]models.Patient, error) {
	query := `SELECT temp_id, full_name, age, gender, blood_type, condition, severity,
			warnings, allergies, symptoms, emergency_contact, insurance, created_at
		FROM pending ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending records: %w", err)
	}
	defer rows.Close()

	var result []models.Patient
	for rows.Next() {
		var p models.Patient
		var severity, warnings, createdAt string
		if err := rows.Scan(&p.TempID, &p.FullName, &p.Age, &p.Gender, &p.BloodType,
			&p.Condition, &severity, &warnings, &p.Allergies, &p.Symptoms,
			&p.EmergencyContact, &p.Insurance, &createdAt); err != nil {
			return nil, err
		}
		p.Severity = models.Severity(severity)
		if p.Warnings, err = decodeWarnings(warnings); err != nil {
			return nil, err
		}
		p.CreatedAt = parseTime(createdAt)
		p.Offline = true
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SQLiteStore) DeletePending(ctx context.Context, tempID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pending WHERE temp_id = ?`, tempID)
	if err != nil {
		return fmt.Errorf("failed to delete pending record: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}
