package patients

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/carechain/carechain/internal/common"
	"github.com/carechain/carechain/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func patientRows(t *testing.T, ids ...int64) *sqlmock.Rows {
	t.Helper()
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "full_name", "age", "gender", "blood_type",
		"condition", "severity", "warnings", "allergies", "symptoms",
		"emergency_contact", "insurance", "qr_token", "creator_id", "created_at", "updated_at"})
	for _, id := range ids {
		rows.AddRow(id, "Jane Doe", 34, "female", "O+", "fever", "high",
			`["fall risk"]`, "", "", "", "", "", int64(1), now, now)
	}
	return rows
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT\s+INTO\s+patients`).
		WithArgs("Jane Doe", 34, "female", "O+", "fever", "high", `["fall risk"]`,
			"", "", "", "", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(57), now, now))

	p := &models.Patient{FullName: "Jane Doe", Age: 34, Gender: "female", BloodType: "O+",
		Condition: "fever", Severity: "high", Warnings: []string{"fall risk"}, CreatorID: 1}
	got, err := repo.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != 57 {
		t.Fatalf("unexpected id: %d", got.ID)
	}
}

func TestCreate_NilWarningsEncodedAsEmptyArray(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT\s+INTO\s+patients`).
		WithArgs("John Roe", 61, "", "", "fracture", "", `[]`,
			"", "", "", "", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(58), now, now))

	p := &models.Patient{FullName: "John Roe", Age: 61, Condition: "fracture", CreatorID: 1}
	if _, err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestGetAll_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*full_name,.*FROM\s+patients\s+ORDER\s+BY\s+id`).
		WillReturnRows(patientRows(t, 1, 2))

	got, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if got[0].Warnings[0] != "fall risk" {
		t.Fatalf("warnings not decoded: %+v", got[0].Warnings)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+id,\s*full_name,.*WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+patients\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 99)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected ErrorNotFound, got %v", err)
	}
}

func TestSetQRToken_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+patients\s+SET\s+qr_token\s*=\s*\$1`).
		WithArgs("tok-123", int64(57)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetQRToken(context.Background(), 57, "tok-123"); err != nil {
		t.Fatalf("SetQRToken error: %v", err)
	}
}
