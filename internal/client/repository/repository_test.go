package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/carechain/carechain/internal/client/api"
	"github.com/carechain/carechain/internal/client/models"
	"github.com/carechain/carechain/internal/client/session"
	"github.com/carechain/carechain/internal/client/store"
	"github.com/carechain/carechain/internal/common"
	"github.com/carechain/carechain/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupStore(t *testing.T) store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE patients (
  id INTEGER PRIMARY KEY,
  full_name TEXT NOT NULL, age INTEGER NOT NULL,
  gender TEXT NOT NULL DEFAULT '', blood_type TEXT NOT NULL DEFAULT '',
  condition TEXT NOT NULL, severity TEXT NOT NULL DEFAULT '',
  warnings TEXT NOT NULL DEFAULT '[]', allergies TEXT NOT NULL DEFAULT '',
  symptoms TEXT NOT NULL DEFAULT '', emergency_contact TEXT NOT NULL DEFAULT '',
  insurance TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL DEFAULT '', updated_at TEXT NOT NULL DEFAULT ''
);
CREATE TABLE pending (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  temp_id TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL, age INTEGER NOT NULL,
  gender TEXT NOT NULL DEFAULT '', blood_type TEXT NOT NULL DEFAULT '',
  condition TEXT NOT NULL, severity TEXT NOT NULL DEFAULT '',
  warnings TEXT NOT NULL DEFAULT '[]', allergies TEXT NOT NULL DEFAULT '',
  symptoms TEXT NOT NULL DEFAULT '', emergency_contact TEXT NOT NULL DEFAULT '',
  insurance TEXT NOT NULL DEFAULT '', created_at TEXT NOT NULL DEFAULT ''
);
`)
	require.NoError(t, err)
	return store.NewSQLiteStore(db)
}

func freshSession(t *testing.T) *session.Session {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	sess := session.New()
	sess.Set(signed, "doc@example.com", "Dr. Grey")
	return sess
}

// fakeClient implements just the api.Client methods the repository calls.
type fakeClient struct {
	api.Client

	listResult []models.Patient
	listErr    error

	createResult *models.Patient
	createErr    error
	createCalls  int

	deleteErr error
}

func (f *fakeClient) ListPatients(ctx context.Context) ([]models.Patient, error) {
	return f.listResult, f.listErr
}

func (f *fakeClient) CreatePatient(ctx context.Context, p *models.Patient) (*models.Patient, error) {
	f.createCalls++
	return f.createResult, f.createErr
}

func (f *fakeClient) DeletePatient(ctx context.Context, id int64) error {
	return f.deleteErr
}

func online() bool  { return true }
func offline() bool { return false }

func TestList_OnlineRefreshesCache(t *testing.T) {
	st := setupStore(t)
	fc := &fakeClient{listResult: []models.Patient{
		{ID: 1, FullName: "Jane Doe", Age: 34, Condition: "fever"},
	}}
	r := New(fc, st, freshSession(t), online, testLogger())

	res, err := r.List(context.Background())
	require.NoError(t, err)
	require.False(t, res.Degraded)
	require.Len(t, res.Patients, 1)

	cached, err := st.GetAllPatients(context.Background())
	require.NoError(t, err)
	require.Len(t, cached, 1)
	require.Equal(t, "Jane Doe", cached[0].FullName)
}

func TestList_FallsBackToCacheOnFailure(t *testing.T) {
	st := setupStore(t)
	require.NoError(t, st.UpsertPatient(context.Background(), &models.Patient{
		ID: 7, FullName: "Cached Carol", Age: 50, Condition: "asthma",
	}))

	fc := &fakeClient{listErr: errors.New("dial tcp: connection refused")}
	r := New(fc, st, freshSession(t), online, testLogger())

	res, err := r.List(context.Background())
	require.NoError(t, err, "cache fallback must not throw")
	require.True(t, res.Degraded)
	require.Len(t, res.Patients, 1)
	require.Equal(t, "Cached Carol", res.Patients[0].FullName)
}

func TestList_EmptyCacheYieldsEmptyResult(t *testing.T) {
	st := setupStore(t)
	fc := &fakeClient{listErr: errors.New("network unreachable")}
	r := New(fc, st, freshSession(t), online, testLogger())

	res, err := r.List(context.Background())
	require.NoError(t, err)
	require.True(t, res.Degraded)
	require.Empty(t, res.Patients)
}

func TestList_UnauthorizedTearsDownSession(t *testing.T) {
	st := setupStore(t)
	fc := &fakeClient{listErr: fmt.Errorf("token expired: %w", common.ErrorUnauthorized)}
	sess := freshSession(t)

	expired := false
	sess.OnExpire(func() { expired = true })

	r := New(fc, st, sess, online, testLogger())
	_, err := r.List(context.Background())
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	require.True(t, expired)
	require.Empty(t, sess.Token())
}

func TestCreate_ValidationFailsBeforeIO(t *testing.T) {
	st := setupStore(t)
	fc := &fakeClient{}
	r := New(fc, st, freshSession(t), online, testLogger())

	_, err := r.Create(context.Background(), models.Patient{Age: 34, Condition: "fever"})
	require.ErrorIs(t, err, models.ErrRequired)
	require.Zero(t, fc.createCalls, "no network attempted on validation failure")

	pending, perr := st.GetAllPending(context.Background())
	require.NoError(t, perr)
	require.Empty(t, pending, "no partial writes on validation failure")
}

func TestCreate_OfflineQueuesWithTempID(t *testing.T) {
	st := setupStore(t)
	fc := &fakeClient{}
	r := New(fc, st, freshSession(t), offline, testLogger())

	created, err := r.Create(context.Background(), models.Patient{
		FullName: "Jane Doe", Age: 34, Condition: "fever",
	})
	require.NoError(t, err)
	require.True(t, created.Pending())
	require.True(t, created.Offline)
	require.Zero(t, fc.createCalls, "offline create must not touch the network")

	// Appears in the UI list immediately.
	list := r.Patients()
	require.Len(t, list, 1)
	require.Equal(t, created.TempID, list[0].TempID)

	pending, err := st.GetAllPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, created.TempID, pending[0].TempID)
}

func TestCreate_TransportFailureQueuesLikeOffline(t *testing.T) {
	st := setupStore(t)
	fc := &fakeClient{createErr: errors.New("dial tcp: i/o timeout")}
	r := New(fc, st, freshSession(t), online, testLogger())

	created, err := r.Create(context.Background(), models.Patient{
		FullName: "Jane Doe", Age: 34, Condition: "fever",
	})
	require.NoError(t, err)
	require.True(t, created.Pending())
}

func TestCreate_ServerValidationSurfacesMessage(t *testing.T) {
	st := setupStore(t)
	fc := &fakeClient{createErr: &api.APIError{Status: 422, Message: "age: value is not a valid integer"}}
	r := New(fc, st, freshSession(t), online, testLogger())

	_, err := r.Create(context.Background(), models.Patient{
		FullName: "Jane Doe", Age: 34, Condition: "fever",
	})

	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "age: value is not a valid integer", apiErr.Message)

	pending, perr := st.GetAllPending(context.Background())
	require.NoError(t, perr)
	require.Empty(t, pending, "rejected records are not queued")
}

func TestCreate_UnauthorizedTriggersLogout(t *testing.T) {
	st := setupStore(t)
	fc := &fakeClient{createErr: fmt.Errorf("token expired: %w", common.ErrorUnauthorized)}
	sess := freshSession(t)
	r := New(fc, st, sess, online, testLogger())

	_, err := r.Create(context.Background(), models.Patient{
		FullName: "Jane Doe", Age: 34, Condition: "fever",
	})
	require.ErrorIs(t, err, common.ErrorUnauthorized)
	require.False(t, sess.Valid())
}

func TestUpdateDelete_OfflineRejected(t *testing.T) {
	st := setupStore(t)
	r := New(&fakeClient{}, st, freshSession(t), offline, testLogger())

	_, err := r.Update(context.Background(), 1, models.Patient{FullName: "J", Age: 1, Condition: "c"})
	require.ErrorIs(t, err, ErrOfflineOnly)
	require.ErrorIs(t, r.Delete(context.Background(), 1), ErrOfflineOnly)
}

func TestQRCode_RejectedForPendingRecords(t *testing.T) {
	st := setupStore(t)
	r := New(&fakeClient{}, st, freshSession(t), online, testLogger())

	p := &models.Patient{TempID: models.NewTempID(), Offline: true}
	_, err := r.QRCode(context.Background(), p)
	require.ErrorIs(t, err, ErrPendingRecord)
}

func TestPromote_ReplacesPlaceholderInList(t *testing.T) {
	st := setupStore(t)
	fc := &fakeClient{}
	r := New(fc, st, freshSession(t), offline, testLogger())

	created, err := r.Create(context.Background(), models.Patient{
		FullName: "Jane Doe", Age: 34, Condition: "fever",
	})
	require.NoError(t, err)

	r.Promote(context.Background(), []models.Promotion{{
		TempID:  created.TempID,
		Patient: models.Patient{ID: 57, FullName: "Jane Doe", Age: 34, Condition: "fever"},
	}})

	list := r.Patients()
	require.Len(t, list, 1)
	require.Equal(t, int64(57), list[0].ID)
	require.False(t, list[0].Pending())
	require.False(t, list[0].Offline, "offline flag is gone after promotion")
	require.NotEqual(t, created.TempID, list[0].TempID, "temporary id is never reused")
}
