// Package repository is the single entry point the UI layer uses for
// listing, creating, updating and deleting patient records. It hides
// whether the client is currently online: reads fall back to the local
// cache and offline creates are queued for the sync engine.
package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/carechain/carechain/internal/client/api"
	"github.com/carechain/carechain/internal/client/models"
	"github.com/carechain/carechain/internal/client/session"
	"github.com/carechain/carechain/internal/client/store"
	"github.com/carechain/carechain/internal/common"
	"github.com/carechain/carechain/internal/logging"
)

// ErrOfflineOnly marks operations that have no offline path.
var ErrOfflineOnly = errors.New("operation requires connectivity")

// ErrPendingRecord marks operations not available for records that have not
// been confirmed by the server yet.
var ErrPendingRecord = errors.New("record has not been synced yet")

// ListResult is what the UI renders: the record list plus a degraded-mode
// flag set when the data came from the local cache instead of the server.
type ListResult struct {
	Patients []models.Patient
	Degraded bool
}

// Repository coordinates the remote API, the local store and the
// in-memory record list shown by the UI.
type Repository struct {
	api    api.Client
	store  store.Store
	sess   *session.Session
	online func() bool
	log    logging.Logger

	mu       sync.Mutex
	patients []models.Patient
}

func New(client api.Client, st store.Store, sess *session.Session, online func() bool, log logging.Logger) *Repository {
	return &Repository{
		api:    client,
		store:  st,
		sess:   sess,
		online: online,
		log:    log,
	}
}

// Patients returns a snapshot of the in-memory record list.
func (r *Repository) Patients() []models.Patient {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Patient, len(r.patients))
	copy(out, r.patients)
	return out
}

// List fetches all records. Online, the server result overwrites the local
// confirmed cache and pending records are appended so offline creates stay
// visible. When the server call fails for any reason other than an auth
// error, List degrades to the cache instead of failing; the cache read path
// itself never errors out (an unreadable cache yields an empty list).
//
// A 401 does not degrade: the session is torn down and the error propagates
// so the UI redirects to login.
func (r *Repository) List(ctx context.Context) (*ListResult, error) {
	if r.online() {
		remote, err := r.api.ListPatients(ctx)
		if err == nil {
			if err := r.store.ReplacePatients(ctx, remote); err != nil {
				r.log.Error(ctx, "refreshing confirmed cache failed", "error", err)
			}
			return r.rebuild(ctx, remote, false)
		}
		if errors.Is(err, common.ErrorUnauthorized) {
			r.sess.Expire()
			return nil, err
		}
		r.log.Warn(ctx, "list fell back to cache", "error", err)
	}

	cached, err := r.store.GetAllPatients(ctx)
	if err != nil {
		r.log.Error(ctx, "reading confirmed cache failed", "error", err)
		cached = nil
	}
	return r.rebuild(ctx, cached, true)
}

// rebuild recomputes the in-memory list as confirmed followed by pending.
func (r *Repository) rebuild(ctx context.Context, confirmed []models.Patient, degraded bool) (*ListResult, error) {
	pending, err := r.store.GetAllPending(ctx)
	if err != nil {
		r.log.Error(ctx, "reading pending queue failed", "error", err)
		pending = nil
	}

	list := make([]models.Patient, 0, len(confirmed)+len(pending))
	list = append(list, confirmed...)
	list = append(list, pending...)

	r.mu.Lock()
	r.patients = list
	r.mu.Unlock()

	return &ListResult{Patients: r.Patients(), Degraded: degraded}, nil
}

// Create validates the draft, then either posts it to the server (online)
// or queues it locally under a temporary identifier (offline). The created
// record is appended to the in-memory list either way.
func (r *Repository) Create(ctx context.Context, draft models.Patient) (*models.Patient, error) {
	if err := draft.ValidateRequired(); err != nil {
		return nil, err
	}

	if !r.online() {
		return r.createOffline(ctx, draft)
	}

	created, err := r.api.CreatePatient(ctx, &draft)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			r.sess.Expire()
			return nil, err
		}
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			// Server verdict, human-readable: surface as-is.
			return nil, err
		}
		// Transport failure: treat the write path exactly like being
		// offline and queue the record.
		r.log.Warn(ctx, "create fell back to offline queue", "error", err)
		return r.createOffline(ctx, draft)
	}

	if err := r.store.UpsertPatient(ctx, created); err != nil {
		r.log.Error(ctx, "caching created record failed", "id", created.ID, "error", err)
	}

	r.mu.Lock()
	r.patients = append(r.patients, *created)
	r.mu.Unlock()
	return created, nil
}

func (r *Repository) createOffline(ctx context.Context, draft models.Patient) (*models.Patient, error) {
	draft.TempID = models.NewTempID()
	draft.Offline = true
	draft.CreatedAt = time.Now()

	if err := r.store.AddPending(ctx, &draft); err != nil {
		return nil, fmt.Errorf("queueing record: %w", err)
	}

	r.mu.Lock()
	r.patients = append(r.patients, draft)
	r.mu.Unlock()

	r.log.Info(ctx, "record queued for sync", "temp_id", draft.TempID)
	return &draft, nil
}

// Get fetches one confirmed record from the server.
func (r *Repository) Get(ctx context.Context, id int64) (*models.Patient, error) {
	if !r.online() {
		return nil, ErrOfflineOnly
	}
	p, err := r.api.GetPatient(ctx, id)
	if err != nil && errors.Is(err, common.ErrorUnauthorized) {
		r.sess.Expire()
	}
	return p, err
}

// Update modifies a confirmed record. There is no offline queue for
// mutations of existing records.
func (r *Repository) Update(ctx context.Context, id int64, patch models.Patient) (*models.Patient, error) {
	if err := patch.ValidateRequired(); err != nil {
		return nil, err
	}
	if !r.online() {
		return nil, ErrOfflineOnly
	}

	updated, err := r.api.UpdatePatient(ctx, id, &patch)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			r.sess.Expire()
		}
		return nil, err
	}

	if err := r.store.UpsertPatient(ctx, updated); err != nil {
		r.log.Error(ctx, "caching updated record failed", "id", id, "error", err)
	}

	r.mu.Lock()
	for i := range r.patients {
		if r.patients[i].ID == id {
			r.patients[i] = *updated
			break
		}
	}
	r.mu.Unlock()
	return updated, nil
}

// Delete removes a confirmed record. Online-only, like Update.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if !r.online() {
		return ErrOfflineOnly
	}
	if err := r.api.DeletePatient(ctx, id); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			r.sess.Expire()
		}
		return err
	}

	r.mu.Lock()
	for i := range r.patients {
		if r.patients[i].ID == id && !r.patients[i].Pending() {
			r.patients = append(r.patients[:i], r.patients[i+1:]...)
			break
		}
	}
	r.mu.Unlock()
	return nil
}

// QRCode fetches the lookup payload for a confirmed record. Pending records
// have no server identity yet, so the operation is rejected for them.
func (r *Repository) QRCode(ctx context.Context, p *models.Patient) (*models.QRPayload, error) {
	if p.Pending() {
		return nil, ErrPendingRecord
	}
	if !r.online() {
		return nil, ErrOfflineOnly
	}
	payload, err := r.api.QRCode(ctx, p.ID)
	if err != nil && errors.Is(err, common.ErrorUnauthorized) {
		r.sess.Expire()
	}
	return payload, err
}

// Promote is the sync engine's callback: each promoted record replaces the
// offline placeholder with the matching temporary identifier in the
// in-memory list.
func (r *Repository) Promote(ctx context.Context, promoted []models.Promotion) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pr := range promoted {
		replaced := false
		for i := range r.patients {
			if r.patients[i].TempID == pr.TempID {
				r.patients[i] = pr.Patient
				replaced = true
				break
			}
		}
		if !replaced {
			r.patients = append(r.patients, pr.Patient)
		}
	}
}
