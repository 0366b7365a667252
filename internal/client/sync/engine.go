// Package sync reconciles the local pending queue with the server once
// connectivity is available.
package sync

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/carechain/carechain/internal/client/api"
	"github.com/carechain/carechain/internal/client/models"
	"github.com/carechain/carechain/internal/client/store"
	"github.com/carechain/carechain/internal/logging"
)

// Status is the process-wide outcome of the most recent sync pass. It is
// derived state: recomputed on every pass, never persisted.
type Status string

const (
	StatusUpToDate Status = "up-to-date"
	StatusSyncing  Status = "syncing"
	StatusError    Status = "error"
)

// SessionChecker is the slice of the auth session the engine needs.
type SessionChecker interface {
	Valid() bool
}

// Engine drains the pending queue against the server, sequentially and in
// insertion order, halting on the first failure. A failed pass leaves the
// failed record and everything after it queued; the next pass re-attempts
// them all. Records are removed from the queue only after the server has
// confirmed them, so an abandoned pass never loses data.
type Engine struct {
	api     api.Client
	store   store.Store
	sess    SessionChecker
	online  func() bool
	promote func(ctx context.Context, promoted []models.Promotion)
	log     logging.Logger

	running atomic.Bool

	mu     sync.RWMutex
	status Status
}

// New constructs an Engine. online reports current connectivity (the
// monitor's state) and promote receives server-confirmed records at the end
// of a pass so the repository can replace its offline placeholders.
func New(client api.Client, st store.Store, sess SessionChecker, online func() bool,
	promote func(ctx context.Context, promoted []models.Promotion), log logging.Logger) *Engine {
	return &Engine{
		api:     client,
		store:   st,
		sess:    sess,
		online:  online,
		promote: promote,
		log:     log,
		status:  StatusUpToDate,
	}
}

// Status returns the outcome of the most recent pass.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// Run executes one sync pass and returns the number of records promoted.
// It is a no-op while offline, without a valid session, or while another
// pass is already running. Failures are reflected in Status and logged,
// never returned: sync runs in the background, unsolicited.
func (e *Engine) Run(ctx context.Context) int {
	if !e.online() || !e.sess.Valid() {
		return 0
	}
	if !e.running.CompareAndSwap(false, true) {
		// A pass is already draining the queue.
		return 0
	}
	defer e.running.Store(false)

	e.setStatus(StatusSyncing)

	pending, err := e.store.GetAllPending(ctx)
	if err != nil {
		e.log.Error(ctx, "loading pending queue failed", "error", err)
		e.setStatus(StatusError)
		return 0
	}
	if len(pending) == 0 {
		e.setStatus(StatusUpToDate)
		return 0
	}

	var promoted []models.Promotion
	failed := false

	for i := range pending {
		p := pending[i]

		created, err := e.api.CreatePatient(ctx, &p)
		if err != nil {
			// Halt the pass: the failed record and everything after it
			// stay queued for the next reconnect.
			e.log.Warn(ctx, "sync pass halted", "temp_id", p.TempID, "error", err)
			failed = true
			break
		}

		if err := e.store.DeletePending(ctx, p.TempID); err != nil {
			e.log.Error(ctx, "removing promoted record failed", "temp_id", p.TempID, "error", err)
			failed = true
			break
		}
		if err := e.store.UpsertPatient(ctx, created); err != nil {
			e.log.Error(ctx, "caching promoted record failed", "id", created.ID, "error", err)
			failed = true
			break
		}

		promoted = append(promoted, models.Promotion{TempID: p.TempID, Patient: *created})
	}

	if len(promoted) > 0 && e.promote != nil {
		e.promote(ctx, promoted)
	}

	if failed {
		e.setStatus(StatusError)
	} else {
		e.setStatus(StatusUpToDate)
	}

	e.log.Info(ctx, "sync pass finished",
		"synced", len(promoted), "pending", len(pending)-len(promoted), "status", e.Status())
	return len(promoted)
}
