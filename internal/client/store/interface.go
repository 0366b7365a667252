// Package store implements the client's durable local cache: a confirmed
// collection mirroring the server and a pending collection holding records
// created while offline.
package store

import (
	"context"

	"github.com/carechain/carechain/internal/client/models"
)

// Store is the persistence surface shared by the record repository and the
// sync engine. Storage errors always propagate; nothing fails silently.
type Store interface {
	// ReplacePatients overwrites the confirmed collection with the given
	// server snapshot, in a single transaction.
	ReplacePatients(ctx context.Context, patients []models.Patient) error

	// UpsertPatient inserts or updates one confirmed record by server id.
	UpsertPatient(ctx context.Context, p *models.Patient) error

	// GetAllPatients returns the confirmed collection.
	GetAllPatients(ctx context.Context) ([]models.Patient, error)

	// AddPending appends a record created offline to the pending queue.
	// The record must carry a temporary identifier.
	AddPending(ctx context.Context, p *models.Patient) error

	// GetAllPending returns pending records in insertion order.
	GetAllPending(ctx context.Context) ([]models.Patient, error)

	// DeletePending removes one pending record by temporary identifier.
	// Called only after the server has confirmed the record.
	DeletePending(ctx context.Context, tempID string) error

	Close() error
}
