// Package api implements the client of the CareChain REST backend.
package api

import (
	"context"

	"github.com/carechain/carechain/internal/client/models"
)

// LoginResult carries the bearer token and identity returned by a
// successful login.
type LoginResult struct {
	Token string
	Email string
	Name  string
}

// Client is the remote API surface consumed by the record repository and
// the sync engine. All methods honor context cancellation.
type Client interface {
	// Signup registers a new clinician account.
	Signup(ctx context.Context, name, email, password string) error

	// Login authenticates and returns the issued token and identity.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// Verify checks that the current session token is still accepted.
	Verify(ctx context.Context) error

	// Ping probes server reachability without authentication.
	Ping(ctx context.Context) error

	ListPatients(ctx context.Context) ([]models.Patient, error)
	GetPatient(ctx context.Context, id int64) (*models.Patient, error)
	CreatePatient(ctx context.Context, p *models.Patient) (*models.Patient, error)
	UpdatePatient(ctx context.Context, id int64, p *models.Patient) (*models.Patient, error)
	DeletePatient(ctx context.Context, id int64) error

	// QRCode fetches the lookup payload the server would encode into a QR
	// image for the given confirmed record.
	QRCode(ctx context.Context, id int64) (*models.QRPayload, error)
}
