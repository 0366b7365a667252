// Package patients contains the patient-record repository for the server's
// PostgreSQL storage.
package patients

import (
	"context"

	"github.com/carechain/carechain/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, patient *models.Patient) (*models.Patient, error)
	GetAll(ctx context.Context) ([]models.Patient, error)
	GetByID(ctx context.Context, id int64) (*models.Patient, error)
	GetByQRToken(ctx context.Context, token string) (*models.Patient, error)
	Update(ctx context.Context, patient *models.Patient) (*models.Patient, error)
	Delete(ctx context.Context, id int64) error
	SetQRToken(ctx context.Context, id int64, token string) error
}
