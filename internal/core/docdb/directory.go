// Package docdb provides the professional directory interface.
package docdb

import (
	"context"

	"github.com/havenmind/support-service/internal/domain/models"
)

// ProfessionalDirectory exposes the read-only projection of users holding
// the professional role. User storage and authentication belong to an
// external service; the core only enumerates candidates here.
type ProfessionalDirectory interface {
	// FindProfessionals lists professionals in stable enumeration order.
	FindProfessionals(ctx context.Context) ([]*models.Professional, error)

	// GetProfessional retrieves one professional by id, nil when the id
	// does not exist or does not hold the professional role.
	GetProfessional(ctx context.Context, id string) (*models.Professional, error)
}
