// Package mongodb provides the professional directory implementation.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/havenmind/support-service/internal/domain/models"
)

// ProfessionalDirectory implements docdb.ProfessionalDirectory on top of
// the users collection maintained by the external auth service. The
// directory only ever reads from it.
type ProfessionalDirectory struct {
	users *mongo.Collection
}

// NewProfessionalDirectory creates a new directory wrapper.
func NewProfessionalDirectory(db *mongo.Database) *ProfessionalDirectory {
	return &ProfessionalDirectory{
		users: db.Collection(UsersCollection),
	}
}

// FindProfessionals lists users holding the professional role in stable
// enumeration order (by id).
func (d *ProfessionalDirectory) FindProfessionals(ctx context.Context) ([]*models.Professional, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := d.users.Find(ctx, bson.M{"role": models.RoleProfessional}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list professionals: %w", err)
	}
	defer cursor.Close(ctx)

	var professionals []*models.Professional
	if err := cursor.All(ctx, &professionals); err != nil {
		return nil, fmt.Errorf("failed to decode professionals: %w", err)
	}
	return professionals, nil
}

// GetProfessional retrieves a professional by id.
func (d *ProfessionalDirectory) GetProfessional(ctx context.Context, id string) (*models.Professional, error) {
	var professional models.Professional
	err := d.users.FindOne(ctx, bson.M{"_id": id, "role": models.RoleProfessional}).Decode(&professional)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get professional: %w", err)
	}
	return &professional, nil
}
