package interfaces

import (
	"context"

	"limoride/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleTypeRepository interface {
	Create(ctx context.Context, vehicleType *models.VehicleType) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.VehicleType, error)
	GetBySlug(ctx context.Context, slug string) (*models.VehicleType, error)
	GetActive(ctx context.Context) ([]*models.VehicleType, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
