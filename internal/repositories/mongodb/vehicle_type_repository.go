package mongodb

import (
	"context"
	"fmt"
	"time"

	"limoride/internal/models"
	"limoride/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type vehicleTypeRepository struct {
	collection *mongo.Collection
}

func NewVehicleTypeRepository(db *mongo.Database) interfaces.VehicleTypeRepository {
	return &vehicleTypeRepository{
		collection: db.Collection("vehicle_types"),
	}
}

func (r *vehicleTypeRepository) Create(ctx context.Context, vehicleType *models.VehicleType) error {
	vehicleType.ID = primitive.NewObjectID()
	vehicleType.CreatedAt = time.Now()
	vehicleType.UpdatedAt = vehicleType.CreatedAt

	_, err := r.collection.InsertOne(ctx, vehicleType)
	if err != nil {
		return fmt.Errorf("failed to create vehicle type: %w", err)
	}

	return nil
}

func (r *vehicleTypeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.VehicleType, error) {
	var vehicleType models.VehicleType
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&vehicleType)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get vehicle type: %w", err)
	}

	return &vehicleType, nil
}

// GetBySlug scans active types and matches on the derived slug; slugs are
// not stored, they are a pure function of the name.
func (r *vehicleTypeRepository) GetBySlug(ctx context.Context, slug string) (*models.VehicleType, error) {
	vehicleTypes, err := r.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	for _, vt := range vehicleTypes {
		if vt.Slug() == slug {
			return vt, nil
		}
	}

	return nil, interfaces.ErrNotFound
}

func (r *vehicleTypeRepository) GetActive(ctx context.Context) ([]*models.VehicleType, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicle types: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicleTypes []*models.VehicleType
	if err := cursor.All(ctx, &vehicleTypes); err != nil {
		return nil, fmt.Errorf("failed to decode vehicle types: %w", err)
	}

	return vehicleTypes, nil
}

func (r *vehicleTypeRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update vehicle type: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	return nil
}

func (r *vehicleTypeRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete vehicle type: %w", err)
	}
	if result.DeletedCount == 0 {
		return interfaces.ErrNotFound
	}

	return nil
}
