package mongodb

import (
	"context"
	"fmt"
	"time"

	"limoride/internal/models"
	"limoride/internal/repositories/interfaces"
	"limoride/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type bookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) interfaces.BookingRepository {
	return &bookingRepository{
		collection: db.Collection("bookings"),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	// Callers may pre-assign the ID so ledger entries written before the
	// insert reference the right document.
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt

	_, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

func (r *bookingRepository) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"booking_reference": reference}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking by reference: %w", err)
	}

	return &booking, nil
}

// UpdateIfStatus is the single write path for status transitions. The status
// precondition rides in the filter, so two racing actors cannot both win:
// the second findOneAndUpdate matches nothing and the caller gets
// ErrStaleStatus.
func (r *bookingRepository) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, allowed []models.BookingStatus, updates map[string]interface{}) (*models.Booking, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": allowed},
	}

	set := bson.M{"updated_at": time.Now()}
	push := bson.M{}
	unset := bson.M{}
	for key, value := range updates {
		switch {
		case key == "$push_decline":
			push["declines"] = value
		case value == nil:
			unset[key] = ""
		default:
			set[key] = value
		}
	}

	update := bson.M{"$set": set}
	if len(push) > 0 {
		update["$push"] = push
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking models.Booking
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Distinguish a missing booking from a lost race.
			exists, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": id})
			if countErr != nil {
				return nil, fmt.Errorf("failed to verify booking: %w", countErr)
			}
			if exists == 0 {
				return nil, interfaces.ErrNotFound
			}
			return nil, interfaces.ErrStaleStatus
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	return &booking, nil
}

func (r *bookingRepository) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return r.findPaginated(ctx, bson.M{"user_id": userID}, params)
}

func (r *bookingRepository) GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return r.findPaginated(ctx, bson.M{"driver_id": driverID}, params)
}

func (r *bookingRepository) GetByStatus(ctx context.Context, status models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return r.findPaginated(ctx, bson.M{"status": status}, params)
}

func (r *bookingRepository) GetAssignablePool(ctx context.Context) ([]*models.Booking, error) {
	filter := bson.M{
		"status":    models.BookingStatusPending,
		"driver_id": bson.M{"$exists": false},
	}

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignable pool: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode assignable pool: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) findPaginated(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, total, nil
}
