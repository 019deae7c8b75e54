package interfaces

import (
	"context"

	"limoride/internal/models"
	"limoride/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	GetByReference(ctx context.Context, reference string) (*models.Booking, error)

	// UpdateIfStatus applies updates only while the booking is in one of
	// the allowed statuses, as a single atomic compare-and-swap. It returns
	// the post-update booking, or ErrStaleStatus when the booking exists
	// but was not in an allowed status.
	UpdateIfStatus(ctx context.Context, id primitive.ObjectID, allowed []models.BookingStatus, updates map[string]interface{}) (*models.Booking, error)

	GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetByDriver(ctx context.Context, driverID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetByStatus(ctx context.Context, status models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error)

	// GetAssignablePool returns pending bookings with no driver attached,
	// oldest scheduled first. Declined bookings reappear here.
	GetAssignablePool(ctx context.Context) ([]*models.Booking, error)
}
