package interfaces

import (
	"context"

	"limoride/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PricingRuleRepository interface {
	Create(ctx context.Context, rule *models.PricingRule) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.PricingRule, error)

	// GetActiveByServiceType returns every active rule for a service type.
	// An empty result is a quote-level configuration error, decided by the
	// caller, not here.
	GetActiveByServiceType(ctx context.Context, serviceType models.ServiceType) ([]*models.PricingRule, error)

	GetBySlugAndServiceType(ctx context.Context, slug string, serviceType models.ServiceType) (*models.PricingRule, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
