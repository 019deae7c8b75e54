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
)

type pricingRuleRepository struct {
	collection *mongo.Collection
}

func NewPricingRuleRepository(db *mongo.Database) interfaces.PricingRuleRepository {
	return &pricingRuleRepository{
		collection: db.Collection("pricing_rules"),
	}
}

func (r *pricingRuleRepository) Create(ctx context.Context, rule *models.PricingRule) error {
	rule.ID = primitive.NewObjectID()
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt

	_, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		return fmt.Errorf("failed to create pricing rule: %w", err)
	}

	return nil
}

func (r *pricingRuleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.PricingRule, error) {
	var rule models.PricingRule
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pricing rule: %w", err)
	}

	return &rule, nil
}

func (r *pricingRuleRepository) GetActiveByServiceType(ctx context.Context, serviceType models.ServiceType) ([]*models.PricingRule, error) {
	filter := bson.M{
		"service_type": serviceType,
		"is_active":    true,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*models.PricingRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode pricing rules: %w", err)
	}

	return rules, nil
}

func (r *pricingRuleRepository) GetBySlugAndServiceType(ctx context.Context, slug string, serviceType models.ServiceType) (*models.PricingRule, error) {
	filter := bson.M{
		"vehicle_type_slug": slug,
		"service_type":      serviceType,
		"is_active":         true,
	}

	var rule models.PricingRule
	err := r.collection.FindOne(ctx, filter).Decode(&rule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pricing rule: %w", err)
	}

	return &rule, nil
}

func (r *pricingRuleRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": updates})
	if err != nil {
		return fmt.Errorf("failed to update pricing rule: %w", err)
	}
	if result.MatchedCount == 0 {
		return interfaces.ErrNotFound
	}

	return nil
}

func (r *pricingRuleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete pricing rule: %w", err)
	}
	if result.DeletedCount == 0 {
		return interfaces.ErrNotFound
	}

	return nil
}
