package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spartak030506-hash/fastapi-shop-1/internal/domain"
	pkgkafka "github.com/spartak030506-hash/fastapi-shop-1/pkg/kafka"
)

// Kafka topic constants for domain events.
const (
	TopicUserRegistered      = "shop.user.registered"
	TopicUserPasswordChanged = "shop.user.password_changed"
	TopicUserDeleted         = "shop.user.deleted"
	TopicStockAdjusted       = "shop.product.stock_adjusted"
)

// Aggregate type constants.
const (
	AggregateTypeUser    = "user"
	AggregateTypeProduct = "product"
)

// Source identifier for events originating from this service.
const SourceShop = "shop-api"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// UserPasswordChangedData is the payload for a user.password_changed event.
type UserPasswordChangedData struct {
	UserID          string `json:"user_id"`
	SessionsRevoked int64  `json:"sessions_revoked"`
}

// UserDeletedData is the payload for a user.deleted event.
type UserDeletedData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// StockAdjustedData is the payload for a product.stock_adjusted event.
type StockAdjustedData struct {
	ProductID   string `json:"product_id"`
	Delta       int    `json:"delta"`
	NewQuantity int    `json:"new_quantity"`
}

// Producer publishes domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, data)
}

// PublishUserPasswordChanged publishes a user.password_changed event.
func (p *Producer) PublishUserPasswordChanged(ctx context.Context, userID string, sessionsRevoked int64) error {
	data := UserPasswordChangedData{
		UserID:          userID,
		SessionsRevoked: sessionsRevoked,
	}
	return p.publish(ctx, TopicUserPasswordChanged, userID, AggregateTypeUser, data)
}

// PublishUserDeleted publishes a user.deleted event.
func (p *Producer) PublishUserDeleted(ctx context.Context, userID, email string) error {
	data := UserDeletedData{
		UserID: userID,
		Email:  email,
	}
	return p.publish(ctx, TopicUserDeleted, userID, AggregateTypeUser, data)
}

// PublishStockAdjusted publishes a product.stock_adjusted event.
func (p *Producer) PublishStockAdjusted(ctx context.Context, productID string, delta, newQuantity int) error {
	data := StockAdjustedData{
		ProductID:   productID,
		Delta:       delta,
		NewQuantity: newQuantity,
	}
	return p.publish(ctx, TopicStockAdjusted, productID, AggregateTypeProduct, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceShop, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published domain event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
