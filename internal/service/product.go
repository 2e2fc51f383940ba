package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spartak030506-hash/fastapi-shop-1/internal/domain"
	"github.com/spartak030506-hash/fastapi-shop-1/internal/event"
	"github.com/spartak030506-hash/fastapi-shop-1/internal/repository"
	apperrors "github.com/spartak030506-hash/fastapi-shop-1/pkg/errors"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/pagination"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/slug"
)

// productCacheTTL bounds staleness of cached product reads.
const productCacheTTL = 5 * time.Minute

// ProductService manages the product catalog and stock levels. The cache
// client may be nil, in which case all reads go straight to the store.
type ProductService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	cache      *redis.Client
	producer   *event.Producer
	logger     *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	cache *redis.Client,
	producer *event.Producer,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		cache:      cache,
		producer:   producer,
		logger:     logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name          string
	Description   string
	SKU           *string
	Price         float64
	CategoryID    string
	StockQuantity int
}

// UpdateProductInput holds the optional fields of a product update. Nil
// fields are left unchanged. Stock is not updatable here; it only moves
// through the stock operations.
type UpdateProductInput struct {
	Name        *string
	Description *string
	SKU         *string
	Price       *float64
	CategoryID  *string
	IsActive    *bool
}

// Create adds a new product after validating its category exists.
func (s *ProductService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.Price <= 0 {
		return nil, apperrors.InvalidInput("price must be positive")
	}
	if input.StockQuantity < 0 {
		return nil, apperrors.InvalidInput("stock quantity cannot be negative")
	}
	if input.CategoryID == "" {
		return nil, apperrors.InvalidInput("category id is required")
	}

	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("category", input.CategoryID)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:            uuid.New().String(),
		Name:          input.Name,
		Slug:          slug.Generate(input.Name),
		Description:   input.Description,
		SKU:           input.SKU,
		Price:         input.Price,
		CategoryID:    input.CategoryID,
		StockQuantity: input.StockQuantity,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

// GetByID returns a product, serving from cache when possible.
func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if cached := s.cacheGet(ctx, id); cached != nil {
		return cached, nil
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	s.cacheSet(ctx, product)
	return product, nil
}

// GetBySlug returns a product by slug. Slug reads bypass the cache, which is
// keyed by ID.
func (s *ProductService) GetBySlug(ctx context.Context, productSlug string) (*domain.Product, error) {
	product, err := s.products.GetBySlug(ctx, productSlug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productSlug)
		}
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// List returns a filtered page of products with the total match count.
func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter, params pagination.Params) ([]domain.Product, int, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, 0, apperrors.InvalidInput("min price cannot exceed max price")
	}

	products, total, err := s.products.List(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return products, total, nil
}

// Update applies a partial update to a product.
func (s *ProductService) Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("product name cannot be empty")
		}
		product.Name = *input.Name
		product.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.SKU != nil {
		product.SKU = input.SKU
	}
	if input.Price != nil {
		if *input.Price <= 0 {
			return nil, apperrors.InvalidInput("price must be positive")
		}
		product.Price = *input.Price
	}
	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NotFound("category", *input.CategoryID)
			}
			return nil, fmt.Errorf("get category: %w", err)
		}
		product.CategoryID = *input.CategoryID
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.cacheInvalidate(ctx, id)

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", id),
	)

	return product, nil
}

// Delete soft-deletes a product.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	if err := s.products.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("product", id)
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.cacheInvalidate(ctx, id)

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}

// IncreaseStock adds quantity units of stock.
func (s *ProductService) IncreaseStock(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}
	return s.adjustStock(ctx, id, quantity)
}

// DecreaseStock removes quantity units of stock. The store rejects the
// decrement atomically when it would drive stock negative.
func (s *ProductService) DecreaseStock(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}
	return s.adjustStock(ctx, id, -quantity)
}

// ListLowStock returns active products at or below the threshold.
func (s *ProductService) ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	if threshold < 0 {
		return nil, apperrors.InvalidInput("threshold cannot be negative")
	}
	return s.products.ListLowStock(ctx, threshold)
}

// adjustStock delegates to the store's conditional update. A miss is
// disambiguated by re-reading: a product that exists but did not match the
// guard had insufficient stock.
func (s *ProductService) adjustStock(ctx context.Context, id string, delta int) (*domain.Product, error) {
	product, ok, err := s.products.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, fmt.Errorf("adjust stock: %w", err)
	}
	if !ok {
		if _, err := s.products.GetByID(ctx, id); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NotFound("product", id)
			}
			return nil, fmt.Errorf("get product: %w", err)
		}
		return nil, apperrors.InvalidInput("insufficient stock")
	}

	s.cacheInvalidate(ctx, id)

	if err := s.producer.PublishStockAdjusted(ctx, id, delta, product.StockQuantity); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.stock_adjusted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "stock adjusted",
		slog.String("product_id", id),
		slog.Int("delta", delta),
		slog.Int("new_quantity", product.StockQuantity),
	)

	return product, nil
}

func productCacheKey(id string) string {
	return "product:" + id
}

func (s *ProductService) cacheGet(ctx context.Context, id string) *domain.Product {
	if s.cache == nil {
		return nil
	}

	raw, err := s.cache.Get(ctx, productCacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "product cache read failed",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}

	var p domain.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		s.logger.WarnContext(ctx, "product cache entry corrupt",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
		return nil
	}

	return &p
}

func (s *ProductService) cacheSet(ctx context.Context, p *domain.Product) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, productCacheKey(p.ID), raw, productCacheTTL).Err(); err != nil {
		s.logger.WarnContext(ctx, "product cache write failed",
			slog.String("product_id", p.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ProductService) cacheInvalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, productCacheKey(id)).Err(); err != nil {
		s.logger.WarnContext(ctx, "product cache invalidation failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}
}
