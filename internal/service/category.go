package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spartak030506-hash/fastapi-shop-1/internal/domain"
	"github.com/spartak030506-hash/fastapi-shop-1/internal/repository"
	apperrors "github.com/spartak030506-hash/fastapi-shop-1/pkg/errors"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/slug"
)

// maxCategoryDepth bounds the ancestor walk used for cycle detection.
const maxCategoryDepth = 32

// CategoryService manages the category tree.
type CategoryService struct {
	categories repository.CategoryRepository
	logger     *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categories repository.CategoryRepository, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		categories: categories,
		logger:     logger,
	}
}

// CreateCategoryInput holds the parameters for creating a category.
type CreateCategoryInput struct {
	Name        string
	Description string
	ParentID    *string
}

// UpdateCategoryInput holds the optional fields of a category update. Nil
// fields are left unchanged. SetParent distinguishes "move to root" from
// "leave the parent alone".
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	ParentID    *string
	SetParent   bool
	IsActive    *bool
}

// Create adds a new category. The slug is derived from the name; a duplicate
// slug surfaces as an already-exists error from the store.
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}

	if input.ParentID != nil {
		if _, err := s.categories.GetByID(ctx, *input.ParentID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NotFound("category", *input.ParentID)
			}
			return nil, fmt.Errorf("get parent category: %w", err)
		}
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Slug:        slug.Generate(input.Name),
		Description: input.Description,
		ParentID:    input.ParentID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("category_id", category.ID),
		slog.String("slug", category.Slug),
	)

	return category, nil
}

// GetByID returns a category by ID.
func (s *CategoryService) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("category", id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return category, nil
}

// GetBySlug returns a category by slug.
func (s *CategoryService) GetBySlug(ctx context.Context, categorySlug string) (*domain.Category, error) {
	category, err := s.categories.GetBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("category", categorySlug)
		}
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return category, nil
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// ListChildren returns the direct children of a category.
func (s *CategoryService) ListChildren(ctx context.Context, parentID string) ([]domain.Category, error) {
	if _, err := s.categories.GetByID(ctx, parentID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("category", parentID)
		}
		return nil, fmt.Errorf("get parent category: %w", err)
	}
	return s.categories.ListChildren(ctx, parentID)
}

// Update applies a partial update. Reparenting is validated against cycles:
// a category may not become its own ancestor.
func (s *CategoryService) Update(ctx context.Context, id string, input UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("category", id)
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.InvalidInput("category name cannot be empty")
		}
		category.Name = *input.Name
		category.Slug = slug.Generate(*input.Name)
	}
	if input.Description != nil {
		category.Description = *input.Description
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}
	if input.SetParent {
		if input.ParentID != nil {
			if err := s.checkReparent(ctx, id, *input.ParentID); err != nil {
				return nil, err
			}
		}
		category.ParentID = input.ParentID
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "category updated",
		slog.String("category_id", id),
	)

	return category, nil
}

// Delete soft-deletes a category.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	children, err := s.categories.ListChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("list category children: %w", err)
	}
	if len(children) > 0 {
		return apperrors.Conflict("category has child categories")
	}

	if err := s.categories.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("category", id)
		}
		return fmt.Errorf("delete category: %w", err)
	}

	s.logger.InfoContext(ctx, "category deleted",
		slog.String("category_id", id),
	)

	return nil
}

// checkReparent validates that moving the category under newParentID keeps
// the tree acyclic. It walks ancestors from the new parent upward, bounded by
// maxCategoryDepth.
func (s *CategoryService) checkReparent(ctx context.Context, id, newParentID string) error {
	if newParentID == id {
		return apperrors.InvalidInput("category cannot be its own parent")
	}

	current := newParentID
	for depth := 0; depth < maxCategoryDepth; depth++ {
		parent, err := s.categories.GetByID(ctx, current)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NotFound("category", current)
			}
			return fmt.Errorf("get ancestor category: %w", err)
		}
		if parent.ParentID == nil {
			return nil
		}
		if *parent.ParentID == id {
			return apperrors.InvalidInput("reparenting would create a cycle")
		}
		current = *parent.ParentID
	}

	return apperrors.InvalidInput("category tree is too deep")
}
