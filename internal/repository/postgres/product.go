package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spartak030506-hash/fastapi-shop-1/internal/domain"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/database"
	apperrors "github.com/spartak030506-hash/fastapi-shop-1/pkg/errors"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/pagination"
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = "id, name, slug, description, sku, price, category_id, stock_quantity, is_active, is_deleted, created_at, updated_at"

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (id, name, slug, description, sku, price, category_id, stock_quantity, is_active, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Slug,
		p.Description,
		p.SKU,
		p.Price,
		p.CategoryID,
		p.StockQuantity,
		p.IsActive,
		p.IsDeleted,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return productUniqueError(err, p)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// productUniqueError maps a unique violation to the colliding field. The
// partial indexes idx_products_slug_live and idx_products_sku_live are the
// only unique constraints on the table.
func productUniqueError(err error, p *domain.Product) error {
	if strings.Contains(err.Error(), "idx_products_sku_live") {
		sku := ""
		if p.SKU != nil {
			sku = *p.SKU
		}
		return apperrors.AlreadyExists("product", "sku", sku)
	}
	return apperrors.AlreadyExists("product", "slug", p.Slug)
}

// GetByID retrieves a non-deleted product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND NOT is_deleted`

	return r.scanProduct(ctx, query, id)
}

// GetBySlug retrieves a non-deleted product by its slug.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE slug = $1 AND NOT is_deleted`

	return r.scanProduct(ctx, query, slug)
}

// List returns a filtered page of non-deleted products plus the total count
// of matches.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter, params pagination.Params) ([]domain.Product, int, error) {
	where, args := buildProductFilter(filter)

	countQuery := "SELECT COUNT(*) FROM products WHERE " + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	query := "SELECT " + productColumns + " FROM products WHERE " + where +
		" ORDER BY created_at DESC" +
		" LIMIT $" + strconv.Itoa(len(args)+1) + " OFFSET $" + strconv.Itoa(len(args)+2)
	args = append(args, params.PerPage, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// buildProductFilter renders the WHERE clause and positional args for a
// product filter. The soft-delete predicate is always applied.
func buildProductFilter(filter domain.ProductFilter) (string, []any) {
	clauses := []string{"NOT is_deleted"}
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		clauses = append(clauses, "(name ILIKE "+p+" OR description ILIKE "+p+")")
	}
	if filter.CategoryID != "" {
		clauses = append(clauses, "category_id = "+arg(filter.CategoryID))
	}
	if filter.MinPrice != nil {
		clauses = append(clauses, "price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		clauses = append(clauses, "price <= "+arg(*filter.MaxPrice))
	}
	if filter.InStock != nil {
		if *filter.InStock {
			clauses = append(clauses, "stock_quantity > 0")
		} else {
			clauses = append(clauses, "stock_quantity = 0")
		}
	}
	if filter.IsActive != nil {
		clauses = append(clauses, "is_active = "+arg(*filter.IsActive))
	}

	return strings.Join(clauses, " AND "), args
}

// Update modifies an existing non-deleted product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, slug = $2, description = $3, sku = $4, price = $5,
		    category_id = $6, is_active = $7, updated_at = $8
		WHERE id = $9 AND NOT is_deleted`

	ct, err := r.pool.Exec(ctx, query,
		p.Name,
		p.Slug,
		p.Description,
		p.SKU,
		p.Price,
		p.CategoryID,
		p.IsActive,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return productUniqueError(err, p)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", p.ID)
	}

	return nil
}

// SoftDelete marks a product as deleted.
func (r *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	query := `UPDATE products SET is_deleted = true, updated_at = $1 WHERE id = $2 AND NOT is_deleted`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("soft delete product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}

	return nil
}

// AdjustStock applies the delta as a single guarded update. The guard in the
// WHERE clause keeps concurrent decrements from driving stock negative: the
// row only matches when the resulting quantity stays non-negative, so of two
// racing decrements that would overdraw, exactly one succeeds.
func (r *ProductRepository) AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, bool, error) {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = $2
		WHERE id = $3 AND NOT is_deleted AND stock_quantity + $1 >= 0
		RETURNING ` + productColumns

	var p domain.Product
	err := r.pool.QueryRow(ctx, query, delta, time.Now().UTC(), id).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.SKU,
		&p.Price,
		&p.CategoryID,
		&p.StockQuantity,
		&p.IsActive,
		&p.IsDeleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("adjust stock: %w", err)
	}

	return &p, true, nil
}

// ListLowStock returns non-deleted active products at or below the threshold.
func (r *ProductRepository) ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE NOT is_deleted AND is_active AND stock_quantity <= $1
		ORDER BY stock_quantity ASC`

	rows, err := r.pool.Query(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("list low stock products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepository) scanProduct(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.SKU,
		&p.Price,
		&p.CategoryID,
		&p.StockQuantity,
		&p.IsActive,
		&p.IsDeleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.SKU,
			&p.Price,
			&p.CategoryID,
			&p.StockQuantity,
			&p.IsActive,
			&p.IsDeleted,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	if products == nil {
		products = []domain.Product{}
	}

	return products, nil
}
