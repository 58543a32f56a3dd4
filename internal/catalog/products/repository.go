package products

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warelog/warelog/internal/platform/db"
	"github.com/warelog/warelog/internal/platform/httpx"
)

// Repository persists products.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetBySKU(ctx context.Context, sku string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) error
	Delete(ctx context.Context, id int64) error
}

// ListFilter narrows product listings.
type ListFilter struct {
	Category string
	Search   string
	Limit    int
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, sku, name, category, description, unit, vendor_id, image_url, reorder_point, reorder_qty, attributes, created_at, updated_at`

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	argCount := 0

	if filter.Category != "" {
		argCount++
		query += ` AND category = $` + strconv.Itoa(argCount)
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR sku ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filter.Search+"%")
	}
	query += ` ORDER BY name ASC`
	if filter.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("product %d: %w", id, httpx.ErrNotFound)
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) GetBySKU(ctx context.Context, sku string) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE sku=$1`, sku)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("product %s: %w", sku, httpx.ErrNotFound)
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	attrs, err := json.Marshal(product.Attributes)
	if err != nil {
		return Product{}, err
	}
	err = r.pool.QueryRow(ctx, `INSERT INTO products (sku, name, category, description, unit, vendor_id, image_url, reorder_point, reorder_qty, attributes, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		product.SKU, product.Name, product.Category, product.Description, product.Unit, product.VendorID, product.ImageURL, product.ReorderPoint, product.ReorderQty, attrs).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Product{}, fmt.Errorf("product sku %s: %w", product.SKU, httpx.ErrConflict)
		}
		return Product{}, err
	}
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) error {
	attrs, err := json.Marshal(product.Attributes)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE products SET name=$2, category=$3, description=$4, unit=$5, vendor_id=$6, image_url=$7, reorder_point=$8, reorder_qty=$9, attributes=$10, updated_at=NOW() WHERE id=$1`,
		id, product.Name, product.Category, product.Description, product.Unit, product.VendorID, product.ImageURL, product.ReorderPoint, product.ReorderQty, attrs)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	var attrs []byte
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Description, &p.Unit, &p.VendorID, &p.ImageURL, &p.ReorderPoint, &p.ReorderQty, &attrs, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &p.Attributes); err != nil {
			return Product{}, err
		}
	}
	return p, nil
}
