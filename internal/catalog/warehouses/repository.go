package warehouses

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

// Repository persists warehouses with their embedded locations.
type Repository interface {
	List(ctx context.Context, search string) ([]Warehouse, error)
	Get(ctx context.Context, id int64) (Warehouse, error)
	Create(ctx context.Context, warehouse Warehouse) (Warehouse, error)
	Update(ctx context.Context, id int64, warehouse Warehouse) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, search string) ([]Warehouse, error) {
	query := `SELECT id, code, name, address, locations, created_at, updated_at FROM warehouses WHERE 1=1`
	args := []any{}
	if search != "" {
		query += ` AND (name ILIKE $` + strconv.Itoa(1) + ` OR code ILIKE $` + strconv.Itoa(1) + `)`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY code ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Warehouse
	for rows.Next() {
		w, err := scanWarehouse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Warehouse, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, code, name, address, locations, created_at, updated_at FROM warehouses WHERE id=$1`, id)
	w, err := scanWarehouse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Warehouse{}, fmt.Errorf("warehouse %d: %w", id, httpx.ErrNotFound)
		}
		return Warehouse{}, err
	}
	return w, nil
}

func (r *repository) Create(ctx context.Context, warehouse Warehouse) (Warehouse, error) {
	locs, err := json.Marshal(warehouse.Locations)
	if err != nil {
		return Warehouse{}, err
	}
	err = r.pool.QueryRow(ctx, `INSERT INTO warehouses (code, name, address, locations, created_at, updated_at)
VALUES ($1,$2,$3,$4,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		warehouse.Code, warehouse.Name, warehouse.Address, locs).
		Scan(&warehouse.ID, &warehouse.CreatedAt, &warehouse.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Warehouse{}, fmt.Errorf("warehouse code %s: %w", warehouse.Code, httpx.ErrConflict)
		}
		return Warehouse{}, err
	}
	return warehouse, nil
}

func (r *repository) Update(ctx context.Context, id int64, warehouse Warehouse) error {
	locs, err := json.Marshal(warehouse.Locations)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE warehouses SET name=$2, address=$3, locations=$4, updated_at=NOW() WHERE id=$1`,
		id, warehouse.Name, warehouse.Address, locs)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("warehouse %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM warehouses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("warehouse %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func scanWarehouse(row pgx.Row) (Warehouse, error) {
	var w Warehouse
	var locs []byte
	if err := row.Scan(&w.ID, &w.Code, &w.Name, &w.Address, &locs, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return Warehouse{}, err
	}
	if len(locs) > 0 {
		if err := json.Unmarshal(locs, &w.Locations); err != nil {
			return Warehouse{}, err
		}
	}
	return w, nil
}
