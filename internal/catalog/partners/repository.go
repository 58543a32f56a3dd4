package partners

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warelog/warelog/internal/platform/httpx"
)

// Repository persists partners.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Partner, error)
	Get(ctx context.Context, id int64) (Partner, error)
	Create(ctx context.Context, partner Partner) (Partner, error)
	Update(ctx context.Context, id int64, partner Partner) error
	Delete(ctx context.Context, id int64) error
}

// ListFilter narrows partner listings.
type ListFilter struct {
	Type   PartnerType
	Search string
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Partner, error) {
	query := `SELECT id, type, name, contact, code, created_at, updated_at FROM partners WHERE 1=1`
	args := []any{}
	argCount := 0

	if filter.Type != "" {
		argCount++
		query += ` AND type = $` + strconv.Itoa(argCount)
		args = append(args, string(filter.Type))
	}
	if filter.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filter.Search+"%")
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Partner
	for rows.Next() {
		var p Partner
		if err := rows.Scan(&p.ID, &p.Type, &p.Name, &p.Contact, &p.Code, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Partner, error) {
	var p Partner
	err := r.pool.QueryRow(ctx, `SELECT id, type, name, contact, code, created_at, updated_at FROM partners WHERE id=$1`, id).
		Scan(&p.ID, &p.Type, &p.Name, &p.Contact, &p.Code, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Partner{}, fmt.Errorf("partner %d: %w", id, httpx.ErrNotFound)
		}
		return Partner{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, partner Partner) (Partner, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO partners (type, name, contact, code, created_at, updated_at)
VALUES ($1,$2,$3,$4,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		string(partner.Type), partner.Name, partner.Contact, partner.Code).
		Scan(&partner.ID, &partner.CreatedAt, &partner.UpdatedAt)
	if err != nil {
		return Partner{}, err
	}
	return partner, nil
}

func (r *repository) Update(ctx context.Context, id int64, partner Partner) error {
	tag, err := r.pool.Exec(ctx, `UPDATE partners SET type=$2, name=$3, contact=$4, code=$5, updated_at=NOW() WHERE id=$1`,
		id, string(partner.Type), partner.Name, partner.Contact, partner.Code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("partner %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM partners WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("partner %d: %w", id, httpx.ErrNotFound)
	}
	return nil
}
