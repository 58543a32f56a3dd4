package transactions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warelog/warelog/internal/platform/db"
	"github.com/warelog/warelog/internal/stock"
)

// Repository is the persistence port of the engine. All writes run through
// WithTx so a workflow transition and its stock movements commit together.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
	Get(ctx context.Context, id int64) (Transaction, error)
	GetDetails(ctx context.Context, id int64) (Details, error)
	List(ctx context.Context, filter ListFilter) ([]Transaction, error)
}

// TxRepository is the transaction-scoped write surface. GetForUpdate locks
// the header row so concurrent transitions on the same document serialize.
type TxRepository interface {
	Insert(ctx context.Context, t *Transaction) error
	InsertLines(ctx context.Context, txID int64, lines []Line) ([]Line, error)
	GetForUpdate(ctx context.Context, id int64) (Transaction, error)
	UpdateHeader(ctx context.Context, t Transaction) error
	ReplaceLines(ctx context.Context, txID int64, lines []Line) ([]Line, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	UpdateLineDoneQuantity(ctx context.Context, txID, lineID, done int64) error
	SetValidated(ctx context.Context, id int64, status Status, actorID int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
	Stock() stock.TxStore
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx, stock: stock.NewTxStore(tx)})
	})
}

const transactionColumns = `id, ref_no, type, status, warehouse_id, partner_id, created_by, validated_by, validated_at, notes, meta, created_at, updated_at`

const lineColumns = `id, product_id, qty, done_quantity, location_from, location_to, unit_cost`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var (
		t    Transaction
		meta []byte
	)
	err := row.Scan(
		&t.ID, &t.RefNo, &t.Type, &t.Status, &t.WarehouseID, &t.PartnerID,
		&t.CreatedBy, &t.ValidatedBy, &t.ValidatedAt, &t.Notes, &meta,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return Transaction{}, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &t.Meta); err != nil {
			return Transaction{}, fmt.Errorf("transactions: decode meta: %w", err)
		}
	}
	return t, nil
}

func (r *pgRepository) loadLines(ctx context.Context, txID int64) ([]Line, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+lineColumns+` FROM transaction_lines WHERE transaction_id = $1 ORDER BY id`, txID)
	if err != nil {
		return nil, fmt.Errorf("transactions: query lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var (
			l        Line
			locFrom  *string
			locTo    *string
			unitCost *float64
		)
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Qty, &l.DoneQuantity, &locFrom, &locTo, &unitCost); err != nil {
			return nil, fmt.Errorf("transactions: scan line: %w", err)
		}
		if locFrom != nil {
			l.LocationFrom = *locFrom
		}
		if locTo != nil {
			l.LocationTo = *locTo
		}
		l.UnitCost = unitCost
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Transaction, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("transactions: get: %w", err)
	}
	t.Lines, err = r.loadLines(ctx, id)
	if err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (r *pgRepository) GetDetails(ctx context.Context, id int64) (Details, error) {
	const q = `
SELECT t.id, t.ref_no, t.type, t.status, t.warehouse_id, t.partner_id,
       t.created_by, t.validated_by, t.validated_at, t.notes, t.meta,
       t.created_at, t.updated_at,
       w.name,
       COALESCE(p.name, ''),
       COALESCE(uc.name, ''),
       COALESCE(uv.name, '')
FROM transactions t
JOIN warehouses w ON w.id = t.warehouse_id
LEFT JOIN partners p ON p.id = t.partner_id
LEFT JOIN users uc ON uc.id = t.created_by
LEFT JOIN users uv ON uv.id = t.validated_by
WHERE t.id = $1`

	var (
		d    Details
		meta []byte
	)
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&d.ID, &d.RefNo, &d.Type, &d.Status, &d.WarehouseID, &d.PartnerID,
		&d.CreatedBy, &d.ValidatedBy, &d.ValidatedAt, &d.Notes, &meta,
		&d.CreatedAt, &d.UpdatedAt,
		&d.WarehouseName, &d.PartnerName, &d.CreatedByName, &d.ValidatedByName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Details{}, ErrNotFound
	}
	if err != nil {
		return Details{}, fmt.Errorf("transactions: get details: %w", err)
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &d.Meta); err != nil {
			return Details{}, fmt.Errorf("transactions: decode meta: %w", err)
		}
	}

	const lq = `
SELECT l.id, l.product_id, l.qty, l.done_quantity, l.location_from, l.location_to, l.unit_cost,
       pr.name, pr.sku
FROM transaction_lines l
JOIN products pr ON pr.id = l.product_id
WHERE l.transaction_id = $1
ORDER BY l.id`
	rows, err := r.pool.Query(ctx, lq, id)
	if err != nil {
		return Details{}, fmt.Errorf("transactions: query line details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ld      LineDetails
			locFrom *string
			locTo   *string
		)
		if err := rows.Scan(&ld.ID, &ld.ProductID, &ld.Qty, &ld.DoneQuantity, &locFrom, &locTo, &ld.UnitCost, &ld.ProductName, &ld.ProductSKU); err != nil {
			return Details{}, fmt.Errorf("transactions: scan line details: %w", err)
		}
		if locFrom != nil {
			ld.LocationFrom = *locFrom
		}
		if locTo != nil {
			ld.LocationTo = *locTo
		}
		d.LineDetails = append(d.LineDetails, ld)
		d.Lines = append(d.Lines, ld.Line)
	}
	if err := rows.Err(); err != nil {
		return Details{}, err
	}
	return d, nil
}

func (r *pgRepository) List(ctx context.Context, filter ListFilter) ([]Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM transactions`
	var (
		args  []any
		conds []string
	)
	if filter.Type != "" {
		args = append(args, filter.Type)
		conds = append(conds, "type = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	q += " ORDER BY created_at DESC, id DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("transactions: list: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("transactions: scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type pgTxRepository struct {
	tx    pgx.Tx
	stock stock.TxStore
}

func (r *pgTxRepository) Stock() stock.TxStore { return r.stock }

func (r *pgTxRepository) Insert(ctx context.Context, t *Transaction) error {
	meta, err := json.Marshal(t.Meta)
	if err != nil {
		return fmt.Errorf("transactions: encode meta: %w", err)
	}
	err = r.tx.QueryRow(ctx, `
INSERT INTO transactions (ref_no, type, status, warehouse_id, partner_id, created_by, notes, meta)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, created_at, updated_at`,
		t.RefNo, t.Type, t.Status, t.WarehouseID, t.PartnerID, t.CreatedBy, t.Notes, meta,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateRefNo
	}
	if err != nil {
		return fmt.Errorf("transactions: insert: %w", err)
	}
	return nil
}

func (r *pgTxRepository) InsertLines(ctx context.Context, txID int64, lines []Line) ([]Line, error) {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		var id int64
		err := r.tx.QueryRow(ctx, `
INSERT INTO transaction_lines (transaction_id, product_id, qty, done_quantity, location_from, location_to, unit_cost)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7)
RETURNING id`,
			txID, l.ProductID, l.Qty, l.DoneQuantity, l.LocationFrom, l.LocationTo, l.UnitCost,
		).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("transactions: insert line: %w", err)
		}
		l.ID = id
		out = append(out, l)
	}
	return out, nil
}

func (r *pgTxRepository) GetForUpdate(ctx context.Context, id int64) (Transaction, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1 FOR UPDATE`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrNotFound
	}
	if err != nil {
		return Transaction{}, fmt.Errorf("transactions: get for update: %w", err)
	}

	rows, err := r.tx.Query(ctx, `SELECT `+lineColumns+` FROM transaction_lines WHERE transaction_id = $1 ORDER BY id`, id)
	if err != nil {
		return Transaction{}, fmt.Errorf("transactions: query lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			l       Line
			locFrom *string
			locTo   *string
		)
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Qty, &l.DoneQuantity, &locFrom, &locTo, &l.UnitCost); err != nil {
			return Transaction{}, fmt.Errorf("transactions: scan line: %w", err)
		}
		if locFrom != nil {
			l.LocationFrom = *locFrom
		}
		if locTo != nil {
			l.LocationTo = *locTo
		}
		t.Lines = append(t.Lines, l)
	}
	return t, rows.Err()
}

func (r *pgTxRepository) UpdateHeader(ctx context.Context, t Transaction) error {
	meta, err := json.Marshal(t.Meta)
	if err != nil {
		return fmt.Errorf("transactions: encode meta: %w", err)
	}
	tag, err := r.tx.Exec(ctx, `
UPDATE transactions
SET ref_no = $2, warehouse_id = $3, partner_id = $4, notes = $5, meta = $6, updated_at = NOW()
WHERE id = $1`,
		t.ID, t.RefNo, t.WarehouseID, t.PartnerID, t.Notes, meta)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateRefNo
	}
	if err != nil {
		return fmt.Errorf("transactions: update header: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgTxRepository) ReplaceLines(ctx context.Context, txID int64, lines []Line) ([]Line, error) {
	if _, err := r.tx.Exec(ctx, `DELETE FROM transaction_lines WHERE transaction_id = $1`, txID); err != nil {
		return nil, fmt.Errorf("transactions: clear lines: %w", err)
	}
	return r.InsertLines(ctx, txID, lines)
}

func (r *pgTxRepository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.tx.Exec(ctx, `UPDATE transactions SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("transactions: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLineDoneQuantity records a counted quantity. Updates naming a line
// that does not belong to the transaction are ignored; other lines keep
// their prior value.
func (r *pgTxRepository) UpdateLineDoneQuantity(ctx context.Context, txID, lineID, done int64) error {
	_, err := r.tx.Exec(ctx, `
UPDATE transaction_lines SET done_quantity = $3 WHERE id = $2 AND transaction_id = $1`,
		txID, lineID, done)
	if err != nil {
		return fmt.Errorf("transactions: update line count: %w", err)
	}
	return nil
}

func (r *pgTxRepository) SetValidated(ctx context.Context, id int64, status Status, actorID int64, at time.Time) error {
	tag, err := r.tx.Exec(ctx, `
UPDATE transactions
SET status = $2, validated_by = $3, validated_at = $4, updated_at = NOW()
WHERE id = $1`,
		id, status, actorID, at)
	if err != nil {
		return fmt.Errorf("transactions: set validated: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgTxRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM transaction_lines WHERE transaction_id = $1`, id); err != nil {
		return fmt.Errorf("transactions: delete lines: %w", err)
	}
	tag, err := r.tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("transactions: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
