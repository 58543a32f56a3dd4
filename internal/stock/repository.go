package stock

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads balances and ledger entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const balanceColumns = `id, product_id, warehouse_id, location_id, quantity, reserved, last_updated`
const ledgerColumns = `id, occurred_at, entry_type, label, transaction_id, product_id, warehouse_id, location_id, qty_change, balance_after, actor_id, note`

// GetBalance returns the balance at a key, or ErrBalanceNotFound.
func (r *Repository) GetBalance(ctx context.Context, productID, warehouseID int64, locationID string) (Balance, error) {
	var b Balance
	err := r.pool.QueryRow(ctx, `SELECT `+balanceColumns+` FROM stock_balances WHERE product_id=$1 AND warehouse_id=$2 AND location_id=$3`,
		productID, warehouseID, locationID).
		Scan(&b.ID, &b.ProductID, &b.WarehouseID, &b.LocationID, &b.Quantity, &b.Reserved, &b.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Balance{ProductID: productID, WarehouseID: warehouseID, LocationID: locationID}, ErrBalanceNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

// ListBalances lists balances matching the filter.
func (r *Repository) ListBalances(ctx context.Context, filter BalanceFilter) ([]Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM stock_balances WHERE 1=1`
	args := []any{}
	argCount := 0

	if filter.ProductID != 0 {
		argCount++
		query += ` AND product_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.ProductID)
	}
	if filter.WarehouseID != 0 {
		argCount++
		query += ` AND warehouse_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.WarehouseID)
	}
	if filter.LocationID != "" {
		argCount++
		query += ` AND location_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.LocationID)
	}
	query += ` ORDER BY warehouse_id, location_id, product_id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.ID, &b.ProductID, &b.WarehouseID, &b.LocationID, &b.Quantity, &b.Reserved, &b.LastUpdated); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// Ledger lists ledger entries newest first.
func (r *Repository) Ledger(ctx context.Context, filter LedgerFilter) ([]LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM stock_ledger WHERE 1=1`
	args := []any{}
	argCount := 0

	if filter.EntryType != "" {
		argCount++
		query += ` AND entry_type = $` + strconv.Itoa(argCount)
		args = append(args, filter.EntryType)
	}
	if filter.ProductID != 0 {
		argCount++
		query += ` AND product_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.ProductID)
	}
	if filter.WarehouseID != 0 {
		argCount++
		query += ` AND warehouse_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.WarehouseID)
	}
	if filter.LocationID != "" {
		argCount++
		query += ` AND location_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.LocationID)
	}
	query += ` ORDER BY occurred_at DESC, id DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.OccurredAt, &e.EntryType, &e.Label, &e.TransactionID, &e.ProductID, &e.WarehouseID, &e.LocationID, &e.QtyChange, &e.BalanceAfter, &e.ActorID, &e.Note); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LowStock reports products whose summed quantity is below their reorder point.
func (r *Repository) LowStock(ctx context.Context) ([]LowStockRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT p.id, p.sku, p.name, p.reorder_point, p.reorder_qty, COALESCE(SUM(b.quantity), 0) AS total
FROM products p
LEFT JOIN stock_balances b ON b.product_id = p.id
GROUP BY p.id, p.sku, p.name, p.reorder_point, p.reorder_qty
HAVING COALESCE(SUM(b.quantity), 0) < p.reorder_point
ORDER BY p.sku`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LowStockRow
	for rows.Next() {
		var row LowStockRow
		if err := rows.Scan(&row.ProductID, &row.SKU, &row.Name, &row.ReorderPoint, &row.ReorderQty, &row.TotalQuantity); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Drift returns balances whose quantity disagrees with the summed ledger.
func (r *Repository) Drift(ctx context.Context) ([]DriftRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT b.product_id, b.warehouse_id, b.location_id, b.quantity, COALESCE(SUM(l.qty_change), 0) AS ledger_sum
FROM stock_balances b
LEFT JOIN stock_ledger l ON l.product_id = b.product_id AND l.warehouse_id = b.warehouse_id AND l.location_id = b.location_id
GROUP BY b.product_id, b.warehouse_id, b.location_id, b.quantity
HAVING b.quantity <> COALESCE(SUM(l.qty_change), 0)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DriftRow
	for rows.Next() {
		var row DriftRow
		if err := rows.Scan(&row.ProductID, &row.WarehouseID, &row.LocationID, &row.Quantity, &row.LedgerSum); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
