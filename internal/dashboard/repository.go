package dashboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository computes the dashboard counters straight from storage.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the pgx-backed stats source.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CollectStats runs the counter queries. Pending receipts are anything not
// yet validated; pending deliveries include the waiting and packed states.
func (r *Repository) CollectStats(ctx context.Context) (Stats, error) {
	const q = `
SELECT
  (SELECT COUNT(*) FROM products),
  (SELECT COUNT(*) FROM warehouses),
  (SELECT COUNT(*) FROM (
     SELECT p.id
     FROM products p
     LEFT JOIN stock_balances b ON b.product_id = p.id
     GROUP BY p.id, p.reorder_point
     HAVING COALESCE(SUM(b.quantity), 0) < p.reorder_point
   ) low),
  (SELECT COUNT(*) FROM transactions WHERE type = 'Receipt' AND status IN ('Draft', 'Counting')),
  (SELECT COUNT(*) FROM transactions WHERE type = 'Delivery' AND status IN ('Draft', 'Waiting', 'Ready', 'Packed'))`

	var s Stats
	err := r.pool.QueryRow(ctx, q).Scan(
		&s.TotalProducts,
		&s.TotalWarehouses,
		&s.LowStockCount,
		&s.PendingReceipts,
		&s.PendingDeliveries,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("dashboard: collect stats: %w", err)
	}
	return s, nil
}
