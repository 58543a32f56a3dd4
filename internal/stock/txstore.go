package stock

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// TxStore exposes the balance and ledger write operations. It is bound to a
// database transaction; the transaction engine is its only consumer.
type TxStore interface {
	GetBalanceForUpdate(ctx context.Context, productID, warehouseID int64, locationID string) (Balance, error)
	UpsertBalance(ctx context.Context, balance Balance) (Balance, error)
	InsertLedgerEntry(ctx context.Context, entry LedgerEntry) error
}

type txStore struct {
	tx pgx.Tx
}

// NewTxStore wraps a pgx transaction with balance/ledger write operations.
func NewTxStore(tx pgx.Tx) TxStore {
	return &txStore{tx: tx}
}

// GetBalanceForUpdate locks the balance row for the rest of the transaction.
// A missing row returns a zero-quantity Balance and ErrBalanceNotFound.
func (s *txStore) GetBalanceForUpdate(ctx context.Context, productID, warehouseID int64, locationID string) (Balance, error) {
	var b Balance
	err := s.tx.QueryRow(ctx, `SELECT `+balanceColumns+` FROM stock_balances WHERE product_id=$1 AND warehouse_id=$2 AND location_id=$3 FOR UPDATE`,
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

func (s *txStore) UpsertBalance(ctx context.Context, balance Balance) (Balance, error) {
	err := s.tx.QueryRow(ctx, `INSERT INTO stock_balances (product_id, warehouse_id, location_id, quantity, reserved, last_updated)
VALUES ($1,$2,$3,$4,$5,NOW())
ON CONFLICT (product_id, warehouse_id, location_id)
DO UPDATE SET quantity=EXCLUDED.quantity, reserved=EXCLUDED.reserved, last_updated=NOW()
RETURNING id, last_updated`,
		balance.ProductID, balance.WarehouseID, balance.LocationID, balance.Quantity, balance.Reserved).
		Scan(&balance.ID, &balance.LastUpdated)
	if err != nil {
		return Balance{}, err
	}
	return balance, nil
}

// InsertLedgerEntry appends one row. OccurredAt must be stamped by the caller
// so that all entries of one validation share the same timestamp.
func (s *txStore) InsertLedgerEntry(ctx context.Context, entry LedgerEntry) error {
	_, err := s.tx.Exec(ctx, `INSERT INTO stock_ledger (occurred_at, entry_type, label, transaction_id, product_id, warehouse_id, location_id, qty_change, balance_after, actor_id, note)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		entry.OccurredAt, entry.EntryType, entry.Label, entry.TransactionID, entry.ProductID, entry.WarehouseID, entry.LocationID, entry.QtyChange, entry.BalanceAfter, entry.ActorID, entry.Note)
	return err
}
