// Package jobs holds the background workers: the ledger reconciliation scan
// and the low-stock scan, both driven by Asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockReconcile compares stored balances against ledger sums.
	TaskStockReconcile = "stock:reconcile"
	// TaskLowStockScan reports products under their reorder point.
	TaskLowStockScan = "stock:lowstock_scan"
)

// StockReconcilePayload configures a reconciliation run.
type StockReconcilePayload struct {
	// WarehouseID limits the scan to one warehouse; zero scans all.
	WarehouseID int64 `json:"warehouseId,omitempty"`
}

// NewStockReconcileTask constructs the reconciliation task.
func NewStockReconcileTask(payload StockReconcilePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockReconcile, data), nil
}

// LowStockScanPayload configures a low-stock scan.
type LowStockScanPayload struct {
	// Limit caps the number of reported rows; zero reports everything.
	Limit int `json:"limit,omitempty"`
}

// NewLowStockScanTask constructs the low-stock scan task.
func NewLowStockScanTask(payload LowStockScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}
