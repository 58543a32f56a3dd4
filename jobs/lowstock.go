package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/warelog/warelog/internal/stock"
)

// LowStockSource yields products under their reorder point. stock.Repository
// satisfies it.
type LowStockSource interface {
	LowStock(ctx context.Context) ([]stock.LowStockRow, error)
}

// LowStockScanJob logs every product whose total on-hand quantity fell below
// its reorder point, together with the suggested reorder quantity.
type LowStockScanJob struct {
	Source LowStockSource
	Logger *slog.Logger
}

// NewLowStockScanJob initialises the low-stock scan handler.
func NewLowStockScanJob(source LowStockSource, logger *slog.Logger) *LowStockScanJob {
	return &LowStockScanJob{Source: source, Logger: logger}
}

// Handle executes one scan.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Source == nil {
		return errors.New("low stock scan: handler not configured")
	}
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rows, err := j.Source.LowStock(ctx)
	if err != nil {
		logger.Error("low stock scan failed", slog.Any("error", err))
		return err
	}
	if payload.Limit > 0 && len(rows) > payload.Limit {
		rows = rows[:payload.Limit]
	}

	for _, row := range rows {
		logger.Warn("product below reorder point",
			slog.Int64("product_id", row.ProductID),
			slog.String("sku", row.SKU),
			slog.Int64("total_quantity", row.TotalQuantity),
			slog.Int64("reorder_point", row.ReorderPoint),
			slog.Int64("reorder_qty", row.ReorderQty),
		)
	}
	logger.Info("low stock scan finished", slog.Int("reported", len(rows)))
	return nil
}
