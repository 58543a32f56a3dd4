package stock

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warelog/warelog/internal/platform/httpx"
)

// Handler exposes read-only stock endpoints.
type Handler struct {
	logger *slog.Logger
	repo   *Repository
}

// NewHandler constructs the stock handler.
func NewHandler(logger *slog.Logger, repo *Repository) *Handler {
	return &Handler{logger: logger, repo: repo}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/items", h.listBalances)
	r.Get("/items/product/{productId}", h.listByProduct)
	r.Get("/ledger", h.listLedger)
	r.Get("/low", h.lowStock)
}

func (h *Handler) listBalances(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := BalanceFilter{LocationID: q.Get("locationId")}
	filter.ProductID, _ = strconv.ParseInt(q.Get("productId"), 10, 64)
	filter.WarehouseID, _ = strconv.ParseInt(q.Get("warehouseId"), 10, 64)

	balances, err := h.repo.ListBalances(r.Context(), filter)
	if err != nil {
		h.logger.Error("list stock balances", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, balances)
}

func (h *Handler) listByProduct(w http.ResponseWriter, r *http.Request) {
	productID, _ := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	balances, err := h.repo.ListBalances(r.Context(), BalanceFilter{ProductID: productID})
	if err != nil {
		h.logger.Error("list stock by product", slog.Any("error", err), slog.Int64("product_id", productID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, balances)
}

func (h *Handler) listLedger(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := LedgerFilter{
		EntryType:  q.Get("type"),
		LocationID: q.Get("locationId"),
	}
	filter.ProductID, _ = strconv.ParseInt(q.Get("productId"), 10, 64)
	filter.WarehouseID, _ = strconv.ParseInt(q.Get("warehouseId"), 10, 64)
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	entries, err := h.repo.Ledger(r.Context(), filter)
	if err != nil {
		h.logger.Error("list stock ledger", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.LowStock(r.Context())
	if err != nil {
		h.logger.Error("list low stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}
