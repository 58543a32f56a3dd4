package transactions

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warelog/warelog/internal/platform/httpx"
	"github.com/warelog/warelog/internal/stock"
)

// Handler exposes the transaction workflow endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the transactions handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers the generic document routes and the four workflow
// sub-trees.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Post("/{id}/finalize", h.finalize)

	r.Post("/receipts", h.createReceipt)
	r.Put("/receipts/{id}/count", h.updateCount)
	r.Post("/receipts/{id}/validate", h.validateReceipt)

	r.Post("/deliveries", h.createDelivery)
	r.Post("/deliveries/{id}/check", h.checkAvailability)
	r.Post("/deliveries/{id}/pack", h.markPacked)
	r.Post("/deliveries/{id}/validate", h.validateDelivery)

	r.Post("/transfers", h.createTransfer)
	r.Post("/transfers/{id}/validate", h.validateTransfer)

	r.Post("/adjustments", h.createAdjustment)
	r.Post("/adjustments/{id}/approve", h.approveAdjustment)
}

// respondErr translates engine errors to problem responses. Workflow guard
// failures come back as 400s with the guard message as detail.
func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateRefNo):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, stock.ErrInsufficientStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Insufficient Stock", err.Error())
	case errors.Is(err, ErrWrongType),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrMissingLocation),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrNoLines):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Transition", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func (h *Handler) decodeCreate(r *http.Request, in *CreateInput) error {
	if err := httpx.DecodeJSON(r, in); err != nil {
		return err
	}
	return h.validate.Struct(in)
}

func urlID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Type:   Type(q.Get("type")),
		Status: Status(q.Get("status")),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	result, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.Get(r.Context(), urlID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := h.decodeCreate(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	details, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Error("create transaction", slog.Any("error", err), slog.String("type", string(in.Type)))
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, details)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := h.decodeCreate(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	details, err := h.service.Update(r.Context(), urlID(r), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), urlID(r)); err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) finalize(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.Finalize(r.Context(), urlID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) createReceipt(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := h.decodeCreate(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	details, err := h.service.CreateReceipt(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, details)
}

type countRequest struct {
	Updates []CountUpdate `json:"updates" validate:"required,min=1,dive"`
}

func (h *Handler) updateCount(w http.ResponseWriter, r *http.Request) {
	var req countRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	details, err := h.service.UpdateReceiptCount(r.Context(), urlID(r), req.Updates)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) validateReceipt(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.ValidateReceipt(r.Context(), urlID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) createDelivery(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := h.decodeCreate(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	details, err := h.service.CreateDelivery(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, details)
}

func (h *Handler) checkAvailability(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.CheckAvailability(r.Context(), urlID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) markPacked(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.MarkPacked(r.Context(), urlID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) validateDelivery(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.ValidateDelivery(r.Context(), urlID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := h.decodeCreate(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	details, err := h.service.CreateTransfer(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, details)
}

func (h *Handler) validateTransfer(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.ValidateTransfer(r.Context(), urlID(r))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}

func (h *Handler) createAdjustment(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := h.decodeCreate(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	details, err := h.service.CreateAdjustment(r.Context(), in)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, details)
}

func (h *Handler) approveAdjustment(w http.ResponseWriter, r *http.Request) {
	// Body is optional; a non-empty notes field replaces the
	// transaction's notes before approval.
	var req struct {
		Notes string `json:"notes"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	details, err := h.service.ApproveAdjustment(r.Context(), urlID(r), req.Notes)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, details)
}
