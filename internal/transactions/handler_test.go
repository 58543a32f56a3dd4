package transactions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/warelog/warelog/internal/shared"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(repo *memoryRepo) http.Handler {
	h := NewHandler(testLogger(), newTestService(repo))
	r := chi.NewRouter()
	r.Use(shared.ActorMiddleware)
	r.Route("/transactions", h.MountRoutes)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(shared.ActorHeader, "42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerReceiptLifecycle(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo)

	rec := doJSON(t, router, http.MethodPost, "/transactions/receipts", CreateInput{
		RefNo:       "RC-9001",
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 3, Qty: 12, LocationTo: "A-01"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Details
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, StatusDraft, created.Status)
	require.Equal(t, int64(42), created.CreatedBy)

	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/transactions/receipts/%d/count", created.ID), countRequest{
		Updates: []CountUpdate{{LineID: created.Lines[0].ID, DoneQuantity: 12}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/transactions/receipts/%d/validate", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var done Details
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &done))
	require.Equal(t, StatusDone, done.Status)
	require.NotNil(t, done.ValidatedBy)
	require.Equal(t, int64(42), *done.ValidatedBy)

	// validating twice is a transition error
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/transactions/receipts/%d/validate", created.ID), nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerErrorMapping(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo)

	// missing document
	rec := doJSON(t, router, http.MethodGet, "/transactions/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// invalid body
	req := httptest.NewRequest(http.MethodPost, "/transactions/receipts", bytes.NewBufferString("{"))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// duplicate refNo
	in := CreateInput{
		RefNo:       "RC-9100",
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 1, Qty: 1, LocationTo: "A-01"}},
	}
	rec = doJSON(t, router, http.MethodPost, "/transactions/receipts", in)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, router, http.MethodPost, "/transactions/receipts", in)
	require.Equal(t, http.StatusConflict, rec.Code)

	// insufficient stock surfaces as 422
	repo.setBalance(5, 1, "A-01", 3)
	rec = doJSON(t, router, http.MethodPost, "/transactions/deliveries", CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 5, Qty: 3, LocationFrom: "A-01"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var delivery Details
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &delivery))
	require.Equal(t, StatusReady, delivery.Status)

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/transactions/deliveries/%d/pack", delivery.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	repo.setBalance(5, 1, "A-01", 1)
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/transactions/deliveries/%d/validate", delivery.ID), nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerAvailabilityCheck(t *testing.T) {
	repo := newMemoryRepo()
	router := newTestRouter(repo)

	repo.setBalance(5, 1, "A-01", 10)
	rec := doJSON(t, router, http.MethodPost, "/transactions/deliveries", CreateInput{
		WarehouseID: 1,
		Lines:       []LineInput{{ProductID: 5, Qty: 4, LocationFrom: "A-01"}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var delivery Details
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &delivery))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/transactions/deliveries/%d/check", delivery.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report AvailabilityReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.True(t, report.AllAvailable)
	require.Len(t, report.Items, 1)
	require.Equal(t, int64(10), report.Items[0].Available)
}
