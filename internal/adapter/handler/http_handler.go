package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/yithume/dispatch/internal/core/domain"
	"github.com/yithume/dispatch/internal/core/service"
)

type HTTPHandler struct {
	intake     *service.Intake
	directory  *service.Directory
	assigner   *service.Assigner
	lifecycle  *service.Lifecycle
	aggregator *service.PayoutAggregator
	now        func() time.Time
}

func NewHTTPHandler(
	intake *service.Intake,
	directory *service.Directory,
	assigner *service.Assigner,
	lifecycle *service.Lifecycle,
	aggregator *service.PayoutAggregator,
	now func() time.Time,
) *HTTPHandler {
	return &HTTPHandler{
		intake:     intake,
		directory:  directory,
		assigner:   assigner,
		lifecycle:  lifecycle,
		aggregator: aggregator,
		now:        now,
	}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("POST /api/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/orders", h.ListOrders)
	mux.HandleFunc("POST /api/orders/{id}/status", h.UpdateOrderStatus)
	mux.HandleFunc("POST /api/drivers", h.CreateDriver)
	mux.HandleFunc("GET /api/drivers", h.ListDrivers)
	mux.HandleFunc("POST /api/assign", h.AutoAssign)
	mux.HandleFunc("POST /api/batches/{id}/complete", h.CompleteBatch)
	mux.HandleFunc("POST /api/payouts/weekly", h.WeeklyPayouts)
}

type CreateOrderRequest struct {
	Zone          string             `json:"zone"`
	Address       string             `json:"address"`
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	Items         []domain.OrderItem `json:"items"`
	DeliveryFee   float64            `json:"delivery_fee"`
	RushFee       float64            `json:"rush_fee"`
	PaymentMethod string             `json:"payment_method"`
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.intake.SubmitOrder(r.Context(), service.OrderDraft{
		Zone:          req.Zone,
		Address:       req.Address,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Items:         req.Items,
		DeliveryFee:   req.DeliveryFee,
		RushFee:       req.RushFee,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		if req.Zone == "" {
			writeError(w, http.StatusBadRequest, "zone is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "order": order})
}

func (h *HTTPHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}
	orders, err := h.intake.ListOrders(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "orders": orders})
}

func (h *HTTPHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	order, err := h.intake.UpdateOrderStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid status")
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "order": order})
}

type CreateDriverRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Zone    string `json:"zone"`
}

func (h *HTTPHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req CreateDriverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	driver, err := h.directory.AddDriver(r.Context(), domain.Driver{
		ID:      req.ID,
		Name:    req.Name,
		Contact: req.Contact,
		Zone:    req.Zone,
	})
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "driver": driver})
}

func (h *HTTPHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	drivers, err := h.directory.ListDrivers(r.Context(), activeOnly)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "drivers": drivers})
}

func (h *HTTPHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	batches, err := h.assigner.AutoAssign(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if batches == nil {
		batches = []domain.Batch{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "batches": batches})
}

func (h *HTTPHandler) CompleteBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.lifecycle.CompleteBatch(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrBatchNotFound) {
			writeError(w, http.StatusNotFound, "batch not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "batch": batch})
}

type WeeklyPayoutsRequest struct {
	Date string `json:"date"` // YYYY-MM-DD, defaults to today
}

func (h *HTTPHandler) WeeklyPayouts(w http.ResponseWriter, r *http.Request) {
	var req WeeklyPayoutsRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	reference := h.now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return
		}
		reference = parsed
	}

	payouts, err := h.aggregator.GenerateWeeklyPayouts(r.Context(), reference)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if payouts == nil {
		payouts = []domain.Payout{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "payouts": payouts})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "dispatch"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": message})
}
