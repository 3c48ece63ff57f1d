package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	domain "github.com/familyjustice/orders-api/internal/domain"
	"github.com/familyjustice/orders-api/internal/platform/httpx"
	"github.com/familyjustice/orders-api/internal/repositories"
	"github.com/familyjustice/orders-api/internal/services"
)

const maxAmendBodySize = 4 * 1024

var validAmendRoles = map[domain.UserRole]struct{}{
	domain.RoleJudge:      {},
	domain.RoleCourtAdmin: {},
	domain.RoleSolicitor:  {},
}

// OrderHandlers exposes the order lifecycle callbacks invoked by the case
// management layer, plus a read endpoint for both order lists.
type OrderHandlers struct {
	cases     repositories.CaseRepository
	lifecycle services.OrderLifecycleService
}

// NewOrderHandlers constructs a new OrderHandlers instance.
func NewOrderHandlers(cases repositories.CaseRepository, lifecycle services.OrderLifecycleService) *OrderHandlers {
	return &OrderHandlers{
		cases:     cases,
		lifecycle: lifecycle,
	}
}

// Routes registers the /cases/{caseID}/orders endpoints.
func (h *OrderHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/cases/{caseID}/orders", h.listOrders)
	r.Post("/cases/{caseID}/orders:draft", h.buildDraft)
	r.Post("/cases/{caseID}/orders:finalise", h.finaliseOrder)
	r.Post("/cases/{caseID}/orders:promote", h.promoteDraft)
	r.Post("/cases/{caseID}/orders:amend", h.amendOrder)
}

type draftOrderResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	TypeLabel   string    `json:"typeLabel,omitempty"`
	FileName    string    `json:"fileName,omitempty"`
	FileNameCy  string    `json:"fileNameCy,omitempty"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	DateCreated time.Time `json:"dateCreated"`
}

type finalOrderResponse struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	TypeLabel     string     `json:"typeLabel,omitempty"`
	FileName      string     `json:"fileName,omitempty"`
	FileNameCy    string     `json:"fileNameCy,omitempty"`
	CreatedBy     string     `json:"createdBy,omitempty"`
	Recipients    string     `json:"recipients,omitempty"`
	DateCreated   time.Time  `json:"dateCreated"`
	OrderMadeDate string     `json:"orderMadeDate,omitempty"`
	AmendedDate   *time.Time `json:"amendedDate,omitempty"`
}

type ordersResponse struct {
	CaseID      string               `json:"caseId"`
	DraftOrders []draftOrderResponse `json:"draftOrders"`
	FinalOrders []finalOrderResponse `json:"finalOrders"`
}

type amendOrderRequest struct {
	Role string `json:"role"`
}

func (h *OrderHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	record, ok := h.loadCase(w, r)
	if !ok {
		return
	}

	writeJSON(ctx, w, http.StatusOK, buildOrdersResponse(record.ID, services.OrderStores{
		DraftOrders: record.DraftOrders,
		FinalOrders: record.FinalOrders,
	}))
}

func (h *OrderHandlers) buildDraft(w http.ResponseWriter, r *http.Request) {
	h.runLifecycle(w, r, func(record domain.CaseData) (services.OrderStores, domain.ManageOrdersState, error) {
		stores, err := h.lifecycle.BuildDraft(r.Context(), services.BuildDraftCommand{Case: record})
		return stores, record.ManageOrders, err
	})
}

func (h *OrderHandlers) finaliseOrder(w http.ResponseWriter, r *http.Request) {
	h.runLifecycle(w, r, func(record domain.CaseData) (services.OrderStores, domain.ManageOrdersState, error) {
		stores, err := h.lifecycle.FinaliseOrder(r.Context(), services.FinaliseOrderCommand{Case: record})
		return stores, domain.ManageOrdersState{}, err
	})
}

func (h *OrderHandlers) promoteDraft(w http.ResponseWriter, r *http.Request) {
	h.runLifecycle(w, r, func(record domain.CaseData) (services.OrderStores, domain.ManageOrdersState, error) {
		stores, err := h.lifecycle.PromoteDraftToFinal(r.Context(), services.PromoteDraftCommand{Case: record})
		return stores, domain.ManageOrdersState{}, err
	})
}

func (h *OrderHandlers) amendOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req amendOrderRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxAmendBodySize))
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unable to read request body", http.StatusBadRequest))
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
			return
		}
	}

	role := domain.UserRole(strings.TrimSpace(req.Role))
	if _, ok := validAmendRoles[role]; !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "role must be one of Judge, CourtAdmin, Solicitor", http.StatusBadRequest))
		return
	}

	h.runLifecycle(w, r, func(record domain.CaseData) (services.OrderStores, domain.ManageOrdersState, error) {
		stores, err := h.lifecycle.AmendIssuedOrder(ctx, services.AmendOrderCommand{Case: record, Role: role})
		return stores, domain.ManageOrdersState{}, err
	})
}

// runLifecycle loads the case, applies one lifecycle operation, writes the
// updated stores back and renders the resulting lists.
func (h *OrderHandlers) runLifecycle(w http.ResponseWriter, r *http.Request, op func(domain.CaseData) (services.OrderStores, domain.ManageOrdersState, error)) {
	ctx := r.Context()

	record, ok := h.loadCase(w, r)
	if !ok {
		return
	}

	stores, state, err := op(record)
	if err != nil {
		writeLifecycleError(w, r, err)
		return
	}

	if err := h.cases.SaveOrders(ctx, record.ID, domain.OrdersUpdate{
		DraftOrders:  stores.DraftOrders,
		FinalOrders:  stores.FinalOrders,
		ManageOrders: state,
	}); err != nil {
		writeRepositoryError(w, r, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, buildOrdersResponse(record.ID, stores))
}

func (h *OrderHandlers) loadCase(w http.ResponseWriter, r *http.Request) (domain.CaseData, bool) {
	ctx := r.Context()

	if h.cases == nil || h.lifecycle == nil {
		httpx.WriteError(ctx, w, httpx.NewError("service_unavailable", "order service unavailable", http.StatusServiceUnavailable))
		return domain.CaseData{}, false
	}

	caseID := strings.TrimSpace(chi.URLParam(r, "caseID"))
	if caseID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "case id is required", http.StatusBadRequest))
		return domain.CaseData{}, false
	}

	record, err := h.cases.GetCase(ctx, caseID)
	if err != nil {
		writeRepositoryError(w, r, err)
		return domain.CaseData{}, false
	}
	record.ID = caseID
	return record, true
}

func writeLifecycleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "the selected order no longer exists", http.StatusNotFound))
	case errors.Is(err, services.ErrUnknownOrderType):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unsupported order type", http.StatusBadRequest).
			WithValidationErrors("The selected order type is not supported"))
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order details are incomplete", http.StatusBadRequest).
			WithValidationErrors("Select the order you want to amend"))
	case errors.Is(err, services.ErrStamping):
		httpx.WriteError(ctx, w, httpx.NewError("stamping_failed", "the amendment stamp could not be applied", http.StatusBadGateway))
	case errors.Is(err, services.ErrDocumentStorage):
		httpx.WriteError(ctx, w, httpx.NewError("document_storage_failed", "the amended document could not be stored", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
	}
}

func writeRepositoryError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			httpx.WriteError(ctx, w, httpx.NewError("case_not_found", "case not found", http.StatusNotFound))
			return
		case repoErr.IsUnavailable():
			httpx.WriteError(ctx, w, httpx.NewError("storage_unavailable", "case store temporarily unavailable", http.StatusServiceUnavailable))
			return
		case repoErr.IsConflict():
			httpx.WriteError(ctx, w, httpx.NewError("conflict", "case record changed during the operation", http.StatusConflict))
			return
		}
	}
	httpx.WriteError(ctx, w, httpx.NewError("internal_server_error", "internal server error", http.StatusInternalServerError))
}

func buildOrdersResponse(caseID string, stores services.OrderStores) ordersResponse {
	resp := ordersResponse{
		CaseID:      caseID,
		DraftOrders: make([]draftOrderResponse, 0, len(stores.DraftOrders)),
		FinalOrders: make([]finalOrderResponse, 0, len(stores.FinalOrders)),
	}
	for _, draft := range stores.DraftOrders {
		resp.DraftOrders = append(resp.DraftOrders, draftOrderResponse{
			ID:          draft.ID,
			Type:        string(draft.OrderType),
			TypeLabel:   draft.OrderTypeLabel,
			FileName:    documentName(draft.Document),
			FileNameCy:  documentName(draft.DocumentWelsh),
			Status:      string(draft.OtherDetails.Status),
			CreatedBy:   draft.OtherDetails.CreatedBy,
			DateCreated: draft.OtherDetails.DateCreated,
		})
	}
	for _, final := range stores.FinalOrders {
		resp.FinalOrders = append(resp.FinalOrders, finalOrderResponse{
			ID:            final.ID,
			Type:          string(final.OrderType),
			TypeLabel:     final.OrderTypeLabel,
			FileName:      documentName(final.Document),
			FileNameCy:    documentName(final.DocumentWelsh),
			CreatedBy:     final.OtherDetails.CreatedBy,
			Recipients:    final.OtherDetails.OrderRecipients,
			DateCreated:   final.DateCreated,
			OrderMadeDate: final.OtherDetails.OrderMadeDate,
			AmendedDate:   final.OrderAmendedDate,
		})
	}
	return resp
}

func documentName(doc *domain.Document) string {
	if doc == nil {
		return ""
	}
	return doc.FileName
}

func writeJSON(_ context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
