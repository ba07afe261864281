package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/cache"
	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type LeaseHandler struct {
	Service *services.LeaseService
	Ledger  *services.LedgerService
}

func NewLeaseHandler(service *services.LeaseService, ledgerSvc *services.LedgerService) *LeaseHandler {
	return &LeaseHandler{Service: service, Ledger: ledgerSvc}
}

func (h *LeaseHandler) CreateLease(w http.ResponseWriter, r *http.Request) {
	var req models.CreateLeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ownerID, ok := resolveOwnerID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid owner scope")
		return
	}

	lease, generated, err := h.Service.Create(r.Context(), ownerID, &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidateDashboardCaches(r.Context(), ownerID)
	utils.JSON(w, http.StatusCreated, map[string]interface{}{
		"lease":                 lease,
		"obligations_generated": generated,
	})
}

func (h *LeaseHandler) GetLease(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid lease ID")
		return
	}
	lease, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lease)
}

func (h *LeaseHandler) ListLeases(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := resolveOwnerID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid owner scope")
		return
	}
	leases, err := h.Service.ListByOwner(r.Context(), ownerID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, leases)
}

func (h *LeaseHandler) TerminateLease(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid lease ID")
		return
	}

	var req models.TerminateLeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lease, err := h.Service.Terminate(r.Context(), id, &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidateLedgerCaches(r.Context(), lease.ID)
	utils.JSON(w, http.StatusOK, lease)
}

// RegenerateSchedule refills missing obligations for a lease. Safe to
// call repeatedly; existing periods never change.
func (h *LeaseHandler) RegenerateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid lease ID")
		return
	}

	var req struct {
		CustomDueDates []string `json:"custom_due_dates,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	generated, err := h.Service.Regenerate(r.Context(), id, req.CustomDueDates)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]int{"obligations_generated": generated})
}

// GetSchedule lists a lease's obligations with effective statuses
func (h *LeaseHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid lease ID")
		return
	}
	view, err := h.Ledger.LeaseLedger(r.Context(), id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, view.Schedules)
}

// GetLedger returns the full per-lease view: obligations with effective
// statuses, payments and running totals
func (h *LeaseHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid lease ID")
		return
	}
	view, err := h.Ledger.LeaseLedger(r.Context(), id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, view)
}
