package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rental-backend/internal/cache"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
	"rental-backend/internal/timeutil"
	"rental-backend/pkg/utils"
)

type ChequeHandler struct {
	Service *services.ChequeService
	Repo    *repositories.ChequeRepository
}

func NewChequeHandler(service *services.ChequeService, repo *repositories.ChequeRepository) *ChequeHandler {
	return &ChequeHandler{Service: service, Repo: repo}
}

func (h *ChequeHandler) RegisterCheque(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChequeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cheque, err := h.Service.Register(r.Context(), &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, cheque)
}

func (h *ChequeHandler) GetCheque(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid cheque ID")
		return
	}
	cheque, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, cheque)
}

// TransitionCheque moves a cheque through its lifecycle. Clearing returns
// the allocation that the resulting payment produced.
func (h *ChequeHandler) TransitionCheque(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid cheque ID")
		return
	}

	var req models.ChequeTransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cheque, allocation, err := h.Service.Transition(r.Context(), id, &req)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidateLedgerCaches(r.Context(), cheque.LeaseID)
	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"cheque":     cheque,
		"allocation": allocation,
	})
}

func (h *ChequeHandler) ListByLease(w http.ResponseWriter, r *http.Request) {
	leaseID, err := strconv.Atoi(mux.Vars(r)["lease_id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid lease ID")
		return
	}
	cheques, err := h.Service.ListByLease(r.Context(), leaseID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, cheques)
}

// GetTimeline resolves the replacement chain around one cheque
func (h *ChequeHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid cheque ID")
		return
	}
	timeline, err := h.Service.Timeline(r.Context(), id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, timeline)
}

// ListUpcoming returns undeposited and in-flight cheques dated inside the
// requested window (default next 30 days)
func (h *ChequeHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := resolveOwnerID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid owner scope")
		return
	}
	propertyID, _ := strconv.Atoi(r.URL.Query().Get("property_id"))

	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}

	from := timeutil.DateOnly(timeutil.Now())
	to := from.Add(time.Duration(days) * 24 * time.Hour)
	cheques, err := h.Repo.ListUpcoming(r.Context(), ownerID, propertyID, from, to)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, cheques)
}
