package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/pkg/utils"
)

type TenantHandler struct {
	Repo *repositories.TenantRepository
}

func NewTenantHandler(repo *repositories.TenantRepository) *TenantHandler {
	return &TenantHandler{Repo: repo}
}

func (h *TenantHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		utils.Error(w, http.StatusBadRequest, "Tenant name required")
		return
	}

	tenant := &models.Tenant{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		IDNumber: req.IDNumber,
	}
	if err := h.Repo.Create(r.Context(), tenant); err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, tenant)
}

func (h *TenantHandler) GetTenant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid tenant ID")
		return
	}
	tenant, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, tenant)
}

func (h *TenantHandler) ListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.Repo.List(r.Context())
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, tenants)
}
