package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/middleware"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/pkg/utils"
)

type PropertyHandler struct {
	Repo *repositories.PropertyRepository
}

func NewPropertyHandler(repo *repositories.PropertyRepository) *PropertyHandler {
	return &PropertyHandler{Repo: repo}
}

// resolveOwnerID picks the owner scope for a request. Owners only ever
// see their own portfolio; managers and admins can pass ?owner_id=.
func resolveOwnerID(r *http.Request) (int, bool) {
	role, _ := middleware.GetRoleFromContext(r.Context())
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return 0, false
	}
	if role == "owner" {
		return userID, true
	}
	if raw := r.URL.Query().Get("owner_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil && id > 0 {
			return id, true
		}
		return 0, false
	}
	return userID, true
}

func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		utils.Error(w, http.StatusBadRequest, "Property name required")
		return
	}

	ownerID, ok := resolveOwnerID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid owner scope")
		return
	}

	property := &models.Property{
		OwnerID:  ownerID,
		Name:     req.Name,
		Address:  req.Address,
		City:     req.City,
		Currency: req.Currency,
	}
	if err := h.Repo.Create(r.Context(), property); err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, property)
}

func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid property ID")
		return
	}
	property, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, property)
}

func (h *PropertyHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := resolveOwnerID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid owner scope")
		return
	}
	properties, err := h.Repo.ListByOwner(r.Context(), ownerID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, properties)
}

func (h *PropertyHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Label == "" || req.PropertyID == 0 {
		utils.Error(w, http.StatusBadRequest, "Unit label and property required")
		return
	}

	unit := &models.Unit{
		PropertyID: req.PropertyID,
		Label:      req.Label,
		Bedrooms:   req.Bedrooms,
	}
	if err := h.Repo.CreateUnit(r.Context(), unit); err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, unit)
}

func (h *PropertyHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	propertyID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid property ID")
		return
	}
	units, err := h.Repo.ListUnits(r.Context(), propertyID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, units)
}
