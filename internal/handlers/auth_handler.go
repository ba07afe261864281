package handlers

import (
	"encoding/json"
	"net/http"

	"rental-backend/internal/cache"
	"rental-backend/internal/middleware"
	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type AuthHandler struct {
	Users *services.UserService
	TOTP  *services.TOTPService
}

func NewAuthHandler(users *services.UserService, totp *services.TOTPService) *AuthHandler {
	return &AuthHandler{Users: users, TOTP: totp}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Users.Login(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, err.Error())
		return
	}

	if resp.User != nil {
		cache.CacheAuth(r.Context(), req.Email, req.Password, int64(resp.User.ID))
	}
	utils.JSON(w, http.StatusOK, resp)
}

// VerifyTOTP is login step 2 for accounts with the second factor on
func (h *AuthHandler) VerifyTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Users.VerifyTOTPLogin(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusUnauthorized, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	user, err := h.Users.GetUser(r.Context(), userID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, user)
}

// SetupTOTP provisions a new TOTP secret for the calling user
func (h *AuthHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	user, err := h.Users.GetUser(r.Context(), userID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	setup, err := h.TOTP.GenerateSetup(r.Context(), user)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, setup)
}

// EnableTOTP verifies the first code and turns the second factor on
func (h *AuthHandler) EnableTOTP(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.TOTP.VerifyAndEnable(r.Context(), userID, req.Code); err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"enabled": true})
}
