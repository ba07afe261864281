package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/cache"
	"rental-backend/internal/middleware"
	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type PaymentHandler struct {
	Allocator *services.AllocationService
	Reports   *services.ReportService
}

func NewPaymentHandler(allocator *services.AllocationService, reports *services.ReportService) *PaymentHandler {
	return &PaymentHandler{Allocator: allocator, Reports: reports}
}

// CreatePayment records a payment. With "matches" present the allocator
// applies exactly those lines; otherwise it runs the oldest-first plan.
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	result, err := h.Allocator.RecordPayment(r.Context(), &req, userID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	cache.InvalidateLedgerCaches(r.Context(), req.LeaseID)
	utils.JSON(w, http.StatusCreated, result)
}

func (h *PaymentHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}
	payment, err := h.Allocator.GetPayment(r.Context(), id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, payment)
}

func (h *PaymentHandler) ListByLease(w http.ResponseWriter, r *http.Request) {
	leaseID, err := strconv.Atoi(mux.Vars(r)["lease_id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid lease ID")
		return
	}
	payments, err := h.Allocator.ListByLease(r.Context(), leaseID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, payments)
}

// GetMatches lists the allocation lines of one payment
func (h *PaymentHandler) GetMatches(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}
	matches, err := h.Allocator.MatchesForPayment(r.Context(), id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, matches)
}

// GetReceipt streams the payment receipt as PDF
func (h *PaymentHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid payment ID")
		return
	}

	pdfData, err := h.Reports.ReceiptPDF(r.Context(), id)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipt_%d.pdf", id))
	w.Write(pdfData)
}
