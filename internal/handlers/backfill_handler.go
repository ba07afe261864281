package handlers

import (
	"net/http"

	"rental-backend/internal/cache"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type BackfillHandler struct {
	Service *services.BackfillService
}

func NewBackfillHandler(service *services.BackfillService) *BackfillHandler {
	return &BackfillHandler{Service: service}
}

// Run triggers a repair pass. ?dry_run=true reports without writing.
func (h *BackfillHandler) Run(w http.ResponseWriter, r *http.Request) {
	dryRun := r.URL.Query().Get("dry_run") == "true"

	report, err := h.Service.Run(r.Context(), dryRun)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	if !dryRun {
		cache.InvalidatePattern(r.Context(), "ledger:lease:*")
		cache.InvalidatePattern(r.Context(), "dashboard:owner:*")
	}
	utils.JSON(w, http.StatusOK, report)
}
