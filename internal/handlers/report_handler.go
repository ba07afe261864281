package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"rental-backend/internal/cache"
	"rental-backend/internal/services"
	"rental-backend/internal/timeutil"
	"rental-backend/pkg/utils"
)

type ReportHandler struct {
	Reports *services.ReportService
	Ledger  *services.LedgerService
	Archive *services.ArchiveService
}

func NewReportHandler(reports *services.ReportService, ledgerSvc *services.LedgerService, archive *services.ArchiveService) *ReportHandler {
	return &ReportHandler{Reports: reports, Ledger: ledgerSvc, Archive: archive}
}

// parseWindow resolves from/to query params, defaulting to the current month
func parseWindow(r *http.Request) (time.Time, time.Time, error) {
	now := timeutil.Now()
	from := timeutil.StartOfMonth(now)
	to := timeutil.EndOfMonth(now)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := timeutil.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad from date %q", raw)
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := timeutil.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad to date %q", raw)
		}
		to = parsed
	}
	return from, to, nil
}

// GetDashboard serves the owner dashboard, cached for a minute per owner
func (h *ReportHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := resolveOwnerID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid owner scope")
		return
	}
	propertyID, _ := strconv.Atoi(r.URL.Query().Get("property_id"))

	cacheKey := fmt.Sprintf(cache.DashboardKeyFmt, ownerID)
	if propertyID == 0 {
		if data, ok := cache.GetCached(r.Context(), cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(data)
			return
		}
	}

	summary, err := h.Reports.Dashboard(r.Context(), ownerID, propertyID)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	if propertyID == 0 {
		if data, err := json.Marshal(summary); err == nil {
			cache.SetCached(r.Context(), cacheKey, data, time.Minute)
		}
	}
	utils.JSON(w, http.StatusOK, summary)
}

// GetMonthlySummary accepts ?month=2026-01, defaulting to the current month
func (h *ReportHandler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := resolveOwnerID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid owner scope")
		return
	}
	propertyID, _ := strconv.Atoi(r.URL.Query().Get("property_id"))

	now := timeutil.Now()
	year, month := now.Year(), now.Month()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01", raw, timeutil.GST)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Bad month, expected YYYY-MM")
			return
		}
		year, month = parsed.Year(), parsed.Month()
	}

	summary, err := h.Reports.MonthSummary(r.Context(), ownerID, propertyID, year, month)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

// GetQuarterlySummary accepts ?anchor=YYYY-MM-DD inside the wanted quarter
func (h *ReportHandler) GetQuarterlySummary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := resolveOwnerID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid owner scope")
		return
	}
	propertyID, _ := strconv.Atoi(r.URL.Query().Get("property_id"))

	anchor := timeutil.Now()
	if raw := r.URL.Query().Get("anchor"); raw != "" {
		parsed, err := timeutil.ParseDate(raw)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "Bad anchor date")
			return
		}
		anchor = parsed
	}

	summary, err := h.Reports.QuarterSummary(r.Context(), ownerID, propertyID, anchor)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) GetOverdue(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := resolveOwnerID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid owner scope")
		return
	}
	propertyID, _ := strconv.Atoi(r.URL.Query().Get("property_id"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.Ledger.Overdue(r.Context(), ownerID, propertyID, limit)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, items)
}

// GetPortfolio is the manager rollup across all owners
func (h *ReportHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseWindow(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	rollups, err := h.Reports.PortfolioRollup(r.Context(), from, to)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, rollups)
}

func (h *ReportHandler) GetStatementCSV(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := resolveOwnerID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid owner scope")
		return
	}
	propertyID, _ := strconv.Atoi(r.URL.Query().Get("property_id"))
	from, to, err := parseWindow(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.Reports.StatementCSV(r.Context(), ownerID, propertyID, from, to)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=statement_%d.csv", ownerID))
	w.Write(data)
}

func (h *ReportHandler) GetStatementPDF(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := resolveOwnerID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid owner scope")
		return
	}
	propertyID, _ := strconv.Atoi(r.URL.Query().Get("property_id"))
	from, to, err := parseWindow(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.Reports.StatementPDF(r.Context(), ownerID, propertyID, from, to)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=statement_%d.pdf", ownerID))
	w.Write(data)
}

// GetBulkStatements zips one CSV statement per owner (manager export)
func (h *ReportHandler) GetBulkStatements(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseWindow(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := h.Reports.BulkStatementZip(r.Context(), from, to)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", "attachment; filename=statements.zip")
	w.Write(data)
}

// ArchiveStatement uploads the owner's statement for the window to R2
func (h *ReportHandler) ArchiveStatement(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := resolveOwnerID(r)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "Invalid owner scope")
		return
	}
	from, to, err := parseWindow(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = from.Format("2006-01")
	}

	keys, err := h.Archive.ArchiveStatement(r.Context(), ownerID, period, from, to)
	if err != nil {
		utils.ServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"archived": keys})
}
