package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"rental-backend/internal/services"
)

// DashboardLiveHandler pushes the owner dashboard over a websocket so the
// landing page updates without polling while money is being recorded
type DashboardLiveHandler struct {
	Reports  *services.ReportService
	upgrader websocket.Upgrader
	interval time.Duration
}

func NewDashboardLiveHandler(reports *services.ReportService) *DashboardLiveHandler {
	return &DashboardLiveHandler{
		Reports: reports,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		interval: 15 * time.Second,
	}
}

// Serve upgrades the connection and streams dashboard refreshes until the
// client goes away. Token auth happens in middleware before this runs.
func (h *DashboardLiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := resolveOwnerID(r)
	if !ok {
		http.Error(w, "Invalid owner scope", http.StatusBadRequest)
		return
	}
	propertyID, _ := strconv.Atoi(r.URL.Query().Get("property_id"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Dashboard] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Detect client disconnect; nothing inbound is expected
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := func() bool {
		summary, err := h.Reports.Dashboard(r.Context(), ownerID, propertyID)
		if err != nil {
			log.Printf("[Dashboard] live refresh for owner %d failed: %v", ownerID, err)
			return true
		}
		return conn.WriteJSON(summary) == nil
	}

	if !push() {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if !push() {
				return
			}
		}
	}
}
