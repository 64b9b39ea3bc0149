package controllers

import (
	"fmt"
	"net/http"
	"time"

	"artifactd/internal/services"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	service   services.ArtifactServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status              string    `json:"status"`
	Uptime              string    `json:"uptime"`
	UptimeSeconds       float64   `json:"uptime_seconds"`
	DatasetPopulated    bool      `json:"dataset_populated"`
	DatasetFresh        bool      `json:"dataset_fresh"`
	Versions            int       `json:"versions"`
	LastRefresh         time.Time `json:"last_refresh"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	info := hc.service.Health()
	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:              "ok",
		Uptime:              formatDuration(uptime),
		UptimeSeconds:       uptime.Seconds(),
		DatasetPopulated:    info.DatasetPopulated,
		DatasetFresh:        info.DatasetFresh,
		Versions:            info.Versions,
		LastRefresh:         info.LastRefresh,
		ConsecutiveFailures: info.ConsecutiveFailures,
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.ArtifactServiceInterface) *HealthController {
	return &HealthController{
		service:   service,
		startTime: time.Now(),
	}
}
