package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/beocch/telegram-ai-assistant/internal/usage"
)

type StatsHandler struct {
	usageService usage.Service
	log          *logger.ZapLogger
}

func NewStatsHandler(usageService usage.Service, log *logger.ZapLogger) *StatsHandler {
	return &StatsHandler{
		usageService: usageService,
		log:          log,
	}
}

func (h *StatsHandler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.usageService.SystemStats(r.Context())
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "system stats failed: " + err.Error(),
			Service: "telegram-ai-assistant",
		})
		http.Error(w, "failed to load stats: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total_users":        stats.TotalUsers,
		"total_interactions": stats.TotalInteractions,
		"today_interactions": stats.TodayInteractions,
	})
}
