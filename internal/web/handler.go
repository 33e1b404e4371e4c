package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"timeopt/internal/coordinator"
	"timeopt/internal/database"
	"timeopt/internal/models"
	"timeopt/internal/reporter"
)

type Handler struct {
	repo     *database.Repository
	coord    *coordinator.Coordinator
	reporter *reporter.Reporter
	logger   *zap.Logger
}

func NewHandler(repo *database.Repository, coord *coordinator.Coordinator, rep *reporter.Reporter, logger *zap.Logger) *Handler {
	return &Handler{
		repo:     repo,
		coord:    coord,
		reporter: rep,
		logger:   logger,
	}
}

func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", h.handleStatus)
	mux.HandleFunc("GET /api/report", h.handleReport)
	mux.HandleFunc("GET /api/report/week", h.handleWeeklyReport)
	mux.HandleFunc("GET /api/nudges", h.handleNudges)
	mux.HandleFunc("POST /api/nudges/{id}/dismiss", h.handleDismissNudge)
	mux.HandleFunc("POST /api/nudges/{id}/acted", h.handleNudgeActedUpon)

	mux.HandleFunc("GET /health", h.handleHealth)
}

// statusResponse is the rolling snapshot plus the live context, which
// only the coordinator can answer.
type statusResponse struct {
	models.OptimizationStatus
	CurrentCategory models.Category `json:"current_category"`
	InDeepWork      bool            `json:"in_deep_work"`
}

// handleStatus serves the live rolling snapshot, not the last flushed
// one; the sink can lag by a flush interval.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, statusResponse{
		OptimizationStatus: h.coord.Snapshot(),
		CurrentCategory:    h.coord.CurrentCategory(),
		InDeepWork:         h.coord.InDeepWork(),
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.reporter.DailyReport(date)
	if err != nil {
		h.logger.Error("daily report failed", zap.Error(err))
		http.Error(w, fmt.Sprintf("Failed to generate report: %v", err), http.StatusInternalServerError)
		return
	}
	respondJSON(w, report)
}

func (h *Handler) handleWeeklyReport(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.reporter.WeeklyReport(reporter.WeekStartOf(date))
	if err != nil {
		h.logger.Error("weekly report failed", zap.Error(err))
		http.Error(w, fmt.Sprintf("Failed to generate report: %v", err), http.StatusInternalServerError)
		return
	}
	respondJSON(w, report)
}

func (h *Handler) handleNudges(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	nudges, err := h.repo.NudgesForDay(date)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch nudges: %v", err), http.StatusInternalServerError)
		return
	}
	respondJSON(w, nudges)
}

func (h *Handler) handleDismissNudge(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.repo.DismissNudge(id); err != nil {
		if errors.Is(err, database.ErrNudgeNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to dismiss nudge: %v", err), http.StatusInternalServerError)
		return
	}
	h.logger.Info("nudge dismissed", zap.String("id", id))
	respondJSON(w, map[string]string{"id": id, "state": "dismissed"})
}

func (h *Handler) handleNudgeActedUpon(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.repo.MarkNudgeActedUpon(id, true); err != nil {
		if errors.Is(err, database.ErrNudgeNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("Failed to update nudge: %v", err), http.StatusInternalServerError)
		return
	}
	h.logger.Info("nudge acted upon", zap.String("id", id))
	respondJSON(w, map[string]string{"id": id, "state": "acted_upon"})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// queryDate parses the optional date query parameter, defaulting to
// today.
func queryDate(r *http.Request) (time.Time, error) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return time.Now(), nil
	}
	date, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return date, nil
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
