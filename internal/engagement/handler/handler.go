package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"relato/internal/engagement/models"
	"relato/internal/platform/middleware"
	dErrors "relato/pkg/domain-errors"
	"relato/pkg/platform/httputil"
	"relato/pkg/requestcontext"
)

// Service defines the engagement operations exposed over HTTP.
type Service interface {
	ComputeStreak(ctx context.Context, userID uuid.UUID) (models.StreakSummary, error)
	BuildCalendar(ctx context.Context, userID uuid.UUID, year int, month time.Month) ([]models.CalendarDay, error)
	UserStats(ctx context.Context, userID uuid.UUID) (models.UserStats, error)
}

type Handler struct {
	engagement Service
	logger     *slog.Logger
}

func New(engagement Service, logger *slog.Logger) *Handler {
	return &Handler{
		engagement: engagement,
		logger:     logger,
	}
}

// Register mounts the engagement routes. All routes require an
// authenticated user.
func (h *Handler) Register(r chi.Router) {
	r.Route("/engagement", func(r chi.Router) {
		r.Use(middleware.RequireUser(h.logger))
		r.Get("/streak", h.handleStreak)
		r.Get("/calendar", h.handleCalendar)
		r.Get("/stats", h.handleStats)
	})
}

func (h *Handler) handleStreak(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	summary, err := h.engagement.ComputeStreak(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "compute streak",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	now := requestcontext.Now(ctx)
	year, month := now.Year(), now.Month()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "year must be an integer"))
			return
		}
		year = parsed
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "month must be an integer"))
			return
		}
		month = time.Month(parsed)
	}

	calendar, err := h.engagement.BuildCalendar(ctx, userID, year, month)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.ErrorContext(ctx, "build calendar",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"year":  year,
		"month": int(month),
		"days":  calendar,
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	stats, err := h.engagement.UserStats(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "user stats",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}
