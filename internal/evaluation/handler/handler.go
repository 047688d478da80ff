package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"relato/internal/evaluation/models"
	"relato/internal/evaluation/service"
	"relato/internal/platform/middleware"
	dErrors "relato/pkg/domain-errors"
	"relato/pkg/platform/httputil"
	"relato/pkg/requestcontext"
)

// Service defines the evaluation operations exposed over HTTP.
type Service interface {
	CurrentPeriod(ctx context.Context) models.Period
	CreateEvaluation(ctx context.Context, userID uuid.UUID, input service.CreateEvaluationInput) (models.Evaluation, error)
	GetEvaluation(ctx context.Context, id, userID uuid.UUID) (models.Evaluation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Evaluation, error)
	UpdateEvaluation(ctx context.Context, id, userID uuid.UUID, input service.UpdateEvaluationInput) (models.Evaluation, error)
	DeleteEvaluation(ctx context.Context, id, userID uuid.UUID) error
	AreaStatistics(ctx context.Context, lat, lng, radius float64) (models.AreaStatistics, error)
}

type Handler struct {
	evaluations Service
	logger      *slog.Logger
}

func New(evaluations Service, logger *slog.Logger) *Handler {
	return &Handler{
		evaluations: evaluations,
		logger:      logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		// Area statistics is a public aggregate; everything else is
		// scoped to the caller.
		r.Get("/area-statistics", h.handleAreaStatistics)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(h.logger))
			r.Get("/current-period", h.handleCurrentPeriod)
			r.Post("/", h.handleCreate)
			r.Get("/", h.handleList)
			r.Get("/{id}", h.handleGet)
			r.Patch("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
		})
	})
}

type createRequest struct {
	Year           int                     `json:"year"`
	Index          int                     `json:"index"`
	Ratings        []models.CategoryRating `json:"ratings"`
	GeneralComment string                  `json:"generalComment"`
}

type updateRequest struct {
	Ratings        *[]models.CategoryRating `json:"ratings"`
	GeneralComment *string                  `json:"generalComment"`
}

func (h *Handler) handleCurrentPeriod(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.evaluations.CurrentPeriod(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	eval, err := h.evaluations.CreateEvaluation(ctx, userID, service.CreateEvaluationInput{
		Year:           req.Year,
		Index:          req.Index,
		Ratings:        req.Ratings,
		GeneralComment: req.GeneralComment,
	})
	if err != nil {
		h.logFailure(ctx, "create evaluation", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, eval)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	evals, err := h.evaluations.ListByUser(ctx, userID)
	if err != nil {
		h.logFailure(ctx, "list evaluations", err)
		httputil.WriteError(w, err)
		return
	}
	if evals == nil {
		evals = []models.Evaluation{}
	}

	httputil.WriteJSON(w, http.StatusOK, evals)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	eval, err := h.evaluations.GetEvaluation(ctx, id, requestcontext.UserID(ctx))
	if err != nil {
		h.logFailure(ctx, "get evaluation", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, eval)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	eval, err := h.evaluations.UpdateEvaluation(ctx, id, requestcontext.UserID(ctx), service.UpdateEvaluationInput{
		Ratings:        req.Ratings,
		GeneralComment: req.GeneralComment,
	})
	if err != nil {
		h.logFailure(ctx, "update evaluation", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, eval)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.evaluations.DeleteEvaluation(ctx, id, requestcontext.UserID(ctx)); err != nil {
		h.logFailure(ctx, "delete evaluation", err)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAreaStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lat, err := queryFloat(r, "lat")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	lng, err := queryFloat(r, "lng")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var radius float64
	if raw := r.URL.Query().Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "radius must be a number"))
			return
		}
	}

	stats, err := h.evaluations.AreaStatistics(ctx, lat, lng, radius)
	if err != nil {
		h.logFailure(ctx, "area statistics", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid evaluation id"))
		return uuid.Nil, false
	}
	return id, true
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s is required", name)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s must be a number", name)
	}
	return value, nil
}

func (h *Handler) logFailure(ctx context.Context, operation string, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeValidation || code == dErrors.CodeNotFound || code == dErrors.CodeConflict {
		return
	}
	h.logger.ErrorContext(ctx, operation,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
