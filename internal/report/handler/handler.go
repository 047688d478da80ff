package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	modModels "relato/internal/moderation/models"
	"relato/internal/platform/middleware"
	"relato/internal/report/models"
	"relato/internal/report/service"
	dErrors "relato/pkg/domain-errors"
	"relato/pkg/platform/httputil"
	"relato/pkg/requestcontext"
)

// Service defines the report operations exposed over HTTP.
type Service interface {
	Intake(ctx context.Context, req service.IntakeRequest) (service.IntakeResult, error)
	GetReport(ctx context.Context, id uuid.UUID) (models.Report, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter models.Filter) (service.ListPage, error)
	List(ctx context.Context, filter models.Filter) (service.ListPage, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status, comment string, staffID uuid.UUID) (models.Report, error)
	DeleteReport(ctx context.Context, id, userID uuid.UUID) error
	MapPoints(ctx context.Context) ([]models.MapPoint, error)
}

const (
	maxUploadBytes = 32 << 20
	maxImages      = 5
	imagesField    = "images"
)

type Handler struct {
	reports   Service
	uploadDir string
	logger    *slog.Logger
}

func New(reports Service, uploadDir string, logger *slog.Logger) *Handler {
	return &Handler{
		reports:   reports,
		uploadDir: uploadDir,
		logger:    logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/map", h.handleMap)
		r.Get("/{id}", h.handleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(h.logger))
			r.Post("/", h.handleIntake)
			r.Get("/", h.handleList)
			r.Get("/my-reports", h.handleMyReports)
			r.Put("/{id}/status", h.handleUpdateStatus)
			r.Delete("/{id}", h.handleDelete)
		})
	})
}

func (h *Handler) handleIntake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid multipart body"))
		return
	}

	files := r.MultipartForm.File[imagesField]
	if len(files) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "at least one image is required"))
		return
	}
	if len(files) > maxImages {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeValidation, "at most %d images are allowed", maxImages))
		return
	}

	candidates, err := h.saveUploads(files)
	if err != nil {
		h.logger.ErrorContext(ctx, "save uploads", "error", err.Error())
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "could not store uploads"))
		return
	}

	req, err := h.intakeRequest(r, userID, candidates)
	if err != nil {
		h.discardUploads(ctx, candidates)
		httputil.WriteError(w, err)
		return
	}

	result, err := h.reports.Intake(ctx, *req)
	if err != nil {
		// The moderator removes the files it rejects; this sweeps up
		// anything that failed before moderation ran.
		h.discardUploads(ctx, candidates)
		h.logFailure(ctx, "report intake", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	report, err := h.reports.GetReport(ctx, id)
	if err != nil {
		h.logFailure(ctx, "get report", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.reports.List(ctx, filterFrom(r))
	if err != nil {
		h.logFailure(ctx, "list reports", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleMyReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, err := h.reports.ListByUser(ctx, requestcontext.UserID(ctx), filterFrom(r))
	if err != nil {
		h.logFailure(ctx, "list own reports", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) handleMap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	points, err := h.reports.MapPoints(ctx)
	if err != nil {
		h.logFailure(ctx, "map points", err)
		httputil.WriteError(w, err)
		return
	}
	if points == nil {
		points = []models.MapPoint{}
	}
	httputil.WriteJSON(w, http.StatusOK, points)
}

type updateStatusRequest struct {
	Status  models.Status `json:"status"`
	Comment string        `json:"comment"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid request body"))
		return
	}

	report, err := h.reports.UpdateStatus(ctx, id, req.Status, req.Comment, requestcontext.UserID(ctx))
	if err != nil {
		h.logFailure(ctx, "update report status", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.reports.DeleteReport(ctx, id, requestcontext.UserID(ctx)); err != nil {
		h.logFailure(ctx, "delete report", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// saveUploads spills the multipart files to the upload directory and
// returns them as moderation candidates.
func (h *Handler) saveUploads(files []*multipart.FileHeader) ([]modModels.Candidate, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	candidates := make([]modModels.Candidate, 0, len(files))
	for _, header := range files {
		candidate, err := h.saveOne(header)
		if err != nil {
			for _, saved := range candidates {
				_ = os.Remove(saved.Path)
			}
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

func (h *Handler) saveOne(header *multipart.FileHeader) (modModels.Candidate, error) {
	src, err := header.Open()
	if err != nil {
		return modModels.Candidate{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := fmt.Sprintf("%s-%s", uuid.NewString(), filepath.Base(header.Filename))
	path := filepath.Join(h.uploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return modModels.Candidate{}, fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(path)
		return modModels.Candidate{}, fmt.Errorf("write upload file: %w", err)
	}

	return modModels.Candidate{
		Path:         path,
		OriginalName: header.Filename,
		SizeBytes:    size,
	}, nil
}

func (h *Handler) discardUploads(ctx context.Context, candidates []modModels.Candidate) {
	for _, candidate := range candidates {
		if err := os.Remove(candidate.Path); err != nil && !os.IsNotExist(err) {
			h.logger.WarnContext(ctx, "discard upload", "path", candidate.Path, "error", err)
		}
	}
}

func (h *Handler) intakeRequest(r *http.Request, userID uuid.UUID, candidates []modModels.Candidate) (*service.IntakeRequest, error) {
	lat, err := formFloat(r, "latitude")
	if err != nil {
		return nil, err
	}
	lng, err := formFloat(r, "longitude")
	if err != nil {
		return nil, err
	}

	return &service.IntakeRequest{
		UserID:      userID,
		Title:       r.FormValue("title"),
		Category:    models.Category(r.FormValue("category")),
		Description: r.FormValue("description"),
		Latitude:    lat,
		Longitude:   lng,
		Address:     r.FormValue("address"),
		Priority:    models.Priority(r.FormValue("priority")),
		Candidates:  candidates,
	}, nil
}

func formFloat(r *http.Request, name string) (float64, error) {
	raw := r.FormValue(name)
	if raw == "" {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s is required", name)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, dErrors.Newf(dErrors.CodeValidation, "%s must be a number", name)
	}
	return value, nil
}

func filterFrom(r *http.Request) models.Filter {
	q := r.URL.Query()
	filter := models.Filter{
		Status:   models.Status(q.Get("status")),
		Category: models.Category(q.Get("category")),
		Priority: models.Priority(q.Get("priority")),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}
	return filter
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid report id"))
		return uuid.Nil, false
	}
	return id, true
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
