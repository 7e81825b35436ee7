package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/certquiz/backend/internal/models"
	"github.com/certquiz/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReportService defines methods for per-question error reports
type ReportService interface {
	// Submit files an error report for a question. A question carries at
	// most one report; filing again overwrites memo and timestamp.
	Submit(ctx context.Context, questionKey, memo string) (models.Report, error)
	// Remove deletes the report for a question.
	//
	// If no report exists, services.ErrReportNotFound will be returned.
	Remove(ctx context.Context, questionKey string) error
	// List returns every filed report keyed by composite question key.
	List(ctx context.Context) map[string]models.Report
	// Clear removes every report.
	Clear(ctx context.Context) error
}

// ReportHandler handles error-report requests
type ReportHandler struct {
	BaseHandler
	service ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
	}
}

// SubmitReportRequest carries the report memo
type SubmitReportRequest struct {
	Memo string `json:"memo"`
}

// RegisterRoutes registers all report handler routes
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/", h.ListReports)
		r.Delete("/", h.ClearReports)
		r.Put("/{questionKey}", h.SubmitReport)
		r.Delete("/{questionKey}", h.RemoveReport)
	})
}

// ListReports handles GET /api/v1/reports
// @Summary List all reports
// @Description List every filed error report keyed by composite question key.
// @Tags reports
// @Produce json
// @Success 200 {object} map[string]models.Report "All reports"
// @Router /api/v1/reports [get]
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, h.service.List(r.Context()))
}

// SubmitReport handles PUT /api/v1/reports/{questionKey}
// @Summary File an error report
// @Description File an error report for a question. Filing again overwrites the previous memo and timestamp.
// @Tags reports
// @Accept json
// @Produce json
// @Param questionKey path string true "Composite question key"
// @Param request body SubmitReportRequest true "Report memo"
// @Success 200 {object} models.Report "The stored report"
// @Failure 400 {object} map[string]string "Bad request - invalid body"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/reports/{questionKey} [put]
func (h *ReportHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	var req SubmitReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	questionKey := chi.URLParam(r, "questionKey")
	report, err := h.service.Submit(r.Context(), questionKey, req.Memo)
	if err != nil {
		h.Logger.Error("failed to submit report", zap.String("question_key", questionKey), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, report)
}

// RemoveReport handles DELETE /api/v1/reports/{questionKey}
// @Summary Remove a report
// @Description Delete the error report for a question.
// @Tags reports
// @Produce json
// @Param questionKey path string true "Composite question key"
// @Success 200 {object} map[string]string "Report removed"
// @Failure 404 {object} map[string]string "Report not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/reports/{questionKey} [delete]
func (h *ReportHandler) RemoveReport(w http.ResponseWriter, r *http.Request) {
	questionKey := chi.URLParam(r, "questionKey")
	if err := h.service.Remove(r.Context(), questionKey); err != nil {
		if errors.Is(err, services.ErrReportNotFound) {
			h.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Logger.Error("failed to remove report", zap.String("question_key", questionKey), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "report removed"})
}

// ClearReports handles DELETE /api/v1/reports
// @Summary Clear all reports
// @Description Remove every filed error report.
// @Tags reports
// @Produce json
// @Success 200 {object} map[string]string "Reports cleared"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/reports [delete]
func (h *ReportHandler) ClearReports(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context()); err != nil {
		h.Logger.Error("failed to clear reports", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "reports cleared"})
}
