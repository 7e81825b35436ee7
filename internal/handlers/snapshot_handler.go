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

// SnapshotService defines methods for exporting and importing user state
type SnapshotService interface {
	// Export reads all state slices and wraps them with the current format
	// version and an export timestamp.
	Export(ctx context.Context) *models.Snapshot
	// Import reconstitutes a snapshot into the persisted state.
	//
	// A snapshot with an unsupported version is rejected with
	// services.ErrUnsupportedVersion before anything is written.
	Import(ctx context.Context, snapshot *models.Snapshot, mode string) error
}

// SnapshotHandler handles state backup and restore requests
type SnapshotHandler struct {
	BaseHandler
	service SnapshotService
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(service SnapshotService, logger *zap.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
	}
}

// RegisterRoutes registers all snapshot handler routes
func (h *SnapshotHandler) RegisterRoutes(r chi.Router) {
	r.Route("/backup", func(r chi.Router) {
		r.Get("/", h.Export)
		r.Post("/", h.Import)
	})
}

// Export handles GET /api/v1/backup
// @Summary Export a state snapshot
// @Description Export the full user state (history, stars, reports, custom decks, settings) as one portable document.
// @Tags backup
// @Produce json
// @Success 200 {object} models.Snapshot "The snapshot"
// @Router /api/v1/backup [get]
func (h *SnapshotHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="quiz-backup.json"`)
	h.RespondJSON(w, http.StatusOK, h.service.Export(r.Context()))
}

// Import handles POST /api/v1/backup
// @Summary Import a state snapshot
// @Description Restore a previously exported snapshot. Replace mode overwrites the local state wholesale; merge mode unions the snapshot into it. Defaults to merge.
// @Tags backup
// @Accept json
// @Produce json
// @Param mode query string false "Import mode" Enums(replace, merge) default(merge)
// @Param snapshot body models.Snapshot true "The snapshot to import"
// @Success 200 {object} map[string]string "Snapshot imported"
// @Failure 400 {object} map[string]string "Bad request - malformed body, unsupported version or invalid mode"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/backup [post]
func (h *SnapshotHandler) Import(w http.ResponseWriter, r *http.Request) {
	var snapshot models.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid snapshot document")
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = services.ImportModeMerge
	}

	if err := h.service.Import(r.Context(), &snapshot, mode); err != nil {
		switch {
		case errors.Is(err, services.ErrUnsupportedVersion), errors.Is(err, services.ErrInvalidImportMode):
			h.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			h.Logger.Error("failed to import snapshot", zap.Error(err))
			h.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "snapshot imported"})
}
