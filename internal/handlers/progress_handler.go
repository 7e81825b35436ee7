package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/certquiz/backend/internal/models"
	"github.com/certquiz/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProgressService defines methods for progress and mastery tracking
type ProgressService interface {
	// Counts classifies every question of the deck and accumulates a count
	// per learning state.
	Counts(ctx context.Context, deck *models.Deck) models.StatusCounts
	// Stats sums all recorded answers across every question of every deck.
	Stats(ctx context.Context) models.OverallStats
	// ToggleStar flips the starred flag for a question and reports the new
	// state.
	ToggleStar(ctx context.Context, questionKey string) (bool, error)
	// StarredCount returns how many questions of the deck are starred.
	StarredCount(ctx context.Context, deck *models.Deck) int
	// ResetHistory clears the entire answer history.
	ResetHistory(ctx context.Context) error
	// ClearStarred removes every star.
	ClearStarred(ctx context.Context) error
}

// DeckResolver resolves deck IDs for progress aggregation
type DeckResolver interface {
	// DeckByID retrieves one deck, built-in or custom.
	//
	// If the deck does not exist, services.ErrDeckNotFound will be returned.
	DeckByID(ctx context.Context, deckID string) (*models.Deck, error)
	// Settings returns the persisted settings with defaults applied.
	Settings(ctx context.Context) models.Settings
}

// ProgressHandler handles progress, mastery and starred-set requests
type ProgressHandler struct {
	BaseHandler
	service ProgressService
	decks   DeckResolver
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(service ProgressService, decks DeckResolver, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
		decks:       decks,
	}
}

// DeckProgressResponse aggregates the learning-state counts for one deck
type DeckProgressResponse struct {
	DeckID       string              `json:"deckId"`
	Counts       models.StatusCounts `json:"counts"`
	StarredCount int                 `json:"starredCount"`
}

// ToggleStarResponse reports the new starred state of a question
type ToggleStarResponse struct {
	QuestionKey string `json:"questionKey"`
	Starred     bool   `json:"starred"`
}

// RegisterRoutes registers all progress handler routes
func (h *ProgressHandler) RegisterRoutes(r chi.Router) {
	r.Route("/progress", func(r chi.Router) {
		r.Get("/", h.DeckProgress)
		r.Get("/stats", h.OverallStats)
		r.Delete("/history", h.ResetHistory)
		r.Delete("/starred", h.ClearStarred)
	})
	r.Post("/questions/{questionKey}/star", h.ToggleStar)
}

// DeckProgress handles GET /api/v1/progress
// @Summary Get per-deck progress
// @Description Classify every question of the deck into a learning state and return the counts. Defaults to the active deck when no deckId is given.
// @Tags progress
// @Produce json
// @Param deckId query string false "Deck ID, defaults to the active deck"
// @Success 200 {object} DeckProgressResponse "Learning-state counts"
// @Failure 404 {object} map[string]string "Deck not found"
// @Router /api/v1/progress [get]
func (h *ProgressHandler) DeckProgress(w http.ResponseWriter, r *http.Request) {
	deckID := r.URL.Query().Get("deckId")
	if deckID == "" {
		deckID = h.decks.Settings(r.Context()).ActiveDeckID
	}

	deck, err := h.decks.DeckByID(r.Context(), deckID)
	if err != nil {
		if errors.Is(err, services.ErrDeckNotFound) {
			h.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Logger.Error("failed to resolve deck for progress", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, DeckProgressResponse{
		DeckID:       deck.ID,
		Counts:       h.service.Counts(r.Context(), deck),
		StarredCount: h.service.StarredCount(r.Context(), deck),
	})
}

// OverallStats handles GET /api/v1/progress/stats
// @Summary Get overall answer statistics
// @Description Sum all recorded answers across every question of every deck.
// @Tags progress
// @Produce json
// @Success 200 {object} models.OverallStats "Total and correct answer counts"
// @Router /api/v1/progress/stats [get]
func (h *ProgressHandler) OverallStats(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, h.service.Stats(r.Context()))
}

// ToggleStar handles POST /api/v1/questions/{questionKey}/star
// @Summary Toggle a question's star
// @Description Flip the starred flag for the question and return the new state.
// @Tags progress
// @Produce json
// @Param questionKey path string true "Composite question key"
// @Success 200 {object} ToggleStarResponse "New starred state"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/questions/{questionKey}/star [post]
func (h *ProgressHandler) ToggleStar(w http.ResponseWriter, r *http.Request) {
	questionKey := chi.URLParam(r, "questionKey")

	starred, err := h.service.ToggleStar(r.Context(), questionKey)
	if err != nil {
		h.Logger.Error("failed to toggle star", zap.String("question_key", questionKey), zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, ToggleStarResponse{
		QuestionKey: questionKey,
		Starred:     starred,
	})
}

// ResetHistory handles DELETE /api/v1/progress/history
// @Summary Reset the answer history
// @Description Clear the entire answer history. Stars and reports are untouched.
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]string "History cleared"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/progress/history [delete]
func (h *ProgressHandler) ResetHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetHistory(r.Context()); err != nil {
		h.Logger.Error("failed to reset history", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "history cleared"})
}

// ClearStarred handles DELETE /api/v1/progress/starred
// @Summary Clear the starred set
// @Description Remove every star. History and reports are untouched.
// @Tags progress
// @Produce json
// @Success 200 {object} map[string]string "Starred set cleared"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/progress/starred [delete]
func (h *ProgressHandler) ClearStarred(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearStarred(r.Context()); err != nil {
		h.Logger.Error("failed to clear starred set", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "starred set cleared"})
}
