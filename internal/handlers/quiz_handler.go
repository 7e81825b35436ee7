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

// SessionService defines methods for the quiz session flow
type SessionService interface {
	// Start assembles a new quiz queue from the deck and filter specification
	// and replaces any previous session.
	//
	// If deckID is empty, the active deck from settings is used.
	// Returns services.ErrNoMatchingQuestions when nothing matches.
	Start(ctx context.Context, deckID string, filter models.FilterState) (*models.SessionQuestion, error)
	// Current returns the view of the question currently presented.
	Current(ctx context.Context) (*models.SessionQuestion, error)
	// Submit records the answer for the current question.
	//
	// For a matching-style question the canonical answer is used as the
	// selection. Submitting twice for the same question is rejected.
	Submit(ctx context.Context, selected string) (*models.AnswerResult, error)
	// Advance moves to the next question or completes the session.
	Advance(ctx context.Context) (*models.SessionQuestion, *models.SessionSummary, error)
	// Summary reports the session counters, available also after completion.
	Summary(ctx context.Context) (*models.SessionSummary, error)
}

// QuizHandler handles the quiz session flow
type QuizHandler struct {
	BaseHandler
	service SessionService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(service SessionService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
	}
}

// StartSessionRequest describes the scope of a new quiz session
type StartSessionRequest struct {
	DeckID string             `json:"deckId"`
	Filter models.FilterState `json:"filter"`
}

// SubmitAnswerRequest carries the selected option label
type SubmitAnswerRequest struct {
	Selected string `json:"selected"`
}

// AdvanceResponse is either the next question or the session summary
type AdvanceResponse struct {
	Question *models.SessionQuestion `json:"question,omitempty"`
	Summary  *models.SessionSummary  `json:"summary,omitempty"`
}

// RegisterRoutes registers all quiz handler routes
func (h *QuizHandler) RegisterRoutes(r chi.Router) {
	r.Route("/quiz/session", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Get("/", h.CurrentQuestion)
		r.Post("/answer", h.SubmitAnswer)
		r.Post("/next", h.Advance)
		r.Get("/summary", h.Summary)
	})
}

// StartSession handles POST /api/v1/quiz/session
// @Summary Start a quiz session
// @Description Build a randomized question queue from the filter specification and start a new session. An empty result is reported as 404, not as an empty session.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body StartSessionRequest true "Deck and filter specification"
// @Success 201 {object} models.SessionQuestion "First question of the new session"
// @Failure 400 {object} map[string]string "Bad request - invalid body"
// @Failure 404 {object} map[string]string "No questions match the filters, or deck not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/quiz/session [post]
func (h *QuizHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	question, err := h.service.Start(r.Context(), req.DeckID, req.Filter)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoMatchingQuestions), errors.Is(err, services.ErrDeckNotFound):
			h.RespondError(w, http.StatusNotFound, err.Error())
		default:
			h.Logger.Error("failed to start session", zap.Error(err))
			h.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.RespondJSON(w, http.StatusCreated, question)
}

// CurrentQuestion handles GET /api/v1/quiz/session
// @Summary Get the current question
// @Description Get the question currently presented in the active session.
// @Tags quiz
// @Produce json
// @Success 200 {object} models.SessionQuestion "Current question"
// @Failure 404 {object} map[string]string "No active session"
// @Failure 409 {object} map[string]string "Session already complete"
// @Router /api/v1/quiz/session [get]
func (h *QuizHandler) CurrentQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.service.Current(r.Context())
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, question)
}

// SubmitAnswer handles POST /api/v1/quiz/session/answer
// @Summary Submit an answer
// @Description Record the answer for the current question. Matching-style questions need no selection. A second submission for the same question is rejected.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body SubmitAnswerRequest true "Selected option label"
// @Success 200 {object} models.AnswerResult "Answer outcome and session counters"
// @Failure 400 {object} map[string]string "Bad request - missing selection"
// @Failure 404 {object} map[string]string "No active session"
// @Failure 409 {object} map[string]string "Question already answered or session complete"
// @Failure 500 {object} map[string]string "Internal server error - failed to persist the answer"
// @Router /api/v1/quiz/session/answer [post]
func (h *QuizHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Submit(r.Context(), req.Selected)
	if err != nil {
		if errors.Is(err, services.ErrSelectionRequired) {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondSessionError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// Advance handles POST /api/v1/quiz/session/next
// @Summary Advance to the next question
// @Description Move to the next question, or complete the session after the last one.
// @Tags quiz
// @Produce json
// @Success 200 {object} AdvanceResponse "Next question, or the session summary when complete"
// @Failure 404 {object} map[string]string "No active session"
// @Failure 409 {object} map[string]string "Current question not answered yet, or session complete"
// @Router /api/v1/quiz/session/next [post]
func (h *QuizHandler) Advance(w http.ResponseWriter, r *http.Request) {
	question, summary, err := h.service.Advance(r.Context())
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, AdvanceResponse{Question: question, Summary: summary})
}

// Summary handles GET /api/v1/quiz/session/summary
// @Summary Get the session summary
// @Description Get the session counters, also after the session completed.
// @Tags quiz
// @Produce json
// @Success 200 {object} models.SessionSummary "Session counters"
// @Failure 404 {object} map[string]string "No active session"
// @Router /api/v1/quiz/session/summary [get]
func (h *QuizHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.respondSessionError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, summary)
}

// respondSessionError maps session state errors to HTTP statuses
func (h *QuizHandler) respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNoActiveSession):
		h.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrSessionComplete),
		errors.Is(err, services.ErrAlreadyAnswered),
		errors.Is(err, services.ErrNotAnswered):
		h.RespondError(w, http.StatusConflict, err.Error())
	default:
		h.Logger.Error("session operation failed", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
	}
}
