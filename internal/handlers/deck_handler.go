package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/certquiz/backend/internal/models"
	"github.com/certquiz/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DeckService defines methods for deck management business logic
type DeckService interface {
	// AllDecks returns every deck, built-in decks first.
	AllDecks(ctx context.Context) []models.Deck
	// DeckByID retrieves one deck, built-in or custom.
	//
	// If the deck does not exist, services.ErrDeckNotFound will be returned.
	DeckByID(ctx context.Context, deckID string) (*models.Deck, error)
	// RemoveCustomDeck deletes a custom deck.
	//
	// Built-in decks cannot be removed; services.ErrBuiltinDeck will be
	// returned for them.
	RemoveCustomDeck(ctx context.Context, deckID string) error
	// ImportQuestions validates a question document and creates a new custom
	// deck from it.
	//
	// A *services.ValidationError lists every violation across the batch.
	ImportQuestions(ctx context.Context, raw []byte) (*models.Deck, error)
	// ActivateDeck makes the deck the active one for future sessions.
	ActivateDeck(ctx context.Context, deckID string) error
	// Settings returns the persisted settings with defaults applied.
	Settings(ctx context.Context) models.Settings
	// UpdateSettings persists the settings as one unit.
	UpdateSettings(ctx context.Context, settings models.Settings) error
}

// DeckHandler handles deck management and settings requests
type DeckHandler struct {
	BaseHandler
	service DeckService
}

// NewDeckHandler creates a new deck handler
func NewDeckHandler(service DeckService, logger *zap.Logger) *DeckHandler {
	return &DeckHandler{
		BaseHandler: BaseHandler{Logger: logger},
		service:     service,
	}
}

// RegisterRoutes registers all deck handler routes
func (h *DeckHandler) RegisterRoutes(r chi.Router) {
	r.Route("/decks", func(r chi.Router) {
		r.Get("/", h.ListDecks)
		r.Post("/import", h.ImportQuestions)
		r.Get("/{deckID}", h.GetDeck)
		r.Delete("/{deckID}", h.RemoveDeck)
		r.Get("/{deckID}/questions", h.ExportQuestions)
		r.Post("/{deckID}/activate", h.ActivateDeck)
	})
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.GetSettings)
		r.Put("/", h.UpdateSettings)
	})
}

// ListDecks handles GET /api/v1/decks
// @Summary List all decks
// @Description List every deck, built-in decks first.
// @Tags decks
// @Produce json
// @Success 200 {array} models.Deck "All decks"
// @Router /api/v1/decks [get]
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, h.service.AllDecks(r.Context()))
}

// GetDeck handles GET /api/v1/decks/{deckID}
// @Summary Get one deck
// @Description Get a single deck with its questions.
// @Tags decks
// @Produce json
// @Param deckID path string true "Deck ID"
// @Success 200 {object} models.Deck "The deck"
// @Failure 404 {object} map[string]string "Deck not found"
// @Router /api/v1/decks/{deckID} [get]
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := h.service.DeckByID(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		if errors.Is(err, services.ErrDeckNotFound) {
			h.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Logger.Error("failed to get deck", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, deck)
}

// RemoveDeck handles DELETE /api/v1/decks/{deckID}
// @Summary Remove a custom deck
// @Description Remove a user-imported deck. Built-in decks cannot be removed.
// @Tags decks
// @Produce json
// @Param deckID path string true "Deck ID"
// @Success 200 {object} map[string]string "Deck removed"
// @Failure 400 {object} map[string]string "Bad request - deck is built-in"
// @Failure 404 {object} map[string]string "Deck not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/decks/{deckID} [delete]
func (h *DeckHandler) RemoveDeck(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveCustomDeck(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDeckNotFound):
			h.RespondError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, services.ErrBuiltinDeck):
			h.RespondError(w, http.StatusBadRequest, err.Error())
		default:
			h.Logger.Error("failed to remove deck", zap.Error(err))
			h.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "deck removed"})
}

// ImportQuestions handles POST /api/v1/decks/import
// @Summary Import questions as a new deck
// @Description Import a question JSON document (single object or array). The whole batch must validate; on success a new custom deck is created and activated.
// @Tags decks
// @Accept json
// @Produce json
// @Param questions body object true "Question object or array of question objects"
// @Success 201 {object} models.Deck "The created deck"
// @Failure 400 {object} map[string]string "Malformed JSON"
// @Failure 422 {object} map[string]any "Validation violations"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/decks/import [post]
func (h *DeckHandler) ImportQuestions(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	deck, err := h.service.ImportQuestions(r.Context(), raw)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			h.RespondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":      "question validation failed",
				"violations": validationErr.Violations,
			})
			return
		}
		if errors.Is(err, io.ErrUnexpectedEOF) || isParseError(err) {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("failed to import questions", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, deck)
}

// ExportQuestions handles GET /api/v1/decks/{deckID}/questions
// @Summary Export a deck's questions
// @Description Export the deck's question list in the import format.
// @Tags decks
// @Produce json
// @Param deckID path string true "Deck ID"
// @Success 200 {array} models.Question "Question list"
// @Failure 404 {object} map[string]string "Deck not found"
// @Router /api/v1/decks/{deckID}/questions [get]
func (h *DeckHandler) ExportQuestions(w http.ResponseWriter, r *http.Request) {
	deck, err := h.service.DeckByID(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		if errors.Is(err, services.ErrDeckNotFound) {
			h.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Logger.Error("failed to export questions", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, deck.Questions)
}

// ActivateDeck handles POST /api/v1/decks/{deckID}/activate
// @Summary Activate a deck
// @Description Make the deck the active one for future quiz sessions.
// @Tags decks
// @Produce json
// @Param deckID path string true "Deck ID"
// @Success 200 {object} map[string]string "Deck activated"
// @Failure 404 {object} map[string]string "Deck not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/decks/{deckID}/activate [post]
func (h *DeckHandler) ActivateDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	if err := h.service.ActivateDeck(r.Context(), deckID); err != nil {
		if errors.Is(err, services.ErrDeckNotFound) {
			h.RespondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.Logger.Error("failed to activate deck", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "deck activated"})
}

// GetSettings handles GET /api/v1/settings
// @Summary Get settings
// @Description Get the persisted user settings.
// @Tags settings
// @Produce json
// @Success 200 {object} models.Settings "Current settings"
// @Router /api/v1/settings [get]
func (h *DeckHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, h.service.Settings(r.Context()))
}

// UpdateSettings handles PUT /api/v1/settings
// @Summary Update settings
// @Description Update the user settings as one unit.
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body models.Settings true "New settings"
// @Success 200 {object} models.Settings "Saved settings"
// @Failure 400 {object} map[string]string "Bad request - invalid body or unknown deck"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/v1/settings [put]
func (h *DeckHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.UpdateSettings(r.Context(), settings); err != nil {
		if errors.Is(err, services.ErrDeckNotFound) {
			h.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Logger.Error("failed to update settings", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, settings)
}

// isParseError reports whether the error came from JSON parsing
func isParseError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
