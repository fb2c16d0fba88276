package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/handarcade/internal/arcade"
	"github.com/ayusman/handarcade/internal/game"
	"github.com/ayusman/handarcade/internal/session"
)

// Controller is the part of the engine the API drives.
type Controller interface {
	Snapshot() arcade.Snapshot
	Select(ex game.Exercise) error
}

// GameHandler exposes the running game state.
type GameHandler struct {
	engine   Controller
	onSelect func(game.Exercise)
}

// NewGameHandler creates a GameHandler. onSelect, if non-nil, is called after
// every successful exercise change.
func NewGameHandler(engine Controller, onSelect func(game.Exercise)) *GameHandler {
	return &GameHandler{engine: engine, onSelect: onSelect}
}

// RegisterRoutes mounts the game routes on r.
func (h *GameHandler) RegisterRoutes(r chi.Router) {
	r.Get("/game", h.snapshot)
	r.Get("/exercises", h.exercises)
	r.Post("/game/exercise", h.selectExercise)
}

type selectRequest struct {
	Exercise string `json:"exercise"`
}

type exercisesResponse struct {
	Selected  string                `json:"selected"`
	Exercises []arcade.ExerciseInfo `json:"exercises"`
}

// snapshot handles GET /game and returns the latest frame state.
func (h *GameHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

// exercises handles GET /exercises and lists the menu with best scores.
func (h *GameHandler) exercises(w http.ResponseWriter, r *http.Request) {
	s := h.engine.Snapshot()
	writeJSON(w, http.StatusOK, exercisesResponse{Selected: s.Exercise.Slug(), Exercises: s.Exercises})
}

// selectExercise handles POST /game/exercise. It only succeeds in the menu.
func (h *GameHandler) selectExercise(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ex, ok := game.ParseExercise(req.Exercise)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown exercise")
		return
	}

	if err := h.engine.Select(ex); err != nil {
		if errors.Is(err, session.ErrNotInMenu) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to select exercise")
		return
	}
	if h.onSelect != nil {
		h.onSelect(ex)
	}

	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}
