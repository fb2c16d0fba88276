package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/handarcade/internal/game"
	"github.com/ayusman/handarcade/internal/store"
)

// MaxScoreLimit caps the limit query parameter.
const MaxScoreLimit = 200

// ScoreHandler serves the high score table.
type ScoreHandler struct {
	store *store.Store
}

// NewScoreHandler creates a new ScoreHandler with the given store.
func NewScoreHandler(s *store.Store) *ScoreHandler {
	return &ScoreHandler{store: s}
}

// RegisterRoutes mounts the score routes on r.
func (h *ScoreHandler) RegisterRoutes(r chi.Router) {
	r.Route("/scores", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/top", h.top)
		r.Get("/best", h.best)
		r.Get("/{id}", h.get)
		r.Delete("/{id}", h.delete)
	})
}

type listScoresResponse struct {
	Scores []*store.Score `json:"scores"`
}

func limit(r *http.Request, def int) int {
	return min(queryInt(r, "limit", def), MaxScoreLimit)
}

// list handles GET /scores and returns the most recent sessions.
func (h *ScoreHandler) list(w http.ResponseWriter, r *http.Request) {
	scores, err := h.store.Scores().List(limit(r, 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list scores")
		return
	}
	writeJSON(w, http.StatusOK, listScoresResponse{Scores: nonNil(scores)})
}

// top handles GET /scores/top?exercise=slug and ranks sessions by score.
func (h *ScoreHandler) top(w http.ResponseWriter, r *http.Request) {
	exercise := r.URL.Query().Get("exercise")
	if exercise != "" {
		if _, ok := game.ParseExercise(exercise); !ok {
			writeError(w, http.StatusBadRequest, "Unknown exercise")
			return
		}
	}

	scores, err := h.store.Scores().Top(exercise, limit(r, 10))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to rank scores")
		return
	}
	writeJSON(w, http.StatusOK, listScoresResponse{Scores: nonNil(scores)})
}

// best handles GET /scores/best and returns the best score of every exercise.
func (h *ScoreHandler) best(w http.ResponseWriter, r *http.Request) {
	best, err := h.store.Scores().BestByExercise()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load best scores")
		return
	}

	out := make(map[string]int, len(game.Exercises))
	for _, ex := range game.Exercises {
		out[ex.Slug()] = best[ex.Slug()]
	}
	writeJSON(w, http.StatusOK, out)
}

// get handles GET /scores/{id}.
func (h *ScoreHandler) get(w http.ResponseWriter, r *http.Request) {
	sc, err := h.store.Scores().GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Score not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get score")
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// delete handles DELETE /scores/{id}.
func (h *ScoreHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Scores().Delete(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Score not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete score")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(s []*store.Score) []*store.Score {
	if s == nil {
		return []*store.Score{}
	}
	return s
}
