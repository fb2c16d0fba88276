package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/handarcade/internal/game"
	"github.com/ayusman/handarcade/internal/plugin"
	"github.com/ayusman/handarcade/internal/store"
)

// PluginResolver checks that a plugin supports an action.
type PluginResolver interface {
	Resolve(name, action string) (*plugin.Plugin, error)
}

// HookHandler handles HTTP requests for session-completion hooks.
type HookHandler struct {
	store   *store.Store
	plugins PluginResolver
}

// NewHookHandler creates a new HookHandler. A nil resolver skips plugin
// validation.
func NewHookHandler(s *store.Store, plugins PluginResolver) *HookHandler {
	return &HookHandler{store: s, plugins: plugins}
}

// RegisterRoutes mounts the hook routes on r.
func (h *HookHandler) RegisterRoutes(r chi.Router) {
	r.Route("/hooks", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

type createHookRequest struct {
	Exercise   string          `json:"exercise"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type updateHookRequest struct {
	Exercise   string          `json:"exercise"`
	PluginName string          `json:"plugin_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type listHooksResponse struct {
	Hooks []*store.Hook `json:"hooks"`
}

func validExercise(ex string) bool {
	if ex == "" || ex == store.AnyExercise {
		return true
	}
	_, ok := game.ParseExercise(ex)
	return ok
}

// checkPlugin writes a 400 and returns false when the binding is unusable.
func (h *HookHandler) checkPlugin(w http.ResponseWriter, name, action string) bool {
	if h.plugins == nil {
		return true
	}
	_, err := h.plugins.Resolve(name, action)
	switch {
	case err == nil:
		return true
	case errors.Is(err, plugin.ErrPluginNotFound):
		writeError(w, http.StatusBadRequest, "Plugin not found")
	case errors.Is(err, plugin.ErrActionNotSupported):
		writeError(w, http.StatusBadRequest, "Action not supported by plugin")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to verify plugin")
	}
	return false
}

// list handles GET /hooks and returns all hooks.
func (h *HookHandler) list(w http.ResponseWriter, r *http.Request) {
	hooks, err := h.store.Hooks().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list hooks")
		return
	}
	if hooks == nil {
		hooks = []*store.Hook{}
	}
	writeJSON(w, http.StatusOK, listHooksResponse{Hooks: hooks})
}

// get handles GET /hooks/{id} and returns a single hook.
func (h *HookHandler) get(w http.ResponseWriter, r *http.Request) {
	hook, err := h.store.Hooks().GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Hook not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get hook")
		return
	}
	writeJSON(w, http.StatusOK, hook)
}

// create handles POST /hooks and creates a new hook.
func (h *HookHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createHookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.PluginName == "" {
		writeError(w, http.StatusBadRequest, "plugin_name is required")
		return
	}
	if req.ActionName == "" {
		writeError(w, http.StatusBadRequest, "action_name is required")
		return
	}
	if !validExercise(req.Exercise) {
		writeError(w, http.StatusBadRequest, "Unknown exercise")
		return
	}
	if !h.checkPlugin(w, req.PluginName, req.ActionName) {
		return
	}

	hook := &store.Hook{
		Exercise:   req.Exercise,
		PluginName: req.PluginName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    req.Enabled == nil || *req.Enabled,
	}
	if hook.Config == nil {
		hook.Config = json.RawMessage("{}")
	}

	if err := h.store.Hooks().Create(hook); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create hook")
		return
	}

	writeJSON(w, http.StatusCreated, hook)
}

// update handles PUT /hooks/{id} and updates an existing hook.
func (h *HookHandler) update(w http.ResponseWriter, r *http.Request) {
	hook, err := h.store.Hooks().GetByID(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Hook not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get hook")
		return
	}

	var req updateHookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Exercise != "" {
		if !validExercise(req.Exercise) {
			writeError(w, http.StatusBadRequest, "Unknown exercise")
			return
		}
		hook.Exercise = req.Exercise
	}
	if req.PluginName != "" {
		hook.PluginName = req.PluginName
	}
	if req.ActionName != "" {
		hook.ActionName = req.ActionName
	}
	if req.Config != nil {
		hook.Config = req.Config
	}
	if req.Enabled != nil {
		hook.Enabled = *req.Enabled
	}
	if (req.PluginName != "" || req.ActionName != "") && !h.checkPlugin(w, hook.PluginName, hook.ActionName) {
		return
	}

	if err := h.store.Hooks().Update(hook); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update hook")
		return
	}

	writeJSON(w, http.StatusOK, hook)
}

// delete handles DELETE /hooks/{id} and removes a hook.
func (h *HookHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Hooks().Delete(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Hook not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete hook")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
