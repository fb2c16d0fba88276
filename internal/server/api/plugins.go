package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/handarcade/internal/plugin"
)

// PluginLister lists discovered plugins.
type PluginLister interface {
	List() []*plugin.Plugin
}

// PluginHandler lists installed plugins so hooks can be bound to them.
type PluginHandler struct {
	plugins PluginLister
}

// NewPluginHandler creates a PluginHandler.
func NewPluginHandler(p PluginLister) *PluginHandler {
	return &PluginHandler{plugins: p}
}

// RegisterRoutes mounts the plugin routes on r.
func (h *PluginHandler) RegisterRoutes(r chi.Router) {
	r.Get("/plugins", h.list)
}

type pluginsResponse struct {
	Plugins []plugin.Manifest `json:"plugins"`
}

func (h *PluginHandler) list(w http.ResponseWriter, r *http.Request) {
	plugins := h.plugins.List()
	resp := pluginsResponse{Plugins: make([]plugin.Manifest, 0, len(plugins))}
	for _, p := range plugins {
		resp.Plugins = append(resp.Plugins, p.Manifest)
	}
	writeJSON(w, http.StatusOK, resp)
}
