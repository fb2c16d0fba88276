package plugin

import (
	"context"
	"fmt"

	"github.com/ayusman/handarcade/internal/log"
	"github.com/ayusman/handarcade/internal/store"
)

// HookSource lists the enabled hooks for a finished exercise.
type HookSource interface {
	ForExercise(exercise string) ([]*store.Hook, error)
}

// HookResult records one hook run.
type HookResult struct {
	HookID   string
	Plugin   string
	Action   string
	Response *Response
	Err      error
}

// Runner fires session-completion hooks through the plugin executor.
type Runner struct {
	hooks    HookSource
	manager  *Manager
	executor *Executor
}

// NewRunner creates a Runner.
func NewRunner(hooks HookSource, manager *Manager, executor *Executor) *Runner {
	return &Runner{hooks: hooks, manager: manager, executor: executor}
}

// Fire runs every enabled hook bound to the session's exercise, in order.
// A failing hook is logged and recorded but does not stop the rest.
func (r *Runner) Fire(ctx context.Context, s Session) ([]HookResult, error) {
	hooks, err := r.hooks.ForExercise(s.Exercise)
	if err != nil {
		return nil, fmt.Errorf("load hooks: %w", err)
	}

	results := make([]HookResult, 0, len(hooks))
	for _, h := range hooks {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}

		res := HookResult{HookID: h.ID, Plugin: h.PluginName, Action: h.ActionName}
		res.Response, res.Err = r.run(ctx, h, s)
		if res.Err == nil && !res.Response.Success {
			res.Err = fmt.Errorf("plugin reported failure: %s", res.Response.Error)
		}
		if res.Err != nil {
			log.Warn("hook failed", "hook", h.ID, "plugin", h.PluginName, "action", h.ActionName, "error", res.Err)
		} else {
			log.Debug("hook ran", "hook", h.ID, "plugin", h.PluginName, "action", h.ActionName)
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) run(ctx context.Context, h *store.Hook, s Session) (*Response, error) {
	p, err := r.manager.Resolve(h.PluginName, h.ActionName)
	if err != nil {
		return nil, err
	}
	return r.executor.Execute(ctx, p, &Request{
		Event:   EventSessionComplete,
		Action:  h.ActionName,
		Session: s,
		Config:  h.Config,
	})
}
