// Package plugin discovers external plugin executables and runs them when a
// game session completes.
package plugin

import (
	"encoding/json"
	"slices"
	"time"
)

// EventSessionComplete is the only event plugins currently receive.
const EventSessionComplete = "session_complete"

// Manifest describes a plugin's metadata and capabilities.
type Manifest struct {
	Name         string          `json:"name"`
	Version      string          `json:"version"`
	Description  string          `json:"description"`
	Executable   string          `json:"executable"`
	Actions      []string        `json:"actions"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Supports reports whether the manifest lists action.
func (m Manifest) Supports(action string) bool {
	return slices.Contains(m.Actions, action)
}

// Session is the finished session a hook fires for.
type Session struct {
	RunID    string          `json:"run_id"`
	Exercise string          `json:"exercise"`
	Score    int             `json:"score"`
	Best     int             `json:"best"`
	NewBest  bool            `json:"new_best"`
	Frames   int             `json:"frames"`
	Stats    json.RawMessage `json:"stats,omitempty"`
	EndedAt  time.Time       `json:"ended_at"`
}

// Request is written as JSON to the plugin's stdin.
type Request struct {
	Event   string          `json:"event"`
	Action  string          `json:"action"`
	Session Session         `json:"session"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// Response is read as JSON from the plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
