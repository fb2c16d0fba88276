// Package main provides a desktop notification plugin.
// It uses AppleScript on macOS and notify-send elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Event   string          `json:"event"`
	Action  string          `json:"action"`
	Session Session         `json:"session"`
	Config  json.RawMessage `json:"config"`
}

// Session is the subset of the finished session this plugin reads.
type Session struct {
	Exercise string `json:"exercise"`
	Score    int    `json:"score"`
	Best     int    `json:"best"`
	NewBest  bool   `json:"new_best"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config customizes the notification.
type Config struct {
	Title string `json:"title"`
}

// actionHandler builds the notification body, or returns "" to stay quiet.
type actionHandler func(s Session) string

// actionHandlers maps action names to their handler functions.
var actionHandlers = map[string]actionHandler{
	"notify":   summaryMessage,
	"new-best": newBestMessage,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
		return
	}

	cfg := Config{Title: "Hand Arcade"}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			writeErrorResponse(fmt.Sprintf("failed to parse config: %v", err))
			return
		}
	}

	body := handler(req.Session)
	if body == "" {
		writeSuccessResponse()
		return
	}

	if err := notify(cfg.Title, body); err != nil {
		writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
		return
	}

	writeSuccessResponse()
}

func summaryMessage(s Session) string {
	msg := fmt.Sprintf("%s finished with %d points", displayName(s.Exercise), s.Score)
	if s.NewBest {
		msg += " (new best!)"
	}
	return msg
}

func newBestMessage(s Session) string {
	if !s.NewBest {
		return ""
	}
	return fmt.Sprintf("New best in %s: %d points", displayName(s.Exercise), s.Score)
}

// displayName turns an exercise slug like "fruit-slicer" into "Fruit Slicer".
func displayName(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func notify(title, body string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, body, title)
		cmd = exec.Command("osascript", "-e", script)
	default:
		cmd = exec.Command("notify-send", title, body)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
