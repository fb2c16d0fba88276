// Package main provides a score log plugin.
// It appends each finished session as one JSON line to a file.
package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Request represents the input from the plugin executor.
type Request struct {
	Event   string          `json:"event"`
	Action  string          `json:"action"`
	Session json.RawMessage `json:"session"`
	Config  json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config selects the log file. Relative paths resolve against the plugin directory.
type Config struct {
	File string `json:"file"`
}

const defaultFile = "scores.jsonl"

type sessionScore struct {
	Exercise string `json:"exercise"`
	Score    int    `json:"score"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	path, err := logPath(req.Config)
	if err != nil {
		writeErrorResponse(err.Error())
		return
	}

	switch req.Action {
	case "append":
		if err := appendLine(path, req.Session); err != nil {
			writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
			return
		}
		writeSuccessResponse(nil)
	case "summary":
		data, err := summarize(path)
		if err != nil {
			writeErrorResponse(fmt.Sprintf("action %s failed: %v", req.Action, err))
			return
		}
		writeSuccessResponse(data)
	default:
		writeErrorResponse(fmt.Sprintf("unknown action: %s", req.Action))
	}
}

func logPath(raw json.RawMessage) (string, error) {
	var cfg Config
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return "", fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if cfg.File == "" {
		cfg.File = defaultFile
	}
	return filepath.Clean(cfg.File), nil
}

// appendLine writes the session as a single compact JSON line.
func appendLine(path string, session json.RawMessage) error {
	if len(session) == 0 {
		return errors.New("session is required")
	}

	var compact map[string]any
	if err := json.Unmarshal(session, &compact); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}
	line, err := json.Marshal(compact)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

// summarize returns the session count and best score per exercise.
func summarize(path string) (json.RawMessage, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return json.RawMessage(`{"sessions":0,"best":{}}`), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sessions := 0
	best := map[string]int{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var s sessionScore
		if err := json.Unmarshal(sc.Bytes(), &s); err != nil {
			continue
		}
		sessions++
		if cur, ok := best[s.Exercise]; !ok || s.Score > cur {
			best[s.Exercise] = s.Score
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return json.Marshal(map[string]any{"sessions": sessions, "best": best})
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
func writeSuccessResponse(data json.RawMessage) {
	resp := Response{
		Success: true,
		Data:    data,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
