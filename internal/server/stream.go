package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// DefaultStreamInterval is the minimum gap between MJPEG parts (~15 FPS).
const DefaultStreamInterval = 66 * time.Millisecond

// FrameHub holds the latest encoded JPEG frame and wakes waiting streams when
// a new one is published.
type FrameHub struct {
	mu      sync.Mutex
	frame   []byte
	seq     uint64
	updated chan struct{}
}

// NewFrameHub creates an empty FrameHub.
func NewFrameHub() *FrameHub {
	return &FrameHub{updated: make(chan struct{})}
}

// Publish replaces the latest frame. The hub keeps jpeg; callers must not
// modify it afterwards.
func (h *FrameHub) Publish(jpeg []byte) {
	h.mu.Lock()
	h.frame = jpeg
	h.seq++
	close(h.updated)
	h.updated = make(chan struct{})
	h.mu.Unlock()
}

// Latest returns the latest frame, its sequence number, and a channel that is
// closed when a newer frame arrives.
func (h *FrameHub) Latest() ([]byte, uint64, <-chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame, h.seq, h.updated
}

// StreamHandler serves the rendered arcade frames as MJPEG.
type StreamHandler struct {
	hub      *FrameHub
	interval time.Duration
}

// NewStreamHandler creates a new StreamHandler reading from hub.
func NewStreamHandler(hub *FrameHub) *StreamHandler {
	return &StreamHandler{hub: hub, interval: DefaultStreamInterval}
}

// ServeHTTP streams MJPEG frames until the client disconnects.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var sent uint64
	for {
		frame, seq, updated := h.hub.Latest()
		if seq == sent || len(frame) == 0 {
			select {
			case <-r.Context().Done():
				return
			case <-updated:
				continue
			}
		}

		if err := writePart(w, frame); err != nil {
			return
		}
		sent = seq

		select {
		case <-r.Context().Done():
			return
		case <-time.After(h.interval):
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\r\n"); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
