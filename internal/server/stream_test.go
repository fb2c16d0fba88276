package server

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFrameHub_Publish(t *testing.T) {
	hub := NewFrameHub()

	frame, seq, updated := hub.Latest()
	if frame != nil || seq != 0 {
		t.Fatalf("new hub Latest() = %v, %d", frame, seq)
	}

	hub.Publish([]byte{0xFF, 0xD8, 1})

	select {
	case <-updated:
	default:
		t.Fatal("Publish() should close the previous update channel")
	}

	frame, seq, next := hub.Latest()
	if seq != 1 || len(frame) != 3 {
		t.Errorf("Latest() = %v, %d", frame, seq)
	}
	select {
	case <-next:
		t.Fatal("fresh update channel should be open")
	default:
	}
}

func TestStreamHandler_ServesPublishedFrames(t *testing.T) {
	hub := NewFrameHub()
	ts := httptest.NewServer(NewStreamHandler(hub))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		hub.Publish([]byte("jpeg-bytes"))
	}()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "multipart/x-mixed-replace") {
		t.Errorf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	var header strings.Builder
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading part header: %v", err)
		}
		header.WriteString(line)
		if line == "\r\n" {
			break
		}
	}
	if !strings.Contains(header.String(), "--frame") || !strings.Contains(header.String(), "Content-Length: 10") {
		t.Errorf("unexpected part header %q", header.String())
	}

	body := make([]byte, 10)
	if _, err := io.ReadFull(r, body); err != nil {
		t.Fatalf("reading part body: %v", err)
	}
	if string(body) != "jpeg-bytes" {
		t.Errorf("part body = %q", body)
	}
}

func TestStreamHandler_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewStreamHandler(NewFrameHub()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
