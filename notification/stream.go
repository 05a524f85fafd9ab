package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

var ErrStreamingUnsupported = errors.New("response writer does not support flushing")

// Serve registers a client for userID and streams its events to w as
// server-sent events until ctx ends or a write fails. A comment line is sent
// every heartbeat to keep idle connections open.
func (h *Hub) Serve(ctx context.Context, w http.ResponseWriter, userID string, heartbeat time.Duration) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return ErrStreamingUnsupported
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := NewClient()
	h.Register(userID, client)
	defer h.Release(userID, client)
	h.log.Debug("stream opened", zap.String("user_id", userID))

	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Debug("stream closed", zap.String("user_id", userID))
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return fmt.Errorf("write heartbeat: %w", err)
			}
			flusher.Flush()
		case e := <-client.Events():
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("encode event: %w", err)
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return fmt.Errorf("write event: %w", err)
			}
			flusher.Flush()
		}
	}
}
