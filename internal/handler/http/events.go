package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/guccio85/proximasuite-sub000/internal/pkg/sse"
)

type EventHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
}

type eventHandlerImpl struct {
	hub       *sse.Hub
	keepalive time.Duration
}

func NewEventHandler(hub *sse.Hub) EventHandler {
	return &eventHandlerImpl{hub: hub, keepalive: 30 * time.Second}
}

// Stream pushes planning changes to wall screens over SSE.
func (h *eventHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe()
	defer cleanup()

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Data)
			if err != nil {
				slog.Error("failed to encode event", "event", event.Event, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// tokenFromQuery lets EventSource clients, which cannot set headers, pass
// their token as ?token=.
func tokenFromQuery(r *http.Request) string {
	return r.URL.Query().Get("token")
}
