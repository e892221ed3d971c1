// Package event streams bus events to the frontend over Server-Sent Events.
// The SPA listens for dashboard.refreshed to refetch instead of polling.
package event

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iehaus/buildboard/internal/eventbus"
)

type Server struct {
	eventBus *eventbus.Bus
}

func NewServer(eventBus *eventbus.Bus) *Server {
	return &Server{eventBus: eventBus}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/events", s.subscribe)
}

// subscribe streams events until the client disconnects. Optional query
// parameters: types (comma-separated event types) and project_id.
func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	typeFilter := map[eventbus.Type]struct{}{}
	if raw := r.URL.Query().Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			typeFilter[eventbus.Type(strings.TrimSpace(t))] = struct{}{}
		}
	}
	projectID := r.URL.Query().Get("project_id")

	subID, ch := s.eventBus.Subscribe(64)
	defer s.eventBus.Unsubscribe(subID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if len(typeFilter) > 0 {
				if _, match := typeFilter[event.Type]; !match {
					continue
				}
			}
			if projectID != "" {
				if eventProjectID, ok := event.Metadata["project_id"]; ok && eventProjectID != projectID {
					continue
				}
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()
		}
	}
}
