// Package httptransport exposes the event ingest surface. It is a thin
// layer: transport concerns (decoding, correlation ids) live here, eviction
// decisions live in the invalidation engine.
package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"coursepulse/internal/analytics/invalidation"
)

// Engine is the invalidation entry point consumed by the transport.
type Engine interface {
	HandleEvent(ctx context.Context, ev invalidation.Event) error
	HandleBatch(ctx context.Context, events []invalidation.Event) error
}

// Handler wires ingest endpoints to the invalidation engine.
type Handler struct {
	engine Engine
	logger *slog.Logger
}

// New constructs an ingest handler.
func New(engine Engine, logger *slog.Logger) (*Handler, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Handler{engine: engine, logger: logger}, nil
}

// Register mounts ingest endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/events", h.HandleEvent)
	r.Post("/v1/events/batch", h.HandleBatch)
}

type batchRequest struct {
	Events []invalidation.Event `json:"events"`
}

type acceptedResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"requestId"`
	Events    int    `json:"events"`
}

// HandleEvent handles POST /v1/events. The engine is infallible, so a
// well-formed request is always 202: the producer's write path must never
// see a cache-maintenance failure.
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := uuid.NewString()

	var ev invalidation.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		h.writeBadRequest(ctx, w, requestID, err)
		return
	}
	if ev.Type == "" {
		h.writeBadRequest(ctx, w, requestID, errors.New("type is required"))
		return
	}

	_ = h.engine.HandleEvent(ctx, ev)

	h.logger.InfoContext(ctx, "event accepted",
		"request_id", requestID,
		"event_type", string(ev.Type),
	)
	writeJSON(w, http.StatusAccepted, acceptedResponse{
		Status:    "accepted",
		RequestID: requestID,
		Events:    1,
	})
}

// HandleBatch handles POST /v1/events/batch.
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := uuid.NewString()

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(ctx, w, requestID, err)
		return
	}
	for _, ev := range req.Events {
		if ev.Type == "" {
			h.writeBadRequest(ctx, w, requestID, errors.New("every event requires a type"))
			return
		}
	}

	_ = h.engine.HandleBatch(ctx, req.Events)

	h.logger.InfoContext(ctx, "batch accepted",
		"request_id", requestID,
		"events", len(req.Events),
	)
	writeJSON(w, http.StatusAccepted, acceptedResponse{
		Status:    "accepted",
		RequestID: requestID,
		Events:    len(req.Events),
	})
}

func (h *Handler) writeBadRequest(ctx context.Context, w http.ResponseWriter, requestID string, err error) {
	h.logger.WarnContext(ctx, "rejected malformed ingest request",
		"request_id", requestID,
		"error", err,
	)
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error":     "malformed request",
		"requestId": requestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
