package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eventreg/registration-system/internal/api/metrics"
	"github.com/eventreg/registration-system/internal/core/ports"
)

// UpdateDispatcher is the interface the handler uses to enqueue updates.
type UpdateDispatcher interface {
	Enqueue(event ports.InboundEvent)
}

// DedupChecker filters redelivered updates by update id.
type DedupChecker interface {
	IsDuplicate(ctx context.Context, updateID int64) (bool, error)
	Mark(ctx context.Context, updateID int64) error
}

// WebhookHandler ingests chat transport updates.
type WebhookHandler struct {
	dispatcher UpdateDispatcher
	dedup      DedupChecker
	log        zerolog.Logger
}

// NewWebhookHandler creates a WebhookHandler backed by the given dispatcher.
func NewWebhookHandler(dispatcher UpdateDispatcher, dedup DedupChecker, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		dedup:      dedup,
		log:        log,
	}
}

type okResponse struct {
	OK bool `json:"ok"`
}

// Receive handles POST /webhook. The transport retries deliveries until it
// sees 200, so every accepted, ignored, or deduplicated update answers 200;
// only malformed payloads are rejected.
func (h *WebhookHandler) Receive(c echo.Context) error {
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	event, ok := toInboundEvent(req)
	if !ok {
		return c.JSON(http.StatusOK, okResponse{OK: true})
	}

	ctx := c.Request().Context()
	dup, err := h.dedup.IsDuplicate(ctx, event.UpdateID)
	if err != nil {
		// Dedup is best effort: a Redis hiccup must not drop updates. The
		// per-caller idempotent handlers absorb an occasional replay.
		h.log.Warn().Err(err).Int64("update_id", event.UpdateID).Msg("dedup check failed")
	} else if dup {
		metrics.UpdatesDedupTotal.WithLabelValues("hit").Inc()
		return c.JSON(http.StatusOK, okResponse{OK: true})
	}
	if err := h.dedup.Mark(ctx, event.UpdateID); err != nil {
		h.log.Warn().Err(err).Int64("update_id", event.UpdateID).Msg("dedup mark failed")
	}
	metrics.UpdatesDedupTotal.WithLabelValues("miss").Inc()

	h.dispatcher.Enqueue(event)
	metrics.UpdatesReceivedTotal.Inc()

	return c.JSON(http.StatusOK, okResponse{OK: true})
}
