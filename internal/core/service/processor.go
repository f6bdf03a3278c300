package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventreg/registration-system/internal/api/metrics"
	"github.com/eventreg/registration-system/internal/core/ports"
)

// Processor consumes dequeued inbound events: dispatch, deliver replies,
// record metrics. A failed turn produces a clear error reply while the
// session stays untouched, so the caller can simply retry.
type Processor struct {
	router *Router
	sender ports.Sender
	logger zerolog.Logger
}

func NewProcessor(router *Router, sender ports.Sender, logger zerolog.Logger) *Processor {
	return &Processor{router: router, sender: sender, logger: logger}
}

// Process implements ports.EventProcessor.
func (p *Processor) Process(ctx context.Context, ev ports.InboundEvent) error {
	start := time.Now()

	replies, err := p.router.Dispatch(ctx, ev)
	if err != nil {
		metrics.DispatchErrorsTotal.WithLabelValues("dispatch").Inc()
		p.logger.Error().Err(err).
			Int64("caller_id", ev.CallerID).
			Int64("update_id", ev.UpdateID).
			Msg("turn failed")
		replies = []ports.Reply{{Text: msgTurnFailed}}
	}

	if len(replies) > 0 {
		if serr := p.sender.Send(ctx, ev.CallerID, replies); serr != nil {
			metrics.DispatchErrorsTotal.WithLabelValues("send").Inc()
			p.logger.Error().Err(serr).
				Int64("caller_id", ev.CallerID).
				Msg("failed to deliver replies")
			if err == nil {
				err = serr
			}
		}
	}

	metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	return err
}
