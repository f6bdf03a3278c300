package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/eventreg/registration-system/internal/api/metrics"
	"github.com/eventreg/registration-system/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Dispatcher routes inbound events to a fixed set of workers using
// consistent hashing on the caller id, guaranteeing that events from the
// same caller are processed in arrival order. Different callers may be
// processed concurrently; the participant store is the only shared state.
type Dispatcher struct {
	workers   []chan ports.InboundEvent
	processor ports.EventProcessor
	log       zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, processor ports.EventProcessor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan ports.InboundEvent, numWorkers),
		processor: processor,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.InboundEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an event to the worker responsible for its caller. The call
// is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(event ports.InboundEvent) {
	idx := d.shardIndex(event.CallerID)
	d.workers[idx] <- event
	metrics.QueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a caller id deterministically to a worker index.
func (d *Dispatcher) shardIndex(callerID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(callerID, 10)))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.InboundEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			metrics.QueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if err := d.processor.Process(ctx, event); err != nil {
				d.log.Error().Err(err).
					Int64("caller_id", event.CallerID).
					Int64("update_id", event.UpdateID).
					Int("worker_id", id).
					Msg("event processing failed")
			}
		}
	}
}
