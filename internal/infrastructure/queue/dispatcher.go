package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/identitylab/account-service/internal/api/metrics"
	"github.com/identitylab/account-service/internal/core/domain"
	"github.com/identitylab/account-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher fans account events out to a fixed set of workers using
// consistent hashing on the user id, guaranteeing per-account delivery
// ordering. It implements ports.EventPublisher.
type Dispatcher struct {
	workers  []chan domain.AccountEvent
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.AccountEvent, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AccountEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish sends an event to the worker responsible for its account.
// Non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Publish(event domain.AccountEvent) {
	idx := d.shardIndex(event.UserID.String())
	d.workers[idx] <- event
	metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AccountEvent) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			start := time.Now()
			if err := d.notifier.Send(ctx, event); err != nil {
				metrics.NotificationDeliveryDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
				d.log.Error().Err(err).
					Str("user_id", event.UserID.String()).
					Str("kind", string(event.Kind)).
					Int("worker_id", id).
					Msg("event delivery failed")
			} else {
				metrics.NotificationDeliveryDuration.WithLabelValues(string(event.Kind)).Observe(time.Since(start).Seconds())
			}
			metrics.NotificationQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
		}
	}
}
