package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Sender delivers one event to a user's live connections and reports how
// many accepted it.
type Sender interface {
	Send(userID string, event domain.PushEvent) int
}

type delivery struct {
	userID string
	event  domain.PushEvent
}

// Dispatcher routes push deliveries to a fixed set of workers using
// consistent hashing on the user id, guaranteeing per-user event ordering.
// It implements ports.PushPublisher.
type Dispatcher struct {
	workers []chan delivery
	sender  Sender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender Sender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan delivery, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan delivery, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish queues an event for the worker owning userID. It never blocks:
// when that worker's queue is full the event is dropped, since polling
// reconciles the client anyway.
func (d *Dispatcher) Publish(userID string, event domain.PushEvent) {
	idx := d.shardIndex(userID)
	select {
	case d.workers[idx] <- delivery{userID: userID, event: event}:
		metrics.PushQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.PushDeliveriesTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("user_id", userID).Int("worker_id", idx).Msg("push queue full, event dropped")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan delivery) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.PushQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if n := d.sender.Send(job.userID, job.event); n == 0 {
				metrics.PushDeliveriesTotal.WithLabelValues("no_listener").Inc()
				d.log.Debug().
					Str("user_id", job.userID).
					Int("worker_id", id).
					Msg("no live connection for push event")
				continue
			}
			metrics.PushDeliveriesTotal.WithLabelValues("sent").Inc()
		}
	}
}
