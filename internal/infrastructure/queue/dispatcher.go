package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/orderdesk/order-management/internal/core/ports"
	"github.com/orderdesk/order-management/internal/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Command is one unit of dispatch: a name for logging, the target document id
// used for sharding, and the closure that performs the mutation.
type Command struct {
	Name   string
	Target string
	Run    func(ctx context.Context) ports.CommandResult
}

type queued struct {
	cmd    Command
	result chan ports.CommandResult
}

// Dispatcher routes commands to a fixed set of workers using consistent
// hashing on the target id, guaranteeing per-document command ordering.
// Execution is fire-and-forget: the result channel makes the outcome
// observable, but callers are free to discard it.
type Dispatcher struct {
	workers []chan queued
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan queued, numWorkers),
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan queued, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a command to the worker responsible for its target. The
// returned channel is buffered and receives exactly one result; it never has
// to be drained.
func (d *Dispatcher) Enqueue(cmd Command) <-chan ports.CommandResult {
	result := make(chan ports.CommandResult, 1)
	idx := d.shardIndex(cmd.Target)
	d.workers[idx] <- queued{cmd: cmd, result: result}
	metrics.CommandQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	return result
}

// shardIndex maps a target id deterministically to a worker index.
func (d *Dispatcher) shardIndex(target string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(target))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan queued) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case q, ok := <-ch:
			if !ok {
				return
			}
			res := q.cmd.Run(ctx)
			if res.Err != nil && !res.NoOp {
				d.log.Error().Err(res.Err).
					Str("command", q.cmd.Name).
					Str("target", q.cmd.Target).
					Int("worker_id", id).
					Msg("command execution failed")
			}
			q.result <- res
			metrics.CommandQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
		}
	}
}
