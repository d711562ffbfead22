package queue

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ersuite/reimbursement-api/internal/api/metrics"
	"github.com/ersuite/reimbursement-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes decision events to a fixed set of workers, sharding by
// reimbursement id so the audit trail of any single reimbursement is
// written in order.
type Dispatcher struct {
	workers []chan ports.DecisionEventInput
	service ports.AuditService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.AuditService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.DecisionEventInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.DecisionEventInput, channelBuffer)
	}
	return d
}

var _ ports.DecisionRecorder = (*Dispatcher)(nil)

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record sends a decision to the worker responsible for its reimbursement.
// Non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Record(ev ports.DecisionEventInput) {
	idx := d.shardIndex(ev.ReimbID)
	d.workers[idx] <- ev
	metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

func (d *Dispatcher) shardIndex(reimbID int64) int {
	if reimbID < 0 {
		reimbID = -reimbID
	}
	return int(reimbID % int64(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.DecisionEventInput) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			timer := metrics.StartDecisionTimer()
			if err := d.service.Process(ctx, ev); err != nil {
				metrics.DecisionErrorsTotal.WithLabelValues("process_failed").Inc()
				timer.Stop("error")
				d.log.Error().Err(err).
					Int64("reimb_id", ev.ReimbID).
					Int("worker_id", id).
					Msg("decision processing failed")
			} else {
				metrics.DecisionsProcessedTotal.WithLabelValues(string(ev.Status)).Inc()
				timer.Stop(string(ev.Status))
			}
			metrics.AuditQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
		}
	}
}
