package pqutil

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/time/rate"

	"github.com/xanlib/tools-common/errdefs"
	"github.com/xanlib/tools-common/hofp"
	"github.com/xanlib/tools-common/log"
	"github.com/xanlib/tools-common/types/pq"
)

// Handler processes a single payload removed from the queue.
type Handler[T comparable] func(ctx context.Context, payload T) error

// DispatcherOptions encapsulates the available options which can be used when creating a dispatcher.
type DispatcherOptions struct {
	// Workers is the number of payloads which may be handled concurrently. Defaults to the number of vCPUs.
	Workers int

	// Limiter, if provided, limits the rate at which payloads are removed from the queue.
	Limiter *rate.Limiter

	// Logger is used to log dispatched payloads and handler failures, by default nothing is logged.
	Logger log.Logger

	// LogPrefix is the prefix used for every log line. Defaults to '(dispatch)'.
	LogPrefix string
}

func (o *DispatcherOptions) defaults() {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}

	if o.LogPrefix == "" {
		o.LogPrefix = "(dispatch)"
	}
}

// Dispatcher removes payloads from a queue in priority order, handing each one to a handler running in a worker pool.
//
// At most 'Workers' payloads are removed from the queue at any one time, so higher priority payloads which arrive
// whilst every worker is busy are still handled first.
type Dispatcher[T comparable] struct {
	queue   *pq.Queue[T]
	handler Handler[T]
	opts    DispatcherOptions
	logger  log.WrappedLogger
}

// NewDispatcher returns a dispatcher which will pass payloads from the given queue to the handler.
func NewDispatcher[T comparable](queue *pq.Queue[T], handler Handler[T], opts DispatcherOptions) *Dispatcher[T] {
	// Fill out any missing fields with the sane defaults
	opts.defaults()

	return &Dispatcher[T]{
		queue:   queue,
		handler: handler,
		opts:    opts,
		logger:  log.NewWrappedLogger(opts.Logger),
	}
}

// Run dispatches payloads until the given context is cancelled, the queue is destroyed, or a handler returns an error.
// Payloads which are being handled when the context is cancelled are allowed to complete.
//
// In the event of a handler error, that error is returned and any payloads which were removed from the queue but not
// yet handled are put back with their original priority.
func (d *Dispatcher[T]) Run(ctx context.Context) error {
	var (
		pool = hofp.NewPool(hofp.Options{
			Size:      d.opts.Workers,
			LogPrefix: d.opts.LogPrefix,
			Logger:    d.opts.Logger,
		})
		tokens  = make(chan struct{}, d.opts.Workers)
		pending = newPendingSet[T]()
	)

	// Stop removing payloads as soon as the pool begins to tear down due to a handler failure
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(pool.Context(), cancel)
	defer stop()

	d.logger.Debugf("%s Dispatching from queue %s using %d worker(s)", d.opts.LogPrefix, d.queue.ID(), d.opts.Workers)

	for {
		entry, err := d.next(ctx, tokens)
		if err != nil {
			break
		}

		id := pending.add(entry)

		err = pool.Queue(func(ctx context.Context) error {
			defer func() { <-tokens }()

			if !pending.remove(id) {
				return nil
			}

			if err := d.handler(ctx, entry.Payload); err != nil {
				return fmt.Errorf("could not handle payload with priority %v: %w", entry.Priority, err)
			}

			return nil
		})
		if err != nil {
			break
		}
	}

	err := pool.Stop()

	d.requeue(pending.drain())

	if err != nil {
		d.logger.Errorf("%s Dispatching from queue %s failed: %v", d.opts.LogPrefix, d.queue.ID(), err)
	}

	return err
}

// next waits for a free worker, and then for a payload to become available.
func (d *Dispatcher[T]) next(ctx context.Context, tokens chan struct{}) (pq.Entry[T], error) {
	select {
	case tokens <- struct{}{}:
	case <-ctx.Done():
		return pq.Entry[T]{}, ctx.Err()
	}

	if d.opts.Limiter != nil {
		if err := d.opts.Limiter.Wait(ctx); err != nil {
			<-tokens
			return pq.Entry[T]{}, fmt.Errorf("could not wait for limiter: %w", err)
		}
	}

	entry, err := d.queue.GetEntryContext(ctx)
	if err != nil {
		<-tokens

		if errors.Is(err, errdefs.ErrDestroyed) {
			d.logger.Debugf("%s Queue %s destroyed, stopping", d.opts.LogPrefix, d.queue.ID())
		}

		return pq.Entry[T]{}, err
	}

	d.logger.Tracef("%s Dispatching payload %v with priority %v", d.opts.LogPrefix,
		log.UserDataValue(fmt.Sprint(entry.Payload)), entry.Priority)

	return entry, nil
}

// requeue puts back payloads which were removed from the queue but never handled.
func (d *Dispatcher[T]) requeue(entries []pq.Entry[T]) {
	for _, entry := range entries {
		if _, err := d.queue.Put(entry.Payload, entry.Priority); err != nil {
			d.logger.Errorf("%s Could not requeue payload %v: %v", d.opts.LogPrefix,
				log.UserDataValue(fmt.Sprint(entry.Payload)), err)
		}
	}
}

// pendingSet tracks the payloads which have been removed from the queue but not yet picked up by a worker.
type pendingSet[T comparable] struct {
	entries map[uint64]pq.Entry[T]
	next    uint64
	lock    sync.Mutex
}

func newPendingSet[T comparable]() *pendingSet[T] {
	return &pendingSet[T]{entries: make(map[uint64]pq.Entry[T])}
}

func (p *pendingSet[T]) add(entry pq.Entry[T]) uint64 {
	p.lock.Lock()
	defer p.lock.Unlock()

	id := p.next
	p.next++

	p.entries[id] = entry

	return id
}

// remove returns a boolean indicating whether the entry was still pending, in which case the caller now owns it.
func (p *pendingSet[T]) remove(id uint64) bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	_, ok := p.entries[id]
	delete(p.entries, id)

	return ok
}

// drain returns and removes every pending entry.
func (p *pendingSet[T]) drain() []pq.Entry[T] {
	p.lock.Lock()
	defer p.lock.Unlock()

	entries := make([]pq.Entry[T], 0, len(p.entries))
	for _, entry := range p.entries {
		entries = append(entries, entry)
	}

	p.entries = make(map[uint64]pq.Entry[T])

	return entries
}
