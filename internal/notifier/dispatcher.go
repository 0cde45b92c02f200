package notifier

import (
	"context"
	"errors"
	"sync"
	"time"

	"auction-market/utils"

	"github.com/smallnest/chanx"
)

var ErrDispatcherClosed = errors.New("notification dispatcher closed")

type job struct {
	userID  int64
	kind    Kind
	payload Payload
}

type dispatcherOptions struct {
	bufferSize  int
	sendTimeout time.Duration
}

type DispatcherOption func(*dispatcherOptions)

// WithDispatcherBufferSize sets the initial queue capacity
func WithDispatcherBufferSize(size int) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.bufferSize = size
	}
}

// WithDispatcherSendTimeout bounds each backend call
func WithDispatcherSendTimeout(d time.Duration) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.sendTimeout = d
	}
}

// Dispatcher queues notifications and delivers them from a single goroutine,
// so the bidding path never waits on a slow backend
type Dispatcher struct {
	backend  Notifier
	upstream *chanx.UnboundedChan[job]
	cancel   context.CancelFunc
	mu       sync.RWMutex
	closed   bool
	wg       sync.WaitGroup
	options  dispatcherOptions
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher starts the delivery goroutine. Close must be called to stop it.
func NewDispatcher(backend Notifier, opts ...DispatcherOption) *Dispatcher {
	options := dispatcherOptions{
		bufferSize:  64,
		sendTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&options)
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		backend:  backend,
		upstream: chanx.NewUnboundedChan[job](ctx, options.bufferSize),
		cancel:   cancel,
		options:  options,
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for j := range d.upstream.Out {
			d.deliver(j)
		}
	}()
	return d
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.options.sendTimeout)
	defer cancel()

	if err := d.backend.Notify(ctx, j.userID, j.kind, j.payload); err != nil {
		utils.Warn("Failed to deliver notification", map[string]any{
			"user_id":    j.userID,
			"kind":       j.kind,
			"auction_id": j.payload.AuctionID,
			"error":      err.Error(),
		})
		return
	}
	utils.Debug("Notification delivered", map[string]any{
		"user_id": j.userID,
		"kind":    j.kind,
	})
}

// Notify enqueues the notification and returns immediately
func (d *Dispatcher) Notify(ctx context.Context, userID int64, kind Kind, payload Payload) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	d.upstream.In <- job{userID: userID, kind: kind, payload: payload}
	return nil
}

// Close stops accepting notifications and waits until the queue is delivered
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.upstream.In)
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}
