// ABOUTME: Dispatcher runs each inbound message on its own goroutine under a concurrency cap
// ABOUTME: Optional intake rate limiting, bounded reply retries and graceful shutdown
package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/harper/trigrambot/internal/logging"
	"github.com/harper/trigrambot/internal/storage/sqlite"
	"github.com/harper/trigrambot/internal/util"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrDispatcherClosed is returned by Submit and Do after Shutdown
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Processor handles one message
type Processor interface {
	Process(ctx context.Context, m Message) (Reply, error)
}

// Sender delivers a reply for m back through its transport
type Sender interface {
	Send(ctx context.Context, m Message, r Reply) error
}

// SenderFunc adapts a function to Sender
type SenderFunc func(ctx context.Context, m Message, r Reply) error

// Send calls f
func (f SenderFunc) Send(ctx context.Context, m Message, r Reply) error {
	return f(ctx, m, r)
}

// DispatcherOptions tunes a Dispatcher
type DispatcherOptions struct {
	MaxInFlight      int
	RateLimit        float64 // messages per second, 0 disables
	RateBurst        int
	DeliveryAttempts int
	RetryDelay       time.Duration // base delay for delivery backoff
	Logger           *log.Logger
}

// Dispatcher fans messages out to goroutines, at most MaxInFlight at once
type Dispatcher struct {
	proc     Processor
	sender   Sender
	sem      *semaphore.Weighted
	limiter  *rate.Limiter
	attempts int
	delay    time.Duration
	log      *log.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. sender may be nil when only Do is used.
func NewDispatcher(proc Processor, sender Sender, opts DispatcherOptions) *Dispatcher {
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 16
	}
	if opts.DeliveryAttempts <= 0 {
		opts.DeliveryAttempts = 5
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 100 * time.Millisecond
	}

	d := &Dispatcher{
		proc:     proc,
		sender:   sender,
		sem:      semaphore.NewWeighted(int64(opts.MaxInFlight)),
		attempts: opts.DeliveryAttempts,
		delay:    opts.RetryDelay,
		log:      logging.Component(opts.Logger, "dispatch"),
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return d
}

// admit waits for the rate limiter and a free slot, then registers the work.
// The caller must call d.done when finished.
func (d *Dispatcher) admit(ctx context.Context) error {
	if d.isClosed() {
		return ErrDispatcherClosed
	}
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.sem.Release(1)
		return ErrDispatcherClosed
	}
	d.wg.Add(1)
	return nil
}

func (d *Dispatcher) done() {
	d.sem.Release(1)
	d.wg.Done()
}

func (d *Dispatcher) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func withID(m Message) Message {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return m
}

// Submit queues m and returns its id once it has a slot. It blocks while
// MaxInFlight messages are running. The reply goes to the Sender.
func (d *Dispatcher) Submit(ctx context.Context, m Message) (string, error) {
	m = withID(m)
	if err := d.admit(ctx); err != nil {
		return "", err
	}

	// started work runs to completion even if the submitter goes away
	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer d.done()
		reply, err := d.process(runCtx, m)
		if err != nil {
			return
		}
		d.deliver(runCtx, m, reply)
	}()
	return m.ID, nil
}

// Do processes m synchronously under the same limits as Submit.
func (d *Dispatcher) Do(ctx context.Context, m Message) (Reply, error) {
	m = withID(m)
	if err := d.admit(ctx); err != nil {
		return none(), err
	}
	defer d.done()
	return d.process(context.WithoutCancel(ctx), m)
}

func (d *Dispatcher) process(ctx context.Context, m Message) (Reply, error) {
	start := time.Now()
	reply, err := d.proc.Process(ctx, m)
	if err != nil {
		if errors.Is(err, sqlite.ErrUnavailable) {
			d.log.Error("storage unavailable, message dropped", "id", m.ID, "user", m.UserID, "err", err)
		} else {
			d.log.Error("message failed", "id", m.ID, "user", m.UserID, "err", err)
		}
		return none(), err
	}
	d.log.Debug("message handled", "id", m.ID, "user", m.UserID, "reply", reply.Kind, "took", time.Since(start))
	return reply, nil
}

// deliver sends reply, retrying with backoff up to the attempt limit.
func (d *Dispatcher) deliver(ctx context.Context, m Message, reply Reply) {
	if reply.Kind == NoReply {
		return
	}
	if d.sender == nil {
		d.log.Warn("no sender configured, reply dropped", "id", m.ID)
		return
	}

	var err error
	for attempt := 0; attempt < d.attempts; attempt++ {
		if attempt > 0 {
			if serr := util.Sleep(ctx, util.CalculateBackoff(d.delay, attempt)); serr != nil {
				err = serr
				break
			}
		}
		if err = d.sender.Send(ctx, m, reply); err == nil {
			return
		}
		d.log.Warn("reply delivery failed", "id", m.ID, "attempt", attempt+1, "err", err)
	}
	d.log.Error("reply dropped", "id", m.ID, "user", m.UserID, "attempts", d.attempts, "err", err)
}

// Shutdown stops intake and waits for running messages or ctx.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		d.log.Debug("dispatcher drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
