package coordinator

import (
	"context"
	"log/slog"
	"math/rand/v2"
	gosync "sync"
	"time"

	"github.com/composable-com/ct-connect-akeneo/internal/jobstatus"
)

const (
	// pollingJitter is the maximum random offset applied to the interval
	pollingJitter = 15 * time.Second
)

// Coordinator triggers sync jobs in the background, on a ticker and on demand
//
//go:generate mockgen -destination=mocks/mock_coordinator.go -package=mocks -source=coordinator.go Coordinator
type Coordinator interface {
	// Start triggers every configured kind on each tick. It blocks until ctx
	// is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop stops the ticker and waits for in-flight runs to return
	Stop() error

	// Trigger processes kind in the background. It returns false when a run
	// of kind is already in flight in this process.
	Trigger(kind jobstatus.Kind) bool
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithInterval sets the base ticker interval
func WithInterval(d time.Duration) Option {
	return func(c *defaultCoordinator) {
		c.interval = d
	}
}

// WithKinds sets the kinds triggered on each tick
func WithKinds(kinds ...jobstatus.Kind) Option {
	return func(c *defaultCoordinator) {
		c.kinds = kinds
	}
}

type defaultCoordinator struct {
	processor Processor
	interval  time.Duration
	kinds     []jobstatus.Kind

	// Lifecycle management
	cancelFunc context.CancelFunc
	done       chan struct{}

	mu      gosync.Mutex
	baseCtx context.Context
	active  map[jobstatus.Kind]bool
	runs    gosync.WaitGroup
}

// New creates a new coordinator driving processor
func New(processor Processor, opts ...Option) Coordinator {
	c := &defaultCoordinator{
		processor: processor,
		interval:  DefaultInterval,
		kinds:     []jobstatus.Kind{jobstatus.KindDelta, jobstatus.KindFull},
		done:      make(chan struct{}),
		baseCtx:   context.Background(),
		active:    map[jobstatus.Kind]bool{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// nextInterval returns the base interval with a random jitter applied, so
// replicas sharing a store do not poll in lockstep.
func (c *defaultCoordinator) nextInterval() time.Duration {
	jitter := min(pollingJitter, c.interval/4)
	if jitter <= 0 {
		return c.interval
	}
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for polling jitter
	offset := time.Duration(rand.Int64N(int64(2*jitter))) - jitter
	return c.interval + offset
}

// Start begins background sync coordination
func (c *defaultCoordinator) Start(ctx context.Context) error {
	slog.Info("Starting background sync coordinator", "kinds", c.kinds, "interval", c.interval)

	coordCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelFunc = cancel
	c.baseCtx = coordCtx
	c.mu.Unlock()
	defer func() {
		c.runs.Wait()
		close(c.done)
		slog.Info("Background sync coordinator shut down")
	}()

	ticker := time.NewTicker(c.nextInterval())
	defer ticker.Stop()

	c.triggerAll()

	for {
		select {
		case <-ticker.C:
			c.triggerAll()
			ticker.Reset(c.nextInterval())
		case <-coordCtx.Done():
			slog.Info("Sync coordinator stopping")
			return nil
		}
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel := c.cancelFunc
	c.mu.Unlock()

	if cancel == nil {
		c.runs.Wait()
		return nil
	}
	slog.Info("Stopping sync coordinator")
	cancel()
	<-c.done
	return nil
}

// Trigger processes kind in the background unless it is already running here
func (c *defaultCoordinator) Trigger(kind jobstatus.Kind) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active[kind] || c.baseCtx.Err() != nil {
		return false
	}
	c.active[kind] = true
	c.runs.Add(1)

	ctx := c.baseCtx
	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.active, kind)
			c.mu.Unlock()
			c.runs.Done()
		}()
		c.performSync(ctx, kind)
	}()
	return true
}

func (c *defaultCoordinator) triggerAll() {
	for _, kind := range c.kinds {
		if !c.Trigger(kind) {
			slog.Debug("Sync still in flight, skipping tick", "kind", kind)
		}
	}
}
