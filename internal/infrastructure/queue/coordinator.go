package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	domain "github.com/printshop/backend/internal/domain/queue"
	"github.com/printshop/backend/internal/domain/shared"
	"github.com/printshop/backend/internal/infrastructure/logger"
	"github.com/printshop/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrPermanent marks a handler error that must not be retried
var ErrPermanent = errors.New("permanent failure")

// Permanent wraps err so the coordinator fails the item without retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// ErrAttemptsExhausted is reported when an item whose lease kept expiring is reclaimed past its limit
var ErrAttemptsExhausted = errors.New("attempts exhausted")

// Handler processes one claimed work item
type Handler interface {
	Handle(ctx context.Context, item *domain.WorkItem, task domain.Task) error
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, item *domain.WorkItem, task domain.Task) error

// Handle implements Handler
func (f HandlerFunc) Handle(ctx context.Context, item *domain.WorkItem, task domain.Task) error {
	return f(ctx, item, task)
}

// ExhaustedFunc is called once an item has permanently failed
type ExhaustedFunc func(ctx context.Context, item *domain.WorkItem, err error)

// Config holds the coordinator policy
type Config struct {
	Concurrency       int
	MaxAttempts       int
	Backoff           domain.Backoff
	LeaseDuration     time.Duration
	HeartbeatInterval time.Duration
	PollInterval      time.Duration
	ReapInterval      time.Duration
	// ItemTimeout bounds a single attempt; zero means no limit
	ItemTimeout time.Duration
}

// DefaultConfig returns the default policy: 3 workers, 3 attempts,
// exponential backoff from 2s and a 60s lease
func DefaultConfig() Config {
	return Config{
		Concurrency:       3,
		MaxAttempts:       domain.DefaultMaxAttempts,
		Backoff:           domain.DefaultBackoff(),
		LeaseDuration:     60 * time.Second,
		HeartbeatInterval: 20 * time.Second,
		PollInterval:      time.Second,
		ReapInterval:      30 * time.Second,
		ItemTimeout:       5 * time.Minute,
	}
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithMetrics records enqueue and processing metrics
func WithMetrics(m *telemetry.WorkMetrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithWorkerID overrides the generated worker identity used for leases
func WithWorkerID(id string) Option {
	return func(c *Coordinator) { c.workerID = id }
}

// Coordinator runs a bounded pool of workers over a durable work item store.
// Items are leased while running; a lease that is not renewed by heartbeat
// expires and the item becomes claimable again.
type Coordinator struct {
	store    domain.Store
	config   Config
	logger   *zap.Logger
	metrics  *telemetry.WorkMetrics
	workerID string

	handlersMu  sync.RWMutex
	handlers    map[domain.Kind]Handler
	onExhausted []ExhaustedFunc

	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
	activeJobs map[uuid.UUID]context.CancelFunc
	activeMu   sync.Mutex
}

// NewCoordinator creates a coordinator. Zero-valued config fields take their defaults.
func NewCoordinator(store domain.Store, cfg Config, logger *zap.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		store:      store,
		config:     withDefaults(cfg),
		logger:     logger,
		workerID:   defaultWorkerID(),
		handlers:   make(map[domain.Kind]Handler),
		stopCh:     make(chan struct{}),
		activeJobs: make(map[uuid.UUID]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Concurrency < 1 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Backoff == nil {
		cfg.Backoff = def.Backoff
	}
	if cfg.LeaseDuration <= 0 {
		cfg.LeaseDuration = def.LeaseDuration
	}
	if cfg.HeartbeatInterval <= 0 || cfg.HeartbeatInterval >= cfg.LeaseDuration {
		cfg.HeartbeatInterval = cfg.LeaseDuration / 3
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = def.ReapInterval
	}
	return cfg
}

func defaultWorkerID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d-%s", host, os.Getpid(), uuid.NewString()[:8])
}

// WorkerID returns the identity this coordinator leases items under
func (c *Coordinator) WorkerID() string { return c.workerID }

// Config returns the effective policy
func (c *Coordinator) Config() Config { return c.config }

// Register sets the handler for a kind. Registering a kind twice replaces the handler.
func (c *Coordinator) Register(kind domain.Kind, h Handler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.handlers[kind] = h
}

// OnExhausted adds a hook called after an item fails permanently
func (c *Coordinator) OnExhausted(fn ExhaustedFunc) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	c.onExhausted = append(c.onExhausted, fn)
}

func (c *Coordinator) kinds() []domain.Kind {
	c.handlersMu.RLock()
	defer c.handlersMu.RUnlock()
	kinds := make([]domain.Kind, 0, len(c.handlers))
	for k := range c.handlers {
		kinds = append(kinds, k)
	}
	return kinds
}

func (c *Coordinator) handler(kind domain.Kind) (Handler, bool) {
	c.handlersMu.RLock()
	defer c.handlersMu.RUnlock()
	h, ok := c.handlers[kind]
	return h, ok
}

// Enqueue persists task as a new pending work item
func (c *Coordinator) Enqueue(ctx context.Context, task domain.Task) (*domain.WorkItem, error) {
	return c.EnqueueWith(ctx, c.store, task)
}

// EnqueueWith persists task through store, typically one bound to an open
// transaction so the item commits together with the state change that caused it
func (c *Coordinator) EnqueueWith(ctx context.Context, store domain.Store, task domain.Task) (*domain.WorkItem, error) {
	item, err := domain.NewWorkItem(task, c.config.MaxAttempts)
	if err != nil {
		return nil, err
	}
	if err := store.Enqueue(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to enqueue %s: %w", item.Kind, err)
	}
	c.metrics.RecordEnqueued(ctx, string(item.Kind))
	logger.Enrich(ctx, c.logger).Debug("work item enqueued",
		zap.String("work_item_id", item.ID.String()),
		zap.String("kind", string(item.Kind)),
	)
	return item, nil
}

// Start launches the worker goroutines and returns immediately
func (c *Coordinator) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	if len(c.kinds()) == 0 {
		return errors.New("no work item handlers registered")
	}
	c.running = true
	c.stopCh = make(chan struct{})

	c.logger.Info("Work coordinator starting",
		zap.String("worker_id", c.workerID),
		zap.Int("concurrency", c.config.Concurrency),
		zap.Int("max_attempts", c.config.MaxAttempts),
		zap.Duration("lease", c.config.LeaseDuration),
	)

	for i := 0; i < c.config.Concurrency; i++ {
		c.wg.Add(1)
		go c.dequeueLoop()
	}

	c.wg.Add(2)
	go c.heartbeatLoop()
	go c.reaperLoop()

	return nil
}

// Stop signals all workers to stop and waits for in-flight items.
// When ctx ends first, in-flight items are cancelled; their leases lapse
// and another worker picks them up.
func (c *Coordinator) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	c.mu.Unlock()

	c.logger.Info("Work coordinator stopping", zap.String("worker_id", c.workerID))
	close(c.stopCh)

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Work coordinator stopped gracefully")
		return nil
	case <-ctx.Done():
		c.logger.Warn("Work coordinator shutdown timed out, cancelling active items")
		c.cancelActiveJobs()
		<-done
		return ctx.Err()
	}
}

// RunOnce claims and processes up to limit due items synchronously.
// Returns the number of items processed.
func (c *Coordinator) RunOnce(ctx context.Context, limit int) (int, error) {
	items, err := c.store.Claim(ctx, c.workerID, c.kinds(), limit, c.config.LeaseDuration)
	if err != nil {
		return 0, fmt.Errorf("failed to claim work items: %w", err)
	}
	for _, item := range items {
		c.process(ctx, item)
	}
	return len(items), nil
}

func (c *Coordinator) dequeueLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		items, err := c.store.Claim(context.Background(), c.workerID, c.kinds(), 1, c.config.LeaseDuration)
		if err != nil {
			c.logger.Error("Failed to claim work items", zap.Error(err))
			c.sleep()
			continue
		}
		if len(items) == 0 {
			c.sleep()
			continue
		}

		c.process(context.Background(), items[0])
	}
}

// process runs one attempt of a claimed item and records its outcome
func (c *Coordinator) process(parent context.Context, item *domain.WorkItem) {
	start := time.Now()
	ctx, cancel := c.attemptContext(parent)
	defer cancel()
	c.trackJob(item.ID, cancel)
	defer c.untrackJob(item.ID)

	ctx, log := logger.WithWorkItemID(ctx, c.logger, item.ID.String())
	ctx, span := telemetry.StartServiceSpan(ctx, "work_item", string(item.Kind),
		telemetry.WithSpanKind(trace.SpanKindConsumer),
		telemetry.WithAttribute("work_item.id", item.ID.String()),
		telemetry.WithAttribute("work_item.attempt", item.Attempts),
	)

	var err error
	telemetry.WithWorkLabels(ctx, string(item.Kind), c.workerID, func(ctx context.Context) {
		err = c.invoke(ctx, item)
	})
	telemetry.End(span, &err)

	// The attempt context may be cancelled or timed out; outcome writes must still land.
	writeCtx := context.WithoutCancel(ctx)
	if err == nil {
		c.complete(writeCtx, log, item, time.Since(start))
		return
	}
	c.fail(writeCtx, log, item, err, time.Since(start))
}

func (c *Coordinator) attemptContext(parent context.Context) (context.Context, context.CancelFunc) {
	if c.config.ItemTimeout > 0 {
		return context.WithTimeout(parent, c.config.ItemTimeout)
	}
	return context.WithCancel(parent)
}

func (c *Coordinator) invoke(ctx context.Context, item *domain.WorkItem) (err error) {
	if item.Attempts > item.MaxAttempts {
		return Permanent(fmt.Errorf("%w: claimed %d times", ErrAttemptsExhausted, item.Attempts))
	}

	h, ok := c.handler(item.Kind)
	if !ok {
		return Permanent(fmt.Errorf("no handler registered for %s", item.Kind))
	}

	task, err := item.Task()
	if err != nil {
		return Permanent(err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			logger.FromContext(ctx).Error("Work item handler panicked",
				zap.Any("panic", r),
				zap.String("stack", string(debug.Stack())),
			)
		}
	}()
	return h.Handle(ctx, item, task)
}

func (c *Coordinator) complete(ctx context.Context, log *zap.Logger, item *domain.WorkItem, elapsed time.Duration) {
	item.MarkCompleted()
	if err := c.store.Update(ctx, c.workerID, item); err != nil {
		c.logWriteBack(log, err)
		return
	}
	c.metrics.RecordProcessed(ctx, string(item.Kind), telemetry.OutcomeCompleted, elapsed)
	log.Info("Work item completed",
		zap.String("kind", string(item.Kind)),
		zap.Int("attempt", item.Attempts),
		zap.Duration("duration", elapsed),
	)
}

func (c *Coordinator) fail(ctx context.Context, log *zap.Logger, item *domain.WorkItem, cause error, elapsed time.Duration) {
	retryable := !errors.Is(cause, ErrPermanent) && shared.IsRetryable(cause)
	delay := c.config.Backoff.Delay(item.Attempts)
	dead := item.MarkFailed(cause.Error(), retryable, delay)

	if err := c.store.Update(ctx, c.workerID, item); err != nil {
		c.logWriteBack(log, err)
		return
	}

	if !dead {
		c.metrics.RecordProcessed(ctx, string(item.Kind), telemetry.OutcomeRetried, elapsed)
		log.Warn("Work item attempt failed, retry scheduled",
			zap.String("kind", string(item.Kind)),
			zap.Int("attempt", item.Attempts),
			zap.Int("max_attempts", item.MaxAttempts),
			zap.Duration("retry_in", delay),
			zap.Error(cause),
		)
		return
	}

	c.metrics.RecordProcessed(ctx, string(item.Kind), telemetry.OutcomeDead, elapsed)
	log.Error("Work item failed permanently",
		zap.String("kind", string(item.Kind)),
		zap.Int("attempts", item.Attempts),
		zap.Bool("retryable", retryable),
		zap.Error(cause),
	)

	c.handlersMu.RLock()
	hooks := append([]ExhaustedFunc(nil), c.onExhausted...)
	c.handlersMu.RUnlock()
	for _, hook := range hooks {
		c.runHook(ctx, log, hook, item, cause)
	}
}

func (c *Coordinator) runHook(ctx context.Context, log *zap.Logger, hook ExhaustedFunc, item *domain.WorkItem, cause error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Exhausted hook panicked", zap.Any("panic", r))
		}
	}()
	hook(ctx, item, cause)
}

func (c *Coordinator) logWriteBack(log *zap.Logger, err error) {
	if errors.Is(err, domain.ErrLeaseLost) {
		log.Warn("Work item lease was lost before the outcome could be recorded")
		return
	}
	log.Error("Failed to record work item outcome", zap.Error(err))
}

func (c *Coordinator) heartbeatLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.sendHeartbeats()
		}
	}
}

func (c *Coordinator) sendHeartbeats() {
	c.activeMu.Lock()
	ids := make([]uuid.UUID, 0, len(c.activeJobs))
	for id := range c.activeJobs {
		ids = append(ids, id)
	}
	c.activeMu.Unlock()

	if len(ids) == 0 {
		return
	}
	if err := c.store.Heartbeat(context.Background(), c.workerID, ids, c.config.LeaseDuration); err != nil {
		c.logger.Warn("Heartbeat failed", zap.Int("items", len(ids)), zap.Error(err))
	}
}

func (c *Coordinator) reaperLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.reapExpired()
		}
	}
}

func (c *Coordinator) reapExpired() {
	n, err := c.store.ReapExpired(context.Background(), time.Now())
	if err != nil {
		c.logger.Error("Failed to reap expired leases", zap.Error(err))
		return
	}
	if n > 0 {
		c.logger.Info("Reaped work items with expired leases", zap.Int64("count", n))
	}
}

func (c *Coordinator) sleep() {
	select {
	case <-time.After(c.config.PollInterval):
	case <-c.stopCh:
	}
}

func (c *Coordinator) trackJob(id uuid.UUID, cancel context.CancelFunc) {
	c.activeMu.Lock()
	c.activeJobs[id] = cancel
	c.activeMu.Unlock()
}

func (c *Coordinator) untrackJob(id uuid.UUID) {
	c.activeMu.Lock()
	delete(c.activeJobs, id)
	c.activeMu.Unlock()
}

func (c *Coordinator) cancelActiveJobs() {
	c.activeMu.Lock()
	defer c.activeMu.Unlock()
	for id, cancel := range c.activeJobs {
		c.logger.Warn("Cancelling active work item", zap.String("work_item_id", id.String()))
		cancel()
	}
}
