package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ag-ui/a2ui-go/internal/validation"
	"github.com/ag-ui/a2ui-go/pkg/core"
	"github.com/ag-ui/a2ui-go/pkg/core/events"
	"github.com/ag-ui/a2ui-go/pkg/encoding"
	"github.com/ag-ui/a2ui-go/pkg/host"
	"github.com/ag-ui/a2ui-go/pkg/middleware"
	"github.com/ag-ui/a2ui-go/pkg/processor"
	"github.com/ag-ui/a2ui-go/pkg/protocol"
)

// Streamer is the part of a host the client drives.
type Streamer interface {
	Connect(ctx context.Context, initialContext string) error
	PollAll() []events.Event
	SendAction(ctx context.Context, action protocol.UserAction) error
	State() host.State
	Close() error
}

// HostFactory creates a fresh host for every connection attempt.
type HostFactory func(config host.Config) (Streamer, error)

func defaultHostFactory(config host.Config) (Streamer, error) {
	return host.New(config)
}

// Option configures a Client.
type Option func(*Client)

// WithHostFactory replaces the factory used to create hosts.
func WithHostFactory(f HostFactory) Option {
	return func(c *Client) {
		c.newHost = f
	}
}

// WithMiddleware appends middleware inside the built-in ones.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, mws...)
	}
}

// WithClock sets the time source for action timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// TickResult reports what one Tick did.
type TickResult struct {
	// Reconnected is set when a new stream was opened
	Reconnected bool

	// Applied is the number of messages applied
	Applied int

	// Duplicate is set when the polled batch matched the last one applied
	Duplicate bool

	// Events are the processor events produced by applied messages
	Events []events.Event

	// Status are the host events other than messages, in arrival order
	Status []events.Event

	// Errors are the messages rejected while applying
	Errors []error
}

// Client connects a processor to an agent stream.
type Client struct {
	config     Config
	logger     *logrus.Entry
	newHost    HostFactory
	middleware []middleware.Middleware
	now        func() time.Time

	mu             sync.Mutex
	processor      *processor.Processor
	handler        middleware.Handler
	host           Streamer
	limiter        *rate.Limiter
	wantConnected  bool
	initialContext string
	lastBatch      uint64
	hasLastBatch   bool
}

// New creates a client. It does not connect.
func New(config Config, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	c := &Client{
		config:  config,
		logger:  config.Logger.WithField("component", "client"),
		newHost: defaultHostFactory,
		now:     time.Now,
		limiter: rate.NewLimiter(rate.Every(config.PollInterval), 1),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.processor = processor.New(
		processor.WithLogger(config.Logger.WithField("component", "processor")),
		processor.WithClock(c.now),
	)

	mws := []middleware.Middleware{
		middleware.Recover(),
		middleware.Logging(c.logger),
	}
	if config.ValidateMessages {
		v, err := validation.New()
		if err != nil {
			return nil, err
		}
		mws = append(mws, middleware.Validation(v))
	}
	mws = append(mws, c.middleware...)
	c.handler = middleware.Chain(c.apply, mws...)

	return c, nil
}

func (c *Client) apply(_ context.Context, ev *events.MessageEvent) ([]events.Event, error) {
	return c.processor.Apply(ev.Message)
}

// Connect opens a stream and keeps it wanted: later ticks reconnect whenever
// it drops. The error of this first attempt is returned.
func (c *Client) Connect(ctx context.Context, initialContext string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.wantConnected = true
	c.initialContext = initialContext
	return c.reconnect(ctx)
}

// Disconnect closes the stream and stops reconnecting.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.wantConnected = false
	return c.dropHost()
}

// Close is Disconnect.
func (c *Client) Close() error {
	return c.Disconnect()
}

func (c *Client) dropHost() error {
	if c.host == nil {
		return nil
	}
	err := c.host.Close()
	c.host = nil
	return err
}

// reconnect replaces the host with a freshly connected one.
func (c *Client) reconnect(ctx context.Context) error {
	if err := c.dropHost(); err != nil {
		c.logger.WithError(err).Debug("closing previous host failed")
	}
	h, err := c.newHost(c.config.hostConfig())
	if err != nil {
		return err
	}
	c.host = h
	return h.Connect(ctx, c.initialContext)
}

// State returns the state of the current host.
func (c *Client) State() host.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.host == nil {
		return host.StateDisconnected
	}
	return c.host.State()
}

func (c *Client) needsReconnect() bool {
	if !c.wantConnected {
		return false
	}
	if c.host == nil {
		return true
	}
	switch c.host.State() {
	case host.StateConnecting, host.StateStreaming:
		return false
	}
	return true
}

// Tick reconnects if needed, drains the host and applies the new batch.
func (c *Client) Tick(ctx context.Context) TickResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res TickResult
	if c.needsReconnect() {
		if err := c.reconnect(ctx); err != nil {
			c.logger.WithError(err).Debug("reconnect failed")
		} else {
			res.Reconnected = true
		}
	}
	if c.host == nil {
		return res
	}

	var batch []*events.MessageEvent
	for _, ev := range c.host.PollAll() {
		if msg, ok := ev.(*events.MessageEvent); ok {
			batch = append(batch, msg)
			continue
		}
		res.Status = append(res.Status, ev)
	}
	if len(batch) == 0 {
		return res
	}

	raws := make([][]byte, len(batch))
	for i, msg := range batch {
		raws[i] = msg.Raw
	}
	fp := encoding.Fingerprint(raws)
	if c.hasLastBatch && fp == c.lastBatch {
		c.logger.WithField("messages", len(batch)).Debug("skipping duplicate batch")
		res.Duplicate = true
		return res
	}
	c.lastBatch, c.hasLastBatch = fp, true

	for _, msg := range batch {
		evs, err := c.handler(ctx, msg)
		if err != nil {
			c.logger.WithError(err).WithField("surface_id", msg.SurfaceID()).Debug("message skipped")
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Applied++
		res.Events = append(res.Events, evs...)
	}
	return res
}

// Run ticks at most once per PollInterval until ctx is done. onTick, if set,
// receives every result.
func (c *Client) Run(ctx context.Context, onTick func(TickResult)) error {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			// Wait fails early when the next token lies past the deadline.
			<-ctx.Done()
			return ctx.Err()
		}
		res := c.Tick(ctx)
		if onTick != nil {
			onTick(res)
		}
	}
}

// SendAction sends action on the current stream's host.
func (c *Client) SendAction(ctx context.Context, action protocol.UserAction) error {
	c.mu.Lock()
	h := c.host
	c.mu.Unlock()

	if h == nil {
		return core.ErrNotConnected
	}
	return h.SendAction(ctx, action)
}

// Trigger resolves the action of a Button and sends it. The resolved action
// is returned even when sending fails.
func (c *Client) Trigger(ctx context.Context, surfaceID, componentID string, scope processor.Scope) (protocol.UserAction, error) {
	c.mu.Lock()
	action, ok := c.processor.Trigger(surfaceID, componentID, scope)
	c.mu.Unlock()

	if !ok {
		return protocol.UserAction{}, fmt.Errorf("component %q on surface %q has no action", componentID, surfaceID)
	}
	return action, c.SendAction(ctx, action)
}

// ApplyEdit writes a renderer edit into the data model.
func (c *Client) ApplyEdit(edit processor.DataModelChanged) ([]events.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.processor.ApplyEdit(edit)
}

// Processor returns the processor. Reads must not race with Tick; use View
// from other goroutines.
func (c *Client) Processor() *processor.Processor {
	return c.processor
}

// View runs fn with exclusive access to the processor.
func (c *Client) View(fn func(p *processor.Processor)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.processor)
}
