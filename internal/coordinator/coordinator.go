// Package coordinator decides whether this process owns the application instance
// and turns redirects from later launches into events.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rbright/director/internal/config"
	"github.com/rbright/director/internal/dispatch"
	"github.com/rbright/director/internal/events"
	"github.com/rbright/director/internal/fsm"
	"github.com/rbright/director/internal/ipc"
	"github.com/rbright/director/internal/launchargs"
)

// ErrAlreadyStarted is returned by a second Start on the same Coordinator.
var ErrAlreadyStarted = errors.New("coordinator already started")

const focusTimeout = 2 * time.Second

// Outcome is the result of AcquireOrNotify.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeOwner
	OutcomeDuplicate
	OutcomeStandalone
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOwner:
		return "owner"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeStandalone:
		return "standalone"
	default:
		return "none"
	}
}

// ShouldExit reports whether the host process must terminate after Start.
func (o Outcome) ShouldExit() bool {
	return o == OutcomeDuplicate
}

// WindowFocuser brings the owner's window to the foreground.
type WindowFocuser interface {
	BringToFront(context.Context) error
}

// ForegroundGranter is implemented by focusers that must let another process
// take the foreground before a duplicate notifies it.
type ForegroundGranter interface {
	AllowForeground() error
}

// Registrar records the OS association between a URI scheme and this executable.
type Registrar interface {
	Register(ctx context.Context, scheme, friendlyName string) error
}

// ForwardReporter is told when a duplicate could not hand its arguments over.
type ForwardReporter interface {
	ShowError(ctx context.Context, text string)
}

type noopFocuser struct{}

func (noopFocuser) BringToFront(context.Context) error { return nil }

type noopRegistrar struct{}

func (noopRegistrar) Register(context.Context, string, string) error { return nil }

// Collaborators are the host-provided pieces. Nil fields fall back to no-ops,
// except Dispatcher: an owner without one runs deliveries on its own serial loop.
type Collaborators struct {
	Focuser    WindowFocuser
	Dispatcher dispatch.Dispatcher
	Registrar  Registrar
	Reporter   ForwardReporter
	// Args is the full process argv, executable first. Defaults to os.Args.
	Args []string
}

// Coordinator owns the rendezvous handle and the redirect event bus.
type Coordinator struct {
	cfg       config.Config
	logger    *slog.Logger
	focuser   WindowFocuser
	dispatch  dispatch.Dispatcher
	registrar Registrar
	reporter  ForwardReporter
	args      []string
	bus       *events.Bus

	// startMu serializes Start and Stop.
	startMu sync.Mutex
	started bool
	outcome Outcome
	handle  *ipc.Handle
	cancel  context.CancelFunc
	served  chan struct{}
	// ownLoop is the dispatcher started for an owner when the host gave none.
	ownLoop *dispatch.Loop

	mu    sync.RWMutex
	state fsm.State

	startupOnce sync.Once
}

// New constructs a coordinator in the cold state.
func New(cfg config.Config, logger *slog.Logger, collab Collaborators) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if collab.Focuser == nil {
		collab.Focuser = noopFocuser{}
	}
	if collab.Registrar == nil {
		collab.Registrar = noopRegistrar{}
	}
	if collab.Args == nil {
		collab.Args = os.Args
	}

	return &Coordinator{
		cfg:       cfg,
		logger:    logger,
		focuser:   collab.Focuser,
		dispatch:  collab.Dispatcher,
		registrar: collab.Registrar,
		reporter:  collab.Reporter,
		args:      append([]string(nil), collab.Args...),
		bus:       events.NewBus(logger),
		state:     fsm.StateCold,
	}
}

// Events returns the bus on which RedirectEvents are published.
func (c *Coordinator) Events() *events.Bus {
	return c.bus
}

// State returns the current FSM state snapshot.
func (c *Coordinator) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Port returns the bound rendezvous port once owned, else zero.
func (c *Coordinator) Port() int {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	if c.handle == nil {
		return 0
	}
	return c.handle.Port()
}

func (c *Coordinator) transition(event fsm.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		c.logger.Error("coordinator transition rejected", "state", string(c.state), "event", string(event), "error", err.Error())
		return
	}
	c.state = next
}

// Start runs AcquireOrNotify exactly once.
//
// The owner starts its accept loop and returns OutcomeOwner. A duplicate forwards
// its arguments to the owner and returns OutcomeDuplicate whether or not the
// forward succeeded; the caller is expected to exit. A second call returns the
// first outcome and ErrAlreadyStarted.
func (c *Coordinator) Start(ctx context.Context) (Outcome, error) {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	if c.started {
		return c.outcome, ErrAlreadyStarted
	}
	c.started = true

	if !c.cfg.Instance.Enable {
		c.transition(fsm.EventDisabled)
		c.outcome = OutcomeStandalone
		c.logger.Info("single-instance check disabled; running standalone")
		return c.outcome, nil
	}

	if scheme := c.cfg.URIScheme; scheme.RegisterOnStartup && scheme.Name != "" {
		if err := c.RegisterURIScheme(ctx, scheme.Name, scheme.FriendlyName); err != nil {
			c.logger.Warn("uri scheme registration failed", "scheme", scheme.Name, "error", err.Error())
		}
	}

	port := c.cfg.Instance.Port
	handle, err := ipc.Acquire(ctx, port)
	if err == nil {
		c.becomeOwner(handle)
		return c.outcome, nil
	}

	if ipc.IsAddrInUse(err) {
		c.logger.Info("rendezvous port owned by another instance", "port", port)
	} else {
		c.logger.Warn("rendezvous bind failed; treating as duplicate", "port", port, "error", err.Error())
	}
	c.transition(fsm.EventBindFailed)
	c.outcome = OutcomeDuplicate

	c.forward(ctx, port)
	c.transition(fsm.EventNotified)
	return c.outcome, nil
}

func (c *Coordinator) becomeOwner(handle *ipc.Handle) {
	c.handle = handle
	c.transition(fsm.EventAcquired)
	c.outcome = OutcomeOwner

	if c.dispatch == nil {
		c.ownLoop = dispatch.NewLoop()
		c.dispatch = c.ownLoop
	}
	serveCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.served = make(chan struct{})

	opts := ipc.ServeOptions{
		ReadTimeout: time.Duration(c.cfg.Instance.ReadTimeoutMS) * time.Millisecond,
		MaxPayload:  uint32(c.cfg.Instance.MaxPayloadBytes),
		Logger:      c.logger,
	}
	go func() {
		defer close(c.served)
		ipc.Serve(serveCtx, handle, ipc.HandlerFunc(c.handleEnvelope), opts)
	}()

	c.logger.Info("rendezvous owned", "port", handle.Port())
}

func (c *Coordinator) forward(ctx context.Context, port int) {
	if granter, ok := c.focuser.(ForegroundGranter); ok {
		if err := granter.AllowForeground(); err != nil {
			c.logger.Debug("allow foreground failed", "error", err.Error())
		}
	}

	var forwarded []string
	if len(c.args) > 1 {
		forwarded = c.args[1:]
	}
	payload := launchargs.Join(forwarded)

	if err := ipc.Notify(ctx, port, []byte(payload), c.notifyOptions()); err != nil {
		c.logger.Warn("redirect to running instance failed", "port", port, "error", err.Error())
		if c.reporter != nil {
			c.reporter.ShowError(ctx, "")
		}
		return
	}
	c.logger.Info("redirected launch to running instance", "port", port, "bytes", len(payload))
}

func (c *Coordinator) notifyOptions() ipc.NotifyOptions {
	return NotifyOptions(c.cfg.Instance, c.logger)
}

// NotifyOptions converts the instance section into client retry settings.
func NotifyOptions(in config.InstanceConfig, logger *slog.Logger) ipc.NotifyOptions {
	return ipc.NotifyOptions{
		Attempts:     in.ConnectAttempts,
		Backoff:      time.Duration(in.ConnectBackoffMS) * time.Millisecond,
		DialTimeout:  time.Duration(in.ConnectTimeoutMS) * time.Millisecond,
		WriteTimeout: time.Duration(in.ReadTimeoutMS) * time.Millisecond,
		Logger:       logger,
	}
}

// handleEnvelope runs on the accept goroutine and must not block on delivery.
func (c *Coordinator) handleEnvelope(env ipc.Envelope, remote net.Addr) {
	raw := strings.ToValidUTF8(string(env.Payload), "\uFFFD")
	from := ""
	if remote != nil {
		from = remote.String()
	}

	if err := c.dispatch.Post(func() { c.deliver(raw, from) }); err != nil {
		c.logger.Warn("redirect not dispatched", "remote", from, "error", err.Error())
	}
}

func (c *Coordinator) deliver(raw, remote string) {
	ctx, cancel := context.WithTimeout(context.Background(), focusTimeout)
	defer cancel()
	if err := c.focuser.BringToFront(ctx); err != nil {
		c.logger.Warn("bring to front failed", "error", err.Error())
	}

	event := events.NewRedirect(events.SourceRemote, raw, launchargs.ParseArguments(raw), remote)
	c.logger.Debug("redirect received",
		"event_id", event.ID,
		"remote", remote,
		"kind", event.Parsed.Kind.String(),
	)
	c.bus.Publish(event)
}

// CheckStartupArguments parses this process's own command line and publishes the
// result synchronously. It fires at most once and only for a non-empty result.
func (c *Coordinator) CheckStartupArguments() (events.RedirectEvent, bool) {
	var (
		event events.RedirectEvent
		fired bool
	)
	c.startupOnce.Do(func() {
		raw := launchargs.Join(c.args)
		parsed := launchargs.ParseCommandLine(raw)
		if parsed.IsEmpty() {
			return
		}
		event = events.NewRedirect(events.SourceStartup, raw, parsed, "")
		fired = true
		c.bus.Publish(event)
	})
	return event, fired
}

// RegisterURIScheme associates scheme with this executable through the Registrar.
func (c *Coordinator) RegisterURIScheme(ctx context.Context, scheme, friendlyName string) error {
	if err := launchargs.ValidateScheme(scheme); err != nil {
		return err
	}
	if strings.TrimSpace(friendlyName) == "" {
		friendlyName = config.DefaultFriendlyName
	}
	if err := c.registrar.Register(ctx, scheme, friendlyName); err != nil {
		return fmt.Errorf("register uri scheme %q: %w", scheme, err)
	}
	c.logger.Info("uri scheme registered", "scheme", scheme)
	return nil
}

// Stop releases the rendezvous port and waits for the accept loop. It is a
// no-op unless the coordinator is owner or standalone.
func (c *Coordinator) Stop() error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	switch c.State() {
	case fsm.StateOwner:
		c.cancel()
		<-c.served
		if c.ownLoop != nil {
			c.ownLoop.Close()
		}
		err := c.handle.Close()
		c.transition(fsm.EventStop)
		c.logger.Info("rendezvous released", "port", c.handle.Port())
		return err
	case fsm.StateStandalone:
		c.transition(fsm.EventStop)
	}
	return nil
}
