// Package indicator tells the user that a later launch was redirected into the
// running instance, visually and with a short audio cue.
package indicator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/director/internal/config"
	"github.com/rbright/director/internal/events"
	"github.com/rbright/director/internal/hypr"
	"github.com/rbright/director/internal/launchargs"
)

// Notifier routes redirect notifications via Hyprland or desktop DBus based on
// config backend.
type Notifier struct {
	cfg      config.IndicatorConfig
	logger   *slog.Logger
	messages messages

	mu                    sync.Mutex
	desktopNotificationID uint32
	hyprShown             bool
	soundMu               sync.Mutex
	cues                  sync.WaitGroup
}

// New creates a notifier from config.
func New(cfg config.IndicatorConfig, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:      cfg,
		logger:   logger,
		messages: indicatorMessagesFromEnv(),
	}
}

// Listener adapts the notifier to the redirect event bus. Only redirects from
// later launches are shown; this process's own arguments are not.
func (n *Notifier) Listener() events.Listener {
	return func(event events.RedirectEvent) {
		if event.Source != events.SourceRemote {
			return
		}
		n.Redirected(context.Background(), event)
	}
}

// Redirected shows what a redirect carried and plays the redirect cue.
func (n *Notifier) Redirected(ctx context.Context, event events.RedirectEvent) {
	if !n.cfg.Enable {
		return
	}
	n.playCue(cueRedirect)
	text := n.messages.describe(event.Parsed)
	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, 1, n.timeout(), "rgb(89b4fa)", text)
	})
}

// ShowError displays an error-state message, such as an unreachable owner.
func (n *Notifier) ShowError(ctx context.Context, text string) {
	if !n.cfg.Enable {
		return
	}
	if text == "" {
		text = n.messages.errorText
	}
	n.playCue(cueFailure)
	n.run(ctx, func(ctx context.Context) error {
		return n.notify(ctx, 3, n.timeout(), "rgb(f38ba8)", text)
	})
}

// Hide dismisses the indicator surface if this notifier put one up.
func (n *Notifier) Hide(ctx context.Context) {
	if !n.cfg.Enable {
		return
	}
	n.run(ctx, n.dismiss)
}

// Wait blocks until queued cues finish playing.
func (n *Notifier) Wait() {
	n.cues.Wait()
}

func (n *Notifier) timeout() int {
	if n.cfg.TimeoutMS <= 0 {
		return 1200
	}
	return n.cfg.TimeoutMS
}

// notify dispatches indicator output through the configured backend.
func (n *Notifier) notify(ctx context.Context, icon int, timeoutMS int, color string, text string) error {
	if n.cfg.Backend == config.IndicatorDesktop {
		return n.notifyDesktop(ctx, timeoutMS, text)
	}
	if err := hypr.Notify(ctx, icon, timeoutMS, color, text); err != nil {
		return err
	}
	n.mu.Lock()
	n.hyprShown = true
	n.mu.Unlock()
	return nil
}

// dismiss removes indicator output from the configured backend.
func (n *Notifier) dismiss(ctx context.Context) error {
	if n.cfg.Backend == config.IndicatorDesktop {
		return n.dismissDesktop(ctx)
	}

	// dismissnotify clears every compositor notification, not only ours.
	n.mu.Lock()
	shown := n.hyprShown
	n.hyprShown = false
	n.mu.Unlock()
	if !shown {
		return nil
	}
	return hypr.DismissNotify(ctx)
}

// notifyDesktop sends a replaceable desktop notification and stores its ID.
func (n *Notifier) notifyDesktop(ctx context.Context, timeoutMS int, text string) error {
	n.mu.Lock()
	replaceID := n.desktopNotificationID
	n.mu.Unlock()

	appName := n.cfg.DesktopAppName
	if appName == "" {
		appName = "director"
	}

	id, err := desktopNotify(ctx, appName, replaceID, text, timeoutMS)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.desktopNotificationID = id
	n.mu.Unlock()
	return nil
}

// dismissDesktop closes the current desktop notification ID when present.
func (n *Notifier) dismissDesktop(ctx context.Context) error {
	n.mu.Lock()
	id := n.desktopNotificationID
	n.desktopNotificationID = 0
	n.mu.Unlock()

	if id == 0 {
		return nil
	}
	return desktopDismiss(ctx, id)
}

// run executes an indicator operation with a bounded timeout.
func (n *Notifier) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, 400*time.Millisecond)
	defer cancel()
	if err := fn(runCtx); err != nil {
		n.log("indicator dispatch failed", err)
	}
}

// playCue serializes cue playback and emits audio asynchronously.
func (n *Notifier) playCue(kind cueKind) {
	if !n.cfg.SoundEnable {
		return
	}
	n.cues.Add(1)
	go func() {
		defer n.cues.Done()
		n.soundMu.Lock()
		defer n.soundMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
		defer cancel()
		if err := emitCue(ctx, kind, n.cfg); err != nil {
			n.log("indicator audio cue failed", err)
		}
	}()
}

// log emits debug-only indicator failures to the runtime logger.
func (n *Notifier) log(message string, err error) {
	if n.logger == nil || err == nil {
		return
	}
	n.logger.Debug(message, "error", err.Error())
}

func (m messages) describe(parsed launchargs.Parsed) string {
	switch parsed.Kind {
	case launchargs.KindDeepLink:
		return m.deepLink + " " + parsed.Value
	case launchargs.KindPlain:
		return m.arguments + " " + parsed.Value
	default:
		return m.focused
	}
}
