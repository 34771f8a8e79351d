// Package notify delivers trade alerts to external channels (Telegram,
// Discord). Delivery is fan-out: every configured sender receives each
// alert, and per-event filtering follows the runtime notification settings
// so operators can mute event types without a restart.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pmfollow/followbot/internal/config"
)

// Sender delivers one formatted alert to an external channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	// Name identifies the channel in logs ("telegram", "discord").
	Name() string
}

// Notifier fans alerts out to the configured senders. The event filter is
// read from the settings store on every call, so changes through the config
// API apply immediately.
type Notifier struct {
	senders  []Sender
	settings *config.Store
	logger   *slog.Logger
}

// New creates a Notifier over the given senders. A Notifier with no senders
// is valid and drops every alert silently.
func New(senders []Sender, settings *config.Store, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders:  senders,
		settings: settings,
		logger:   logger.With("component", "notifier"),
	}
}

// Notify delivers the alert to every sender, provided the event type passes
// the configured filter. An empty filter allows all event types. Individual
// sender failures are collected; one failing channel does not block the
// others.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	if !n.allowed(event) {
		n.logger.Debug("event filtered out", "event", event)
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.Error("sender failed", "sender", s.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.Debug("alert sent", "sender", s.Name(), "event", event)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}

func (n *Notifier) allowed(event string) bool {
	events := n.settings.Notify().Events
	if len(events) == 0 {
		return true
	}
	for _, e := range events {
		if strings.TrimSpace(e) == event {
			return true
		}
	}
	return false
}
