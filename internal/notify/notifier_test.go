package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/pmfollow/followbot/internal/config"
)

type fakeSender struct {
	name string
	sent []string
	err  error
}

func (f *fakeSender) Send(_ context.Context, title, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, title)
	return nil
}

func (f *fakeSender) Name() string { return f.name }

func notifierSettings(t *testing.T, events []string) *config.Store {
	t.Helper()
	cfg := config.Defaults()
	cfg.Notify.Events = events
	return config.NewStore(&cfg)
}

func TestNotifierEventFilter(t *testing.T) {
	sender := &fakeSender{name: "fake"}
	settings := notifierSettings(t, []string{"whale_trade"})
	n := New([]Sender{sender}, settings, slog.Default())
	ctx := context.Background()

	if err := n.Notify(ctx, "whale_trade", "allowed", "m"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if err := n.Notify(ctx, "follow_failed", "filtered", "m"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(sender.sent) != 1 || sender.sent[0] != "allowed" {
		t.Fatalf("sent = %v, want only the allowed event", sender.sent)
	}
}

func TestNotifierFilterUpdatesLive(t *testing.T) {
	sender := &fakeSender{name: "fake"}
	settings := notifierSettings(t, []string{"whale_trade"})
	n := New([]Sender{sender}, settings, slog.Default())
	ctx := context.Background()

	next := settings.Notify()
	next.Events = nil // empty filter allows everything
	settings.UpdateNotify(next)

	if err := n.Notify(ctx, "follow_failed", "now allowed", "m"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %v, want one delivery after filter update", sender.sent)
	}
}

func TestNotifierCollectsSenderFailures(t *testing.T) {
	broken := &fakeSender{name: "broken", err: errors.New("boom")}
	healthy := &fakeSender{name: "healthy"}
	settings := notifierSettings(t, nil)
	n := New([]Sender{broken, healthy}, settings, slog.Default())

	err := n.Notify(context.Background(), "whale_trade", "t", "m")
	if err == nil {
		t.Fatal("Notify: expected combined error")
	}
	// The healthy sender still received the alert.
	if len(healthy.sent) != 1 {
		t.Fatalf("healthy.sent = %v, want one delivery", healthy.sent)
	}
}

func TestNotifierNoSenders(t *testing.T) {
	n := New(nil, notifierSettings(t, nil), slog.Default())
	if err := n.Notify(context.Background(), "whale_trade", "t", "m"); err != nil {
		t.Fatalf("Notify with no senders: %v", err)
	}
}
