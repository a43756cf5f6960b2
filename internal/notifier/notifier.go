// Package notifier delivers alerts and daemon messages. Every message goes to
// all registered senders; one failing channel does not block the others.
package notifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Sender is one delivery channel.
type Sender interface {
	Send(ctx context.Context, title, body string) error
	Name() string
}

// Notifier dispatches messages to every sender.
type Notifier struct {
	senders []Sender
	logger  zerolog.Logger
}

// NewNotifier creates a Notifier over senders. Nil senders are skipped.
func NewNotifier(logger zerolog.Logger, senders ...Sender) *Notifier {
	n := &Notifier{logger: logger.With().Str("component", "notifier").Logger()}
	for _, s := range senders {
		if s != nil {
			n.senders = append(n.senders, s)
		}
	}
	return n
}

// Senders returns the names of the registered senders.
func (n *Notifier) Senders() []string {
	names := make([]string, len(n.senders))
	for i, s := range n.senders {
		names[i] = s.Name()
	}
	return names
}

// Notify sends title and body to all senders and returns a combined error
// naming every sender that failed.
func (n *Notifier) Notify(ctx context.Context, title, body string) error {
	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, body); err != nil {
			n.logger.Error().Err(err).Str("sender", s.Name()).Msg("sender failed")
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.Debug().Str("sender", s.Name()).Str("title", title).Msg("notification sent")
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
