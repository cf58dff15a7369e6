// Package notification holds Notifier implementations for account events.
// Actual email delivery is an external collaborator; the default notifier
// records the event through the structured log so the pipeline is observable
// end-to-end without an SMTP dependency.
package notification

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/identitylab/account-service/internal/core/domain"
)

// LogNotifier writes account events to the structured log. Verification
// tokens and email addresses are deliberately omitted from the output.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, event domain.AccountEvent) error {
	n.log.Info().
		Str("user_id", event.UserID.String()).
		Str("kind", string(event.Kind)).
		Time("occurred_at", event.OccurredAt).
		Msg("account event")
	return nil
}
