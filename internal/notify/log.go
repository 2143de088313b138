package notify

import (
	"context"

	"github.com/Skotchmaster/vayez/pkg/logging"
)

// LogNotifier writes mail to the request logger. It stands in for Kafka in
// local setups without brokers.
type LogNotifier struct {
	Links Links
}

func (n LogNotifier) SendActivation(ctx context.Context, to, token string) error {
	n.log(ctx, newActivationEvent(n.Links, to, token))
	return nil
}

func (n LogNotifier) SendPasswordReset(ctx context.Context, to, token string) error {
	n.log(ctx, newPasswordResetEvent(n.Links, to, token))
	return nil
}

func (n LogNotifier) log(ctx context.Context, event MailEvent) {
	logging.FromContext(ctx).Info("mail_queued",
		"type", event.Type,
		"to", event.To,
		"subject", event.Subject,
		"link", event.Link,
	)
}
