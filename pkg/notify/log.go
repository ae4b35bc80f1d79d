package notify

import (
	"context"

	"tender-watch/pkg/logger"
)

// LogNotifier writes alerts to the log instead of sending them (dry runs)
type LogNotifier struct {
	log logger.Logger
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a notifier that logs through l
func NewLogNotifier(l logger.Logger) *LogNotifier {
	return &LogNotifier{log: l}
}

// Send logs msg and always succeeds
func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	n.log.Info("Dry run: notification not sent",
		logger.String("subject", msg.Subject),
		logger.String("body", msg.Body),
	)
	return nil
}
