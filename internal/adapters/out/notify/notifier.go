// Package notify implements the notification trigger. Rendering and channel
// delivery (push, SMS, email) live in a separate system; this adapter only
// records that a trigger fired, which is also what keeps it safe to call on
// every lifecycle milestone.
package notify

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/model/kernel"
)

// SlogNotifier implements ports.Notifier by logging the trigger. Stands in
// for the outbound notification pipeline.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a logging notifier.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	return &SlogNotifier{
		logger: logger.With("component", "notifier"),
	}
}

// Notify records the notification trigger.
func (n *SlogNotifier) Notify(ctx context.Context, customerID kernel.UUID, templateKey string, data map[string]any) error {
	n.logger.InfoContext(ctx, "Notification triggered",
		"customer_id", customerID, "template", templateKey, "data", data)
	return nil
}
