package notification

import (
	"context"
	"log/slog"
	"time"
)

const (
	// KindDepositReceived is sent to a user after a deposit request is registered.
	KindDepositReceived = "deposit_received"
	// KindWithdrawalRequested is sent to a user after a withdrawal request is registered.
	KindWithdrawalRequested = "withdrawal_requested"
	// KindAdminNewDeposit alerts the operations inbox about a new deposit.
	KindAdminNewDeposit = "admin_new_deposit"
	// KindAdminNewWithdrawal alerts the operations inbox about a new withdrawal.
	KindAdminNewWithdrawal = "admin_new_withdrawal"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	Destination string
	Subject     string
	Body        string
	Reference   string
}

// Notifier delivers notifications to downstream systems. Delivery is best
// effort: callers must never let a send failure affect ledger state.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// Dispatch delivers messages in a detached goroutine so the calling
// operation returns regardless of notifier latency or failure. Errors are
// logged and dropped.
func Dispatch(notifier Notifier, logger *slog.Logger, messages ...Message) {
	if notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, msg := range messages {
			if err := notifier.Send(ctx, msg); err != nil && logger != nil {
				logger.Warn("notification delivery failed",
					slog.String("kind", msg.Kind),
					slog.String("destination", msg.Destination),
					slog.Any("error", err))
			}
		}
	}()
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"kind", message.Kind,
		"destination", message.Destination,
		"subject", message.Subject,
		"reference", message.Reference)
	return nil
}
