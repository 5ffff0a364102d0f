package events

import (
	"context"

	"go.uber.org/zap"
)

// Notifier delivers customer-facing messages.
type Notifier interface {
	SendWelcome(ctx context.Context, p CustomerCreatedPayload) error
}

// LogNotifier records welcome messages in the log instead of sending them.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger.Named("notifier")}
}

func (n *LogNotifier) SendWelcome(_ context.Context, p CustomerCreatedPayload) error {
	n.logger.Info("welcome notification sent",
		zap.String("customer_uuid", p.CustomerUUID),
		zap.String("email", p.Email),
		zap.String("name", p.Name))
	return nil
}

// RegisterListeners wires the default handlers onto w.
func RegisterListeners(w *Worker, notifier Notifier, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	audit := logger.Named("audit")

	w.On(CustomerCreated, func(ctx context.Context, e Event) error {
		var p CustomerCreatedPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		return notifier.SendWelcome(ctx, p)
	})

	w.On(UserLoggedIn, func(_ context.Context, e Event) error {
		var p UserLoggedInPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		audit.Info("user logged in",
			zap.String("user_uuid", p.UserUUID),
			zap.String("username", p.Username),
			zap.String("device", p.DeviceName),
			zap.String("ip", p.IP),
			zap.Time("at", e.OccurredAt))
		return nil
	})

	w.On(UserLoggedOut, func(_ context.Context, e Event) error {
		var p UserLoggedOutPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		audit.Info("user logged out",
			zap.String("user_uuid", p.UserUUID),
			zap.Bool("all_devices", p.AllDevices),
			zap.Time("at", e.OccurredAt))
		return nil
	})

	w.On(CustomerDeleted, func(_ context.Context, e Event) error {
		var p CustomerDeletedPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		audit.Info("customer deleted", zap.String("customer_uuid", p.CustomerUUID), zap.Bool("force", p.Force))
		return nil
	})
}
