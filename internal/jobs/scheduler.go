package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hoanghai1803/tickerwire/internal/events"
	"github.com/robfig/cron/v3"
)

// Sender queues events.
type Sender interface {
	Send(ctx context.Context, e events.Event) (string, error)
}

// NewScheduler returns a stopped cron scheduler that emits
// events.SendDailyNews on the given standard cron spec.
func NewScheduler(spec string, sender Sender) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		id, err := sender.Send(context.Background(), events.Event{Name: events.SendDailyNews})
		if err != nil {
			slog.Error("failed to schedule daily news", "error", err)
			return
		}
		slog.Info("scheduled daily news", "id", id)
	})
	if err != nil {
		return nil, fmt.Errorf("adding daily news schedule %q: %w", spec, err)
	}

	return c, nil
}
