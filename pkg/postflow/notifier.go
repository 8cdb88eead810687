package postflow

import (
	"context"
	"time"
)

// Notifier observes stage transitions. The orchestrator calls it once
// when a stage starts and once when it ends, success or failure.
//
// Delivery is fire-and-forget: the orchestrator recovers panics and
// never lets a notifier alter pipeline state. Implementations must not
// block indefinitely; apply your own timeout when delivering over a
// transport.
//
// For started events elapsed is the time since pipeline start; for
// succeeded and failed events it is the stage duration.
type Notifier interface {
	Notify(ctx context.Context, stage Stage, status Status, elapsed time.Duration)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, stage Stage, status Status, elapsed time.Duration)

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, stage Stage, status Status, elapsed time.Duration) {
	f(ctx, stage, status, elapsed)
}

// NopNotifier discards all notifications. It is the default for CLI and
// batch use.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(context.Context, Stage, Status, time.Duration) {}

// MultiNotifier fans one notification out to several notifiers in order.
func MultiNotifier(notifiers ...Notifier) Notifier {
	return multiNotifier(notifiers)
}

type multiNotifier []Notifier

// Notify implements Notifier.
func (m multiNotifier) Notify(ctx context.Context, stage Stage, status Status, elapsed time.Duration) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, stage, status, elapsed)
		}
	}
}
