package clock

import (
	"context"
	"time"
)

// Clock supplies "now" to the services around the fee engine. The engine
// itself never reads a clock.
type Clock interface {
	Now(ctx context.Context) time.Time
}

type key string

var simulatedTimeKey key = "simulated_time"

// WithTime pins Now for everything downstream of ctx.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, simulatedTimeKey, t)
}

// FromContext returns the pinned time, if any.
func FromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(simulatedTimeKey).(time.Time)
	return t, ok
}
