package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemClockHonoursPinnedTime(t *testing.T) {
	pinned := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	ctx := WithTime(context.Background(), pinned)

	assert.Equal(t, pinned, SystemClock{}.Now(ctx))
	assert.WithinDuration(t, time.Now(), SystemClock{}.Now(context.Background()), time.Second)
}

func TestFixed(t *testing.T) {
	at := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	c := Fixed(at)

	assert.Equal(t, at, c.Now(context.Background()))
	later := at.Add(time.Hour)
	assert.Equal(t, later, c.Now(WithTime(context.Background(), later)))
}
