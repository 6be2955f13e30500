package telegram

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cbrbot/internal/entity"
)

func TestDispatcherSurvivesPanickingHandler(t *testing.T) {
	var (
		mu      sync.Mutex
		handled []int64
	)
	handle := func(_ context.Context, j job) {
		if j.event.UserID == 1 {
			panic("boom")
		}
		mu.Lock()
		handled = append(handled, j.event.UserID)
		mu.Unlock()
	}

	d := newDispatcher(1, 4, handle, discardLogger())
	ctx := context.Background()
	d.start(ctx)

	for _, id := range []int64{1, 2, 1, 3} {
		require.NoError(t, d.submit(ctx, job{event: entity.UserEvent{UserID: id}}))
	}
	assert.NotPanics(t, d.stop)

	assert.Equal(t, []int64{2, 3}, handled)
}
