package telegram

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"

	"cbrbot/internal/entity"
)

// origin identifies where an event came from so replies can be routed back.
// messageID is set for button presses only.
type origin struct {
	chatID    int64
	messageID int
}

type job struct {
	event  entity.UserEvent
	origin origin
}

// dispatcher fans jobs out to a fixed set of workers. Jobs of one user always
// land on the same worker, so they are processed in the order they arrived
// while different users proceed in parallel.
type dispatcher struct {
	queues []chan job
	handle func(ctx context.Context, j job)
	log    *slog.Logger
	wg     sync.WaitGroup
}

func newDispatcher(workers, queueSize int, handle func(ctx context.Context, j job), log *slog.Logger) *dispatcher {
	if workers <= 0 {
		workers = 1
	}

	queues := make([]chan job, workers)
	for i := range queues {
		queues[i] = make(chan job, queueSize)
	}

	return &dispatcher{
		queues: queues,
		handle: handle,
		log:    log,
	}
}

func (d *dispatcher) start(ctx context.Context) {
	for i, queue := range d.queues {
		d.wg.Add(1)
		go func(workerID int, queue <-chan job) {
			defer d.wg.Done()
			d.log.Debug("dispatcher worker started", slog.Int("worker_id", workerID))

			for j := range queue {
				d.run(ctx, j)
			}
		}(i, queue)
	}
}

// run isolates a panicking job so the worker keeps serving its other users.
func (d *dispatcher) run(ctx context.Context, j job) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("event handler panicked",
				slog.Int64("user_id", j.event.UserID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	d.handle(ctx, j)
}

// submit blocks while the worker queue of the user is full.
func (d *dispatcher) submit(ctx context.Context, j job) error {
	select {
	case d.queues[d.shard(j.event.UserID)] <- j:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stop lets the workers drain what was already queued and waits for them.
// submit must not be called afterwards.
func (d *dispatcher) stop() {
	for _, queue := range d.queues {
		close(queue)
	}
	d.wg.Wait()
}

func (d *dispatcher) shard(userID int64) int {
	return int(uint64(userID) % uint64(len(d.queues)))
}
