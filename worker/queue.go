package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrQueueClosed = errors.New("worker queue closed")

// Task is a unit of background work. Attempts below 1 means a single try.
type Task struct {
	Name     string
	Attempts int
	Run      func(ctx context.Context) error
}

type Options struct {
	Workers   int
	QueueSize int
	Backoff   time.Duration
	// TaskTimeout bounds every attempt. Zero disables it.
	TaskTimeout time.Duration
}

// Queue runs submitted tasks on a fixed pool of workers. Failed attempts
// are retried with linear backoff and logged; the last failure is dropped.
type Queue struct {
	opts    Options
	logger  *slog.Logger
	tasks   chan Task
	ctx     context.Context
	cancel  context.CancelFunc
	workers sync.WaitGroup
	pending sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewQueue(opts Options, logger *slog.Logger) *Queue {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		opts:   opts,
		logger: logger.With("component", "worker"),
		tasks:  make(chan Task, opts.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < opts.Workers; i++ {
		q.workers.Add(1)
		go q.loop()
	}
	return q
}

// Submit enqueues a task without blocking. A full queue drops the task.
func (q *Queue) Submit(task Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	q.pending.Add(1)
	select {
	case q.tasks <- task:
		return nil
	default:
		q.pending.Done()
		q.logger.Warn("queue full, task dropped", "task", task.Name)
		return errors.New("worker queue full")
	}
}

// Wait blocks until every task submitted so far has finished.
func (q *Queue) Wait() {
	q.pending.Wait()
}

// Close stops accepting tasks, drains the queue and stops the workers.
// Tasks still running when ctx expires see their context cancelled.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		<-done
		return ctx.Err()
	}
}

func (q *Queue) loop() {
	defer q.workers.Done()
	for task := range q.tasks {
		q.run(task)
		q.pending.Done()
	}
}

func (q *Queue) run(task Task) {
	attempts := task.Attempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		err := q.attempt(task)
		if err == nil {
			return
		}
		if attempt == attempts {
			q.logger.Error("task failed", "task", task.Name, "attempt", attempt, "error", err)
			return
		}
		q.logger.Warn("task attempt failed", "task", task.Name, "attempt", attempt, "error", err)

		select {
		case <-time.After(q.opts.Backoff * time.Duration(attempt)):
		case <-q.ctx.Done():
			q.logger.Warn("task abandoned on shutdown", "task", task.Name)
			return
		}
	}
}

func (q *Queue) attempt(task Task) (err error) {
	ctx := q.ctx
	if q.opts.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.opts.TaskTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("task panicked", "task", task.Name, "panic", r)
			err = errors.New("task panicked")
		}
	}()
	return task.Run(ctx)
}
