package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/radio-site/app/metrics"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

const (
	taskTimeout   = 5 * time.Minute
	maxRetryDelay = 30 * time.Second
)

type Scheduler struct {
	interval    time.Duration
	workerCount int
	retryBase   time.Duration

	mu        sync.Mutex
	periodic  []TaskFactory
	factories map[TaskType]TaskFactory

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
}

func NewScheduler(interval time.Duration, workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if workerCount <= 0 {
		workerCount = 1
	}
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &Scheduler{
		interval:    interval,
		workerCount: workerCount,
		retryBase:   time.Second,
		factories:   make(map[TaskType]TaskFactory),
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, 100),
	}
}

// Every registers a task that runs at startup and on every tick. It can
// also be run on demand with Trigger.
func (s *Scheduler) Every(factory TaskFactory) {
	taskType := factory().GetType()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.periodic = append(s.periodic, factory)
	s.factories[taskType] = factory
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
	}

	select {
	case s.taskQueue <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// Trigger enqueues a fresh task of a registered type.
func (s *Scheduler) Trigger(taskType TaskType) error {
	s.mu.Lock()
	factory, ok := s.factories[taskType]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown task type %q", taskType)
	}
	return s.EnqueueTask(factory())
}

func (s *Scheduler) enqueueTasks() {
	s.mu.Lock()
	periodic := append([]TaskFactory(nil), s.periodic...)
	s.mu.Unlock()

	for _, factory := range periodic {
		task := factory()
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue task", "type", string(task.GetType()), "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, taskTimeout)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		metrics.TaskExecutions.WithLabelValues(string(task.GetType()), "ok").Inc()
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	if !task.CanRetry() {
		metrics.TaskExecutions.WithLabelValues(string(task.GetType()), "failed").Inc()
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	metrics.TaskExecutions.WithLabelValues(string(task.GetType()), "retry").Inc()
	task.IncrementRetryCount()
	retryDelay := s.retryBase * time.Duration(1<<uint(task.GetRetryCount()-1))
	if retryDelay > maxRetryDelay {
		retryDelay = maxRetryDelay
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(retryDelay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
		case <-timer.C:
			if retryErr := s.EnqueueTask(task); retryErr != nil {
				slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
			}
		}
	}()
}
