package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeImportRecordings TaskType = "import_recordings"
	TaskTypeCleanupLimiter   TaskType = "cleanup_login_limiter"
)

const DefaultMaxRetries = 3

// retryLimits overrides DefaultMaxRetries per task type. The limiter
// cleanup is local and idempotent; the next tick covers a failed run.
var retryLimits = map[TaskType]int{
	TaskTypeCleanupLimiter: 0,
}

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetRetryCount() int
	GetMaxRetries() int
	IncrementRetryCount()
	CanRetry() bool
	Start()
	GetDuration() time.Duration
}

// TaskFactory builds a fresh task for each run.
type TaskFactory func() TaskInterface

// Task carries the bookkeeping shared by every background job. Embed it
// and implement Execute.
type Task struct {
	id         string
	taskType   TaskType
	retries    int
	maxRetries int
	startedAt  time.Time
}

func NewTask(taskType TaskType) Task {
	maxRetries, ok := retryLimits[taskType]
	if !ok {
		maxRetries = DefaultMaxRetries
	}
	return Task{
		id:         uuid.NewString(),
		taskType:   taskType,
		maxRetries: maxRetries,
	}
}

func (t *Task) GetID() string        { return t.id }
func (t *Task) GetType() TaskType    { return t.taskType }
func (t *Task) GetRetryCount() int   { return t.retries }
func (t *Task) GetMaxRetries() int   { return t.maxRetries }
func (t *Task) IncrementRetryCount() { t.retries++ }
func (t *Task) CanRetry() bool       { return t.retries < t.maxRetries }

// Start marks the beginning of an attempt; GetDuration measures from the
// latest one.
func (t *Task) Start() {
	t.startedAt = time.Now()
}

func (t *Task) GetDuration() time.Duration {
	if t.startedAt.IsZero() {
		return 0
	}
	return time.Since(t.startedAt)
}
