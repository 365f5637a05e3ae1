package tasks

// TaskSchedulerInterface is what the server uses to run background work.
//
//	scheduler := NewScheduler(interval, workerCount)
//	scheduler.Every(func() TaskInterface { return NewImportRecordingsTask(...) })
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.Trigger(TaskTypeImportRecordings)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	Trigger(taskType TaskType) error
}
