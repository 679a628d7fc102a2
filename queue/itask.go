package queue

type ITask interface {
	// OnHold is called by the consumer right before Execute
	OnHold()
	// Execute does the work. It is skipped once a previous task failed,
	// unless the queue ignores errors.
	Execute() error
	// Release is always called, whether Execute ran or not, so the task can
	// give back whatever it holds.
	Release()
}
