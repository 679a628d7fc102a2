package queue

import (
	"sync"

	"go.uber.org/multierr"
)

type IQueue interface {
	// Put hands the task over to the consumer goroutine. It blocks while the
	// queue is full. Tasks are executed one at a time, in order.
	Put(ITask)
	// Err returns the error collected so far without waiting.
	Err() error
	// Close waits for every pending task and returns the collected error.
	Close() error
}

type coordinator struct {
	ch        chan ITask
	wg        sync.WaitGroup
	mu        sync.Mutex
	err       error
	closed    bool
	ignoreErr bool
}

func (c *coordinator) drainTask() {
	defer c.wg.Done()
	for task := range c.ch {
		task.OnHold()
		if err := c.Err(); err == nil || c.ignoreErr {
			if execErr := task.Execute(); execErr != nil {
				c.mu.Lock()
				c.err = multierr.Append(c.err, execErr)
				c.mu.Unlock()
			}
		}

		task.Release()
	}
}

func (c *coordinator) Put(task ITask) {
	if c.closed {
		task.Release()
		return
	}
	c.ch <- task
}

func (c *coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *coordinator) Close() error {
	if c.closed {
		return c.Err()
	}
	close(c.ch)
	c.wg.Wait()
	c.closed = true
	return c.Err()
}

// NewQueue starts the consumer goroutine. With ignoreErr, every task runs
// and all errors are combined, otherwise the first error skips the rest.
func NewQueue(queueLen int, ignoreErr bool) IQueue {
	c := &coordinator{
		ch:        make(chan ITask, queueLen),
		ignoreErr: ignoreErr,
	}
	c.wg.Add(1)
	go c.drainTask()
	return c
}
