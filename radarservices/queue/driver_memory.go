package queue

import (
	"context"
	"sync"
)

const memoryQueueSize = 1024

// NewDriverMemory keeps up to memoryQueueSize messages per queue in process.
// Publishing to a full queue fails with ErrQueueFull.
func NewDriverMemory() (Driver, error) {
	return &driverMemory{
		queues: map[string]chan Message{},
	}, nil
}

type driverMemory struct {
	mutex  sync.Mutex
	queues map[string]chan Message
}

func (driver *driverMemory) queue(queueName string) (chan Message, error) {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	queue, found := driver.queues[queueName]
	if !found {
		return nil, ErrQueueNotFound
	}

	return queue, nil
}

// Declare is idempotent, declaring an existing queue keeps its messages.
func (driver *driverMemory) Declare(ctx context.Context, queueName string) error {
	driver.mutex.Lock()
	defer driver.mutex.Unlock()

	if _, found := driver.queues[queueName]; !found {
		driver.queues[queueName] = make(chan Message, memoryQueueSize)
	}

	return nil
}

func (driver *driverMemory) Publish(ctx context.Context, queueName string, message Message) error {
	queue, err := driver.queue(queueName)
	if err != nil {
		return err
	}

	select {
	case queue <- message:
		return nil
	default:
		return ErrQueueFull
	}
}

func (driver *driverMemory) Consume(
	ctx context.Context,
	queueName string,
	handler func(ctx context.Context, message Message) error,
) error {
	queue, err := driver.queue(queueName)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case message := <-queue:
			if err := handler(ctx, message); err != nil {
				// Requeue unless publishers filled the slot in the meantime
				select {
				case queue <- message:
				default:
				}

				return err
			}
		}
	}
}

func (driver *driverMemory) Close() error {
	return nil
}
