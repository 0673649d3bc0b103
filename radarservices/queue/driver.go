package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrQueueNotFound = errors.New("queue does not exist")
	ErrQueueFull     = errors.New("queue is full")
	ErrNotConfirmed  = errors.New("broker did not confirm the message")
)

// Message is one JSON payload with the metadata brokers carry alongside it.
type Message struct {
	ID          string
	PublishedAt time.Time
	Body        []byte
}

// Driver moves messages between publishers and consumers. Publish never
// waits for room. A consumer whose handler fails leaves the message on the
// queue for the next consumer.
type Driver interface {
	Declare(ctx context.Context, queueName string) error
	Publish(ctx context.Context, queueName string, message Message) error
	Consume(ctx context.Context, queueName string, handler func(ctx context.Context, message Message) error) error
	Close() error
}

// NewQueue declares the queue on driver and returns a typed view of it.
func NewQueue[T any](ctx context.Context, driver Driver, name string) (Queue[T], error) {
	if err := driver.Declare(ctx, name); err != nil {
		return Queue[T]{}, err
	}

	return Queue[T]{
		driver: driver,
		name:   name,
	}, nil
}

type Queue[T any] struct {
	driver Driver
	name   string
}

func (q Queue[T]) Name() string {
	return q.name
}

// Publish returns the ID given to the message.
func (q Queue[T]) Publish(ctx context.Context, payload T) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	message := Message{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
		Body:        body,
	}

	if err := q.driver.Publish(ctx, q.name, message); err != nil {
		return "", err
	}

	return message.ID, nil
}

// Delivery is a decoded message handed to a Handler.
type Delivery[T any] struct {
	ID          string
	PublishedAt time.Time
	Payload     T
}

type Handler[T any] func(ctx context.Context, delivery Delivery[T]) error

// Consume hands every message to handler until handler fails or ctx is done.
func (q Queue[T]) Consume(ctx context.Context, handler Handler[T]) error {
	return q.driver.Consume(ctx, q.name, func(ctx context.Context, message Message) error {
		delivery := Delivery[T]{
			ID:          message.ID,
			PublishedAt: message.PublishedAt,
		}

		if err := json.Unmarshal(message.Body, &delivery.Payload); err != nil {
			return err
		}

		return handler(ctx, delivery)
	})
}
