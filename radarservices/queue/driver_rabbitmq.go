package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type DriverRabbitMQConfig struct {
	Host string
	Pass string
	Port int
	User string
}

func (config DriverRabbitMQConfig) url() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d", config.User, config.Pass, config.Host, config.Port)
}

// NewDriverRabbitMQ publishes persistent messages to durable queues and waits
// for the broker to confirm each one. Consumers take one message at a time
// and acknowledge it once the handler succeeds.
func NewDriverRabbitMQ(config DriverRabbitMQConfig) (Driver, error) {
	connection, err := amqp.Dial(config.url())
	if err != nil {
		return nil, err
	}

	channel, err := connection.Channel()
	if err != nil {
		_ = connection.Close()
		return nil, err
	}

	if err := channel.Confirm(false); err != nil {
		_ = connection.Close()
		return nil, err
	}

	if err := channel.Qos(1, 0, false); err != nil {
		_ = connection.Close()
		return nil, err
	}

	return &driverRabbitMQ{
		connection: connection,
		channel:    channel,
	}, nil
}

type driverRabbitMQ struct {
	mutex      sync.Mutex
	connection *amqp.Connection
	channel    *amqp.Channel
}

func (driver *driverRabbitMQ) Declare(ctx context.Context, queueName string) error {
	_, err := driver.channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)

	return err
}

func (driver *driverRabbitMQ) Publish(ctx context.Context, queueName string, message Message) error {
	driver.mutex.Lock()
	confirmation, err := driver.channel.PublishWithDeferredConfirmWithContext(
		ctx,
		"",        // exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    message.ID,
			Timestamp:    message.PublishedAt,
			Body:         message.Body,
		},
	)
	driver.mutex.Unlock()
	if err != nil {
		return err
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return err
	}

	if !acked {
		return ErrNotConfirmed
	}

	return nil
}

func (driver *driverRabbitMQ) Consume(
	ctx context.Context,
	queueName string,
	handler func(ctx context.Context, message Message) error,
) error {
	consumerTag := uuid.NewString()

	deliveries, err := driver.channel.ConsumeWithContext(
		ctx,
		queueName,   // queue
		consumerTag, // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return err
	}

	defer func() {
		// Deliveries already pushed to this consumer go back to the queue
		_ = driver.channel.Cancel(consumerTag, false)
		for delivery := range deliveries {
			_ = delivery.Nack(false, true)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, open := <-deliveries:
			if !open {
				return amqp.ErrClosed
			}

			message := Message{
				ID:          delivery.MessageId,
				PublishedAt: delivery.Timestamp,
				Body:        delivery.Body,
			}

			if err := handler(ctx, message); err != nil {
				_ = delivery.Nack(false, true)
				return err
			}

			if err := delivery.Ack(false); err != nil {
				return err
			}
		}
	}
}

func (driver *driverRabbitMQ) Close() error {
	return driver.connection.Close()
}
