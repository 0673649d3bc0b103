package queue_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lunagic/radar/radarservices/queue"
	"gotest.tools/v3/assert"
)

type suitePayload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func testSuite(t *testing.T, driver queue.Driver) {
	q, err := queue.NewQueue[suitePayload](t.Context(), driver, uuid.NewString())
	assert.NilError(t, err)

	{ // Confirm declaring twice keeps the queue usable
		_, err := queue.NewQueue[suitePayload](t.Context(), driver, q.Name())
		assert.NilError(t, err)
	}

	payload := suitePayload{Name: uuid.NewString(), Count: 3}

	messageID, err := q.Publish(t.Context(), payload)
	assert.NilError(t, err)
	assert.Assert(t, messageID != "")

	handlerErr := errors.New(uuid.NewString())

	{ // Confirm a failing handler leaves the message on the queue
		err := q.Consume(t.Context(), func(ctx context.Context, delivery queue.Delivery[suitePayload]) error {
			assert.Equal(t, messageID, delivery.ID)
			return handlerErr
		})
		assert.ErrorIs(t, err, handlerErr)
	}

	{ // Confirm the message is delivered again with its metadata
		var received queue.Delivery[suitePayload]
		err := q.Consume(t.Context(), func(ctx context.Context, delivery queue.Delivery[suitePayload]) error {
			received = delivery
			return handlerErr
		})
		assert.ErrorIs(t, err, handlerErr)

		assert.Equal(t, messageID, received.ID)
		assert.DeepEqual(t, payload, received.Payload)
		assert.Assert(t, !received.PublishedAt.IsZero())
	}
}
