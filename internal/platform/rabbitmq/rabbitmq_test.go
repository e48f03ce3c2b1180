package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/task-manager-api/internal/events"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	published  []amqp.Publishing
	keys       []string
	closed     bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	if f.declareErr != nil {
		return amqp.Queue{}, f.declareErr
	}
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClientDeclaresQueue(t *testing.T) {
	ch := &fakeChannel{}
	c, err := newClient(ch, "account_emails", quietLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"account_emails"}, ch.declared)
	assert.NoError(t, c.Close())
	assert.True(t, ch.closed)
}

func TestNewClientDeclareFailure(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := newClient(ch, "account_emails", quietLogger())
	assert.ErrorContains(t, err, "access refused")
	assert.True(t, ch.closed)
}

func TestHandleEventPublishesPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	c, err := newClient(ch, "account_emails", quietLogger())
	require.NoError(t, err)

	event, err := events.NewEvent(events.AccountCreated, events.AccountPayload{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)

	require.NoError(t, c.HandleEvent(context.Background(), event))
	require.Len(t, ch.published, 1)

	msg := ch.published[0]
	assert.Equal(t, "account_emails", ch.keys[0])
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, events.AccountCreated, msg.Type)
	assert.Equal(t, event.ID.String(), msg.MessageId)

	var decoded events.Event
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	var payload events.AccountPayload
	require.NoError(t, decoded.UnmarshalPayload(&payload))
	assert.Equal(t, "ann@example.com", payload.Email)
}

func TestHandleEventErrors(t *testing.T) {
	event, err := events.NewEvent(events.AccountCancelled, events.AccountPayload{})
	require.NoError(t, err)

	t.Run("publish failure", func(t *testing.T) {
		c, err := newClient(&fakeChannel{publishErr: amqp.ErrClosed}, "q", quietLogger())
		require.NoError(t, err)
		assert.ErrorIs(t, c.HandleEvent(context.Background(), event), amqp.ErrClosed)
	})

	t.Run("closed client", func(t *testing.T) {
		c, err := newClient(&fakeChannel{}, "q", quietLogger())
		require.NoError(t, err)
		require.NoError(t, c.Close())
		assert.ErrorIs(t, c.HandleEvent(context.Background(), event), ErrChannelUnavailable)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ch := &fakeChannel{}
		c, err := newClient(ch, "q", quietLogger())
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, c.HandleEvent(ctx, event), context.Canceled)
		assert.Empty(t, ch.published)
	})
}
