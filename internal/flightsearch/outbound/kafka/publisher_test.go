package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []skafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...skafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	t.Parallel()

	fw := &fakeWriter{}
	p := NewPublisherWithWriter(fw)

	require.NoError(t, p.Publish(context.Background(), "JFK-LHR", []byte(`{"results":2}`)))
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, "JFK-LHR", string(fw.msgs[0].Key))
	assert.JSONEq(t, `{"results":2}`, string(fw.msgs[0].Value))
	assert.False(t, fw.msgs[0].Time.IsZero())

	require.NoError(t, p.Close())
	assert.True(t, fw.closed)
}

func TestPublisher_WriteError(t *testing.T) {
	t.Parallel()

	boom := errors.New("broker down")
	p := NewPublisherWithWriter(&fakeWriter{err: boom})

	err := p.Publish(context.Background(), "k", []byte("v"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestNewPublisher(t *testing.T) {
	t.Parallel()

	p := NewPublisher(Config{Brokers: []string{"localhost:9092"}, Topic: "flight-search.completed"})
	w, ok := p.writer.(*skafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "flight-search.completed", w.Topic)
	assert.NotNil(t, w.Addr)
	assert.Equal(t, 5*time.Second, w.WriteTimeout)
	// One event per search: a write must not wait for a batch to fill.
	assert.Equal(t, 1, w.BatchSize)
	assert.Equal(t, 10*time.Millisecond, w.BatchTimeout)

	p = NewPublisher(Config{Brokers: []string{"localhost:9092"}, Topic: "t", BatchTimeout: time.Millisecond})
	w, ok = p.writer.(*skafka.Writer)
	require.True(t, ok)
	assert.Equal(t, time.Millisecond, w.BatchTimeout)
}
