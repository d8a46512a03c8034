package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"egais-writeoff/models"
)

type fakeKafkaWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestKafkaRunPublisher_PublishRun(t *testing.T) {
	w := &fakeKafkaWriter{}
	p := NewKafkaRunPublisherWith(w)

	run := models.WriteoffRun{
		ID:          "run-1",
		ProductType: "alcohol",
		Status:      "ok",
		GoodsTotal:  3,
		FileName:    "Списание_ЕГАИС_2026-01-04.xlsx",
	}
	require.NoError(t, p.PublishRun(context.Background(), run))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "alcohol", string(msg.Key))
	assert.Equal(t, []kafka.Header{
		{Key: "run-id", Value: []byte("run-1")},
		{Key: "status", Value: []byte("ok")},
	}, msg.Headers)

	var got models.WriteoffRun
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, run, got)
	assert.NoError(t, p.Close())
}

func TestKafkaRunPublisher_WriteError(t *testing.T) {
	p := NewKafkaRunPublisherWith(&fakeKafkaWriter{err: errors.New("broker down")})
	err := p.PublishRun(context.Background(), models.WriteoffRun{ID: "run-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run-2")
}
