package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"freelance_service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (f *fakeAck) Ack(bool) error {
	f.acked = true
	return nil
}

func (f *fakeAck) Nack(_ bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func TestSettle(t *testing.T) {
	valid, err := json.Marshal(models.Message{Email: "a@x.com", Subject: "Hi", Body: "b"})
	require.NoError(t, err)

	tests := []struct {
		name        string
		body        []byte
		redelivered bool
		handleErr   error
		wantAck     bool
		wantRequeue bool
	}{
		{name: "delivered", body: valid, wantAck: true},
		{name: "redelivered and delivered", body: valid, redelivered: true, wantAck: true},
		{name: "send failed", body: valid, handleErr: errors.New("smtp down"), wantRequeue: true},
		{name: "redelivered send failure is not requeued", body: valid, redelivered: true, handleErr: errors.New("550 recipient rejected"), wantRequeue: false},
		{name: "malformed", body: []byte("{"), wantRequeue: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := &fakeAck{}

			var got models.Message

			err := settle(context.Background(), ack, tt.body, tt.redelivered, func(_ context.Context, msg models.Message) error {
				got = msg
				return tt.handleErr
			})
			require.NoError(t, err)

			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, !tt.wantAck, ack.nacked)
			assert.Equal(t, tt.wantRequeue, ack.requeue)

			if tt.name != "malformed" {
				assert.Equal(t, "a@x.com", got.Email)
			}
		})
	}
}

func TestMessagePayload(t *testing.T) {
	body, err := json.Marshal(models.Message{Email: "a@x.com", Subject: "s", Body: "b", HTML: true})
	require.NoError(t, err)

	assert.JSONEq(t, `{"to":"a@x.com","subject":"s","body":"b","html":true}`, string(body))
}

func TestSettle_PermanentFailureRequeuedOnce(t *testing.T) {
	body, err := json.Marshal(models.Message{Email: "nobody@x.com", Subject: "s", Body: "b"})
	require.NoError(t, err)

	rejected := func(context.Context, models.Message) error {
		return errors.New("550 recipient rejected")
	}

	requeued := 0
	redelivered := false

	for i := 0; i < 100; i++ {
		ack := &fakeAck{}
		require.NoError(t, settle(context.Background(), ack, body, redelivered, rejected))

		if !ack.requeue {
			break
		}

		requeued++
		redelivered = true
	}

	assert.Equal(t, 1, requeued)
}
