package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Skotchmaster/vayez/pkg/logging"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaNotifier_PublishesMailEvents(t *testing.T) {
	w := &fakeWriter{}
	n := &KafkaNotifier{writer: w, links: Links{BaseURL: "https://vayez.test/"}}
	ctx := context.Background()

	require.NoError(t, n.SendActivation(ctx, "a@x.com", "act-token"))
	require.NoError(t, n.SendPasswordReset(ctx, "a@x.com", "reset token"))
	require.Len(t, w.msgs, 2)

	var activation MailEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &activation))
	assert.Equal(t, "a@x.com", string(w.msgs[0].Key))
	assert.Equal(t, KindActivation, activation.Type)
	assert.Equal(t, "Account Activation", activation.Subject)
	assert.Equal(t, "https://vayez.test/activate?token=act-token", activation.Link)

	var reset MailEvent
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &reset))
	assert.Equal(t, KindPasswordReset, reset.Type)
	assert.Equal(t, "https://vayez.test/reset-password?token=reset+token", reset.Link)
	assert.Equal(t, "reset token", reset.Token)
}

func TestKafkaNotifier_WrapsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	n := &KafkaNotifier{writer: &fakeWriter{err: boom}}

	err := n.SendActivation(context.Background(), "a@x.com", "t")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestNewKafkaNotifier_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaNotifier(nil, "", Links{})
	require.Error(t, err)

	n, err := NewKafkaNotifier([]string{"localhost:9092"}, "", Links{})
	require.NoError(t, err)
	assert.Equal(t, DefaultTopic, n.writer.(*kafka.Writer).Topic)
	require.NoError(t, n.Close())
}

func TestLogNotifier_LogsLink(t *testing.T) {
	var buf bytes.Buffer
	ctx := logging.IntoContext(context.Background(), logging.NewWithWriter(&buf, "info"))

	require.NoError(t, LogNotifier{}.SendPasswordReset(ctx, "a@x.com", "abc"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "mail_queued", line["msg"])
	assert.Equal(t, KindPasswordReset, line["type"])
	assert.Equal(t, "http://localhost/reset-password?token=abc", line["link"])
}
