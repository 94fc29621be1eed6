package notify_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moriyoshi-k/aws-metric-responder/internal/alarm"
	"github.com/moriyoshi-k/aws-metric-responder/internal/config"
	"github.com/moriyoshi-k/aws-metric-responder/internal/model"
	"github.com/moriyoshi-k/aws-metric-responder/internal/notify"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-1")}, nil
}

type fakeTail struct {
	entries []model.TailEntry
	err     error
	calls   int
}

func (f *fakeTail) Recent(ctx context.Context, limit int) ([]model.TailEntry, error) {
	f.calls++
	return f.entries, f.err
}

func baseConfig() *config.Config {
	return &config.Config{
		Threshold:     80,
		MetricName:    "CPUUtilization",
		SNSTopicARN:   "arn:aws:sns:us-east-1:123456789012:ops",
		Subject:       "[Warning] High Server Metric Alert",
		MessagePrefix: "Server Metric Alert: ",
	}
}

func TestNotifyPublishes(t *testing.T) {
	client := &fakeSNS{}
	n := notify.New(client, baseConfig(), nil, zerolog.Nop())

	out := n.Notify(context.Background(), 92)

	require.Equal(t, alarm.StatusSucceeded, out.Status)
	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "arn:aws:sns:us-east-1:123456789012:ops", aws.ToString(in.TopicArn))
	assert.Equal(t, "[Warning] High Server Metric Alert", aws.ToString(in.Subject))
	assert.Equal(t, "Server Metric Alert: CPUUtilization exceeds threshold (80.0%): 92.0%", aws.ToString(in.Message))
}

func TestNotifySkippedWithoutTopic(t *testing.T) {
	client := &fakeSNS{}
	cfg := baseConfig()
	cfg.SNSTopicARN = ""
	n := notify.New(client, cfg, nil, zerolog.Nop())

	out := n.Notify(context.Background(), 92)

	assert.Equal(t, alarm.StatusSkipped, out.Status)
	assert.Empty(t, client.inputs, "no publish call should be attempted")
}

func TestNotifyPublishFailure(t *testing.T) {
	client := &fakeSNS{err: errors.New("endpoint unreachable")}
	n := notify.New(client, baseConfig(), nil, zerolog.Nop())

	out := n.Notify(context.Background(), 92)

	require.Equal(t, alarm.StatusFailed, out.Status)
	assert.ErrorContains(t, out.Err, "endpoint unreachable")
}

func TestNotifyAppendsLogTail(t *testing.T) {
	client := &fakeSNS{}
	cfg := baseConfig()
	cfg.LogTailLines = 3
	tail := &fakeTail{entries: []model.TailEntry{
		{Timestamp: time.Unix(1700000000, 0).UTC(), LogStream: "i-0abcd", Message: `{"CPUUtilization": 92}`},
	}}
	n := notify.New(client, cfg, tail, zerolog.Nop())

	out := n.Notify(context.Background(), 92)

	require.Equal(t, alarm.StatusSucceeded, out.Status)
	msg := aws.ToString(client.inputs[0].Message)
	assert.Contains(t, msg, "Recent log events:")
	assert.Contains(t, msg, "i-0abcd")
	assert.Equal(t, 1, tail.calls)
}

func TestNotifyTailDisabledByConfig(t *testing.T) {
	client := &fakeSNS{}
	cfg := baseConfig() // LogTailLines zero
	tail := &fakeTail{entries: []model.TailEntry{{Message: "ignored"}}}
	n := notify.New(client, cfg, tail, zerolog.Nop())

	n.Notify(context.Background(), 92)

	assert.Equal(t, 0, tail.calls)
}

func TestNotifyTailFailureStillPublishes(t *testing.T) {
	client := &fakeSNS{}
	cfg := baseConfig()
	cfg.LogTailLines = 3
	tail := &fakeTail{err: errors.New("throttled")}
	n := notify.New(client, cfg, tail, zerolog.Nop())

	out := n.Notify(context.Background(), 92)

	require.Equal(t, alarm.StatusSucceeded, out.Status)
	msg := aws.ToString(client.inputs[0].Message)
	assert.NotContains(t, msg, "Recent log events:")
}
