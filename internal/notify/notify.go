// Package notify publishes threshold-breach notifications to an SNS topic.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog"

	"github.com/moriyoshi-k/aws-metric-responder/internal/alarm"
	"github.com/moriyoshi-k/aws-metric-responder/internal/config"
	"github.com/moriyoshi-k/aws-metric-responder/internal/model"
)

// SNSAPI is the subset of the SNS API we use.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// TailFetcher supplies recent log lines for the notification body.
type TailFetcher interface {
	Recent(ctx context.Context, limit int) ([]model.TailEntry, error)
}

// Notifier builds and publishes the alert message. A missing topic ARN
// turns every Notify call into a skipped outcome.
type Notifier struct {
	client SNSAPI
	cfg    *config.Config
	tail   TailFetcher // may be nil
	log    zerolog.Logger
}

// New creates a Notifier. tail may be nil to disable the log excerpt.
func New(client SNSAPI, cfg *config.Config, tail TailFetcher, log zerolog.Logger) *Notifier {
	return &Notifier{client: client, cfg: cfg, tail: tail, log: log}
}

// Notify publishes the breach message for the observed value. Failures are
// captured in the outcome, never returned as errors.
func (n *Notifier) Notify(ctx context.Context, value float64) alarm.Outcome {
	if n.cfg.SNSTopicARN == "" {
		n.log.Warn().Msg("SNS_TOPIC_ARN not configured, skipping notification")
		return alarm.Skipped("notify", "no topic configured")
	}

	msg := n.buildMessage(ctx, value)
	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.cfg.SNSTopicARN),
		Subject:  aws.String(n.cfg.Subject),
		Message:  aws.String(msg),
	})
	if err != nil {
		return alarm.Failed("notify", fmt.Errorf("sns publish: %w", err))
	}

	id := aws.ToString(out.MessageId)
	n.log.Info().Str("message_id", id).Str("subject", n.cfg.Subject).Msg("notification sent")
	return alarm.Succeeded("notify", "published message "+id)
}

func (n *Notifier) buildMessage(ctx context.Context, value float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s exceeds threshold (%.1f%%): %.1f%%",
		n.cfg.MessagePrefix, n.cfg.MetricName, n.cfg.Threshold, value)

	if n.tail == nil || n.cfg.LogTailLines <= 0 {
		return b.String()
	}
	entries, err := n.tail.Recent(ctx, n.cfg.LogTailLines)
	if err != nil {
		// The excerpt is best-effort; the alert itself must still go out.
		n.log.Warn().Err(err).Msg("could not fetch log tail for notification")
		return b.String()
	}
	if len(entries) == 0 {
		return b.String()
	}

	b.WriteString("\n\nRecent log events:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s %s\n", e.Timestamp.UTC().Format(time.RFC3339), e.LogStream, e.Message)
	}
	return b.String()
}
