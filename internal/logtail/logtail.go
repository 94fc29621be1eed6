// Package logtail fetches the most recent events from the monitored log
// group so notifications can carry a short excerpt of surrounding context.
package logtail

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/moriyoshi-k/aws-metric-responder/internal/model"
)

// LogsAPI is the subset of the CloudWatch Logs API we use.
type LogsAPI interface {
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

// defaultWindow bounds how far back Recent looks.
const defaultWindow = 5 * time.Minute

// Fetcher pulls recent events from a single log group.
type Fetcher struct {
	client LogsAPI
	group  string
	window time.Duration
	now    func() time.Time
}

// New creates a Fetcher for the given log group.
func New(client LogsAPI, group string) *Fetcher {
	return &Fetcher{client: client, group: group, window: defaultWindow, now: time.Now}
}

// Recent returns up to limit events from the lookback window, oldest first.
// When more events exist than limit, the newest ones win.
func (f *Fetcher) Recent(ctx context.Context, limit int) ([]model.TailEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	if f.group == "" {
		return nil, errors.New("no log group configured")
	}

	end := f.now()
	start := end.Add(-f.window)

	var entries []model.TailEntry
	var next *string
	for {
		out, err := f.client.FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
			LogGroupName: aws.String(f.group),
			StartTime:    aws.Int64(start.UnixMilli()),
			EndTime:      aws.Int64(end.UnixMilli()),
			NextToken:    next,
			Interleaved:  aws.Bool(true),
		})
		if err != nil {
			return nil, err
		}
		for _, e := range out.Events {
			ts := time.Unix(0, aws.ToInt64(e.Timestamp)*int64(time.Millisecond))
			entries = append(entries, model.TailEntry{
				Timestamp: ts,
				LogStream: aws.ToString(e.LogStreamName),
				Message:   aws.ToString(e.Message),
			})
		}
		if out.NextToken == nil || (next != nil && aws.ToString(out.NextToken) == aws.ToString(next)) {
			break
		}
		next = out.NextToken
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
