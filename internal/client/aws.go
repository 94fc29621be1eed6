package client

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// LoadConfig loads shared AWS configuration using default credential
// resolution. region may be empty to use the environment's default.
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

// NewSNS returns the SNS client used by the notifier.
func NewSNS(cfg aws.Config) *sns.Client {
	return sns.NewFromConfig(cfg)
}

// NewLogs returns the CloudWatch Logs client used for log-tail enrichment.
func NewLogs(cfg aws.Config) *cloudwatchlogs.Client {
	return cloudwatchlogs.NewFromConfig(cfg)
}
