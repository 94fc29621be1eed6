package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultThreshold          = 80.0
	DefaultRecoveryScriptPath = "/opt/restart_service.sh"
	DefaultLogGroupName       = "ServerMetricsLogGroup"
	DefaultMetricName         = "CPUUtilization"
	DefaultSubject            = "[Warning] High Server Metric Alert"
	DefaultMessagePrefix      = "Server Metric Alert: "
	DefaultRecoveryTimeout    = 15 * time.Second
)

// Config holds all environment-derived settings. It is constructed once at
// cold start and treated as read-only for the lifetime of the process; every
// component receives it by reference instead of reading the environment.
type Config struct {
	// Threshold is the inclusive alarm threshold for the monitored metric.
	Threshold float64
	// MetricName is the key looked up inside each log message.
	MetricName string
	// RecoveryScriptPath points at the local recovery command. A missing
	// path skips recovery rather than failing it.
	RecoveryScriptPath string
	// RecoveryTimeout bounds the recovery script's wall-clock run time.
	RecoveryTimeout time.Duration
	// SNSTopicARN is the notification topic. Empty disables notification.
	SNSTopicARN string
	// LogGroupName is the source log group, used for the notification
	// log-tail excerpt.
	LogGroupName string
	// Subject and MessagePrefix shape the notification text.
	Subject       string
	MessagePrefix string
	// LogTailLines is how many recent log events to append to the
	// notification body. Zero disables the excerpt entirely.
	LogTailLines int
	// LogLevel is the zerolog level name ("debug", "info", ...).
	LogLevel string
	// Region overrides AWS region resolution when non-empty.
	Region string
}

// FromEnv reads configuration from environment variables, applying defaults
// for everything optional. Unparsable numeric values are an error so a bad
// deployment fails at cold start instead of evaluating a wrong threshold.
func FromEnv() (*Config, error) {
	threshold, err := getenvFloat("ALARM_THRESHOLD_CPU", DefaultThreshold)
	if err != nil {
		return nil, err
	}
	timeoutSec, err := getenvInt("RECOVERY_TIMEOUT_SECONDS", int(DefaultRecoveryTimeout/time.Second))
	if err != nil {
		return nil, err
	}
	if timeoutSec <= 0 {
		return nil, fmt.Errorf("RECOVERY_TIMEOUT_SECONDS must be positive, got %d", timeoutSec)
	}
	tailLines, err := getenvInt("LOG_TAIL_LINES", 0)
	if err != nil {
		return nil, err
	}
	if tailLines < 0 {
		tailLines = 0
	}

	return &Config{
		Threshold:          threshold,
		MetricName:         getenv("METRIC_NAME_TO_MONITOR", DefaultMetricName),
		RecoveryScriptPath: getenv("RECOVERY_SCRIPT_PATH", DefaultRecoveryScriptPath),
		RecoveryTimeout:    time.Duration(timeoutSec) * time.Second,
		SNSTopicARN:        os.Getenv("SNS_TOPIC_ARN"),
		LogGroupName:       getenv("LOG_GROUP_NAME", DefaultLogGroupName),
		Subject:            getenv("NOTIFICATION_SUBJECT", DefaultSubject),
		MessagePrefix:      getenv("NOTIFICATION_MESSAGE_PREFIX", DefaultMessagePrefix),
		LogTailLines:       tailLines,
		LogLevel:           getenv("LOG_LEVEL", "info"),
		Region:             os.Getenv("AWS_REGION"),
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", key, v)
	}
	return f, nil
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return n, nil
}
