// Package extract scans a decoded log batch for a named numeric metric.
package extract

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jmespath/go-jmespath"
	"github.com/rs/zerolog"

	"github.com/moriyoshi-k/aws-metric-responder/internal/model"
)

// Extractor resolves a metric name against each record's message. The name
// is evaluated as a JMESPath expression, so plain keys ("CPUUtilization")
// and nested paths ("system.cpu") both work.
type Extractor struct {
	log zerolog.Logger
}

// New creates an Extractor that reports per-record problems to log.
func New(log zerolog.Logger) *Extractor {
	return &Extractor{log: log}
}

// Value returns the first valid numeric observation for metricName,
// scanning records in order and stopping at the first match. Records whose
// message is not JSON, lacks the metric, or carries a non-numeric value are
// skipped with a warning; they never abort the scan. ok is false when the
// whole batch yields no value, which is an expected outcome, not an error.
func (x *Extractor) Value(records []model.Record, metricName string) (value float64, ok bool) {
	for _, r := range records {
		var doc any
		if err := json.Unmarshal([]byte(r.Message), &doc); err != nil {
			x.log.Warn().Str("message", r.Message).Msg("log message is not JSON, skipping")
			continue
		}

		res, err := jmespath.Search(metricName, doc)
		if err != nil || res == nil {
			x.log.Warn().Str("metric", metricName).Str("message", r.Message).Msg("metric not found in log message")
			continue
		}

		v, numeric := toFloat(res)
		if !numeric {
			x.log.Warn().Str("metric", metricName).Interface("value", res).Msg("metric value is not numeric")
			continue
		}
		return v, true
	}
	return 0, false
}

// toFloat accepts JSON numbers and numeric strings.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
