// Package event decodes the raw envelope delivered by a CloudWatch Logs
// subscription filter into a batch of log records.
package event

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/moriyoshi-k/aws-metric-responder/internal/model"
)

// Inbound is the raw invocation payload. The nested data field carries a
// base64-encoded, gzip-compressed JSON document.
type Inbound struct {
	AWSLogs RawPayload `json:"awslogs"`
}

// RawPayload holds the encoded log batch.
type RawPayload struct {
	Data string `json:"data"`
}

// Batch is the decompressed subscription payload. An empty LogEvents slice
// is a valid batch.
type Batch struct {
	Owner       string
	LogGroup    string
	LogStream   string
	MessageType string
	LogEvents   []model.Record
}

// EncodingError reports a payload that could not be base64-decoded or
// gunzipped. It is terminal for the invocation.
type EncodingError struct {
	Stage string // "base64" or "gzip"
	Err   error
}

func (e *EncodingError) Error() string { return fmt.Sprintf("decode %s: %v", e.Stage, e.Err) }
func (e *EncodingError) Unwrap() error { return e.Err }

// StructureError reports a decompressed payload that does not match the
// subscription format, including a missing logEvents field.
type StructureError struct {
	Reason string
	Err    error
}

func (e *StructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed payload: %s", e.Reason)
}

func (e *StructureError) Unwrap() error { return e.Err }

// payload mirrors the wire format. LogEvents is a pointer so a payload
// missing the field can be told apart from an empty batch.
type payload struct {
	Owner       string          `json:"owner"`
	LogGroup    string          `json:"logGroup"`
	LogStream   string          `json:"logStream"`
	MessageType string          `json:"messageType"`
	LogEvents   *[]model.Record `json:"logEvents"`
}

// Decode turns an inbound envelope into a Batch. Failures surface as
// *EncodingError or *StructureError so the caller can map them to distinct
// response codes.
func Decode(in Inbound) (*Batch, error) {
	if in.AWSLogs.Data == "" {
		return nil, &StructureError{Reason: "missing awslogs.data"}
	}

	compressed, err := base64.StdEncoding.DecodeString(in.AWSLogs.Data)
	if err != nil {
		return nil, &EncodingError{Stage: "base64", Err: err}
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, &EncodingError{Stage: "gzip", Err: err}
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, &EncodingError{Stage: "gzip", Err: err}
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &StructureError{Reason: "payload is not valid JSON", Err: err}
	}
	if p.LogEvents == nil {
		return nil, &StructureError{Reason: "missing logEvents"}
	}

	return &Batch{
		Owner:       p.Owner,
		LogGroup:    p.LogGroup,
		LogStream:   p.LogStream,
		MessageType: p.MessageType,
		LogEvents:   *p.LogEvents,
	}, nil
}
