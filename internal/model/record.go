package model

import "time"

// Record is one decoded log event from a subscription batch. Records are
// owned by their batch and read read-only downstream.
type Record struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // epoch milliseconds
	Message   string `json:"message"`
}

// TailEntry is one recent log line fetched from the source log group to
// enrich a notification.
type TailEntry struct {
	Timestamp time.Time
	LogStream string
	Message   string
}
