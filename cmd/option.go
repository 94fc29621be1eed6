package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/moriyoshi-k/aws-metric-responder/internal/event"
)

// Options holds local-mode options after parsing flags.
type Options struct {
	EventPath  string
	PrettyJSON bool
}

// CollectOptions parses local-mode flags and returns Options.
func CollectOptions() *Options {
	var eventPath string
	var pretty bool

	flag.StringVar(&eventPath, "event", "", "Path to an event JSON file (defaults to stdin)")
	flag.BoolVar(&pretty, "pretty", false, "Pretty-print the response JSON")
	flag.Parse()

	return &Options{EventPath: eventPath, PrettyJSON: pretty}
}

// ReadEvent loads the inbound event envelope from the configured path, or
// from stdin when no path was given.
func (o *Options) ReadEvent(stdin io.Reader) (event.Inbound, error) {
	var r io.Reader = stdin
	if o.EventPath != "" {
		f, err := os.Open(o.EventPath)
		if err != nil {
			return event.Inbound{}, fmt.Errorf("open event file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var in event.Inbound
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return event.Inbound{}, fmt.Errorf("parse event JSON: %w", err)
	}
	return in, nil
}

// RunningOnLambda reports whether the managed Lambda runtime is driving
// invocations, as opposed to a local one-shot run.
func RunningOnLambda() bool {
	return os.Getenv("AWS_LAMBDA_RUNTIME_API") != ""
}
