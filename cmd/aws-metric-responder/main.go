package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"

	"github.com/moriyoshi-k/aws-metric-responder/internal/client"
	"github.com/moriyoshi-k/aws-metric-responder/internal/config"
	"github.com/moriyoshi-k/aws-metric-responder/internal/handler"
	"github.com/moriyoshi-k/aws-metric-responder/internal/logging"
	"github.com/moriyoshi-k/aws-metric-responder/internal/logtail"
	"github.com/moriyoshi-k/aws-metric-responder/internal/notify"
	"github.com/moriyoshi-k/aws-metric-responder/internal/remedy"

	"github.com/moriyoshi-k/aws-metric-responder/cmd"
)

func main() {
	// Local runs can keep settings in a .env file; on Lambda this is a no-op.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(os.Stdout, cfg.LogLevel)

	ctx := context.Background()
	awsCfg, err := client.LoadConfig(ctx, cfg.Region)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS configuration")
	}

	var tail notify.TailFetcher
	if cfg.LogTailLines > 0 {
		tail = logtail.New(client.NewLogs(awsCfg), cfg.LogGroupName)
	}
	notifier := notify.New(client.NewSNS(awsCfg), cfg, tail, log)
	runner := remedy.New(cfg.RecoveryScriptPath, cfg.RecoveryTimeout, log)
	h := handler.New(cfg, notifier, runner, log)

	if cmd.RunningOnLambda() {
		lambda.Start(h.Handle)
		return
	}

	// Local mode: one invocation from --event or stdin, response on stdout.
	opts := cmd.CollectOptions()
	in, err := opts.ReadEvent(os.Stdin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	resp, _ := h.Handle(ctx, in)

	enc := json.NewEncoder(os.Stdout)
	if opts.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintf(os.Stderr, "encode error: %v\n", err)
		os.Exit(1)
	}
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
