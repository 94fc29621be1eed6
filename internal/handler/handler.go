// Package handler orchestrates one invocation end to end: decode, extract,
// evaluate, dispatch, and map every terminal state to a response.
package handler

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/moriyoshi-k/aws-metric-responder/internal/alarm"
	"github.com/moriyoshi-k/aws-metric-responder/internal/config"
	"github.com/moriyoshi-k/aws-metric-responder/internal/event"
	"github.com/moriyoshi-k/aws-metric-responder/internal/extract"
)

// Response is the invocation result envelope.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

const (
	bodyEmptyBatch = "No log events to process"
	bodyProcessed  = "CloudWatch metric processing completed"
	bodyUnexpected = "Error: unexpected error, check function logs"
)

// Handler processes inbound log batches. It holds no per-invocation state;
// one Handler serves the whole process lifetime.
type Handler struct {
	cfg        *config.Config
	extractor  *extract.Extractor
	dispatcher *alarm.Dispatcher
	log        zerolog.Logger
}

// New wires a Handler from its capabilities.
func New(cfg *config.Config, notifier alarm.Notifier, remediator alarm.Remediator, log zerolog.Logger) *Handler {
	return &Handler{
		cfg:        cfg,
		extractor:  extract.New(log),
		dispatcher: alarm.NewDispatcher(notifier, remediator, log),
		log:        log,
	}
}

// Handle processes one inbound event. The error return exists to satisfy
// the Lambda handler signature and is always nil: every terminal state,
// including panics, is reported through the Response.
func (h *Handler) Handle(ctx context.Context, in event.Inbound) (resp Response, _ error) {
	log := h.log.With().Str("invocation_id", uuid.New().String()).Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("unexpected panic during invocation")
			resp = Response{StatusCode: http.StatusInternalServerError, Body: bodyUnexpected}
		}
	}()

	batch, err := event.Decode(in)
	if err != nil {
		return h.decodeFailure(log, err), nil
	}

	if len(batch.LogEvents) == 0 {
		log.Info().Msg("no log events received in this batch")
		return Response{StatusCode: http.StatusOK, Body: bodyEmptyBatch}, nil
	}
	log.Info().Int("count", len(batch.LogEvents)).Str("log_group", batch.LogGroup).Msg("processing log events")

	value, ok := h.extractor.Value(batch.LogEvents, h.cfg.MetricName)
	if !ok {
		// Expected when the batch carries unrelated log lines; the batch
		// was still processed, so this is a normal completion.
		log.Warn().Str("metric", h.cfg.MetricName).Msg("could not extract metric value from log events")
		return Response{StatusCode: http.StatusOK, Body: bodyProcessed}, nil
	}
	log.Info().Str("metric", h.cfg.MetricName).Float64("value", value).Msg("metric value observed")

	if !alarm.Breached(value, h.cfg.Threshold) {
		log.Info().Float64("threshold", h.cfg.Threshold).Msg("metric is within normal range")
		return Response{StatusCode: http.StatusOK, Body: bodyProcessed}, nil
	}

	log.Info().Float64("value", value).Float64("threshold", h.cfg.Threshold).Msg("alarm triggered")
	h.dispatcher.Dispatch(ctx, value)

	// Action failures are reported via logs and outcomes only: the log
	// data itself was processed, so the invocation succeeds regardless.
	return Response{StatusCode: http.StatusOK, Body: bodyProcessed}, nil
}

func (h *Handler) decodeFailure(log zerolog.Logger, err error) Response {
	var encErr *event.EncodingError
	var structErr *event.StructureError
	switch {
	case errors.As(err, &encErr):
		log.Error().Err(err).Msg("payload encoding error")
		return Response{StatusCode: http.StatusBadRequest, Body: "Error: EncodingError - " + encErr.Error()}
	case errors.As(err, &structErr):
		log.Error().Err(err).Msg("payload structure error")
		return Response{StatusCode: http.StatusBadRequest, Body: "Error: StructureError - " + structErr.Error()}
	default:
		log.Error().Err(err).Msg("unexpected decode error")
		return Response{StatusCode: http.StatusInternalServerError, Body: bodyUnexpected}
	}
}
