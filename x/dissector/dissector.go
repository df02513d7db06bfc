// Package dissector composes the catalog, the AWW codec and the process
// supervisor into the decode entry point used by trace collectors.
package dissector

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mobileinsight/wsdissector/x/aww"
	"github.com/mobileinsight/wsdissector/x/catalog"
	"github.com/mobileinsight/wsdissector/x/process"
)

// ErrUnsupportedType indicates the message type is absent from the
// catalog. This is a recoverable "no result" outcome, not a failure: the
// external dissector has a closed type universe.
var ErrUnsupportedType = errors.New("dissector: unsupported message type")

// Config contains all dependencies for the Dissector.
type Config struct {
	Logger zerolog.Logger

	// Supervisor owns the external dissector process.
	Supervisor process.Supervisor

	// Metrics is optional; nil disables instrumentation.
	Metrics *Metrics
}

// dissector implements Dissector. The AWW stream carries no request
// identifiers, so responses match requests only by program order; mu
// keeps exactly one write-then-read pair in flight.
type dissector struct {
	logger  zerolog.Logger
	sup     process.Supervisor
	metrics *Metrics

	mu sync.Mutex
}

// New creates a Dissector using the provided config.
// Required fields: Supervisor.
func New(cfg Config) Dissector {
	return &dissector{
		logger:  cfg.Logger.With().Str("component", "dissector").Logger(),
		sup:     cfg.Supervisor,
		metrics: cfg.Metrics,
	}
}

// Decode sends one framed request and drains its response.
func (d *dissector) Decode(ctx context.Context, typeName string, payload []byte) (string, error) {
	code, ok := catalog.Lookup(typeName)
	if !ok {
		d.count(outcomeUnsupported)
		d.logger.Debug().Str("type", typeName).Msg("Message type not supported")
		return "", ErrUnsupportedType
	}

	requestID := uuid.NewString()
	req := aww.EncodeRequest(uint32(code), payload)

	d.logger.Debug().
		Str("request_id", requestID).
		Str("type", typeName).
		Uint32("code", uint32(code)).
		Int("payload_bytes", len(payload)).
		Msg("Decoding message")

	start := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.sup.WriteRequest(req); err != nil {
		d.count(outcomeError)
		d.logger.Error().Err(err).Str("request_id", requestID).Msg("Request write failed")
		return "", err
	}
	if d.metrics != nil {
		d.metrics.RequestBytes.Add(float64(len(req)))
	}

	text, err := d.sup.ReadUntilSentinel(ctx)
	if err != nil {
		if errors.Is(err, process.ErrUnresponsive) {
			d.count(outcomeTimeout)
		} else {
			d.count(outcomeError)
		}
		d.logger.Error().Err(err).Str("request_id", requestID).Msg("Response read failed")
		return "", err
	}

	if d.metrics != nil {
		d.metrics.ResponseBytes.Add(float64(len(text)))
		d.metrics.DecodeDuration.Observe(time.Since(start).Seconds())
	}
	d.count(outcomeOK)

	d.logger.Debug().
		Str("request_id", requestID).
		Int("response_bytes", len(text)).
		Dur("elapsed", time.Since(start)).
		Msg("Message decoded")

	return text, nil
}

func (d *dissector) count(outcome string) {
	if d.metrics != nil {
		d.metrics.DecodesTotal.WithLabelValues(outcome).Inc()
	}
}
