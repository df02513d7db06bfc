package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/mobileinsight/wsdissector/metrics"
	"github.com/mobileinsight/wsdissector/wsdissector-app/config"
	"github.com/mobileinsight/wsdissector/x/dissector"
	"github.com/mobileinsight/wsdissector/x/process"
)

// selftestVectors are the sample messages the original wrapper decodes as
// a smoke test against the real dissector binary.
var selftestVectors = []struct {
	typeName string
	payload  string
}{
	{"LTE-RRC_PCCH", "4001BF281AEBA00000"},
	{"RRC_MIB", "60c428205aa2fe0090c8506e422419822a3653940c40c0"},
	{"RRC_MIB", "10c424c05aa2fe00a0c850448c466608a8e54a80100a0100"},
	{"RRC_SIB1", "c764b108500b1ba01483078a2be62ad0"},
	{"RRC_SIB3", "0d801f4544fc60005001000011094e"},
	{"RRC_SIB5", "63403AFFFF03FFFC5010F0290C0A8018000C8BF5B15EA0000003F5210E30000247894201400010440060222E56300C60202C000C14CC003C4300B6D830021844A0585760186AF400"},
	{"RRC_SIB7", "018000"},
	{"RRC_SIB12", "b38111d024541a42a0"},
	{"RRC_SIB19", "41a1001694e49470"},
}

// App wires the supervisor and dissector together for the CLI.
type App struct {
	cfg *config.Config
	log zerolog.Logger

	sup process.Supervisor
	dis dissector.Dissector

	metricsServer *http.Server
}

// NewApp creates a new application instance. The dissector child process
// is not spawned until the first decode path runs.
func NewApp(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	app := &App{
		cfg: cfg,
		log: logger.With().Str("component", "app").Logger(),
	}

	pcfg := process.DefaultConfig(logger, cfg.Decoder.ExecutablePath, cfg.Decoder.LibraryDir)
	pcfg.ResponseTimeout = cfg.Decoder.ResponseTimeout
	app.sup = process.New(pcfg)

	var m *dissector.Metrics
	if cfg.Metrics.Enabled {
		m = dissector.NewMetrics()
	}

	app.dis = dissector.New(dissector.Config{
		Logger:     logger,
		Supervisor: app.sup,
		Metrics:    m,
	})

	return app, nil
}

// start spawns the dissector child and, when enabled, the metrics server.
func (a *App) start() error {
	if err := a.sup.Start(); err != nil {
		return err
	}

	if a.cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(a.cfg.Metrics.Path, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

		a.metricsServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", a.cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			a.log.Info().Int("port", a.cfg.Metrics.Port).Msg("Metrics server listening")
			if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	return nil
}

func (a *App) stop() {
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.metricsServer.Shutdown(ctx)
	}
	// The dissector child is never torn down explicitly: it exits with
	// this process when its stdin pipe closes.
}

// Run reads "TYPE HEXPAYLOAD" lines from stdin and prints each dissection
// until EOF or a shutdown signal.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.start(); err != nil {
		return err
	}
	defer a.stop()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			a.log.Info().Msg("Shutting down")
			return nil
		case err := <-scanErr:
			return err
		case line := <-lines:
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) != 2 {
				fmt.Fprintf(os.Stderr, "expected \"TYPE HEXPAYLOAD\", got %q\n", line)
				continue
			}
			if err := a.decodeAndPrint(ctx, fields[0], fields[1]); err != nil {
				return err
			}
		}
	}
}

// DecodeOne decodes a single message and prints the dissection.
func (a *App) DecodeOne(ctx context.Context, typeName, hexPayload string) error {
	if err := a.start(); err != nil {
		return err
	}
	defer a.stop()

	return a.decodeAndPrint(ctx, typeName, hexPayload)
}

// Selftest decodes the fixed sample vectors, failing on the first message
// that produces an empty dissection.
func (a *App) Selftest(ctx context.Context) error {
	if err := a.start(); err != nil {
		return err
	}
	defer a.stop()

	for i, tc := range selftestVectors {
		payload, err := hex.DecodeString(tc.payload)
		if err != nil {
			return fmt.Errorf("selftest vector %d: %w", i, err)
		}

		text, err := a.dis.Decode(ctx, tc.typeName, payload)
		if err != nil {
			return fmt.Errorf("selftest %s: %w", tc.typeName, err)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("selftest %s: empty dissection", tc.typeName)
		}

		a.log.Info().Str("type", tc.typeName).Int("response_bytes", len(text)).Msg("Selftest vector decoded")
		fmt.Print(text)
	}

	a.log.Info().Int("vectors", len(selftestVectors)).Msg("Selftest passed")
	return nil
}

func (a *App) decodeAndPrint(ctx context.Context, typeName, hexPayload string) error {
	payload, err := hex.DecodeString(hexPayload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid hex payload %q: %v\n", hexPayload, err)
		return nil
	}

	text, err := a.dis.Decode(ctx, typeName, payload)
	switch {
	case errors.Is(err, dissector.ErrUnsupportedType):
		fmt.Fprintf(os.Stderr, "message type %q not supported\n", typeName)
		return nil
	case err != nil:
		return err
	}

	fmt.Print(text)
	return nil
}
