// Command pin-blinker toggles one GPIO output on a fixed period, toggles a
// second output on every falling edge of the first, and prints a status
// line at a fixed cadence.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/pin-blinker/internal/board"
	"github.com/sweeney/pin-blinker/internal/config"
	"github.com/sweeney/pin-blinker/internal/gpio"
	"github.com/sweeney/pin-blinker/internal/logger"
	"github.com/sweeney/pin-blinker/internal/logic"
	"github.com/sweeney/pin-blinker/internal/mqtt"
	"github.com/sweeney/pin-blinker/internal/state"
	"github.com/sweeney/pin-blinker/internal/status"
	"github.com/sweeney/pin-blinker/internal/web"
)

func main() {
	err := newRootCommand().Execute()
	if err != nil {
		logger.Errorf(context.Background(), "%v", err)
	}
	logger.Sync()
	os.Exit(board.ExitCode(err))
}

// run wires the real chip, MQTT and signals, then hands over to runDaemon.
func run(ctx context.Context, cfg *config.Config) error {
	chip, err := gpio.NewRealChip(cfg.Chip, cfg.ActiveLow)
	if err != nil {
		return &board.FatalError{Step: "open chip " + cfg.Chip, Code: board.CodeOpenChip, Err: err}
	}
	defer chip.Close()

	var publisher mqtt.Publisher
	if cfg.Broker != "" {
		publisher = mqtt.NewRealPublisher(ctx, cfg.Broker, cfg.ClientID)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return runDaemon(ctx, cfg, chip, publisher, os.Stdout, sigCh, logic.Sleep)
}

// runDaemon runs the control tasks until a signal arrives or a line fails.
// publisher may be nil. Status lines go to out.
func runDaemon(ctx context.Context, cfg *config.Config, chip gpio.Chip, publisher mqtt.Publisher, out io.Writer, sig <-chan os.Signal, sleep logic.Sleeper) error {
	shared, err := state.New(cfg.PeriodMs)
	if err != nil {
		return err
	}

	tracker := status.NewTracker(shared, time.Now(), status.Config{
		Chip:        cfg.Chip,
		PinA:        cfg.PinA,
		PinB:        cfg.PinB,
		PollMs:      int64(cfg.PollMs),
		ThresholdMs: int64(cfg.ReportThresholdMs),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
	})

	if publisher != nil {
		defer publisher.Close()
		publishSystem(ctx, publisher, tracker, "STARTUP", "")
	}

	if cfg.HTTPAddr != "" {
		// The status page is optional; a bind failure is logged, not fatal.
		ln, err := net.Listen("tcp", cfg.HTTPAddr)
		if err != nil {
			logger.ErrorKV(ctx, "http status server disabled", "addr", cfg.HTTPAddr, "error", err)
		} else {
			srv := web.New(cfg.HTTPAddr, tracker)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Errorf(ctx, "http server error: %v", err)
				}
			}()
			defer srv.Shutdown(context.Background())
			logger.Infof(ctx, "http status server listening on %s", ln.Addr())
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	reason := make(chan string, 1)
	go func() {
		select {
		case s := <-sig:
			logger.Infof(ctx, "received %v, shutting down", s)
			reason <- signalName(s)
			cancel()
		case <-runCtx.Done():
		}
	}()

	opts := board.Options{
		PinA:         cfg.PinA,
		PinB:         cfg.PinB,
		PollInterval: time.Duration(cfg.PollMs) * time.Millisecond,
		ThresholdMs:  uint64(cfg.ReportThresholdMs),
		Sleep:        sleep,
		Emit:         newEmitter(ctx, out, publisher, tracker),
	}
	if publisher != nil {
		opts.OnEdge = func(e logic.Edge) {
			logger.DebugKV(ctx, "transition", "count", e.Count, "elapsed_ms", e.ElapsedMs, "b", logic.StateOf(e.SecondaryActive))
			if err := publisher.PublishEdge(e); err != nil {
				logger.Warnf(ctx, "publish edge: %v", err)
			}
		}
	}

	runErr := board.Run(logger.WithName(runCtx, "board"), chip, shared, opts)
	if runErr != nil {
		logger.ErrorKV(ctx, "control loop stopped", "code", board.ExitCode(runErr), "error", runErr)
	}

	if publisher != nil {
		why := ""
		select {
		case why = <-reason:
		default:
		}
		if runErr != nil {
			why = fmt.Sprintf("FATAL_%d", board.ExitCode(runErr))
		}
		publishSystem(ctx, publisher, tracker, "SHUTDOWN", why)
	}

	return runErr
}

// newEmitter returns the reporter's sink: one line on out, then a
// best-effort MQTT publish.
func newEmitter(ctx context.Context, out io.Writer, publisher mqtt.Publisher, tracker *status.Tracker) func(logic.Report) {
	return func(r logic.Report) {
		fmt.Fprintln(out, r.String())

		if publisher == nil {
			return
		}
		if conn, ok := publisher.(mqtt.ConnectionStatus); ok {
			tracker.SetMQTTConnected(conn.IsConnected())
		}
		if err := publisher.PublishReport(r); err != nil {
			logger.Warnf(ctx, "publish report: %v", err)
		}
	}
}

func publishSystem(ctx context.Context, publisher mqtt.Publisher, tracker *status.Tracker, event, reason string) {
	if conn, ok := publisher.(mqtt.ConnectionStatus); ok {
		tracker.SetMQTTConnected(conn.IsConnected())
	}
	snap := tracker.Snapshot()
	err := publisher.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		logger.Warnf(ctx, "failed to publish %s event: %v", event, err)
		return
	}
	logger.Infof(ctx, "published %s event", event)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}
