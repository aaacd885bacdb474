package board

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sweeney/pin-blinker/internal/gpio"
	"github.com/sweeney/pin-blinker/internal/logger"
	"github.com/sweeney/pin-blinker/internal/logic"
	"github.com/sweeney/pin-blinker/internal/state"
)

// Options configures Run.
type Options struct {
	PinA, PinB   int
	PollInterval time.Duration
	ThresholdMs  uint64

	// Sleep defaults to logic.Sleep.
	Sleep logic.Sleeper

	// Emit receives every due report. Required.
	Emit func(logic.Report)

	// OnEdge, if set, receives transitions from the toggler's edge channel.
	OnEdge func(logic.Edge)
}

// ErrInvalidOptions is returned by Run for unusable reporter settings.
var ErrInvalidOptions = errors.New("invalid options")

// Run brings up the board and runs the toggler, the reporter and, if
// requested, the edge watcher until ctx is cancelled or a line fails.
//
// Lines are driven inactive and released before Run returns, including
// after a fatal drive error. That teardown is a release, not a recovery:
// the error is returned unretried and the caller exits with its code.
func Run(ctx context.Context, chip gpio.Chip, shared *state.Shared, opts Options) error {
	if opts.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval %v", ErrInvalidOptions, opts.PollInterval)
	}
	if opts.ThresholdMs == 0 {
		return fmt.Errorf("%w: report threshold must be positive", ErrInvalidOptions)
	}
	if opts.Emit == nil {
		return fmt.Errorf("%w: no report sink", ErrInvalidOptions)
	}

	sleep := opts.Sleep
	if sleep == nil {
		sleep = logic.Sleep
	}

	w, err := shared.ClaimWriter()
	if err != nil {
		return err
	}

	b, err := Init(chip, opts.PinA, opts.PinB)
	if err != nil {
		return err
	}
	logger.InfoKV(ctx, "outputs configured", "pin_a", opts.PinA, "pin_b", opts.PinB)

	defer func() {
		if err := b.Close(); err != nil {
			logger.Warnf(ctx, "release outputs: %v", err)
		}
	}()

	tog := logic.NewToggler(w, b.A, b.B)
	rep := logic.NewReporter(shared, opts.ThresholdMs)

	g, gctx := errgroup.WithContext(ctx)

	// Go has no task priorities; the toggler is simply started first.
	g.Go(func() error {
		if err := tog.Run(gctx, sleep); err != nil {
			return &FatalError{Step: "drive output", Code: CodeDrive, Err: err}
		}
		return nil
	})

	g.Go(func() error {
		return rep.Run(gctx, opts.PollInterval, sleep, opts.Emit)
	})

	if opts.OnEdge != nil {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case e := <-tog.Edges():
					opts.OnEdge(e)
				}
			}
		})
	}

	logger.InfoKV(ctx, "tasks started", "period_ms", shared.PeriodMs(), "poll", opts.PollInterval, "threshold_ms", opts.ThresholdMs)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
