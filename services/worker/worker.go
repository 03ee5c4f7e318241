package worker

import (
	"context"
	"sync/atomic"
	"time"

	"sjsage522/promonotifier/config"
	"sjsage522/promonotifier/internal/promo"
	"sjsage522/promonotifier/logger"
	apperrors "sjsage522/promonotifier/pkg/errors"
	"sjsage522/promonotifier/services/publisher"
)

// Fetcher retrieves the current code list
type Fetcher interface {
	Fetch(ctx context.Context) (promo.CodeList, error)
}

// Detector returns the codes that are new since the previous call
type Detector interface {
	Detect(fresh promo.CodeList) (promo.CodeList, error)
}

// Worker runs promo code checks on a 12 hour grid
type Worker struct {
	fetcher    Fetcher
	detector   Detector
	publisher  publisher.Publisher
	clock      Clock
	retryDelay time.Duration
	state      atomic.Int32
	log        *logger.Logger
}

// NewWorker creates a new worker. retryDelay is raised to one minute if lower.
func NewWorker(
	fetcher Fetcher,
	detector Detector,
	pub publisher.Publisher,
	clock Clock,
	retryDelay time.Duration,
) *Worker {
	return &Worker{
		fetcher:    fetcher,
		detector:   detector,
		publisher:  pub,
		clock:      clock,
		retryDelay: config.ClampRetryDelay(retryDelay),
		log:        logger.ForWorker(),
	}
}

// State returns the current scheduler state
func (w *Worker) State() State {
	return State(w.state.Load())
}

func (w *Worker) setState(s State) {
	w.state.Store(int32(s))
}

// Start runs checks until ctx is cancelled and returns ctx's error.
// The first check runs immediately, later ones at the next slot boundary,
// or after the retry delay when a check failed.
func (w *Worker) Start(ctx context.Context) error {
	w.setState(Waiting)
	wakeup := SlotStart(w.clock.Now())

	w.log.Debug().Msg("Entering main loop ...")
	for {
		if err := w.clock.SleepUntil(ctx, wakeup); err != nil {
			return err
		}

		slot := SlotStart(w.clock.Now())
		w.log.Debug().Time("slot", slot).Msg("Current time slot")

		w.setState(Checking)
		err := w.Check(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		now := w.clock.Now()
		if err != nil {
			w.setState(RetryBackoff)
			w.logFailure(err)
			// The wakeup stays on the slot's retry grid: slot start plus whole retry delays.
			wakeup = catchUp(NextWakeup(slot, true, w.retryDelay), now, w.retryDelay)
		} else {
			wakeup = NextWakeup(slot, false, w.retryDelay)
			if !wakeup.After(now) {
				wakeup = nextSlot(now)
			}
		}

		w.setState(Waiting)
		w.log.Debug().Time("wakeup", wakeup).Msg("Next check scheduled")
	}
}

// Check runs one fetch, detect and publish cycle
func (w *Worker) Check(ctx context.Context) error {
	w.log.Debug().Msg("Fetching available promo codes ...")
	codes, err := w.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	newCodes, err := w.detector.Detect(codes)
	if err != nil {
		return err
	}
	if len(newCodes) == 0 {
		w.log.Debug().Msg("No new promo codes")
		return nil
	}

	w.log.Info().
		Int("count", len(newCodes)).
		Msgf("Found %d new code%s: [ %s ]", len(newCodes), plural(len(newCodes)), newCodes)

	return w.publisher.Publish(ctx, newCodes.Partition())
}

func (w *Worker) logFailure(err error) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeParsing:
		w.log.Error().Err(err).Msg("Failed to check for promo codes")
	case apperrors.ErrorTypeNetwork, apperrors.ErrorTypeRateLimit:
		w.log.Warn().Err(err).Msg("Promo code page unavailable")
	default:
		w.log.Error().Err(err).Msg("Unknown error while checking for promo codes")
	}

	minutes := int(w.retryDelay / time.Minute)
	w.log.Warn().Msgf("Retrying in %d minute%s ...", minutes, plural(minutes))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
