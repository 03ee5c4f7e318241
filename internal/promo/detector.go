package promo

import (
	"errors"

	"sjsage522/promonotifier/logger"
	apperrors "sjsage522/promonotifier/pkg/errors"
	"sjsage522/promonotifier/services/state"
)

// Detector decides which codes of a fresh list are new, assuming the page
// only ever appends codes at the end of its table
type Detector struct {
	store state.Store
	log   *logger.Logger
}

// NewDetector creates a detector backed by store
func NewDetector(store state.Store) *Detector {
	return &Detector{
		store: store,
		log:   logger.ForDetector(),
	}
}

// Detect returns the tail of fresh that was not present on the previous
// check, or nil when there is nothing new. len(fresh) is saved on every call.
func (d *Detector) Detect(fresh CodeList) (CodeList, error) {
	newCodes := d.diff(fresh)

	d.log.Debug().Int("count", len(fresh)).Msg("Saving new promo code count ...")
	if err := d.store.Save(len(fresh)); err != nil {
		return nil, apperrors.NewState("failed to save promo code count", err)
	}

	return newCodes, nil
}

func (d *Detector) diff(fresh CodeList) CodeList {
	last, err := d.store.Load()
	if errors.Is(err, state.ErrNotFound) {
		d.log.Debug().Msg("Save file not found. Is this our first run?")
		d.log.Debug().Msg("All promo codes will be treated as new ones")
		if len(fresh) == 0 {
			return nil
		}
		return fresh
	}
	if err != nil {
		d.log.Error().Err(err).Msg("Failed to load previous promo code count")
		return nil
	}

	d.log.Debug().Msgf("Last check found %d promo code%s", last, plural(last))
	if last >= len(fresh) {
		d.log.Debug().Msg("No new promo codes found")
		return nil
	}

	d.log.Debug().Msg("New promo codes found")
	return fresh[last:]
}
