package worker

import "time"

// Period is the nominal interval between checks
const Period = 12 * time.Hour

// State is the scheduler state
type State int32

const (
	Waiting State = iota
	Checking
	RetryBackoff
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "WAITING"
	case Checking:
		return "CHECKING"
	case RetryBackoff:
		return "RETRY_BACKOFF"
	default:
		return "UNKNOWN"
	}
}

// SlotStart truncates t to the most recent 00:00 or 12:00 in t's location
func SlotStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), (t.Hour()/12)*12, 0, 0, 0, t.Location())
}

// NextWakeup returns the next check time for a cycle that ran in the slot
// starting at slot: the following 00:00 or 12:00 on the local clock on success,
// retryDelay later on failure.
// A slot is not always 12 hours long on daylight saving transition days.
func NextWakeup(slot time.Time, failed bool, retryDelay time.Duration) time.Time {
	if failed {
		return slot.Add(retryDelay)
	}
	hour := (slot.Hour()/12)*12 + 12
	return time.Date(slot.Year(), slot.Month(), slot.Day(), hour, 0, 0, 0, slot.Location())
}

// nextSlot returns the first 00:00 or 12:00 after now
func nextSlot(now time.Time) time.Time {
	return NextWakeup(SlotStart(now), false, 0)
}

// catchUp moves a wakeup that is not after now forward in steps of delay
func catchUp(wakeup, now time.Time, delay time.Duration) time.Time {
	if delay <= 0 || wakeup.After(now) {
		return wakeup
	}
	steps := now.Sub(wakeup)/delay + 1
	return wakeup.Add(steps * delay)
}
