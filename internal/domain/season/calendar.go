package season

import "time"

const (
	// FirstWeek and LastWeek bound the NFL regular season.
	FirstWeek = 1
	LastWeek  = 18

	weekLength = 7 * 24 * time.Hour

	// Thursday kickoff, 8:20 PM ET expressed as a fixed UTC offset from the
	// start of the week (the epoch falls on a Thursday 00:00 UTC).
	defaultLockOffset = 24*time.Hour + 20*time.Minute

	// Monday night wrap-up, 11:30 PM ET as a fixed UTC offset: four days into
	// the week plus the spill into Tuesday UTC.
	defaultUnlockOffset = 4*24*time.Hour + 27*time.Hour + 30*time.Minute
)

// Calendar maps wall-clock instants to season weeks and pick-lock state.
// All arithmetic uses fixed UTC offsets mirroring the data provider's
// eastern-time kickoff scheduling; no DST adjustment is attempted.
type Calendar struct {
	epoch        time.Time
	seasonYear   int
	lockOffset   time.Duration
	unlockOffset time.Duration
}

// NewCalendar builds a calendar anchored at the start of week 1.
func NewCalendar(seasonYear int, epoch time.Time) Calendar {
	return Calendar{
		epoch:        epoch.UTC(),
		seasonYear:   seasonYear,
		lockOffset:   defaultLockOffset,
		unlockOffset: defaultUnlockOffset,
	}
}

func (c Calendar) SeasonYear() int {
	return c.seasonYear
}

func (c Calendar) Epoch() time.Time {
	return c.epoch
}

// CurrentWeek returns the season week containing t, or 0 before the epoch
// and once the regular season has ended.
func (c Calendar) CurrentWeek(t time.Time) int {
	if t.Before(c.epoch) {
		return 0
	}

	weeks := int(t.Sub(c.epoch) / weekLength)
	if weeks >= LastWeek {
		return 0
	}

	return weeks + 1
}

func (c Calendar) weekStart(week int) time.Time {
	return c.epoch.Add(time.Duration(week-1) * weekLength)
}

// PickLockInstant is the moment week's picks freeze: the early kickoff.
func (c Calendar) PickLockInstant(week int) time.Time {
	return c.weekStart(week).Add(c.lockOffset)
}

// PickUnlockInstant is the moment the next week's picks open: after the
// week's late game wraps.
func (c Calendar) PickUnlockInstant(week int) time.Time {
	return c.weekStart(week).Add(c.unlockOffset)
}

// PickableWeek returns the week open for pick submission at t. Off-season
// defaults to week 1. A return of 0 means the blackout between the current
// week's lock and its unlock; at the exact lock instant the lock wins, at
// the exact unlock instant the next week opens.
func (c Calendar) PickableWeek(t time.Time) int {
	week := c.CurrentWeek(t)
	if week == 0 {
		return FirstWeek
	}

	if t.Before(c.PickLockInstant(week)) {
		return week
	}
	if !t.Before(c.PickUnlockInstant(week)) && week < LastWeek {
		return week + 1
	}

	return 0
}

// PicksLocked reports whether t falls in a blackout window.
func (c Calendar) PicksLocked(t time.Time) bool {
	return c.CurrentWeek(t) > 0 && c.PickableWeek(t) == 0
}

// PickDeadline is the submission cutoff for week; identical to the lock
// instant, named for the pick-flow call sites.
func (c Calendar) PickDeadline(week int) time.Time {
	return c.PickLockInstant(week)
}
