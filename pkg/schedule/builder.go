package schedule

import (
	"errors"
	"fmt"
	"time"
)

const DaysInWeek = 7

var ErrEmptyInput = errors.New("no price intervals to build schedule from")

type UnmappedLevelError struct {
	Level    PriceLevel
	StartsAt time.Time
}

func (e *UnmappedLevelError) Error() string {
	return fmt.Sprintf("price level %q at %s has no heating mode", e.Level, e.StartsAt.Format(time.RFC3339))
}

var placeholder = Entry{Hour: 0, Minute: 0, Mode: ModeEco}

func ModeForLevel(level PriceLevel) (HeatingMode, error) {
	mode, ok := LevelToMode[level]
	if !ok {
		return 0, &UnmappedLevelError{Level: level}
	}
	return mode, nil
}

// WeekdayIndex returns 0 for Monday through 6 for Sunday.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % DaysInWeek
}

// PricedDay is the calendar day after reference.
func PricedDay(reference time.Time) time.Time {
	return reference.AddDate(0, 0, 1)
}

// DaysAround returns how many days of the week come before and after the
// priced day. before + 1 + after is always 7.
func DaysAround(reference time.Time) (before, after int) {
	before = WeekdayIndex(PricedDay(reference))
	after = DaysInWeek - 1 - before
	return before, after
}

// Build turns the priced day's intervals into a full week profile with one
// midnight entry per day. Only the priced day carries a mode derived from
// the prices, all other days get an ECO placeholder.
func Build(intervals []PriceInterval, reference time.Time) (WeekProfile, error) {
	if len(intervals) == 0 {
		return nil, ErrEmptyInput
	}

	modes := make([]HeatingMode, len(intervals))
	for i, in := range intervals {
		mode, err := ModeForLevel(in.Level)
		if err != nil {
			var unmapped *UnmappedLevelError
			if errors.As(err, &unmapped) {
				unmapped.StartsAt = in.StartsAt
			}
			return nil, err
		}
		modes[i] = mode
	}

	before, after := DaysAround(reference)

	profile := make(WeekProfile, 0, DaysInWeek)
	for i := 0; i < before; i++ {
		profile = append(profile, placeholder)
	}
	profile = append(profile, Entry{Hour: 0, Minute: 0, Mode: modes[midnightIndex(intervals)]})
	for i := 0; i < after; i++ {
		profile = append(profile, placeholder)
	}
	return profile, nil
}

// midnightIndex finds the interval starting at 00:00 in its own offset.
// Without one the earliest interval is used.
func midnightIndex(intervals []PriceInterval) int {
	earliest := 0
	for i, in := range intervals {
		if in.StartsAt.Hour() == 0 && in.StartsAt.Minute() == 0 {
			return i
		}
		if in.StartsAt.Before(intervals[earliest].StartsAt) {
			earliest = i
		}
	}
	return earliest
}
