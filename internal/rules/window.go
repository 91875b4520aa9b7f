// Package rules computes state derived from stored records: budget
// utilization and alerts, goal progress and milestones, and the period
// windows spending is accumulated over.
//
// Every function is pure. Inputs are passed by value and never mutated.
package rules

import (
	"fmt"
	"time"

	"github.com/recipereverie-droid/Budget-Tracker/internal/core"
)

// WindowStrategy computes the budget period window containing a moment.
// Each period (daily, weekly, monthly) has its own strategy.
type WindowStrategy interface {
	Window(now time.Time) core.DateRange
}

// DayWindow is the calendar day of now, in now's location.
type DayWindow struct{}

func (DayWindow) Window(now time.Time) core.DateRange {
	start := midnight(now)
	return core.DateRange{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeekWindow is the ISO week of now, starting Monday.
type WeekWindow struct{}

func (WeekWindow) Window(now time.Time) core.DateRange {
	offset := (int(now.Weekday()) + 6) % 7
	start := midnight(now).AddDate(0, 0, -offset)
	return core.DateRange{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthWindow is the calendar month of now.
type MonthWindow struct{}

func (MonthWindow) Window(now time.Time) core.DateRange {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return core.DateRange{Start: start, End: start.AddDate(0, 1, 0)}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

var windowStrategies = map[core.Period]WindowStrategy{
	core.Daily:   DayWindow{},
	core.Weekly:  WeekWindow{},
	core.Monthly: MonthWindow{},
}

// GetWindowStrategy returns the strategy for a budget period.
func GetWindowStrategy(period core.Period) (WindowStrategy, error) {
	s, ok := windowStrategies[period]
	if !ok {
		return nil, fmt.Errorf("unknown period: %s", period)
	}
	return s, nil
}

// CurrentWindow is the default period policy: the window of period that contains now.
func CurrentWindow(period core.Period, now time.Time) (core.DateRange, error) {
	s, err := GetWindowStrategy(period)
	if err != nil {
		return core.DateRange{}, err
	}
	return s.Window(now), nil
}
