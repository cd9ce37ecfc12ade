package market

import (
	"time"

	"simarket/internal/catalog"
	"simarket/internal/clock"
)

// CalendarReason explains why a market is open or closed.
type CalendarReason string

const (
	ReasonWeekdayOpen   CalendarReason = "weekday-open"
	ReasonWeekendClosed CalendarReason = "weekend-closed"
	ReasonPreMarket     CalendarReason = "pre-market"
	ReasonAfterHours    CalendarReason = "after-hours"
)

// CalendarStatus is the derived open/closed state of one asset class at one
// clock reading. It is never stored; always recompute from the reading.
type CalendarStatus struct {
	Open   bool           `json:"open"`
	Reason CalendarReason `json:"reason"`
}

// Intraday trading window for calendar-bound classes, in game hours.
const (
	MarketOpenHour  = 9
	MarketCloseHour = 16
)

// CalendarFor maps a clock reading to the open/closed status of the given
// class. Crypto and specialty instruments trade around the clock; everything
// else follows the Mon-Fri 09:00-16:00 window.
func CalendarFor(class catalog.Class, reading clock.Reading) CalendarStatus {
	if !class.CalendarBound() {
		return CalendarStatus{Open: true, Reason: ReasonWeekdayOpen}
	}
	switch reading.Weekday() {
	case time.Saturday, time.Sunday:
		return CalendarStatus{Open: false, Reason: ReasonWeekendClosed}
	}
	hour := reading.Hour()
	switch {
	case hour < MarketOpenHour:
		return CalendarStatus{Open: false, Reason: ReasonPreMarket}
	case hour >= MarketCloseHour:
		return CalendarStatus{Open: false, Reason: ReasonAfterHours}
	default:
		return CalendarStatus{Open: true, Reason: ReasonWeekdayOpen}
	}
}

// CalendarSnapshot computes the status of every class from a single reading,
// so all assets in one batch observe the same calendar state.
func CalendarSnapshot(reading clock.Reading) map[catalog.Class]CalendarStatus {
	out := make(map[catalog.Class]CalendarStatus, len(catalog.Classes()))
	for _, class := range catalog.Classes() {
		out[class] = CalendarFor(class, reading)
	}
	return out
}
