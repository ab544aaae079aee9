// internal/attendance/classify.go
package attendance

import (
	"math"
	"time"

	"github.com/hek316/workin/internal/config"
)

// Status is the timeliness classification of a check event. Approval
// provenance is tracked separately on the stored record, so no status here
// ever mixes workflow state with timeliness.
type Status string

const (
	StatusNormal Status = "normal"
	StatusLate   Status = "late"  // check-in at or after the cutoff
	StatusEarly  Status = "early" // check-out strictly before the cutoff
)

// Policy holds the timeliness cutoffs for one deployment. Times are compared
// as wall clock in Location, so the policy follows the office's local day.
type Policy struct {
	CheckInCutoff  config.ClockTime
	CheckOutCutoff config.ClockTime
	Location       *time.Location
}

// DefaultPolicy is 09:05 / 18:00 in the given timezone.
func DefaultPolicy(loc *time.Location) Policy {
	return Policy{
		CheckInCutoff:  config.ClockTime{Hour: 9, Minute: 5},
		CheckOutCutoff: config.ClockTime{Hour: 18, Minute: 0},
		Location:       loc,
	}
}

func (p Policy) local(t time.Time) time.Time {
	if p.Location != nil {
		return t.In(p.Location)
	}
	return t
}

// ClassifyCheckIn returns late when t is at or after the check-in cutoff.
func (p Policy) ClassifyCheckIn(t time.Time) Status {
	lt := p.local(t)
	if lt.Hour()*60+lt.Minute() >= p.CheckInCutoff.Minutes() {
		return StatusLate
	}
	return StatusNormal
}

// ClassifyCheckOut returns early when t is strictly before the check-out cutoff.
func (p Policy) ClassifyCheckOut(t time.Time) Status {
	lt := p.local(t)
	if lt.Hour()*60+lt.Minute() < p.CheckOutCutoff.Minutes() {
		return StatusEarly
	}
	return StatusNormal
}

// WorkHours returns checkOut minus checkIn in hours, rounded to 2 decimals.
// A negative result means the inputs were inverted; callers must treat that
// as data corruption, it is never clamped here.
func WorkHours(checkIn, checkOut time.Time) float64 {
	hours := checkOut.Sub(checkIn).Hours()
	return math.Round(hours*100) / 100
}

// DateString renders the calendar date of t in the policy's timezone, in the
// YYYY-MM-DD form used as part of record keys.
func (p Policy) DateString(t time.Time) string {
	return p.local(t).Format("2006-01-02")
}
