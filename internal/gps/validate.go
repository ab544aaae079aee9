// internal/gps/validate.go
package gps

import (
	"fmt"
	"math"

	"github.com/hek316/workin/internal/geo"
	"github.com/hek316/workin/internal/models"
)

// Location is one sensor fix: a coordinate plus the sensor-reported accuracy
// radius in meters.
type Location struct {
	geo.Coordinate
	Accuracy float64 `json:"accuracy"`
}

// ErrorCode is the failure taxonomy for a rejected check attempt. The first
// four mirror the browser geolocation error codes; the last two are policy
// verdicts computed server-side.
type ErrorCode string

const (
	ErrPermissionDenied    ErrorCode = "PERMISSION_DENIED"
	ErrPositionUnavailable ErrorCode = "POSITION_UNAVAILABLE"
	ErrTimeout             ErrorCode = "TIMEOUT"
	ErrUnknown             ErrorCode = "UNKNOWN"
	ErrLowAccuracy         ErrorCode = "LOW_ACCURACY"
	ErrOutOfRange          ErrorCode = "OUT_OF_RANGE"
)

// Verdict is the gate's decision for one check attempt.
type Verdict struct {
	Valid    bool      `json:"valid"`
	Code     ErrorCode `json:"code,omitempty"`
	Message  string    `json:"message,omitempty"`
	Location *Location `json:"location,omitempty"`
	Distance *float64  `json:"distance,omitempty"` // meters from the reference point, when computed
}

// Validate decides whether loc may be used for a check event against the
// given reference point. Accuracy is tested before distance: an imprecise fix
// must not yield a false in-range or out-of-range answer.
func Validate(loc Location, reference geo.Coordinate, radiusMeters, maxAccuracyMeters float64) Verdict {
	if loc.Accuracy > maxAccuracyMeters {
		return Verdict{
			Code:     ErrLowAccuracy,
			Message:  fmt.Sprintf("GPS accuracy is %.0fm; must be within %.0fm", math.Round(loc.Accuracy), maxAccuracyMeters),
			Location: &loc,
		}
	}

	d := geo.Distance(loc.Coordinate, reference)
	if d > radiusMeters {
		return Verdict{
			Code:     ErrOutOfRange,
			Message:  fmt.Sprintf("you are %.0fm from the office; allowed within %.0fm", math.Round(d), radiusMeters),
			Location: &loc,
			Distance: &d,
		}
	}

	return Verdict{Valid: true, Location: &loc, Distance: &d}
}

// SensorFailure maps a sensor-side failure into the verdict taxonomy. The
// client reads the position sensor and reports either a fix or one of the
// geolocation error codes; anything unrecognized becomes UNKNOWN.
func SensorFailure(code string) Verdict {
	var c ErrorCode
	var msg string
	switch ErrorCode(code) {
	case ErrPermissionDenied:
		c, msg = ErrPermissionDenied, "location permission was denied"
	case ErrPositionUnavailable:
		c, msg = ErrPositionUnavailable, "location information is unavailable"
	case ErrTimeout:
		c, msg = ErrTimeout, "location request timed out"
	default:
		c, msg = ErrUnknown, "an unknown location error occurred"
	}
	return Verdict{Code: c, Message: msg}
}

// NearestActiveOffice picks the active office closest to loc. The data model
// allows many offices while a check validates against exactly one point;
// nearest-active is the policy here. ok is false when no office is active.
func NearestActiveOffice(loc geo.Coordinate, offices []models.OfficeLocation) (models.OfficeLocation, bool) {
	var best models.OfficeLocation
	bestDist := math.Inf(1)
	found := false
	for _, o := range offices {
		if !o.IsActive {
			continue
		}
		d := geo.Distance(loc, geo.Coordinate{Lat: o.Lat, Lng: o.Lng})
		if d < bestDist {
			best, bestDist, found = o, d, true
		}
	}
	return best, found
}
