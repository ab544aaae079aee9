// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds deployment policy. Everything here comes from env vars so
// cutoffs and radii can differ per deployment without a rebuild.
type Config struct {
	CheckInCutoff  ClockTime // at or after this wall time a check-in is late
	CheckOutCutoff ClockTime // strictly before this wall time a check-out is early

	CheckInRadius  float64 // meters, fallback when an office has none
	CheckOutRadius float64
	MaxAccuracy    float64 // meters, worst acceptable GPS fix accuracy

	MinReasonLen int // approval request reason / rejection reason

	Timezone *time.Location

	DefaultOfficeLat float64
	DefaultOfficeLng float64
}

// ClockTime is a wall-clock instant within a day, timezone-agnostic.
type ClockTime struct {
	Hour   int
	Minute int
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Minutes returns the offset from midnight.
func (c ClockTime) Minutes() int { return c.Hour*60 + c.Minute }

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return ClockTime{}, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// Load reads configuration from the environment, falling back to the
// company defaults for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		CheckInCutoff:    ClockTime{Hour: 9, Minute: 5},
		CheckOutCutoff:   ClockTime{Hour: 18, Minute: 0},
		CheckInRadius:    1000,
		CheckOutRadius:   3000,
		MaxAccuracy:      50,
		MinReasonLen:     5,
		DefaultOfficeLat: 37.5665,
		DefaultOfficeLng: 126.9780,
	}

	if v := os.Getenv("CHECKIN_CUTOFF"); v != "" {
		ct, err := ParseClockTime(v)
		if err != nil {
			return nil, err
		}
		cfg.CheckInCutoff = ct
	}
	if v := os.Getenv("CHECKOUT_CUTOFF"); v != "" {
		ct, err := ParseClockTime(v)
		if err != nil {
			return nil, err
		}
		cfg.CheckOutCutoff = ct
	}

	var err error
	if cfg.CheckInRadius, err = floatEnv("CHECKIN_RADIUS_M", cfg.CheckInRadius); err != nil {
		return nil, err
	}
	if cfg.CheckOutRadius, err = floatEnv("CHECKOUT_RADIUS_M", cfg.CheckOutRadius); err != nil {
		return nil, err
	}
	if cfg.MaxAccuracy, err = floatEnv("GPS_MAX_ACCURACY_M", cfg.MaxAccuracy); err != nil {
		return nil, err
	}
	if cfg.CheckInRadius <= 0 || cfg.CheckOutRadius <= 0 {
		return nil, fmt.Errorf("radii must be positive (got check-in %v, check-out %v)", cfg.CheckInRadius, cfg.CheckOutRadius)
	}
	if cfg.DefaultOfficeLat, err = floatEnv("OFFICE_LAT", cfg.DefaultOfficeLat); err != nil {
		return nil, err
	}
	if cfg.DefaultOfficeLng, err = floatEnv("OFFICE_LNG", cfg.DefaultOfficeLng); err != nil {
		return nil, err
	}

	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		tz = "Asia/Seoul"
	}
	cfg.Timezone, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}

	return cfg, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}
