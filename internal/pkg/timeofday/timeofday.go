// Package timeofday models a wall-clock time without a date, stored with
// second precision. It maps onto PostgreSQL TIME columns through pgtype.
package timeofday

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

var ErrInvalidTime = errors.New("invalid time of day")

const secondsPerDay = 24 * 60 * 60

// layouts accepted by Parse, tried in order.
var layouts = []string{"15:04:05", "15:04:05.999999", "15:04"}

type TimeOfDay struct {
	secs int32
}

func New(hour, minute, second int) TimeOfDay {
	return TimeOfDay{secs: int32(hour*3600 + minute*60 + second)}
}

// FromTime drops the date part of t, keeping the wall clock in t's location.
func FromTime(t time.Time) TimeOfDay {
	return New(t.Hour(), t.Minute(), t.Second())
}

// Parse reads "15:04:05", "15:04:05.999999" or "15:04". Unlike a lenient
// fallback, unparseable input is always reported as ErrInvalidTime.
func Parse(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return FromTime(t), nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
}

func (t TimeOfDay) Hour() int   { return int(t.secs / 3600) }
func (t TimeOfDay) Minute() int { return int(t.secs % 3600 / 60) }
func (t TimeOfDay) Second() int { return int(t.secs % 60) }

// Sub returns t-u as a duration, both taken on the same reference date.
func (t TimeOfDay) Sub(u TimeOfDay) time.Duration {
	return time.Duration(t.secs-u.secs) * time.Second
}

func (t TimeOfDay) Before(u TimeOfDay) bool { return t.secs < u.secs }
func (t TimeOfDay) After(u TimeOfDay) bool  { return t.secs > u.secs }

// On places t on the calendar day of date in loc.
func (t TimeOfDay) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ScanTime implements pgtype.TimeScanner.
func (t *TimeOfDay) ScanTime(v pgtype.Time) error {
	if !v.Valid {
		return fmt.Errorf("cannot scan NULL into TimeOfDay")
	}
	secs := v.Microseconds / int64(time.Second/time.Microsecond)
	if secs < 0 || secs >= secondsPerDay {
		return fmt.Errorf("%w: %d microseconds", ErrInvalidTime, v.Microseconds)
	}
	t.secs = int32(secs)
	return nil
}

// TimeValue implements pgtype.TimeValuer.
func (t TimeOfDay) TimeValue() (pgtype.Time, error) {
	return pgtype.Time{
		Microseconds: int64(t.secs) * int64(time.Second/time.Microsecond),
		Valid:        true,
	}, nil
}
