package core

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	ClassDateLayout = "2006-01-02"
	ClassTimeLayout = "15:04:05"
)

// ISOWeekday returns the weekday of t normalized to Monday=0 .. Sunday=6.
func ISOWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// MinuteOfDay converts a wall clock hour/minute pair to minutes since midnight.
func MinuteOfDay(hour, min int) int {
	return hour*60 + min
}

// ParseClassTime splits a HH:MM or HH:MM:SS string into its hour and minute.
func ParseClassTime(s string) (hour, min int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, 0, errors.Errorf("malformed class time %q", s)
	}
	if hour, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, errors.Wrapf(err, "malformed class time %q", s)
	}
	if min, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, errors.Wrapf(err, "malformed class time %q", s)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, 0, errors.Errorf("class time %q out of range", s)
	}
	return hour, min, nil
}

// ClassDate formats t as a YYYY-MM-DD calendar date in UTC.
func ClassDate(t time.Time) string {
	return t.UTC().Format(ClassDateLayout)
}

// EndOfClassDate returns the last instant (UTC) of a YYYY-MM-DD calendar date.
func EndOfClassDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation(ClassDateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "malformed class date %q", date)
	}
	return d.Add(24*time.Hour - time.Second), nil
}
