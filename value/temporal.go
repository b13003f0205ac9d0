package value

import (
	"fmt"
	"strings"
	"time"

	"github.com/squareup/rowcodec/errors"
)

// Date is a calendar date with no zone.
type Date struct {
	Year  int16
	Month int8
	Day   int8
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Time is a wall clock time with microsecond precision.
type Time struct {
	Hour     int8
	Minute   int8
	Sec      int8
	Microsec int32
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d:%02d.%06d", t.Hour, t.Minute, t.Sec, t.Microsec)
}

type DateTime struct {
	Year     int16
	Month    int8
	Day      int8
	Hour     int8
	Minute   int8
	Sec      int8
	Microsec int32
}

func (dt DateTime) Date() Date {
	return Date{Year: dt.Year, Month: dt.Month, Day: dt.Day}
}

func (dt DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d.%06d", dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute,
		dt.Sec, dt.Microsec)
}

// Duration keeps months apart from seconds since a month has no fixed length.
type Duration struct {
	Seconds      int64
	Microseconds int32
	Months       int32
}

func (d Duration) String() string {
	return fmt.Sprintf("P%dMT%d.%06dS", d.Months, d.Seconds, d.Microseconds)
}

// ParseDuration accepts Go duration strings such as "1h30m" or "250ms". The result has no months.
func ParseDuration(s string) (Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return Duration{}, errors.Wrapf(err, "invalid duration %q", s)
	}
	return Duration{
		Seconds:      int64(d / time.Second),
		Microseconds: int32((d % time.Second) / time.Microsecond),
	}, nil
}

const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05.999999"
	dateTimeLayout = "2006-01-02T15:04:05.999999"
)

// ParseDate accepts yyyy-mm-dd.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, errors.Wrapf(err, "invalid date %q", s)
	}
	return DateFromTime(t), nil
}

// ParseTime accepts hh:mm:ss with an optional fraction of up to six digits.
func ParseTime(s string) (Time, error) {
	t, err := time.Parse(timeLayout, strings.TrimSpace(s))
	if err != nil {
		return Time{}, errors.Wrapf(err, "invalid time %q", s)
	}
	return TimeFromTime(t), nil
}

// ParseDateTime accepts yyyy-mm-ddThh:mm:ss with an optional fraction. A space may replace the T.
func ParseDateTime(s string) (DateTime, error) {
	s = strings.Replace(strings.TrimSpace(s), " ", "T", 1)
	t, err := time.Parse(dateTimeLayout, s)
	if err != nil {
		return DateTime{}, errors.Wrapf(err, "invalid datetime %q", s)
	}
	return DateTimeFromTime(t), nil
}

func DateFromTime(t time.Time) Date {
	return Date{Year: int16(t.Year()), Month: int8(t.Month()), Day: int8(t.Day())}
}

func TimeFromTime(t time.Time) Time {
	return Time{Hour: int8(t.Hour()), Minute: int8(t.Minute()), Sec: int8(t.Second()),
		Microsec: int32(t.Nanosecond() / 1000)}
}

func DateTimeFromTime(t time.Time) DateTime {
	return DateTime{Year: int16(t.Year()), Month: int8(t.Month()), Day: int8(t.Day()), Hour: int8(t.Hour()),
		Minute: int8(t.Minute()), Sec: int8(t.Second()), Microsec: int32(t.Nanosecond() / 1000)}
}
