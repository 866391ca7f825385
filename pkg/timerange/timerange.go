package timerange

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	// ErrEmptyTime indicates the time string is empty
	ErrEmptyTime = errors.New("time cannot be empty")

	// ErrInvalidFormat indicates the time string is not "HH:MM"
	ErrInvalidFormat = errors.New("time must be in HH:MM format")

	// ErrOutOfRange indicates hours or minutes are outside 00:00-23:59
	ErrOutOfRange = errors.New("time must be between 00:00 and 23:59")

	// ErrEndNotAfterStart indicates a range whose end does not strictly
	// follow its start
	ErrEndNotAfterStart = errors.New("end time must be after start time")
)

// clockRegex matches two-digit hour and minute
var clockRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):([0-5][0-9])$`)

// ParseClock parses an "HH:MM" wall-clock string into minutes since
// midnight. No timezone is applied; times compare as plain wall-clock
// values.
func ParseClock(clock string) (int, error) {
	if clock == "" {
		return 0, ErrEmptyTime
	}
	if !clockRegex.MatchString(clock) {
		if len(clock) == 5 && clock[2] == ':' {
			return 0, ErrOutOfRange
		}
		return 0, ErrInvalidFormat
	}
	hours := int(clock[0]-'0')*10 + int(clock[1]-'0')
	minutes := int(clock[3]-'0')*10 + int(clock[4]-'0')
	return hours*60 + minutes, nil
}

// ValidateRange checks that both times parse and that end is strictly
// after start, compared as minutes since midnight
func ValidateRange(start, end string) error {
	startMin, err := ParseClock(start)
	if err != nil {
		return fmt.Errorf("invalid start time: %w", err)
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return fmt.Errorf("invalid end time: %w", err)
	}
	if endMin <= startMin {
		return ErrEndNotAfterStart
	}
	return nil
}

// FormatClock renders minutes since midnight as an "HH:MM" string
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutes shifts an "HH:MM" clock forward, capping at 23:59
func AddMinutes(clock string, minutes int) (string, error) {
	total, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	total += minutes
	if total > 23*60+59 {
		total = 23*60 + 59
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

// Compose combines a "YYYY-MM-DD" date and an "HH:MM" clock into a single
// instant in the server's location
func Compose(date, clock string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %w", err)
	}
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(minutes) * time.Minute), nil
}
