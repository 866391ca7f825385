package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock_Valid(t *testing.T) {
	cases := []struct {
		input    string
		expected int
		name     string
	}{
		{"00:00", 0, "Midnight"},
		{"09:00", 540, "Morning"},
		{"10:30", 630, "Half hour"},
		{"23:59", 1439, "Last minute of day"},
		{"12:05", 725, "Leading zero minutes"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			minutes, err := ParseClock(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, minutes)
		})
	}
}

func TestParseClock_Invalid(t *testing.T) {
	cases := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyTime, "Empty"},
		{"9:00", ErrInvalidFormat, "Single digit hour"},
		{"0900", ErrInvalidFormat, "Missing colon"},
		{"ab:cd", ErrInvalidFormat, "Non-numeric"},
		{"24:00", ErrOutOfRange, "Hour too large"},
		{"12:60", ErrOutOfRange, "Minute too large"},
		{"10:30:00", ErrInvalidFormat, "With seconds"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseClock(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestValidateRange(t *testing.T) {
	t.Run("Valid range", func(t *testing.T) {
		assert.NoError(t, ValidateRange("09:00", "17:00"))
	})

	t.Run("One minute apart", func(t *testing.T) {
		assert.NoError(t, ValidateRange("09:00", "09:01"))
	})

	t.Run("End equals start", func(t *testing.T) {
		err := ValidateRange("09:00", "09:00")
		assert.ErrorIs(t, err, ErrEndNotAfterStart)
	})

	t.Run("End before start", func(t *testing.T) {
		err := ValidateRange("17:00", "09:00")
		assert.ErrorIs(t, err, ErrEndNotAfterStart)
	})

	t.Run("Invalid start", func(t *testing.T) {
		err := ValidateRange("9am", "17:00")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})

	t.Run("Invalid end", func(t *testing.T) {
		err := ValidateRange("09:00", "25:00")
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
}

func TestAddMinutes(t *testing.T) {
	t.Run("Within day", func(t *testing.T) {
		end, err := AddMinutes("10:00", 60)
		require.NoError(t, err)
		assert.Equal(t, "11:00", end)
	})

	t.Run("Crosses hour", func(t *testing.T) {
		end, err := AddMinutes("10:45", 30)
		require.NoError(t, err)
		assert.Equal(t, "11:15", end)
	})

	t.Run("Caps at end of day", func(t *testing.T) {
		end, err := AddMinutes("23:30", 60)
		require.NoError(t, err)
		assert.Equal(t, "23:59", end)
	})
}

func TestCompose(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		instant, err := Compose("2025-03-10", "10:30")
		require.NoError(t, err)
		assert.Equal(t, 2025, instant.Year())
		assert.Equal(t, time.March, instant.Month())
		assert.Equal(t, 10, instant.Day())
		assert.Equal(t, 10, instant.Hour())
		assert.Equal(t, 30, instant.Minute())
	})

	t.Run("Bad date", func(t *testing.T) {
		_, err := Compose("10-03-2025", "10:30")
		assert.Error(t, err)
	})

	t.Run("Bad clock", func(t *testing.T) {
		_, err := Compose("2025-03-10", "10.30")
		assert.ErrorIs(t, err, ErrInvalidFormat)
	})
}
