package engine_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-age/internal/engine"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    engine.CalendarDate
		wantErr error
	}{
		{input: "1990-06-15", want: date(1990, time.June, 15)},
		{input: "  2000-02-29\n", want: date(2000, time.February, 29)},
		{input: "0001-01-01", want: date(1, time.January, 1)},
		{input: "9999-12-31", want: date(9999, time.December, 31)},

		{input: "", wantErr: engine.ErrMalformedInput},
		{input: "   ", wantErr: engine.ErrMalformedInput},
		{input: "15/06/1990", wantErr: engine.ErrMalformedInput},
		{input: "1990-6-15", wantErr: engine.ErrMalformedInput},
		{input: "1990-06-15T00:00:00Z", wantErr: engine.ErrMalformedInput},
		{input: "abcd-ef-gh", wantErr: engine.ErrMalformedInput},
		{input: "+990-06-15", wantErr: engine.ErrMalformedInput},
		{input: "10000-01-01", wantErr: engine.ErrMalformedInput},
		{input: "1990-0x-15", wantErr: engine.ErrMalformedInput},

		{input: "1990-13-01", wantErr: engine.ErrInvalidRange},
		{input: "1990-00-10", wantErr: engine.ErrInvalidRange},
		{input: "2023-02-29", wantErr: engine.ErrInvalidRange},
		{input: "2024-04-31", wantErr: engine.ErrInvalidRange},
		{input: "0000-01-01", wantErr: engine.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := engine.ParseDate(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, engine.IsInputError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalendarDate_Arithmetic(t *testing.T) {
	d := date(2024, time.February, 28)

	assert.Equal(t, date(2024, time.February, 29), d.AddDays(1))
	assert.Equal(t, date(2024, time.March, 1), d.AddDays(2))
	assert.Equal(t, date(2023, time.December, 31), date(2024, time.January, 1).AddDays(-1))

	assert.Equal(t, int64(0), date(1970, time.January, 1).EpochDay())
	assert.Equal(t, int64(-1), date(1969, time.December, 31).EpochDay())
	assert.Equal(t, int64(10957), date(2000, time.January, 1).EpochDay())

	assert.Equal(t, 29, engine.DaysIn(2000, time.February))
	assert.Equal(t, 28, engine.DaysIn(1900, time.February))
	assert.Equal(t, 31, engine.DaysIn(2023, time.December))

	assert.True(t, d.IsLeapYear())
	assert.Equal(t, time.Wednesday, d.Weekday())
}

func TestCalendarDate_Compare(t *testing.T) {
	a := date(2020, time.March, 1)
	b := date(2020, time.March, 2)

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.True(t, a.Equal(date(2020, time.March, 1)))
	assert.True(t, date(2019, time.December, 31).Before(a))
}

func TestCalendarDate_JSON(t *testing.T) {
	data, err := json.Marshal(date(1985, time.March, 10))
	require.NoError(t, err)
	assert.JSONEq(t, `"1985-03-10"`, string(data))

	var d engine.CalendarDate
	require.NoError(t, json.Unmarshal([]byte(`"2001-02-28"`), &d))
	assert.Equal(t, date(2001, time.February, 28), d)

	err = json.Unmarshal([]byte(`"2001-02-29"`), &d)
	assert.ErrorIs(t, err, engine.ErrInvalidRange)
}

func TestCalendarDate_UnmarshalDerivedYear(t *testing.T) {
	tests := []struct {
		input   string
		want    engine.CalendarDate
		wantErr error
	}{
		// Scenario: a next birthday after a reference in 9999
		{input: `"10000-01-01"`, want: engine.CalendarDate{Year: 10000, Month: time.January, Day: 1}},
		{input: `"10000-02-29"`, want: engine.CalendarDate{Year: 10000, Month: time.February, Day: 29}},

		{input: `"10000-02-30"`, wantErr: engine.ErrInvalidRange},
		{input: `"10001-01-01"`, wantErr: engine.ErrInvalidRange},
		{input: `"100000-01-01"`, wantErr: engine.ErrMalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var d engine.CalendarDate
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestDateOf_UsesLocationOfTime(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	instant := time.Date(2025, time.June, 14, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, date(2025, time.June, 14), engine.DateOf(instant))
	assert.Equal(t, date(2025, time.June, 15), engine.DateOf(instant.In(tokyo)))
}

func TestMustDate_Panics(t *testing.T) {
	assert.Panics(t, func() { engine.MustDate(2023, time.February, 29) })
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

func TestToday(t *testing.T) {
	clock := MockClock{CurrentTime: time.Date(2025, time.January, 1, 1, 0, 0, 0, time.UTC)}
	newYork := time.FixedZone("EST", -5*60*60)

	// Scenario: 01:00 UTC on New Year's Day is still New Year's Eve in New York.
	assert.Equal(t, date(2025, time.January, 1), engine.Today(clock, time.UTC))
	assert.Equal(t, date(2024, time.December, 31), engine.Today(clock, newYork))
}
