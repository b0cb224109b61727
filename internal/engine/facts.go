package engine

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tartampluch/go-age/internal/config"
)

// FunFacts are rough, illustrative figures derived from an age.
// The rates behind them are averages, not measurements.
type FunFacts struct {
	EarthOrbits          float64 `json:"earthOrbits"`
	MoonCycles           int64   `json:"moonCycles"`
	EstimatedHeartbeats  int64   `json:"estimatedHeartbeats"`
	EstimatedBreaths     int64   `json:"estimatedBreaths"`
	SeasonsExperienced   int64   `json:"seasonsExperienced"`
	LeapYearsLived       int     `json:"leapYearsLived"`
	DaysUntilNextLeapDay int64   `json:"daysUntilNextLeapDay"`
	DecadesSurvived      int     `json:"decadesSurvived"`
	CenturiesSurvived    int     `json:"centuriesSurvived"`
	EstimatedHoursSlept  int64   `json:"estimatedHoursSlept"`
	EstimatedDaysSlept   int64   `json:"estimatedDaysSlept"`
	EstimatedWorkHours   int     `json:"estimatedWorkHours"`
	EstimatedSchoolDays  int     `json:"estimatedSchoolDays"`
}

var (
	decDaysPerOrbit    = decimal.RequireFromString(config.DaysPerOrbit)
	decDaysPerLunation = decimal.RequireFromString(config.DaysPerLunation)
	decSeasonsPerYear  = decimal.NewFromInt(config.SeasonsPerYear)
)

func funFacts(birth, reference CalendarDate, years int, totalDays, totalMinutes int64) FunFacts {
	days := decimal.NewFromInt(totalDays)
	orbits := days.Div(decDaysPerOrbit)
	orbitsRounded, _ := orbits.Round(config.PercentagePlaces).Float64()

	return FunFacts{
		EarthOrbits:          orbitsRounded,
		MoonCycles:           days.Div(decDaysPerLunation).Floor().IntPart(),
		EstimatedHeartbeats:  totalMinutes * config.HeartbeatsPerMinute,
		EstimatedBreaths:     totalMinutes * config.BreathsPerMinute,
		SeasonsExperienced:   orbits.Mul(decSeasonsPerYear).Floor().IntPart(),
		LeapYearsLived:       LeapYearsBetween(birth.Year, reference.Year),
		DaysUntilNextLeapDay: daysUntilNextLeapDay(reference),
		DecadesSurvived:      years / 10,
		CenturiesSurvived:    years / 100,
		EstimatedHoursSlept:  totalDays * config.SleepHoursPerDay,
		EstimatedDaysSlept:   totalDays * config.SleepHoursPerDay / config.HoursPerDay,
		EstimatedWorkHours: clamp(years-config.WorkStartAge, 0, config.RetirementAge-config.WorkStartAge) *
			config.WorkWeeksPerYear * config.WorkDaysPerWeek * config.WorkHoursPerDay,
		EstimatedSchoolDays: clamp(years-config.SchoolStartAge, 0, config.SchoolEndAge-config.SchoolStartAge) *
			config.SchoolDaysPerYear,
	}
}

// LeapYearsBetween counts leap years in the inclusive range [from, to].
func LeapYearsBetween(from, to int) int {
	if to < from {
		return 0
	}
	// Leap years in [1, y] follow from the Gregorian rule directly.
	upTo := func(y int) int { return y/4 - y/100 + y/400 }
	return upTo(to) - upTo(from-1)
}

// daysUntilNextLeapDay counts days from reference to Feb 29 of the first leap
// year after reference's year.
func daysUntilNextLeapDay(reference CalendarDate) int64 {
	year := reference.Year + 1
	for !IsLeap(year) {
		year++
	}
	leapDay := CalendarDate{Year: year, Month: time.February, Day: 29}
	return leapDay.EpochDay() - reference.EpochDay()
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
