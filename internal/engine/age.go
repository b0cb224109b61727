package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tartampluch/go-age/internal/config"
)

// LeapDayPolicy decides when someone born on February 29 celebrates in a
// year that has no February 29.
type LeapDayPolicy int

const (
	// LeapDayFeb28 observes the birthday on February 28 (observed-date policy).
	LeapDayFeb28 LeapDayPolicy = iota
	// LeapDayMar1 observes the birthday on March 1.
	LeapDayMar1
)

// ParseLeapDayPolicy reads "feb28" or "mar1".
func ParseLeapDayPolicy(s string) (LeapDayPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case config.LeapPolicyFeb28:
		return LeapDayFeb28, nil
	case config.LeapPolicyMar1:
		return LeapDayMar1, nil
	default:
		return LeapDayFeb28, fmt.Errorf("%w: %s: %q", ErrMalformedInput, config.ErrLeapPolicy, s)
	}
}

func (p LeapDayPolicy) String() string {
	if p == LeapDayMar1 {
		return config.LeapPolicyMar1
	}
	return config.LeapPolicyFeb28
}

// Engine computes age reports. It holds no mutable state and is safe for
// concurrent use; the zero value uses the observed-date (Feb 28) policy.
type Engine struct {
	policy LeapDayPolicy
}

// New returns an Engine applying the given leap-day policy.
func New(policy LeapDayPolicy) *Engine {
	return &Engine{policy: policy}
}

// Policy returns the engine's leap-day policy.
func (e *Engine) Policy() LeapDayPolicy { return e.policy }

var defaultEngine = New(LeapDayFeb28)

// ComputeAge runs the default engine (observed-date policy).
func ComputeAge(birth, reference CalendarDate) (Report, error) {
	return defaultEngine.ComputeAge(birth, reference)
}

// Report is the full, immutable result of an age computation.
// Every field derives from the (birth, reference) pair alone.
type Report struct {
	BirthDate     CalendarDate `json:"birthDate"`
	ReferenceDate CalendarDate `json:"referenceDate"`

	// Calendar breakdown: BirthDate + Years + Months + Days == ReferenceDate.
	Years  int `json:"years"`
	Months int `json:"months"`
	Days   int `json:"days"`

	TotalDays    int64 `json:"totalDays"`
	TotalWeeks   int64 `json:"totalWeeks"`
	TotalHours   int64 `json:"totalHours"`
	TotalMinutes int64 `json:"totalMinutes"`
	TotalSeconds int64 `json:"totalSeconds"`

	DaysToNextBirthday int          `json:"daysToNextBirthday"`
	IsBirthdayToday    bool         `json:"isBirthdayToday"`
	NextBirthday       CalendarDate `json:"nextBirthday"`
	AgeOnNextBirthday  int          `json:"ageOnNextBirthday"`
	BirthWeekday       string       `json:"birthWeekday"`

	ZodiacSign          ZodiacSign    `json:"zodiacSign"`
	ZodiacSymbol        string        `json:"zodiacSymbol"`
	ZodiacElement       Element       `json:"zodiacElement"`
	ZodiacTraits        []string      `json:"zodiacTraits"`
	ChineseZodiacAnimal ChineseZodiac `json:"chineseZodiacAnimal"`
	GenerationLabel     Generation    `json:"generationLabel"`
	LifePhase           LifePhase     `json:"lifePhase"`
	Birthstone          string        `json:"birthstone"`

	CompletedMilestones []Milestone `json:"completedMilestones"`
	NextMilestone       *Milestone  `json:"nextMilestone"`

	AgeInMonths        int     `json:"ageInMonths"`
	LifespanPercentage float64 `json:"lifespanPercentage"`

	Facts FunFacts `json:"facts"`
}

// ComputeAge builds the report for birth as seen on reference.
// It fails with ErrInvalidRange when either date is impossible or when birth
// is after reference.
func (e *Engine) ComputeAge(birth, reference CalendarDate) (Report, error) {
	if err := birth.Validate(); err != nil {
		return Report{}, fmt.Errorf("birth date: %w", err)
	}
	if err := reference.Validate(); err != nil {
		return Report{}, fmt.Errorf("reference date: %w", err)
	}
	if birth.After(reference) {
		return Report{}, fmt.Errorf("%w: %s (%s > %s)", ErrInvalidRange, config.ErrBirthAfterRef, birth, reference)
	}

	years, months, days := Breakdown(birth, reference)

	totalDays := reference.EpochDay() - birth.EpochDay()
	totalHours := totalDays * config.HoursPerDay
	totalMinutes := totalHours * config.MinutesPerHour

	next := e.NextBirthday(birth, reference)
	toNext := int(next.EpochDay() - reference.EpochDay())

	completed, nextMilestone := MilestonesFor(years)
	zodiac := ZodiacOf(birth.Month, birth.Day)

	return Report{
		BirthDate:     birth,
		ReferenceDate: reference,

		Years:  years,
		Months: months,
		Days:   days,

		TotalDays:    totalDays,
		TotalWeeks:   totalDays / config.DaysPerWeek,
		TotalHours:   totalHours,
		TotalMinutes: totalMinutes,
		TotalSeconds: totalMinutes * config.SecondsPerMinute,

		DaysToNextBirthday: toNext,
		IsBirthdayToday:    toNext == 0,
		NextBirthday:       next,
		AgeOnNextBirthday:  next.Year - birth.Year,
		BirthWeekday:       birth.Weekday().String(),

		ZodiacSign:          zodiac,
		ZodiacSymbol:        zodiac.Symbol(),
		ZodiacElement:       zodiac.Element(),
		ZodiacTraits:        zodiac.Traits(),
		ChineseZodiacAnimal: ChineseZodiacOf(birth.Year),
		GenerationLabel:     GenerationOf(birth.Year),
		LifePhase:           LifePhaseOf(years),
		Birthstone:          BirthstoneOf(birth.Month),

		CompletedMilestones: completed,
		NextMilestone:       nextMilestone,

		AgeInMonths:        years*config.MonthsPerYear + months,
		LifespanPercentage: lifespanPercentage(years, months, days),

		Facts: funFacts(birth, reference, years, totalDays, totalMinutes),
	}, nil
}

// Breakdown splits the interval [birth, reference] into calendar years,
// months and days by borrowing from the next larger unit. A negative day
// count borrows the length of the month before reference's month; when that
// month is a short February the month before it is borrowed too. The result
// satisfies time.Date(birth.Year+y, birth.Month+m, birth.Day+d) == reference.
// birth must not be after reference.
func Breakdown(birth, reference CalendarDate) (years, months, days int) {
	years = reference.Year - birth.Year
	months = int(reference.Month) - int(birth.Month)
	days = reference.Day - birth.Day

	y, m := reference.Year, reference.Month
	for days < 0 {
		y, m = previousMonth(y, m)
		days += DaysIn(y, m)
		months--
	}
	for months < 0 {
		years--
		months += config.MonthsPerYear
	}
	return years, months, days
}

func previousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// Anniversary returns the date in year on which a person born on birth
// celebrates, applying the engine's leap-day policy.
func (e *Engine) Anniversary(birth CalendarDate, year int) CalendarDate {
	if birth.Month == time.February && birth.Day == 29 && !IsLeap(year) {
		if e.policy == LeapDayMar1 {
			return CalendarDate{Year: year, Month: time.March, Day: 1}
		}
		return CalendarDate{Year: year, Month: time.February, Day: 28}
	}
	return CalendarDate{Year: year, Month: birth.Month, Day: birth.Day}
}

// NextBirthday returns the first anniversary on or after reference.
func (e *Engine) NextBirthday(birth, reference CalendarDate) CalendarDate {
	candidate := e.Anniversary(birth, reference.Year)
	if candidate.Before(reference) {
		candidate = e.Anniversary(birth, reference.Year+1)
	}
	return candidate
}

// MilestoneDate returns the day on which birth reaches the milestone age.
func (e *Engine) MilestoneDate(birth CalendarDate, m Milestone) CalendarDate {
	return e.Anniversary(birth, birth.Year+m.Age)
}

var (
	decMonthsPerYear = decimal.NewFromInt(config.MonthsPerYear)
	decDaysPerYear   = decimal.NewFromInt(config.DaysPerYearApprox)
	decLifespan      = decimal.NewFromInt(config.AssumedLifespanYears)
	decHundred       = decimal.NewFromInt(config.MaxPercentage)
)

// lifespanPercentage is min(100, (years + months/12 + days/365) / 80 * 100),
// rounded to two decimals.
func lifespanPercentage(years, months, days int) float64 {
	age := decimal.NewFromInt(int64(years)).
		Add(decimal.NewFromInt(int64(months)).Div(decMonthsPerYear)).
		Add(decimal.NewFromInt(int64(days)).Div(decDaysPerYear))

	pct := age.Div(decLifespan).Mul(decHundred)
	if pct.GreaterThan(decHundred) {
		pct = decHundred
	}
	f, _ := pct.Round(config.PercentagePlaces).Float64()
	return f
}
