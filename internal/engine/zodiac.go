package engine

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-age/internal/config"
)

// ZodiacSign is one of the twelve western zodiac signs.
type ZodiacSign int

const (
	Aries ZodiacSign = iota
	Taurus
	Gemini
	Cancer
	Leo
	Virgo
	Libra
	Scorpio
	Sagittarius
	Capricorn
	Aquarius
	Pisces
)

// Element is the classical element a sign belongs to.
type Element string

const (
	Fire  Element = "Fire"
	Earth Element = "Earth"
	Air   Element = "Air"
	Water Element = "Water"
)

type zodiacInfo struct {
	name   string
	symbol string
	elem   Element
	traits [3]string
}

var zodiacInfos = [...]zodiacInfo{
	Aries:       {"Aries", "♈", Fire, [3]string{"Energetic", "Courageous", "Leadership"}},
	Taurus:      {"Taurus", "♉", Earth, [3]string{"Reliable", "Patient", "Determined"}},
	Gemini:      {"Gemini", "♊", Air, [3]string{"Adaptable", "Curious", "Communicative"}},
	Cancer:      {"Cancer", "♋", Water, [3]string{"Nurturing", "Emotional", "Protective"}},
	Leo:         {"Leo", "♌", Fire, [3]string{"Confident", "Generous", "Creative"}},
	Virgo:       {"Virgo", "♍", Earth, [3]string{"Analytical", "Helpful", "Perfectionist"}},
	Libra:       {"Libra", "♎", Air, [3]string{"Diplomatic", "Balanced", "Social"}},
	Scorpio:     {"Scorpio", "♏", Water, [3]string{"Intense", "Mysterious", "Transformative"}},
	Sagittarius: {"Sagittarius", "♐", Fire, [3]string{"Adventurous", "Philosophical", "Optimistic"}},
	Capricorn:   {"Capricorn", "♑", Earth, [3]string{"Ambitious", "Practical", "Disciplined"}},
	Aquarius:    {"Aquarius", "♒", Air, [3]string{"Independent", "Innovative", "Humanitarian"}},
	Pisces:      {"Pisces", "♓", Water, [3]string{"Compassionate", "Artistic", "Intuitive"}},
}

// zodiacRange is an inclusive (month, day) interval. Capricorn is the only
// range whose start lies after its end: it wraps over New Year.
type zodiacRange struct {
	sign       ZodiacSign
	startMonth time.Month
	startDay   int
	endMonth   time.Month
	endDay     int
}

var zodiacRanges = [...]zodiacRange{
	{Capricorn, time.December, 22, time.January, 19},
	{Aquarius, time.January, 20, time.February, 18},
	{Pisces, time.February, 19, time.March, 20},
	{Aries, time.March, 21, time.April, 19},
	{Taurus, time.April, 20, time.May, 20},
	{Gemini, time.May, 21, time.June, 20},
	{Cancer, time.June, 21, time.July, 22},
	{Leo, time.July, 23, time.August, 22},
	{Virgo, time.August, 23, time.September, 22},
	{Libra, time.September, 23, time.October, 22},
	{Scorpio, time.October, 23, time.November, 21},
	{Sagittarius, time.November, 22, time.December, 21},
}

// monthDay packs a month and day into a sortable key (Mar 21 -> 321).
func monthDay(m time.Month, d int) int { return int(m)*100 + d }

func (r zodiacRange) contains(m time.Month, d int) bool {
	md := monthDay(m, d)
	start, end := monthDay(r.startMonth, r.startDay), monthDay(r.endMonth, r.endDay)
	if start <= end {
		return md >= start && md <= end
	}
	return md >= start || md <= end
}

// ZodiacOf returns the western zodiac sign for a month and day.
func ZodiacOf(m time.Month, d int) ZodiacSign {
	for _, r := range zodiacRanges {
		if r.contains(m, d) {
			return r.sign
		}
	}
	// Unreachable for valid dates: the table covers the whole year.
	return Capricorn
}

func (z ZodiacSign) valid() bool { return z >= Aries && z <= Pisces }

// String returns the sign's English name.
func (z ZodiacSign) String() string {
	if !z.valid() {
		return fmt.Sprintf("ZodiacSign(%d)", int(z))
	}
	return zodiacInfos[z].name
}

// Symbol returns the Unicode glyph of the sign.
func (z ZodiacSign) Symbol() string {
	if !z.valid() {
		return ""
	}
	return zodiacInfos[z].symbol
}

// Element returns the sign's element.
func (z ZodiacSign) Element() Element {
	if !z.valid() {
		return ""
	}
	return zodiacInfos[z].elem
}

// Traits returns three personality keywords traditionally attached to the sign.
func (z ZodiacSign) Traits() []string {
	if !z.valid() {
		return nil
	}
	t := zodiacInfos[z].traits
	return t[:]
}

func (z ZodiacSign) MarshalText() ([]byte, error) {
	if !z.valid() {
		return nil, fmt.Errorf("%w: zodiac sign %d", ErrInvalidRange, int(z))
	}
	return []byte(z.String()), nil
}

func (z *ZodiacSign) UnmarshalText(text []byte) error {
	for i, info := range zodiacInfos {
		if info.name == string(text) {
			*z = ZodiacSign(i)
			return nil
		}
	}
	return fmt.Errorf("%w: zodiac sign %q", ErrMalformedInput, text)
}

// ChineseZodiac is one of the twelve animals of the Chinese zodiac cycle.
type ChineseZodiac int

const (
	Rat ChineseZodiac = iota
	Ox
	Tiger
	Rabbit
	Dragon
	Snake
	Horse
	Goat
	Monkey
	Rooster
	Dog
	Pig
)

var chineseNames = [...]string{
	Rat: "Rat", Ox: "Ox", Tiger: "Tiger", Rabbit: "Rabbit", Dragon: "Dragon", Snake: "Snake",
	Horse: "Horse", Goat: "Goat", Monkey: "Monkey", Rooster: "Rooster", Dog: "Dog", Pig: "Pig",
}

// ChineseZodiacOf returns the animal of a Gregorian year.
// The cycle is anchored on 1900 (Rat) and works for years before it.
func ChineseZodiacOf(year int) ChineseZodiac {
	n := len(chineseNames)
	return ChineseZodiac(((year-config.ChineseZodiacBaseYear)%n + n) % n)
}

func (c ChineseZodiac) valid() bool { return c >= Rat && c <= Pig }

func (c ChineseZodiac) String() string {
	if !c.valid() {
		return fmt.Sprintf("ChineseZodiac(%d)", int(c))
	}
	return chineseNames[c]
}

func (c ChineseZodiac) MarshalText() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("%w: chinese zodiac %d", ErrInvalidRange, int(c))
	}
	return []byte(c.String()), nil
}

func (c *ChineseZodiac) UnmarshalText(text []byte) error {
	for i, name := range chineseNames {
		if name == string(text) {
			*c = ChineseZodiac(i)
			return nil
		}
	}
	return fmt.Errorf("%w: chinese zodiac %q", ErrMalformedInput, text)
}
