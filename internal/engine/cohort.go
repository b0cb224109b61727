package engine

import (
	"fmt"
	"math"
	"time"
)

// Generation is a demographic cohort assigned by birth year.
type Generation int

const (
	GenerationAlpha Generation = iota
	GenerationZ
	Millennial
	GenerationX
	BabyBoomer
	SilentGeneration
	GreatestGeneration
)

var generationNames = [...]string{
	GenerationAlpha:    "Generation Alpha",
	GenerationZ:        "Generation Z",
	Millennial:         "Millennial",
	GenerationX:        "Generation X",
	BabyBoomer:         "Baby Boomer",
	SilentGeneration:   "Silent Generation",
	GreatestGeneration: "Greatest Generation",
}

// generationTable is ordered most recent first; the first entry whose
// minYear is not after the birth year wins.
var generationTable = [...]struct {
	minYear int
	gen     Generation
}{
	{2013, GenerationAlpha},
	{1997, GenerationZ},
	{1981, Millennial},
	{1965, GenerationX},
	{1946, BabyBoomer},
	{1928, SilentGeneration},
	{math.MinInt, GreatestGeneration},
}

// GenerationOf returns the cohort of a birth year.
func GenerationOf(year int) Generation {
	for _, g := range generationTable {
		if year >= g.minYear {
			return g.gen
		}
	}
	return GreatestGeneration
}

func (g Generation) valid() bool { return g >= GenerationAlpha && g <= GreatestGeneration }

func (g Generation) String() string {
	if !g.valid() {
		return fmt.Sprintf("Generation(%d)", int(g))
	}
	return generationNames[g]
}

func (g Generation) MarshalText() ([]byte, error) {
	if !g.valid() {
		return nil, fmt.Errorf("%w: generation %d", ErrInvalidRange, int(g))
	}
	return []byte(g.String()), nil
}

func (g *Generation) UnmarshalText(text []byte) error {
	for i, name := range generationNames {
		if name == string(text) {
			*g = Generation(i)
			return nil
		}
	}
	return fmt.Errorf("%w: generation %q", ErrMalformedInput, text)
}

// LifePhase is a coarse stage of life derived from completed years.
type LifePhase int

const (
	Infant LifePhase = iota
	Toddler
	Child
	Teenager
	YoungAdult
	MiddleAged
	Senior
)

var lifePhaseNames = [...]string{
	Infant:     "Infant",
	Toddler:    "Toddler",
	Child:      "Child",
	Teenager:   "Teenager",
	YoungAdult: "Young Adult",
	MiddleAged: "Middle-Aged",
	Senior:     "Senior",
}

// lifePhaseTable holds exclusive upper bounds in years, ascending.
var lifePhaseTable = [...]struct {
	below int
	phase LifePhase
}{
	{2, Infant},
	{4, Toddler},
	{13, Child},
	{20, Teenager},
	{40, YoungAdult},
	{65, MiddleAged},
}

// LifePhaseOf returns the phase for a number of completed years.
func LifePhaseOf(years int) LifePhase {
	for _, p := range lifePhaseTable {
		if years < p.below {
			return p.phase
		}
	}
	return Senior
}

func (p LifePhase) valid() bool { return p >= Infant && p <= Senior }

func (p LifePhase) String() string {
	if !p.valid() {
		return fmt.Sprintf("LifePhase(%d)", int(p))
	}
	return lifePhaseNames[p]
}

func (p LifePhase) MarshalText() ([]byte, error) {
	if !p.valid() {
		return nil, fmt.Errorf("%w: life phase %d", ErrInvalidRange, int(p))
	}
	return []byte(p.String()), nil
}

func (p *LifePhase) UnmarshalText(text []byte) error {
	for i, name := range lifePhaseNames {
		if name == string(text) {
			*p = LifePhase(i)
			return nil
		}
	}
	return fmt.Errorf("%w: life phase %q", ErrMalformedInput, text)
}

// Milestone is a named age threshold.
type Milestone struct {
	Age   int    `json:"age"`
	Label string `json:"label"`
	Emoji string `json:"emoji"`
}

// milestones is ascending by Age.
var milestones = [...]Milestone{
	{1, "First Birthday", "👶"},
	{5, "Started School", "🎒"},
	{10, "Double Digits", "🔟"},
	{13, "Teenager", "🧒"},
	{16, "Sweet Sixteen", "🎂"},
	{18, "Legal Adult", "🎓"},
	{21, "Legal Drinking Age", "🍺"},
	{25, "Quarter Century", "💼"},
	{30, "Thirty & Thriving", "🌟"},
	{35, "Mid-Thirties", "🏠"},
	{40, "Fabulous Forty", "💪"},
	{45, "Mid-Life", "🚗"},
	{50, "Half Century", "🎊"},
	{55, "Pre-Retirement", "🎯"},
	{60, "Senior Citizen", "👴"},
	{65, "Retirement Age", "🏖️"},
	{70, "Septuagenarian", "🎖️"},
	{75, "Platinum Age", "💎"},
	{80, "Octogenarian", "🏆"},
	{90, "Nonagenarian", "👑"},
	{100, "Century Club", "🥇"},
}

// Milestones returns a copy of the milestone table.
func Milestones() []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones[:])
	return out
}

// MilestonesFor splits the table at years: completed holds every milestone
// with Age <= years (ascending), next is the first one still ahead or nil.
func MilestonesFor(years int) (completed []Milestone, next *Milestone) {
	completed = make([]Milestone, 0, len(milestones))
	for _, m := range milestones {
		if m.Age <= years {
			completed = append(completed, m)
			continue
		}
		return completed, &m
	}
	return completed, nil
}

var birthstones = [...]string{
	time.January:   "Garnet",
	time.February:  "Amethyst",
	time.March:     "Aquamarine",
	time.April:     "Diamond",
	time.May:       "Emerald",
	time.June:      "Pearl",
	time.July:      "Ruby",
	time.August:    "Peridot",
	time.September: "Sapphire",
	time.October:   "Opal",
	time.November:  "Topaz",
	time.December:  "Turquoise",
}

// BirthstoneOf returns the traditional birthstone of a month.
func BirthstoneOf(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return birthstones[m]
}
