package feed

import "github.com/tartampluch/go-age/internal/engine"

// Entry is one contact with a usable birthday.
type Entry struct {
	// UID is a stable hash of name and birth date, shared by the contact's events.
	UID  string `json:"uid"`
	Name string `json:"name"`

	// Birth carries config.DefaultLeapYear as its year when YearKnown is false.
	Birth     engine.CalendarDate `json:"birthDate"`
	YearKnown bool                `json:"yearKnown"`

	// NextBirthday is the first anniversary on or after today, or the birth
	// date itself when it lies in the future.
	NextBirthday engine.CalendarDate `json:"nextBirthday"`
	DaysUntil    int                 `json:"daysUntil"`

	// AgeNext is the age reached on NextBirthday. Zero when YearKnown is false.
	AgeNext int `json:"ageNext"`

	// Report is the full age report as of today. Nil when the year is unknown
	// or the person is not born yet.
	Report *engine.Report `json:"report,omitempty"`
}

// IsToday reports whether the birthday falls on the reference day.
func (e Entry) IsToday() bool { return e.DaysUntil == 0 }

// Result is the outcome of a synchronization.
type Result struct {
	Calendar []byte  // Encoded iCalendar feed
	Entries  []Entry // Sorted by next birthday, then name
	Today    int     // Number of birthdays today
}
