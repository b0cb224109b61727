package feed

import (
	"bytes"
	"cmp"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
)

// Generator turns a vCard export into age-aware entries and an iCalendar feed.
type Generator struct {
	Clock    engine.Clock   // Source of "today"
	Location *time.Location // Zone "today" is taken in; time.Local when nil
	Fetcher  Fetcher        // Required for web sources
	Engine   *engine.Engine // Leap-day policy; observed Feb 28 when nil

	// FormatSummary and FormatMilestone let callers inject localized event
	// titles. Fallback formats from config are used when nil.
	FormatSummary   func(name string, age int, yearKnown bool) string
	FormatMilestone func(name string, m engine.Milestone) string
}

type syncStats struct{ processed, withBday, today int }

// RunSync reads src and builds the calendar feed and sorted entry list.
func (g *Generator) RunSync(ctx context.Context, src Source) (Result, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompFeed,
		config.LogKeyMode, src.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	reader, err := g.open(ctx, src)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	today := g.today()
	entries, stats, err := g.decode(ctx, reader, today)
	if err != nil {
		return Result{}, err
	}

	ics, err := g.encodeCalendar(entries, src.Reminder)
	if err != nil {
		return Result{}, err
	}

	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompFeed,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, stats.processed),
			slog.Int(config.LogKeyFound, stats.withBday),
			slog.Int(config.LogKeyToday, stats.today),
		),
	)
	log.Debug(config.MsgSyncFinished, config.LogKeyDuration, time.Since(start).Milliseconds())

	return Result{Calendar: ics, Entries: entries, Today: stats.today}, nil
}

// Decode parses a vCard stream into entries as of today, without building a
// calendar. Malformed cards and unreadable dates are skipped.
func (g *Generator) Decode(ctx context.Context, r io.Reader) ([]Entry, error) {
	entries, _, err := g.decode(ctx, r, g.today())
	return entries, err
}

func (g *Generator) open(ctx context.Context, src Source) (io.ReadCloser, error) {
	switch src.Mode {
	case config.SourceModeLocal:
		if src.Path == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(src.Path)
	case config.SourceModeWeb:
		if src.URL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		src = src.WithKeyringPassword()
		return g.Fetcher.Fetch(ctx, src.URL, src.User, src.Password)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, src.Mode)
	}
}

func (g *Generator) ageEngine() *engine.Engine {
	if g.Engine == nil {
		return engine.New(engine.LeapDayFeb28)
	}
	return g.Engine
}

func (g *Generator) today() engine.CalendarDate {
	clock := g.Clock
	if clock == nil {
		clock = engine.RealClock{}
	}
	return engine.Today(clock, g.Location)
}

func (g *Generator) decode(ctx context.Context, r io.Reader, today engine.CalendarDate) ([]Entry, syncStats, error) {
	var stats syncStats
	entries := []Entry{}
	src := &readErrRecorder{r: r}
	decoder := vcard.NewDecoder(src)

	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			break
		}
		if src.err != nil {
			return nil, stats, fmt.Errorf("%s: %w", config.ErrVCardParse, src.err)
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompFeed,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birth, yearKnown, err := parseBirthday(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompFeed,
				config.LogKeyValue, bday.Value)
			continue
		}
		stats.withBday++

		entry := g.newEntry(cardName(card), birth, yearKnown, today)
		if entry.IsToday() {
			stats.today++
			slog.Info(config.MsgBdayToday,
				config.LogKeyComponent, config.CompFeed,
				config.LogKeyName, entry.Name,
				config.LogKeyDOB, birth.String())
		}
		entries = append(entries, entry)
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := a.NextBirthday.Compare(b.NextBirthday); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return entries, stats, nil
}

// readErrRecorder remembers the first read failure of the underlying stream.
// The vCard decoder reports it on every call, so it must end the loop instead
// of being skipped like a malformed card.
type readErrRecorder struct {
	r   io.Reader
	err error
}

func (rr *readErrRecorder) Read(p []byte) (int, error) {
	n, err := rr.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && rr.err == nil {
		rr.err = err
	}
	return n, err
}

// cardName prefers FN (formatted) over N (structured).
func cardName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil && n.Value != "" {
		return n.Value
	}
	return config.FallbackName
}

func (g *Generator) newEntry(name string, birth engine.CalendarDate, yearKnown bool, today engine.CalendarDate) Entry {
	eng := g.ageEngine()

	input := fmt.Sprintf(config.FormatHashInput, name, birth.String(), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))

	e := Entry{
		UID:       fmt.Sprintf("%x", hash[:config.UIDHashLength]),
		Name:      name,
		Birth:     birth,
		YearKnown: yearKnown,
	}

	if yearKnown && birth.After(today) {
		e.NextBirthday = birth
	} else {
		e.NextBirthday = eng.NextBirthday(birth, today)
	}
	e.DaysUntil = int(e.NextBirthday.EpochDay() - today.EpochDay())

	if yearKnown {
		e.AgeNext = e.NextBirthday.Year - birth.Year
		if !birth.After(today) {
			if r, err := eng.ComputeAge(birth, today); err == nil {
				e.Report = &r
			}
		}
	}
	return e
}

func (g *Generator) encodeCalendar(entries []Entry, reminder string) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	clock := g.Clock
	if clock == nil {
		clock = engine.RealClock{}
	}
	dtStamp := ical.NewProp(config.PropDTStamp)
	dtStamp.SetDateTime(clock.Now().UTC())

	today := g.today()
	for _, entry := range entries {
		events := g.birthdayEvents(entry, today.Year, reminder)
		if ev := g.milestoneEvent(entry, reminder); ev != nil {
			events = append(events, ev)
		}
		for _, ev := range events {
			ev.Props.Set(dtStamp)
			cal.Children = append(cal.Children, ev.Component)
		}
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

// birthdayEvents covers the previous, current and next year so calendar
// clients scrolling around today see the events without a resync. No event
// is emitted for a year before birth.
func (g *Generator) birthdayEvents(entry Entry, currentYear int, reminder string) []*ical.Event {
	eng := g.ageEngine()
	var events []*ical.Event

	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		if entry.YearKnown && y < entry.Birth.Year {
			continue
		}

		age := 0
		if entry.YearKnown {
			age = y - entry.Birth.Year
		}
		summary := g.summary(entry.Name, age, entry.YearKnown)

		ev := newAllDayEvent(
			fmt.Sprintf(config.FormatUID, entry.UID, y, config.ICalDomain),
			summary,
			config.CategoryBirthday,
			eng.Anniversary(entry.Birth, y),
		)
		if reminder != "" {
			addAlarm(ev, reminder, summary)
		}
		events = append(events, ev)
	}
	return events
}

// milestoneEvent marks the day the contact reaches their next milestone.
func (g *Generator) milestoneEvent(entry Entry, reminder string) *ical.Event {
	if entry.Report == nil || entry.Report.NextMilestone == nil {
		return nil
	}
	m := *entry.Report.NextMilestone

	summary := fmt.Sprintf(config.FallbackSummaryMilestone, entry.Name, m.Age, m.Label)
	if g.FormatMilestone != nil {
		summary = g.FormatMilestone(entry.Name, m)
	}

	ev := newAllDayEvent(
		fmt.Sprintf(config.FormatUIDMile, entry.UID, m.Age, config.ICalDomain),
		summary,
		config.CategoryMilestone,
		g.ageEngine().MilestoneDate(entry.Birth, m),
	)
	if reminder != "" {
		addAlarm(ev, reminder, summary)
	}
	return ev
}

func (g *Generator) summary(name string, age int, yearKnown bool) string {
	if g.FormatSummary != nil {
		return g.FormatSummary(name, age, yearKnown)
	}
	switch {
	case !yearKnown:
		return fmt.Sprintf(config.FallbackSummary, name)
	case age == 0:
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	default:
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	}
}

func newAllDayEvent(uid, summary, category string, day engine.CalendarDate) *ical.Event {
	ev := ical.NewEvent()
	ev.Props.SetText(config.PropUID, uid)
	ev.Props.SetText(config.PropSummary, summary)
	ev.Props.SetText(config.PropCategories, category)

	dtStart := ical.NewProp(config.PropDTStart)
	dtStart.SetDate(day.Time())
	ev.Props.Set(dtStart)
	return ev
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(ev *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Set the raw value; SetText would add a VALUE=TEXT parameter.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	ev.Children = append(ev.Children, alarm)
}

// parseBirthday accepts the BDAY shapes seen in the wild. Dates without a
// year are placed in config.DefaultLeapYear so that --02-29 stays valid.
func parseBirthday(value string) (engine.CalendarDate, bool, error) {
	withYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, layout := range withYear {
		if t, err := time.Parse(layout, value); err == nil {
			d, err := engine.NewCalendarDate(t.Year(), t.Month(), t.Day())
			if err != nil {
				return engine.CalendarDate{}, false, err
			}
			return d, true, nil
		}
	}

	for _, layout := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(layout, value); err == nil {
			d, err := engine.NewCalendarDate(config.DefaultLeapYear, t.Month(), t.Day())
			if err != nil {
				return engine.CalendarDate{}, false, err
			}
			return d, false, nil
		}
	}

	return engine.CalendarDate{}, false, errors.New(config.ErrDateParse)
}
