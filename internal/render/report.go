package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/tartampluch/go-age/internal/config"
	"github.com/tartampluch/go-age/internal/engine"
	"github.com/tartampluch/go-age/internal/feed"
)

// Report writes the plain-text rendition of an age report.
func (r *Renderer) Report(w io.Writer, rep engine.Report) error {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line(r.Msg(config.TKeyAgeLine, map[string]any{
		"Years":  r.Plural(config.TKeyYears, int64(rep.Years), nil),
		"Months": r.Plural(config.TKeyMonths, int64(rep.Months), nil),
		"Days":   r.Plural(config.TKeyDays, int64(rep.Days), nil),
	}))
	line(r.Msg(config.TKeyBornOn, map[string]any{
		"Weekday": rep.BirthWeekday,
		"Date":    rep.BirthDate.String(),
	}))

	if rep.IsBirthdayToday {
		line(r.Msg(config.TKeyBirthdayToday, map[string]any{"Age": rep.AgeOnNextBirthday}))
	} else {
		line(r.Msg(config.TKeyNextBirthday, map[string]any{
			"Date": rep.NextBirthday.String(),
			"Days": r.Plural(config.TKeyDays, int64(rep.DaysToNextBirthday), nil),
			"Age":  rep.AgeOnNextBirthday,
		}))
	}

	line("")
	line(r.Msg(config.TKeyTotalsHeader, nil))
	for _, t := range []struct {
		key string
		n   int64
	}{
		{config.TKeyTotalDays, rep.TotalDays},
		{config.TKeyTotalWeeks, rep.TotalWeeks},
		{config.TKeyTotalHours, rep.TotalHours},
		{config.TKeyTotalMinutes, rep.TotalMinutes},
		{config.TKeyTotalSeconds, rep.TotalSeconds},
	} {
		line(r.Msg(t.key, map[string]any{"Count": r.Number(t.n)}))
	}

	line("")
	line(r.Msg(config.TKeyZodiac, map[string]any{"Sign": rep.ZodiacSign.String(), "Element": string(rep.ZodiacElement)}))
	line(r.Msg(config.TKeyChinese, map[string]any{"Animal": rep.ChineseZodiacAnimal.String()}))
	line(r.Msg(config.TKeyGeneration, map[string]any{"Generation": rep.GenerationLabel.String()}))
	line(r.Msg(config.TKeyLifePhase, map[string]any{"Phase": rep.LifePhase.String()}))
	line(r.Msg(config.TKeyBirthstone, map[string]any{"Stone": rep.Birthstone}))

	line(r.Plural(config.TKeyMilestonesDone, int64(len(rep.CompletedMilestones)), nil))
	if m := rep.NextMilestone; m != nil {
		line(r.Msg(config.TKeyNextMilestone, map[string]any{"Emoji": m.Emoji, "Label": m.Label, "Age": m.Age}))
	} else {
		line(r.Msg(config.TKeyNoMilestone, nil))
	}
	line(r.Msg(config.TKeyLifespan, map[string]any{
		"Percent": r.Decimal(rep.LifespanPercentage),
		"Years":   config.AssumedLifespanYears,
	}))

	f := rep.Facts
	line("")
	line(r.Msg(config.TKeyFactsHeader, nil))
	line(r.Msg(config.TKeyFactOrbits, map[string]any{"Count": r.Decimal(f.EarthOrbits)}))
	line(r.Msg(config.TKeyFactMoons, map[string]any{"Count": r.Number(f.MoonCycles)}))
	line(r.Msg(config.TKeyFactHeartbeats, map[string]any{"Count": r.Number(f.EstimatedHeartbeats)}))
	line(r.Msg(config.TKeyFactBreaths, map[string]any{"Count": r.Number(f.EstimatedBreaths)}))
	line(r.Msg(config.TKeyFactSlept, map[string]any{"Count": r.Number(f.EstimatedHoursSlept)}))
	line(r.Msg(config.TKeyFactLeapYears, map[string]any{"Count": r.Number(int64(f.LeapYearsLived))}))
	line(r.Msg(config.TKeyFactNextLeapDay, map[string]any{
		"Days": r.Plural(config.TKeyDays, f.DaysUntilNextLeapDay, nil),
	}))

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteResp, err)
	}
	return nil
}

// Contacts writes one line per upcoming birthday followed by a summary.
// Entries are expected in feed order (soonest first).
func (r *Renderer) Contacts(w io.Writer, entries []feed.Entry) error {
	var b strings.Builder
	today := 0

	for _, e := range entries {
		when := r.Msg(config.TKeyToday, nil)
		if e.IsToday() {
			today++
		} else {
			when = r.Msg(config.TKeyInDays, map[string]any{
				"Days": r.Plural(config.TKeyDays, int64(e.DaysUntil), nil),
			})
		}

		data := map[string]any{
			"Date": e.NextBirthday.String(),
			"Name": e.Name,
			"Days": when,
		}
		key := config.TKeyContactNoYear
		if e.YearKnown {
			key = config.TKeyContactLine
			data["Age"] = e.AgeNext
		}
		b.WriteString(r.Msg(key, data))
		b.WriteByte('\n')
	}

	b.WriteString(r.Plural(config.TKeyContactsSummary, int64(len(entries)), map[string]any{"Today": today}))
	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteResp, err)
	}
	return nil
}

// EventSummary titles a birthday event. It matches feed.Generator.FormatSummary.
func (r *Renderer) EventSummary(name string, age int, yearKnown bool) string {
	var key string
	data := map[string]any{"Name": name}

	switch {
	case !yearKnown:
		key = config.TKeyEvtSummary
	case age == 0:
		key = config.TKeyEvtSummaryBirth
	default:
		key = config.TKeyEvtSummaryAge
		data["Age"] = age
	}

	msg := r.Msg(key, data)
	if msg != key {
		return msg
	}

	switch key {
	case config.TKeyEvtSummaryBirth:
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	case config.TKeyEvtSummaryAge:
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	default:
		return fmt.Sprintf(config.FallbackSummary, name)
	}
}

// MilestoneSummary titles a milestone event. It matches feed.Generator.FormatMilestone.
func (r *Renderer) MilestoneSummary(name string, m engine.Milestone) string {
	msg := r.Msg(config.TKeyEvtMilestone, map[string]any{
		"Name":  name,
		"Age":   m.Age,
		"Label": m.Label,
		"Emoji": m.Emoji,
	})
	if msg == config.TKeyEvtMilestone {
		return fmt.Sprintf(config.FallbackSummaryMilestone, name, m.Age, m.Label)
	}
	return msg
}
