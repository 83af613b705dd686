// Package datetext rewrites the human-written date expressions found in the
// publisher's announcement prose into Discord timestamp markers.
package datetext

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The feed mixes two dialects: a single instant ("Jan 5, 2026 at 10:00AM
// (PST)") and a same-day list of showtimes ("Jan 5: 10:00AM JST, 11:00AM
// JST"). Zone abbreviations are captured but never trusted; conversion
// always assumes the configured source timezone.
var (
	singlePattern = regexp.MustCompile(
		`(?P<month>[A-Z][a-z]+)\.? (?P<day>\d{1,2})[,: ]? ?(?P<year>\d{4})?(?:[.,]| at| from) ?(?:(?P<hour>\d{1,2}):(?P<minute>\d{2})(?P<meridiem>[AP]M)?(?: \(?(?P<zone>[A-Z]{3,4})\)?)?)?`)
	listPattern = regexp.MustCompile(
		`(?P<month>[A-Z][a-z]+)\.? (?P<day>\d{1,2}): (?P<times>(?:\d{1,2}:\d{2}(?:[AP]M)?(?: \(?[A-Z]{3,4}\)?)?,? ?)+)`)
	timePattern = regexp.MustCompile(
		`(?P<hour>\d{1,2}):(?P<minute>\d{2})(?P<meridiem>[AP]M)?(?: \(?[A-Z]{3,4}\)?)?,? ?`)
)

var months = map[string]time.Month{
	"Jan": time.January,
	"Feb": time.February,
	"Mar": time.March,
	"Apr": time.April,
	"May": time.May,
	"Jun": time.June,
	"Jul": time.July,
	"Aug": time.August,
	"Sep": time.September,
	"Oct": time.October,
	"Nov": time.November,
	"Dec": time.December,
}

// Normalizer replaces date expressions with timestamp markers. Matches whose
// fields do not form a valid calendar date are left verbatim, so a failed
// rewrite is always recoverable as the original text.
type Normalizer struct {
	loc *time.Location
	now func() time.Time
}

// New builds a normalizer anchored to the publisher's source timezone.
func New(loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc, now: time.Now}
}

// Normalize rewrites every recognized date expression in text. Markers match
// neither dialect pattern, so running Normalize twice is a no-op.
func (n *Normalizer) Normalize(text string) string {
	text = replaceAllGroups(singlePattern, text, n.rewriteSingle)
	text = replaceAllGroups(listPattern, text, n.rewriteList)
	return text
}

type groups map[string]string

// replaceAllGroups runs rewrite over each match with its named captures;
// empty captures are absent from the map.
func replaceAllGroups(re *regexp.Regexp, text string, rewrite func(match string, g groups) string) string {
	names := re.SubexpNames()
	return re.ReplaceAllStringFunc(text, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if parts == nil {
			return match
		}
		g := make(groups, len(names))
		for i, name := range names {
			if name != "" && parts[i] != "" {
				g[name] = parts[i]
			}
		}
		return rewrite(match, g)
	})
}

func (n *Normalizer) rewriteSingle(match string, g groups) string {
	month, ok := monthByName(g["month"])
	if !ok {
		return match
	}
	day, err := strconv.Atoi(g["day"])
	if err != nil {
		return match
	}

	year := n.now().In(n.loc).Year()
	if v, ok := g["year"]; ok {
		year, _ = strconv.Atoi(v)
	}
	hour, minute := 0, 0
	if v, ok := g["hour"]; ok {
		hour, _ = strconv.Atoi(v)
	}
	if v, ok := g["minute"]; ok {
		minute, _ = strconv.Atoi(v)
	}
	hour = toTwentyFourHour(hour, g["meridiem"])

	instant, ok := n.instant(year, month, day, hour, minute)
	if !ok {
		return match
	}
	return marker(instant, "f")
}

// rewriteList keeps the literal "Month Day:" header and replaces each listed
// time with a time-only marker, comma-joined.
func (n *Normalizer) rewriteList(match string, g groups) string {
	month, ok := monthByName(g["month"])
	if !ok {
		return match
	}
	day, err := strconv.Atoi(g["day"])
	if err != nil {
		return match
	}
	year := n.now().In(n.loc).Year()

	names := timePattern.SubexpNames()
	var markers []string
	for _, parts := range timePattern.FindAllStringSubmatch(g["times"], -1) {
		hour, minute, meridiem := 0, 0, ""
		for i, name := range names {
			switch name {
			case "hour":
				hour, _ = strconv.Atoi(parts[i])
			case "minute":
				minute, _ = strconv.Atoi(parts[i])
			case "meridiem":
				meridiem = parts[i]
			}
		}
		instant, ok := n.instant(year, month, day, toTwentyFourHour(hour, meridiem), minute)
		if !ok {
			return match
		}
		markers = append(markers, marker(instant, "t"))
	}
	if len(markers) == 0 {
		return match
	}
	return fmt.Sprintf("%s %d: %s", g["month"], day, strings.Join(markers, ", "))
}

// toTwentyFourHour adds 12 for afternoon times written in 12-hour form.
// 12AM is left at hour 12; the feed has not been observed to use it.
func toTwentyFourHour(hour int, meridiem string) int {
	if meridiem == "PM" && hour < 12 {
		return hour + 12
	}
	return hour
}

// instant builds the point in time in the source timezone, rejecting field
// combinations the calendar would silently roll over (Jan 32 must not
// become Feb 1).
func (n *Normalizer) instant(year int, month time.Month, day, hour, minute int) (time.Time, bool) {
	if hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, hour, minute, 0, 0, n.loc)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func monthByName(name string) (time.Month, bool) {
	if len(name) < 3 {
		return 0, false
	}
	month, ok := months[name[:3]]
	return month, ok
}

// marker renders an absolute instant with a requested display style:
// "f" full date and time, "t" time only, "R" relative.
func marker(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}
