// Package calendar generates add-to-calendar artifacts for the event:
// a Google Calendar prefill link and an iCalendar (.ics) file.
package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Event is the calendar view of the seminar.
type Event struct {
	Title       string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

const stampLayout = "20060102T150405Z"

func stamp(t time.Time) string { return t.UTC().Format(stampLayout) }

// GoogleLink returns a calendar.google.com render URL that prefills the
// event, suitable for embedding in confirmation emails.
func GoogleLink(e Event) string {
	v := url.Values{}
	v.Set("action", "TEMPLATE")
	v.Set("text", e.Title)
	v.Set("dates", stamp(e.Start)+"/"+stamp(e.End))
	v.Set("details", e.Description)
	v.Set("location", e.Location)
	return "https://calendar.google.com/calendar/render?" + v.Encode()
}

// ICS returns the event as an iCalendar document. Lines are CRLF-joined
// per RFC 5545.
func ICS(e Event, uid string) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Dexabrain//" + e.Title + "//EN",
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:%s", uid),
		"DTSTAMP:" + stamp(time.Now()),
		"DTSTART:" + stamp(e.Start),
		"DTEND:" + stamp(e.End),
		"SUMMARY:" + escape(e.Title),
		"DESCRIPTION:" + escape(e.Description),
		"LOCATION:" + escape(e.Location),
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n")
}

// escape backslash-escapes the characters RFC 5545 reserves in text values.
func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)
	return r.Replace(s)
}
