package main

import (
	"fmt"
	"time"
)

const isoLayout = "2006-01-02"

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// toISODate formats t as YYYY-MM-DD using t's own calendar fields. Callers pass
// local times; nothing here converts to UTC.
func toISODate(t time.Time) string {
	return t.Format(isoLayout)
}

// parseISODate parses YYYY-MM-DD as local midnight. Parsing as UTC midnight
// would shift the weekday for zones behind UTC.
func parseISODate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(isoLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// localToday returns today's date in the server's local zone.
func localToday() string {
	return toISODate(time.Now())
}

// startOfWeekMonday returns the Monday on or before isoDate. Weekday index
// 0(Sun)..6(Sat) maps to (dow+6)%7 days back, so Monday is 0 and Sunday is 6.
// AddDate keeps month/year boundaries and DST transitions on calendar days.
func startOfWeekMonday(isoDate string) (time.Time, error) {
	d, err := parseISODate(isoDate)
	if err != nil {
		return time.Time{}, err
	}
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset), nil
}

// enumerateDays returns count consecutive ISO dates beginning at start.
func enumerateDays(start time.Time, count int) []string {
	if count <= 0 {
		return []string{}
	}
	days := make([]string, count)
	for i := range count {
		days[i] = toISODate(start.AddDate(0, 0, i))
	}
	return days
}

// dayLabel renders "Mon 01/02" for display. Unparseable input is returned as is.
func dayLabel(isoDate string) string {
	d, err := parseISODate(isoDate)
	if err != nil {
		return isoDate
	}
	return fmt.Sprintf("%s %02d/%02d", weekdayLabels[d.Weekday()], int(d.Month()), d.Day())
}
