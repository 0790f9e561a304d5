package timeslot

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	twelveHour = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*(AM|PM)$`)
	twentyFour = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// ParseMinutes converts a slot label ("9:30 AM", "12 PM", "09:30") into
// minutes since midnight. The boolean is false when the label has no
// recognizable shape.
func ParseMinutes(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if m := twelveHour.FindStringSubmatch(value); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour < 1 || hour > 12 || minute > 59 {
			return 0, false
		}

		// 12 AM is midnight, 12 PM stays noon
		hour = hour % 12
		if strings.EqualFold(m[3], "PM") {
			hour += 12
		}
		return hour*60 + minute, true
	}

	if m := twentyFour.FindStringSubmatch(value); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return 0, false
		}
		return hour*60 + minute, true
	}

	return 0, false
}

// MinutesOfDay returns t's minutes since midnight in t's own location.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Filter drops the slots that already passed. selected is compared by
// calendar day in now's location; on today only entries strictly later
// than now survive, and entries that cannot be parsed are kept.
func Filter(times []string, selected, now time.Time) []string {
	day := StartOfDay(selected.In(now.Location()))
	today := StartOfDay(now)

	if day.Before(today) {
		return []string{}
	}
	if day.After(today) {
		return times
	}

	cutoff := MinutesOfDay(now)
	out := make([]string, 0, len(times))
	for _, t := range times {
		minutes, ok := ParseMinutes(t)
		if !ok || minutes > cutoff {
			out = append(out, t)
		}
	}
	return out
}

// Sort returns a copy ordered by time of day. Unparseable labels count as
// minute 0.
func Sort(times []string) []string {
	out := make([]string, len(times))
	copy(out, times)

	sort.SliceStable(out, func(i, j int) bool {
		a, _ := ParseMinutes(out[i])
		b, _ := ParseMinutes(out[j])
		return a < b
	})
	return out
}

func Contains(times []string, value string) bool {
	for _, t := range times {
		if t == value {
			return true
		}
	}
	return false
}
