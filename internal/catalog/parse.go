package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseSalary reads a plain numeric salary. Anything else ("Not specified",
// "Rp 5 – 7 jt", "") is treated as absent.
func ParseSalary(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02/01/2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var (
	relativeDate = regexp.MustCompile(`^(\d+)\s*\+?\s*(menit|jam|hari|minggu|bulan|m|h|d|w|mo|mins?|minutes?|hours?|days?|weeks?|months?)\s*(yang lalu|lalu|ago)?$`)
	datePrefix   = regexp.MustCompile(`^(diposting|posted|listed)\s+(pada\s+|on\s+)?`)
)

var relativeUnits = map[string]time.Duration{
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute, "menit": time.Minute,
	"h": time.Hour, "hour": time.Hour, "hours": time.Hour, "jam": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour, "hari": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour, "minggu": 7 * 24 * time.Hour,
	"mo": 30 * 24 * time.Hour, "month": 30 * 24 * time.Hour, "months": 30 * 24 * time.Hour, "bulan": 30 * 24 * time.Hour,
}

// ParsePostedDate reads absolute dates in common layouts and the relative
// forms JobStreet prints ("3 hari yang lalu", "30+ days ago", "5d ago"),
// resolved against now. Unrecognised text is treated as absent.
func ParsePostedDate(raw string, now time.Time) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	s := strings.ToLower(trimmed)
	if loc := datePrefix.FindStringIndex(s); loc != nil {
		// the prefix is ASCII, so byte offsets agree between both strings
		trimmed = trimmed[loc[1]:]
		s = s[loc[1]:]
	}
	switch s {
	case "today", "hari ini", "baru saja", "just now":
		return now, true
	case "yesterday", "kemarin":
		return now.Add(-24 * time.Hour), true
	}
	if m := relativeDate.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		return now.Add(-time.Duration(n) * relativeUnits[m[2]]), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
