package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthNames = map[string]time.Month{
	"januari": time.January, "jan": time.January,
	"februari": time.February, "feb": time.February,
	"maret": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"mei":  time.May,
	"juni": time.June, "jun": time.June,
	"juli": time.July, "jul": time.July,
	"agustus": time.August, "agu": time.August, "agt": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"oktober": time.October, "okt": time.October,
	"november": time.November, "nov": time.November,
	"desember": time.December, "des": time.December,
}

var (
	slashDate    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	dayOfMonth   = regexp.MustCompile(`\b(?:tanggal|tgl)\s(\d{1,2})\b`)
	namedMonth   = regexp.MustCompile(`\b(?:(\d{1,2})\s)?([a-z]+)(?:\s(\d{4}))?\b`)
	relativeDays = []struct {
		phrase string
		days   int
	}{
		{"hari ini", 0},
		{"tadi", 0},
		{"kemarin lusa", -2},
		{"kemarin", -1},
		{"kmrn", -1},
		{"besok", 1},
		{"lusa", 2},
		{"minggu depan", 7},
		{"minggu lalu", -7},
	}
)

// ExtractDate finds a date expression in normalized text relative to now.
// When future is set, expressions without a year resolve to the next
// occurrence, which is what savings goals mean by "desember".
func ExtractDate(normalized string, now time.Time, future bool) (time.Time, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	padded := " " + normalized + " "

	switch {
	case strings.Contains(padded, " akhir tahun depan "):
		return endOfMonth(today.Year()+1, time.December, now.Location()), true
	case strings.Contains(padded, " akhir tahun "):
		return endOfMonth(today.Year(), time.December, now.Location()), true
	case strings.Contains(padded, " akhir bulan depan "):
		next := today.AddDate(0, 1, 1-today.Day())
		return endOfMonth(next.Year(), next.Month(), now.Location()), true
	case strings.Contains(padded, " akhir bulan "):
		return endOfMonth(today.Year(), today.Month(), now.Location()), true
	case strings.Contains(padded, " bulan depan "):
		next := today.AddDate(0, 1, 1-today.Day())
		return endOfMonth(next.Year(), next.Month(), now.Location()), true
	case strings.Contains(padded, " tahun depan "):
		return endOfMonth(today.Year()+1, time.December, now.Location()), true
	}

	for _, r := range relativeDays {
		if strings.Contains(padded, " "+r.phrase+" ") {
			return today.AddDate(0, 0, r.days), true
		}
	}

	if m := slashDate.FindStringSubmatch(normalized); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := today.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		if t, ok := buildDate(year, time.Month(month), day, now.Location()); ok {
			if m[3] == "" {
				t = roll(t, today, future, 1, 0)
			}
			return t, true
		}
	}

	if m := dayOfMonth.FindStringSubmatch(normalized); m != nil {
		day, _ := strconv.Atoi(m[1])
		if t, ok := buildDate(today.Year(), today.Month(), day, now.Location()); ok {
			return roll(t, today, future, 0, 1), true
		}
	}

	for _, m := range namedMonth.FindAllStringSubmatch(normalized, -1) {
		month, found := monthNames[m[2]]
		if !found {
			continue
		}
		year := today.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		if m[1] == "" {
			t := endOfMonth(year, month, now.Location())
			if m[3] == "" {
				t = roll(t, today, future, 1, 0)
			}
			return t, true
		}
		day, _ := strconv.Atoi(m[1])
		if t, ok := buildDate(year, month, day, now.Location()); ok {
			if m[3] == "" {
				t = roll(t, today, future, 1, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

func buildDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Day() != day {
		// 31/2 and the like
		return time.Time{}, false
	}
	return t, true
}

func endOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
}

// roll moves t forward by the given years or months when a future date is
// wanted and t has already passed.
func roll(t, today time.Time, future bool, years, months int) time.Time {
	if future && t.Before(today) {
		return t.AddDate(years, months, 0)
	}
	return t
}
