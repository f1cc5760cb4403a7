package model

import (
	"strconv"
	"strings"
	"time"
)

// BirthDate keeps the day/month/year parts separately because directory
// profiles often hide the year. Zero means the part is unknown.
type BirthDate struct {
	Day   int
	Month int
	Year  int
}

// ParseBirthDate decodes the directory birth date format "D.M.YYYY" or "D.M".
func ParseBirthDate(raw string) BirthDate {
	var b BirthDate
	parts := strings.Split(strings.TrimSpace(raw), ".")
	if len(parts) > 0 {
		b.Day, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		b.Month, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 {
		b.Year, _ = strconv.Atoi(parts[2])
	}
	return b
}

func (b BirthDate) Known() bool {
	return b.Day > 0 && b.Month > 0
}

// Age returns full years at the given moment, or 0 when the year is unknown.
func (b BirthDate) Age(now time.Time) int {
	if b.Year == 0 || !b.Known() {
		return 0
	}
	age := now.Year() - b.Year
	if int(now.Month()) < b.Month || (int(now.Month()) == b.Month && now.Day() < b.Day) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
