package storage

import "time"

// DayOfYearWindow returns the inclusive day-of-year bounds for birthdays
// falling within the next days calendar days starting at today, and whether
// the window wraps the year boundary (crosses Dec 31 into January).
// Birth year is ignored entirely; the window is [today, today+days-1].
func DayOfYearWindow(today time.Time, days int) (start, end int, wraps bool) {
	start = today.YearDay()
	end = today.AddDate(0, 0, days-1).YearDay()
	return start, end, end < start
}

// BirthdayInWindow reports whether a birthday's day-of-year falls inside
// the window anchored at today. days <= 0 disables the filter and never
// matches.
func BirthdayInWindow(birthday, today time.Time, days int) bool {
	if days <= 0 {
		return false
	}
	start, end, wraps := DayOfYearWindow(today, days)
	doy := birthday.YearDay()
	if wraps {
		return doy >= start || doy <= end
	}
	return doy >= start && doy <= end
}
