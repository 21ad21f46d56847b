package evaluator

import (
	"time"

	"marketops/models"
)

// Result is the outcome of evaluating a marketplace's operating window at a
// point in time.
type Result struct {
	Status    models.MarketplaceStatusValue
	LocalTime string // local wall-clock "HH:MM:SS" at evaluation
	// NextOpening is the absolute instant the marketplace next opens; nil
	// while it is open.
	NextOpening *time.Time
	Message     string
}

const clockLayout = "15:04:05"

// ParseClock parses a wall-clock "HH:MM:SS" string into seconds since
// midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*3600 + t.Minute()*60 + t.Second(), nil
}

// isoWeekday returns the day of week with the 1=Monday..7=Sunday convention.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func isOperationalDay(t time.Time, hours *models.OperationalHours) bool {
	if isoWeekday(t) >= 6 && !hours.WeekendOperational {
		return false
	}
	return true
}

// Evaluate decides whether a marketplace is open at nowUTC given its timezone
// and operating window. It is pure and total: malformed configuration degrades
// to the conservative operational default instead of returning an error, so a
// configuration gap never breaks the public status page.
//
// Weekends close the marketplace outright when weekend_operational is false;
// otherwise the window test is inclusive of both bounds. When closed, the next
// opening is the start time on the next valid local day, re-localized through
// the country's timezone so DST transitions land on the correct instant.
func Evaluate(nowUTC time.Time, loc *time.Location, hours *models.OperationalHours) Result {
	if loc == nil || hours == nil {
		return defaultResult(nowUTC)
	}

	start, err := ParseClock(hours.OperationalStart)
	if err != nil {
		return defaultResult(nowUTC)
	}
	end, err := ParseClock(hours.OperationalEnd)
	if err != nil {
		return defaultResult(nowUTC)
	}

	local := nowUTC.In(loc)
	localClock := local.Hour()*3600 + local.Minute()*60 + local.Second()

	open := isOperationalDay(local, hours) && localClock >= start && localClock <= end
	if open {
		return Result{
			Status:    models.StatusOperational,
			LocalTime: local.Format(clockLayout),
			Message:   models.MessageOperational,
		}
	}

	next := nextOpening(local, localClock, end, hours, loc)
	return Result{
		Status:      models.StatusNonOperational,
		LocalTime:   local.Format(clockLayout),
		NextOpening: &next,
		Message:     models.MessageClosedPrefix + hours.OperationalStart,
	}
}

// nextOpening finds the start-of-window instant on the next valid local day.
// The search is bounded to a week since the pattern repeats weekly.
func nextOpening(local time.Time, localClock, end int, hours *models.OperationalHours, loc *time.Location) time.Time {
	day := local
	if localClock > end {
		// Past today's window, start looking tomorrow
		day = day.AddDate(0, 0, 1)
	}
	for i := 0; i < 7; i++ {
		if isOperationalDay(day, hours) {
			break
		}
		day = day.AddDate(0, 0, 1)
	}

	startOfDay, _ := time.Parse(clockLayout, hours.OperationalStart)
	// Rebuild the wall-clock instant in the country's zone rather than adding
	// durations, so a DST shift between now and the opening day is respected.
	return time.Date(day.Year(), day.Month(), day.Day(),
		startOfDay.Hour(), startOfDay.Minute(), startOfDay.Second(), 0, loc)
}

func defaultResult(nowUTC time.Time) Result {
	return Result{
		Status:    models.StatusOperational,
		LocalTime: nowUTC.UTC().Format(clockLayout),
		Message:   models.MessageOperational,
	}
}
