package model

import "strings"

// Day is a weekday index, Monday = 1 through Sunday = 7.
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// DaySet is a bitmask of weekdays. The zero value means "no meeting days",
// which is how asynchronous sections are represented.
type DaySet uint8

func (s DaySet) Has(d Day) bool {
	return s&(1<<uint(d-1)) != 0
}

func (s DaySet) Add(d Day) DaySet {
	return s | (1 << uint(d-1))
}

// Overlaps reports whether the two sets share at least one day.
func (s DaySet) Overlaps(o DaySet) bool {
	return s&o != 0
}

func (s DaySet) Empty() bool {
	return s == 0
}

// Days lists the members in weekday order.
func (s DaySet) Days() []Day {
	var days []Day
	for d := Monday; d <= Sunday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

var dayNames = map[string]Day{
	"MON": Monday, "MONDAY": Monday,
	"TUE": Tuesday, "TUES": Tuesday, "TUESDAY": Tuesday,
	"WED": Wednesday, "WEDNESDAY": Wednesday,
	"THU": Thursday, "THUR": Thursday, "THURS": Thursday, "THURSDAY": Thursday,
	"FRI": Friday, "FRIDAY": Friday,
	"SAT": Saturday, "SATURDAY": Saturday,
	"SUN": Sunday, "SUNDAY": Sunday,
}

var dayLabels = map[Day]string{
	Monday:    "Mon",
	Tuesday:   "Tue",
	Wednesday: "Wed",
	Thursday:  "Thu",
	Friday:    "Fri",
	Saturday:  "Sat",
	Sunday:    "Sun",
}

// ParseDay accepts common day spellings ("Mon", "monday", "MONDAY").
func ParseDay(raw string) (Day, bool) {
	d, ok := dayNames[strings.ToUpper(strings.TrimSpace(raw))]
	return d, ok
}

// ParseDaySet folds a list of day strings into a set. The second return
// value names the first entry that failed to parse.
func ParseDaySet(raw []string) (DaySet, string, bool) {
	var set DaySet
	for _, entry := range raw {
		d, ok := ParseDay(entry)
		if !ok {
			return 0, entry, false
		}
		set = set.Add(d)
	}
	return set, "", true
}

func (d Day) String() string {
	if label, ok := dayLabels[d]; ok {
		return label
	}
	return "?"
}
