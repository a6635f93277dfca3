package recurrence

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Weekday identifies a day of the recurring week. The numbering is fixed:
// stored service_days integers are only meaningful under it.
type Weekday int

const (
	// Sunday is weekday index 0.
	Sunday Weekday = iota
	// Monday is weekday index 1.
	Monday
	// Tuesday is weekday index 2.
	Tuesday
	// Wednesday is weekday index 3.
	Wednesday
	// Thursday is weekday index 4.
	Thursday
	// Friday is weekday index 5.
	Friday
	// Saturday is weekday index 6.
	Saturday
)

// DaysPerWeek is the number of entries in the weekday table.
const DaysPerWeek = 7

// InvalidDayLabel is displayed for indices outside the weekday table.
const InvalidDayLabel = "Dia inválido"

// Day describes one entry of the weekday table.
type Day struct {
	Weekday Weekday
	Key     string
	Label   string
	Short   string
}

// Days is the single source of truth for weekday keys and labels, ordered by index.
var Days = [DaysPerWeek]Day{
	{Weekday: Sunday, Key: "dom", Label: "Domingo", Short: "Domingo"},
	{Weekday: Monday, Key: "seg", Label: "Segunda-feira", Short: "Segunda"},
	{Weekday: Tuesday, Key: "ter", Label: "Terça-feira", Short: "Terça"},
	{Weekday: Wednesday, Key: "qua", Label: "Quarta-feira", Short: "Quarta"},
	{Weekday: Thursday, Key: "qui", Label: "Quinta-feira", Short: "Quinta"},
	{Weekday: Friday, Key: "sex", Label: "Sexta-feira", Short: "Sexta"},
	{Weekday: Saturday, Key: "sab", Label: "Sábado", Short: "Sábado"},
}

var (
	// ErrInvalidWeekday indicates a weekday index outside 0..6.
	ErrInvalidWeekday = errors.New("recurrence: weekday must be between 0 and 6")
	// ErrNoServiceDays indicates a recurrence without any weekday selected.
	ErrNoServiceDays = errors.New("recurrence: at least one service day is required")
)

// Valid reports whether d indexes the weekday table.
func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// Key returns the short weekday code (dom, seg, ...) or an empty string when invalid.
func (d Weekday) Key() string {
	if !d.Valid() {
		return ""
	}
	return Days[d].Key
}

// Label returns the long Portuguese label for the weekday.
func (d Weekday) Label() string {
	if !d.Valid() {
		return InvalidDayLabel
	}
	return Days[d].Label
}

// ShortLabel returns the compact label used in dashboards.
func (d Weekday) ShortLabel() string {
	if !d.Valid() {
		return InvalidDayLabel
	}
	return Days[d].Short
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return Days[d].Key
}

// ParseKey resolves a weekday code such as "seg". Matching ignores case and surrounding spaces.
func ParseKey(key string) (Weekday, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, day := range Days {
		if day.Key == key {
			return day.Weekday, true
		}
	}
	return 0, false
}

// FromTime maps a time to its weekday index.
func FromTime(t time.Time) Weekday {
	return Weekday(t.Weekday())
}

// Contains reports whether days includes d.
func Contains(days []int, d Weekday) bool {
	for _, day := range days {
		if Weekday(day) == d {
			return true
		}
	}
	return false
}

// NormalizeServiceDays validates, deduplicates and sorts a service day selection.
func NormalizeServiceDays(days []int) ([]int, error) {
	if len(days) == 0 {
		return nil, ErrNoServiceDays
	}
	seen := make(map[int]struct{}, len(days))
	out := make([]int, 0, len(days))
	for _, day := range days {
		if !Weekday(day).Valid() {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidWeekday, day)
		}
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		out = append(out, day)
	}
	sort.Ints(out)
	return out, nil
}

// Labels maps service day indices to their long labels, preserving input order.
func Labels(days []int) []string {
	if len(days) == 0 {
		return nil
	}
	out := make([]string, 0, len(days))
	for _, day := range days {
		out = append(out, Weekday(day).Label())
	}
	return out
}

// WeekDates returns the calendar date of each weekday column for the Sunday-start
// week containing reference, at midnight in reference's location.
func WeekDates(reference time.Time) [DaysPerWeek]time.Time {
	y, m, d := reference.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, reference.Location())
	start := midnight.AddDate(0, 0, -int(midnight.Weekday()))

	var dates [DaysPerWeek]time.Time
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}
