package workschedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/service-order-scheduler/internal/recurrence"
)

var (
	// ErrInvalidClock indicates a time-of-day value that is not HH:MM (optionally with seconds).
	ErrInvalidClock = errors.New("workschedule: time must be HH:MM")
	// ErrInvalidSlot indicates a slot that is not "HH:MM-HH:MM".
	ErrInvalidSlot = errors.New("workschedule: slot must be HH:MM-HH:MM")
	// ErrSlotOrder indicates a slot whose end does not come after its start.
	ErrSlotOrder = errors.New("workschedule: slot end must be after start")
)

// Slot is one working interval within a day.
type Slot struct {
	Start string
	End   string
}

func (s Slot) String() string {
	return s.Start + "-" + s.End
}

// ParseClock parses "HH:MM" or "HH:MM:SS" and returns minutes since midnight.
func ParseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	for _, part := range parts {
		if len(part) != 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
		}
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	if len(parts) == 3 {
		seconds, err := strconv.Atoi(parts[2])
		if err != nil || seconds < 0 || seconds > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
		}
	}
	return hours*60 + minutes, nil
}

// NormalizeClock trims a backend time such as "08:00:00" to "08:00".
// Values that do not parse are returned unchanged.
func NormalizeClock(value string) string {
	trimmed := strings.TrimSpace(value)
	if _, err := ParseClock(trimmed); err != nil {
		return value
	}
	return trimmed[:5]
}

// ParseSlot parses a "HH:MM-HH:MM" slot. Spaces around either side are ignored.
func ParseSlot(value string) (Slot, error) {
	start, end, found := strings.Cut(value, "-")
	if !found {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, value)
	}
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if len(start) != 5 || len(end) != 5 {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, value)
	}

	startMinutes, err := ParseClock(start)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, value)
	}
	endMinutes, err := ParseClock(end)
	if err != nil {
		return Slot{}, fmt.Errorf("%w: %q", ErrInvalidSlot, value)
	}
	if endMinutes <= startMinutes {
		return Slot{}, fmt.Errorf("%w: %q", ErrSlotOrder, value)
	}
	return Slot{Start: start, End: end}, nil
}

// Validate checks every slot of the schedule and returns field keyed messages,
// e.g. "work_schedule.seg[0]". An empty result means the schedule is valid.
// Keys outside the weekday table are kept as they are; only their slots are checked.
func Validate(s Schedule) map[string]string {
	problems := make(map[string]string)
	for key, slots := range s {
		field := "work_schedule." + key
		for i, raw := range slots {
			if _, err := ParseSlot(raw); err != nil {
				msg := "time slot must be HH:MM-HH:MM"
				if errors.Is(err, ErrSlotOrder) {
					msg = "slot end must be after start"
				}
				problems[fmt.Sprintf("%s[%d]", field, i)] = msg
			}
		}
	}
	return problems
}

// Normalize returns a copy with weekday keys lower-cased and slot text canonicalized.
// Slots that do not parse are kept verbatim so validation can still report them.
// Keys differing only in case are merged in sorted key order.
func Normalize(s Schedule) Schedule {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(Schedule, len(s))
	for _, key := range keys {
		slots := s[key]
		normalizedKey := strings.TrimSpace(key)
		if _, ok := recurrence.ParseKey(normalizedKey); ok {
			normalizedKey = strings.ToLower(normalizedKey)
		}
		list := make([]string, 0, len(slots))
		for _, raw := range slots {
			if slot, err := ParseSlot(raw); err == nil {
				list = append(list, slot.String())
				continue
			}
			list = append(list, raw)
		}
		if existing, ok := out[normalizedKey]; ok {
			list = append(existing, list...)
		}
		out[normalizedKey] = list
	}
	return out
}
