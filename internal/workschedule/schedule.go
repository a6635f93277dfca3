// Package workschedule models an employee's weekly working hours and converts
// them between the decoded map form and the textual JSON form stored by the backend.
package workschedule

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/example/service-order-scheduler/internal/recurrence"
)

// InvalidFormatLabel is shown in place of a schedule that could not be decoded.
const InvalidFormatLabel = "Formato inválido"

// Schedule maps a weekday key (dom, seg, ...) to its "HH:MM-HH:MM" slots.
type Schedule map[string][]string

// Decode accepts a schedule received either as text or as an already decoded
// structure. Malformed input yields an empty schedule and ok=false; nothing panics.
// Empty text and JSON null decode to an empty schedule with ok=true.
func Decode(raw any) (Schedule, bool) {
	switch v := raw.(type) {
	case nil:
		return Schedule{}, true
	case Schedule:
		if v == nil {
			return Schedule{}, true
		}
		return v, true
	case map[string][]string:
		if v == nil {
			return Schedule{}, true
		}
		return Schedule(v), true
	case map[string]any:
		return fromGeneric(v)
	case string:
		return decodeText([]byte(v))
	case []byte:
		return decodeText(v)
	case json.RawMessage:
		return decodeText(v)
	default:
		return Schedule{}, false
	}
}

func decodeText(data []byte) (Schedule, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Schedule{}, true
	}

	// Some backends double-encode the column, sending a JSON string whose value is the schedule text.
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return Schedule{}, false
		}
		return decodeText([]byte(inner))
	}

	var out Schedule
	if err := json.Unmarshal(data, &out); err != nil {
		return Schedule{}, false
	}
	if out == nil {
		return Schedule{}, true
	}
	return out, true
}

func fromGeneric(in map[string]any) (Schedule, bool) {
	out := make(Schedule, len(in))
	for key, value := range in {
		switch slots := value.(type) {
		case nil:
			out[key] = nil
		case []string:
			out[key] = slots
		case []any:
			list := make([]string, 0, len(slots))
			for _, slot := range slots {
				s, ok := slot.(string)
				if !ok {
					return Schedule{}, false
				}
				list = append(list, s)
			}
			out[key] = list
		default:
			return Schedule{}, false
		}
	}
	return out, true
}

// Encode renders the schedule as JSON text. Pretty output uses two-space indentation.
// Keys are emitted in sorted order, so encoding is deterministic.
func Encode(s Schedule, pretty bool) (string, error) {
	if s == nil {
		s = Schedule{}
	}
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = json.Marshal(s)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Display renders the schedule for read-only views, falling back to the invalid label.
func Display(raw any) string {
	s, ok := Decode(raw)
	if !ok {
		return InvalidFormatLabel
	}
	text, err := Encode(s, true)
	if err != nil {
		return InvalidFormatLabel
	}
	return text
}

// Keys returns the schedule's day keys: recognized weekdays in table order first,
// followed by any unrecognized keys in lexical order.
func Keys(s Schedule) []string {
	known := make([]string, 0, len(s))
	var unknown []string
	for _, day := range recurrence.Days {
		if _, ok := s[day.Key]; ok {
			known = append(known, day.Key)
		}
	}
	for key := range s {
		if _, ok := recurrence.ParseKey(key); ok && key == strings.ToLower(strings.TrimSpace(key)) {
			continue
		}
		unknown = append(unknown, key)
	}
	sort.Strings(unknown)
	return append(known, unknown...)
}

// DayLabel resolves a schedule key to its long weekday label. Unknown keys are upper-cased.
func DayLabel(key string) string {
	if day, ok := recurrence.ParseKey(key); ok {
		return day.Label()
	}
	return strings.ToUpper(key)
}
