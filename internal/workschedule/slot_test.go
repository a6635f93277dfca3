package workschedule

import (
	"errors"
	"testing"
)

func TestParseSlot(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input   string
		want    Slot
		wantErr error
	}{
		{input: "08:00-12:00", want: Slot{Start: "08:00", End: "12:00"}},
		{input: " 13:30 - 17:45 ", want: Slot{Start: "13:30", End: "17:45"}},
		{input: "08:00", wantErr: ErrInvalidSlot},
		{input: "8:00-12:00", wantErr: ErrInvalidSlot},
		{input: "24:00-25:00", wantErr: ErrInvalidSlot},
		{input: "12:00-08:00", wantErr: ErrSlotOrder},
		{input: "10:00-10:00", wantErr: ErrSlotOrder},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSlot(tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("ParseSlot(%q) error = %v, want %v", tc.input, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ParseSlot(%q) = %+v, want %+v", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeClock(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"08:00:00": "08:00",
		"17:30":    "17:30",
		" 09:15 ":  "09:15",
		"garbage":  "garbage",
		"25:00:00": "25:00:00",
	}
	for input, want := range cases {
		if got := NormalizeClock(input); got != want {
			t.Fatalf("NormalizeClock(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseClock(t *testing.T) {
	t.Parallel()

	minutes, err := ParseClock("08:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if minutes != 510 {
		t.Fatalf("ParseClock = %d, want 510", minutes)
	}
	if _, err := ParseClock("8:30"); !errors.Is(err, ErrInvalidClock) {
		t.Fatalf("expected ErrInvalidClock, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	problems := Validate(Schedule{
		"seg":     {"08:00-12:00", "bad"},
		"ter":     {"14:00-13:00"},
		"xyz":     {"08:00-09:00"},
		"feriado": {"nope"},
	})

	if len(problems) != 3 {
		t.Fatalf("expected 3 problems, got %v", problems)
	}
	if problems["work_schedule.seg[1]"] == "" {
		t.Fatalf("missing seg[1] problem: %v", problems)
	}
	if problems["work_schedule.ter[0]"] != "slot end must be after start" {
		t.Fatalf("unexpected ter[0] message: %v", problems)
	}
	if _, ok := problems["work_schedule.xyz"]; ok {
		t.Fatalf("keys outside the weekday table must be accepted: %v", problems)
	}
	if problems["work_schedule.feriado[0]"] != "time slot must be HH:MM-HH:MM" {
		t.Fatalf("slots under extra keys are still checked: %v", problems)
	}

	if got := Validate(Schedule{"qua": {"09:00-10:00"}}); len(got) != 0 {
		t.Fatalf("expected valid schedule, got %v", got)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	got := Normalize(Schedule{" SEG ": {" 08:00 - 12:00", "bad"}})
	slots, ok := got["seg"]
	if !ok {
		t.Fatalf("expected lower-cased key, got %v", got)
	}
	if len(slots) != 2 || slots[0] != "08:00-12:00" || slots[1] != "bad" {
		t.Fatalf("unexpected slots %v", slots)
	}
}

func TestNormalizeMergesCaseVariantsInKeyOrder(t *testing.T) {
	t.Parallel()

	for i := 0; i < 20; i++ {
		got := Normalize(Schedule{
			"seg":     {"13:00-17:00"},
			"SEG":     {"08:00-12:00"},
			"Feriado": {"09:00-10:00"},
			"dom":     {},
		})
		want := []string{"08:00-12:00", "13:00-17:00"}
		if len(got["seg"]) != 2 || got["seg"][0] != want[0] || got["seg"][1] != want[1] {
			t.Fatalf("run %d: expected %v, got %v", i, want, got["seg"])
		}
		if len(got["Feriado"]) != 1 {
			t.Fatalf("run %d: extra key should be kept verbatim, got %v", i, got)
		}
		if days, ok := got["dom"]; !ok || days == nil {
			t.Fatalf("run %d: an empty day must stay present, got %v", i, got)
		}
	}
}
