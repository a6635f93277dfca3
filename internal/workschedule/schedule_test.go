package workschedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		raw    any
		want   Schedule
		wantOK bool
	}{
		{name: "nil", raw: nil, want: Schedule{}, wantOK: true},
		{name: "empty text", raw: "  ", want: Schedule{}, wantOK: true},
		{name: "json null", raw: "null", want: Schedule{}, wantOK: true},
		{name: "text object", raw: `{"seg":["08:00-12:00"]}`, want: Schedule{"seg": {"08:00-12:00"}}, wantOK: true},
		{name: "double encoded", raw: `"{\"ter\":[\"13:00-17:00\"]}"`, want: Schedule{"ter": {"13:00-17:00"}}, wantOK: true},
		{name: "bytes", raw: []byte(`{"qua":[]}`), want: Schedule{"qua": {}}, wantOK: true},
		{name: "raw message", raw: json.RawMessage(`{"sex":["09:00-10:00"]}`), want: Schedule{"sex": {"09:00-10:00"}}, wantOK: true},
		{name: "already decoded", raw: Schedule{"sab": {"08:00-09:00"}}, want: Schedule{"sab": {"08:00-09:00"}}, wantOK: true},
		{name: "plain map", raw: map[string][]string{"dom": {"10:00-11:00"}}, want: Schedule{"dom": {"10:00-11:00"}}, wantOK: true},
		{name: "generic map", raw: map[string]any{"seg": []any{"08:00-12:00"}}, want: Schedule{"seg": {"08:00-12:00"}}, wantOK: true},
		{name: "malformed text", raw: "{not json", want: Schedule{}, wantOK: false},
		{name: "wrong shape", raw: `{"seg":"08:00-12:00"}`, want: Schedule{}, wantOK: false},
		{name: "array", raw: `[]`, want: Schedule{}, wantOK: false},
		{name: "generic map with numbers", raw: map[string]any{"seg": []any{8}}, want: Schedule{}, wantOK: false},
		{name: "unsupported type", raw: 42, want: Schedule{}, wantOK: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Decode(tc.raw)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	original := Schedule{
		"seg": {"08:00-12:00", "13:00-17:00"},
		"qua": {},
		"xyz": {"01:00-02:00"},
	}

	for _, pretty := range []bool{false, true} {
		text, err := Encode(original, pretty)
		require.NoError(t, err)

		decoded, ok := Decode(text)
		require.True(t, ok)
		assert.Equal(t, original, decoded)
	}
}

func TestEncodeFormatting(t *testing.T) {
	t.Parallel()

	compact, err := Encode(Schedule{"seg": {"08:00-12:00"}}, false)
	require.NoError(t, err)
	assert.Equal(t, `{"seg":["08:00-12:00"]}`, compact)

	pretty, err := Encode(Schedule{"seg": {"08:00-12:00"}}, true)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"seg\": [\n    \"08:00-12:00\"\n  ]\n}", pretty)

	empty, err := Encode(nil, false)
	require.NoError(t, err)
	assert.Equal(t, "{}", empty)
}

func TestDisplay(t *testing.T) {
	t.Parallel()

	assert.Equal(t, InvalidFormatLabel, Display("{broken"))
	assert.Equal(t, "{}", Display(""))
}

func TestKeysAndLabels(t *testing.T) {
	t.Parallel()

	s := Schedule{"sex": nil, "zzz": nil, "seg": nil, "abc": nil}
	assert.Equal(t, []string{"seg", "sex", "abc", "zzz"}, Keys(s))

	assert.Equal(t, "Segunda-feira", DayLabel("seg"))
	assert.Equal(t, "Sábado", DayLabel("SAB"))
	assert.Equal(t, "FERIADO", DayLabel("feriado"))
}
