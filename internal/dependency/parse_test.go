package dependency

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected []MilestoneID
	}{
		{"nil", nil, []MilestoneID{}},
		{"empty string", "", []MilestoneID{}},
		{"json null", "null", []MilestoneID{}},
		{"not json", "not json", []MilestoneID{}},
		{"json object", `{"a":1}`, []MilestoneID{}},
		{"json number", `7`, []MilestoneID{}},
		{"json string", `"[1,2]"`, []MilestoneID{}},
		{"empty array", `[]`, []MilestoneID{}},
		{"plain array", `[3,1,2]`, []MilestoneID{1, 2, 3}},
		{"duplicates collapse", `[2,2,1,2]`, []MilestoneID{1, 2}},
		{"mixed elements", `[1,2,"x"]`, []MilestoneID{1, 2}},
		{"numeric strings dropped", `["1",2]`, []MilestoneID{2}},
		{"fractions dropped", `[1.5,2]`, []MilestoneID{2}},
		{"integral floats kept", `[3.0]`, []MilestoneID{3}},
		{"nested values dropped", `[[1],{"id":2},true,null,4]`, []MilestoneID{4}},
		{"whitespace", "  [5]\n", []MilestoneID{5}},
		{"trailing garbage", `[1] [2]`, []MilestoneID{}},
		{"negative ids", `[-1]`, []MilestoneID{-1}},
		{"huge number dropped", `[1e300, 1]`, []MilestoneID{1}},
		{"bytes", []byte(`[8]`), []MilestoneID{8}},
		{"raw message", json.RawMessage(`[9]`), []MilestoneID{9}},
		{"decoded slice", []any{float64(1), "x", float64(2.5)}, []MilestoneID{1}},
		{"int slice", []int{4, 4, 2}, []MilestoneID{2, 4}},
		{"int64 slice", []int64{6}, []MilestoneID{6}},
		{"unsupported type", 42, []MilestoneID{}},
		{"map", map[string]int{"a": 1}, []MilestoneID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Set
			require.NotPanics(t, func() { got = Parse(tt.raw) })
			require.NotNil(t, got)
			assert.Equal(t, tt.expected, got.Sorted())
		})
	}
}

func TestParseStrict(t *testing.T) {
	tests := []struct {
		name      string
		raw       any
		malformed bool
	}{
		{"nil is clean", nil, false},
		{"null is clean", "null", false},
		{"empty string is clean", "", false},
		{"clean array", `[1,2]`, false},
		{"not json", "{{", true},
		{"not a list", `{"a":1}`, true},
		{"dropped element", `[1,"x"]`, true},
		{"unsupported type", struct{}{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseStrict(tt.raw)
			assert.NotNil(t, s)
			if !tt.malformed {
				assert.NoError(t, err)
				return
			}
			var malformed *MalformedEncodingError
			require.ErrorAs(t, err, &malformed)
			assert.NotEmpty(t, malformed.Reason)
		})
	}
}

func TestParseStrict_KeepsValidElements(t *testing.T) {
	s, err := ParseStrict(`[1,"x",3]`)
	assert.Error(t, err)
	assert.Equal(t, []MilestoneID{1, 3}, s.Sorted())
}

func TestMalformedEncodingError_TruncatesRaw(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}
	_, err := ParseStrict(string(long))
	require.Error(t, err)
	assert.Less(t, len(err.Error()), 200)
}

func TestEncode(t *testing.T) {
	assert.Equal(t, "[]", Encode(nil))
	assert.Equal(t, "[]", Encode(NewSet()))
	assert.Equal(t, "[1,2,10]", Encode(NewSet(10, 2, 1)))

	// Encoding is the inverse of parsing for every set.
	s := NewSet(5, -3, 12)
	assert.Equal(t, s, Parse(Encode(s)))
}
