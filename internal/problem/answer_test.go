package problem

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidAnswer(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"empty fields", `{"fields":[]}`, true},
		{"string value", `{"fields":[{"index":0,"value":"a"}]}`, true},
		{"numeric value", `{"fields":[{"index":2,"value":3.5}]}`, true},
		{"fractional index", `{"fields":[{"index":1.5,"value":"x"}]}`, true},
		{"extra keys", `{"fields":[{"index":0,"value":"a","hint":"b"}],"note":1}`, true},
		{"null", `null`, false},
		{"not an object", `[1,2]`, false},
		{"missing fields", `{}`, false},
		{"fields is string", `{"fields":"not-a-list"}`, false},
		{"fields is object", `{"fields":{"index":0,"value":"a"}}`, false},
		{"element not object", `{"fields":[1]}`, false},
		{"index missing", `{"fields":[{"value":"a"}]}`, false},
		{"index is string", `{"fields":[{"index":"0","value":"a"}]}`, false},
		{"value missing", `{"fields":[{"index":0}]}`, false},
		{"value null", `{"fields":[{"index":0,"value":null}]}`, false},
		{"value bool", `{"fields":[{"index":0,"value":true}]}`, false},
		{"value array", `{"fields":[{"index":0,"value":["a"]}]}`, false},
		{"one bad element", `{"fields":[{"index":0,"value":"a"},{"index":1}]}`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v interface{}
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &v))
			assert.Equal(t, tc.want, ValidAnswer(v))

			_, ok := ParseAnswer(json.RawMessage(tc.raw))
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestValidAnswerNonJSONValues(t *testing.T) {
	assert.False(t, ValidAnswer(nil))
	assert.False(t, ValidAnswer("fields"))
	assert.False(t, ValidAnswer(map[string]interface{}{"fields": []interface{}{map[string]interface{}{"index": 1, "value": "a"}}}),
		"only decoded JSON numbers count as numeric")
}

func TestParseAnswerRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "   ", "{", "not json"} {
		_, ok := ParseAnswer(json.RawMessage(raw))
		assert.False(t, ok, "input %q", raw)
	}
}

func TestParseAnswerDropsUnknownKeys(t *testing.T) {
	answer, ok := ParseAnswer(json.RawMessage(`{"fields":[{"index":0,"value":"a","hint":"b"}],"note":1}`))
	require.True(t, ok)

	encoded, err := encodeAnswer(answer)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields":[{"index":0,"value":"a"}]}`, string(encoded))
}

func TestMask(t *testing.T) {
	p := Problem{
		ID:      3,
		TopicID: 1,
		Order:   2,
		Answer: &Answer{Fields: []AnswerField{
			{Index: 0, Value: "secret"},
			{Index: 1, Value: float64(12)},
		}},
	}

	masked := Mask(p)

	assert.Equal(t, p.ID, masked.ID)
	assert.Equal(t, p.TopicID, masked.TopicID)
	assert.Equal(t, p.Order, masked.Order)
	assert.Equal(t, []AnswerField{
		{Index: 0, Value: MaskPlaceholder},
		{Index: 1, Value: MaskPlaceholder},
	}, masked.Answer.Fields)
	assert.Equal(t, "secret", p.Answer.Fields[0].Value, "input must not be modified")
}

func TestMaskWithoutAnswer(t *testing.T) {
	p := Problem{ID: 1, TopicID: 1, Order: 1}
	assert.Equal(t, p, Mask(p))
}

func TestDecodeAnswerEmptyFields(t *testing.T) {
	a, err := decodeAnswer([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, a.Fields)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"fields":[]}`, string(data))
}
