package problem

import (
	"bytes"
	"encoding/json"
)

// ValidAnswer reports whether v, a decoded JSON value, has the answer shape:
// an object whose "fields" is an array of objects with a numeric "index" and
// a string or numeric "value".
func ValidAnswer(v interface{}) bool {
	obj, ok := v.(map[string]interface{})
	if !ok {
		return false
	}
	fields, ok := obj["fields"].([]interface{})
	if !ok {
		return false
	}
	for _, f := range fields {
		field, ok := f.(map[string]interface{})
		if !ok {
			return false
		}
		if _, ok := field["index"].(float64); !ok {
			return false
		}
		switch field["value"].(type) {
		case string, float64:
		default:
			return false
		}
	}
	return true
}

// ParseAnswer validates raw JSON and decodes it into an Answer. Keys other
// than fields/index/value are dropped.
func ParseAnswer(raw json.RawMessage) (Answer, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Answer{}, false
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Answer{}, false
	}
	if !ValidAnswer(generic) {
		return Answer{}, false
	}
	fields := generic.(map[string]interface{})["fields"].([]interface{})
	answer := Answer{Fields: make([]AnswerField, 0, len(fields))}
	for _, f := range fields {
		field := f.(map[string]interface{})
		answer.Fields = append(answer.Fields, AnswerField{
			Index: field["index"].(float64),
			Value: field["value"],
		})
	}
	return answer, true
}

// Mask returns a copy of p whose answer values are replaced with
// MaskPlaceholder. Indexes are kept so clients can lay out input slots.
func Mask(p Problem) Problem {
	masked := p
	if p.Answer == nil {
		return masked
	}
	fields := make([]AnswerField, len(p.Answer.Fields))
	for i, f := range p.Answer.Fields {
		fields[i] = AnswerField{Index: f.Index, Value: MaskPlaceholder}
	}
	masked.Answer = &Answer{Fields: fields}
	return masked
}

func encodeAnswer(a Answer) ([]byte, error) {
	if a.Fields == nil {
		a.Fields = []AnswerField{}
	}
	return json.Marshal(a)
}

func decodeAnswer(data []byte) (*Answer, error) {
	var a Answer
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	if a.Fields == nil {
		a.Fields = []AnswerField{}
	}
	return &a, nil
}
