package problem

import "encoding/json"

// MaskPlaceholder replaces every answer value in a masked problem.
const MaskPlaceholder = "Student Input"

// Ack statuses.
const (
	StatusSuccess = "success"
)

// AnswerField is one slot of an answer. Value holds a string or a float64.
type AnswerField struct {
	Index float64     `json:"index"`
	Value interface{} `json:"value"`
}

// Answer is the structured solution stored with a problem.
type Answer struct {
	Fields []AnswerField `json:"fields"`
}

// Problem is the API view of a stored problem. Answer is nil in list projections.
type Problem struct {
	ID      int64   `json:"id"`
	TopicID int64   `json:"topicId"`
	Order   int32   `json:"order"`
	Answer  *Answer `json:"answer,omitempty"`
}

// CreateInput carries a candidate problem. Answer is kept raw so its shape can
// be checked before it is decoded.
type CreateInput struct {
	TopicID int64           `json:"topicId"`
	Order   int32           `json:"order"`
	Answer  json.RawMessage `json:"answer"`
}

// UpdateInput lists the fields a caller wants changed; nil/empty means untouched.
type UpdateInput struct {
	TopicID *int64          `json:"topicId,omitempty"`
	Order   *int32          `json:"order,omitempty"`
	Answer  json.RawMessage `json:"answer,omitempty"`
}

// Empty reports whether the update changes nothing.
func (in UpdateInput) Empty() bool {
	return in.TopicID == nil && in.Order == nil && len(in.Answer) == 0
}

// Ack is the short response returned by mutating operations.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Page is the result of a paginated listing.
type Page struct {
	Problems []Problem `json:"problems"`
}
