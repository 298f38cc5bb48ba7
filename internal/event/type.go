package event

import (
	"time"

	"github.com/google/uuid"
)

// Type names a problem lifecycle event; it doubles as the AMQP routing key.
type Type string

const (
	TypeProblemCreated Type = "problem.created"
	TypeProblemUpdated Type = "problem.updated"
	TypeProblemDeleted Type = "problem.deleted"
)

// ProblemEvent is published after a problem write commits.
type ProblemEvent struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	ProblemID  int64     `json:"problem_id"`
	TopicID    int64     `json:"topic_id,omitempty"`
	Order      int32     `json:"order,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Version    string    `json:"version"`
}

func newProblemEvent(t Type, problemID, topicID int64, order int32) ProblemEvent {
	return ProblemEvent{
		ID:         uuid.NewString(),
		Type:       t,
		ProblemID:  problemID,
		TopicID:    topicID,
		Order:      order,
		OccurredAt: time.Now().UTC(),
		Version:    "1.0",
	}
}

func NewProblemCreated(problemID, topicID int64, order int32) ProblemEvent {
	return newProblemEvent(TypeProblemCreated, problemID, topicID, order)
}

func NewProblemUpdated(problemID, topicID int64, order int32) ProblemEvent {
	return newProblemEvent(TypeProblemUpdated, problemID, topicID, order)
}

func NewProblemDeleted(problemID int64) ProblemEvent {
	return newProblemEvent(TypeProblemDeleted, problemID, 0, 0)
}
