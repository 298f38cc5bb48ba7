package repository

import (
	"context"

	sqlcgen "github.com/gokatarajesh/problem-bank/internal/db/sqlc"
)

type topicStore interface {
	GetTopicByID(ctx context.Context, topicID int64) (sqlcgen.Topic, error)
	CreateTopic(ctx context.Context, title string) (sqlcgen.Topic, error)
}

// TopicRepository gives read access to the topics problems belong to.
type TopicRepository struct {
	store topicStore
}

func NewTopicRepository(store topicStore) *TopicRepository {
	return &TopicRepository{store: store}
}

// GetByID returns ErrNotFound when the topic does not exist.
func (r *TopicRepository) GetByID(ctx context.Context, topicID int64) (sqlcgen.Topic, error) {
	topic, err := r.store.GetTopicByID(ctx, topicID)
	return topic, translate(err)
}

// Create inserts a topic. Used by seeding and integration setup.
func (r *TopicRepository) Create(ctx context.Context, title string) (sqlcgen.Topic, error) {
	topic, err := r.store.CreateTopic(ctx, title)
	return topic, translate(err)
}
