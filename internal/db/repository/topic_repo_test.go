package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	sqlcgen "github.com/gokatarajesh/problem-bank/internal/db/sqlc"
)

type mockTopicStore struct {
	mock.Mock
}

func (m *mockTopicStore) GetTopicByID(ctx context.Context, topicID int64) (sqlcgen.Topic, error) {
	args := m.Called(ctx, topicID)
	return args.Get(0).(sqlcgen.Topic), args.Error(1)
}

func (m *mockTopicStore) CreateTopic(ctx context.Context, title string) (sqlcgen.Topic, error) {
	args := m.Called(ctx, title)
	return args.Get(0).(sqlcgen.Topic), args.Error(1)
}

func TestTopicRepository_GetByID(t *testing.T) {
	store := new(mockTopicStore)
	repo := NewTopicRepository(store)

	store.On("GetTopicByID", mock.Anything, int64(1)).Return(sqlcgen.Topic{TopicID: 1, Title: "Fractions"}, nil)
	store.On("GetTopicByID", mock.Anything, int64(999)).Return(sqlcgen.Topic{}, pgx.ErrNoRows)

	topic, err := repo.GetByID(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), topic.TopicID)

	_, err = repo.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
	store.AssertExpectations(t)
}

func TestTopicRepository_Create(t *testing.T) {
	store := new(mockTopicStore)
	repo := NewTopicRepository(store)

	store.On("CreateTopic", mock.Anything, "Geometry").Return(sqlcgen.Topic{TopicID: 2, Title: "Geometry"}, nil)

	topic, err := repo.Create(context.Background(), "Geometry")
	assert.NoError(t, err)
	assert.Equal(t, "Geometry", topic.Title)
	store.AssertExpectations(t)
}
