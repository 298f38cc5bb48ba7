package sqlcgen

import (
	"context"
)

const createTopic = `-- name: CreateTopic :one
INSERT INTO topics (title)
VALUES ($1)
RETURNING topic_id, title, created_at
`

func (q *Queries) CreateTopic(ctx context.Context, title string) (Topic, error) {
	row := q.db.QueryRow(ctx, createTopic, title)
	var i Topic
	err := row.Scan(&i.TopicID, &i.Title, &i.CreatedAt)
	return i, err
}

const getTopicByID = `-- name: GetTopicByID :one
SELECT topic_id, title, created_at
FROM topics
WHERE topic_id = $1
`

func (q *Queries) GetTopicByID(ctx context.Context, topicID int64) (Topic, error) {
	row := q.db.QueryRow(ctx, getTopicByID, topicID)
	var i Topic
	err := row.Scan(&i.TopicID, &i.Title, &i.CreatedAt)
	return i, err
}
