package sqlcgen

import (
	"context"
)

const deleteProblem = `-- name: DeleteProblem :execrows
DELETE FROM problems
WHERE problem_id = $1
`

func (q *Queries) DeleteProblem(ctx context.Context, problemID int64) (int64, error) {
	result, err := q.db.Exec(ctx, deleteProblem, problemID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getProblemByID = `-- name: GetProblemByID :one
SELECT problem_id, topic_id, "order", answer
FROM problems
WHERE problem_id = $1
`

type GetProblemByIDRow struct {
	ProblemID int64
	TopicID   int64
	Order     int32
	Answer    []byte
}

func (q *Queries) GetProblemByID(ctx context.Context, problemID int64) (GetProblemByIDRow, error) {
	row := q.db.QueryRow(ctx, getProblemByID, problemID)
	var i GetProblemByIDRow
	err := row.Scan(
		&i.ProblemID,
		&i.TopicID,
		&i.Order,
		&i.Answer,
	)
	return i, err
}

const insertProblem = `-- name: InsertProblem :one
INSERT INTO problems (topic_id, "order", answer)
VALUES ($1, $2, $3)
RETURNING problem_id, topic_id, "order", answer
`

type InsertProblemParams struct {
	TopicID int64
	Order   int32
	Answer  []byte
}

type InsertProblemRow struct {
	ProblemID int64
	TopicID   int64
	Order     int32
	Answer    []byte
}

func (q *Queries) InsertProblem(ctx context.Context, arg InsertProblemParams) (InsertProblemRow, error) {
	row := q.db.QueryRow(ctx, insertProblem, arg.TopicID, arg.Order, arg.Answer)
	var i InsertProblemRow
	err := row.Scan(
		&i.ProblemID,
		&i.TopicID,
		&i.Order,
		&i.Answer,
	)
	return i, err
}

const listProblems = `-- name: ListProblems :many
SELECT problem_id, topic_id, "order"
FROM problems
ORDER BY topic_id ASC, "order" ASC
OFFSET $1
LIMIT $2
`

type ListProblemsParams struct {
	Offset int32
	Limit  int32
}

type ListProblemsRow struct {
	ProblemID int64
	TopicID   int64
	Order     int32
}

func (q *Queries) ListProblems(ctx context.Context, arg ListProblemsParams) ([]ListProblemsRow, error) {
	rows, err := q.db.Query(ctx, listProblems, arg.Offset, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListProblemsRow
	for rows.Next() {
		var i ListProblemsRow
		if err := rows.Scan(&i.ProblemID, &i.TopicID, &i.Order); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const problemOrderTaken = `-- name: ProblemOrderTaken :one
SELECT EXISTS (
    SELECT 1 FROM problems
    WHERE topic_id = $1 AND "order" = $2 AND problem_id <> $3
)
`

type ProblemOrderTakenParams struct {
	TopicID   int64
	Order     int32
	ProblemID int64
}

func (q *Queries) ProblemOrderTaken(ctx context.Context, arg ProblemOrderTakenParams) (bool, error) {
	row := q.db.QueryRow(ctx, problemOrderTaken, arg.TopicID, arg.Order, arg.ProblemID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const saveProblem = `-- name: SaveProblem :one
UPDATE problems
SET topic_id = $2, "order" = $3, answer = $4, updated_at = NOW()
WHERE problem_id = $1
RETURNING problem_id, topic_id, "order", answer
`

type SaveProblemParams struct {
	ProblemID int64
	TopicID   int64
	Order     int32
	Answer    []byte
}

type SaveProblemRow struct {
	ProblemID int64
	TopicID   int64
	Order     int32
	Answer    []byte
}

func (q *Queries) SaveProblem(ctx context.Context, arg SaveProblemParams) (SaveProblemRow, error) {
	row := q.db.QueryRow(ctx, saveProblem,
		arg.ProblemID,
		arg.TopicID,
		arg.Order,
		arg.Answer,
	)
	var i SaveProblemRow
	err := row.Scan(
		&i.ProblemID,
		&i.TopicID,
		&i.Order,
		&i.Answer,
	)
	return i, err
}
