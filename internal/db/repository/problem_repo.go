package repository

import (
	"context"

	sqlcgen "github.com/gokatarajesh/problem-bank/internal/db/sqlc"
)

type problemStore interface {
	GetProblemByID(ctx context.Context, problemID int64) (sqlcgen.GetProblemByIDRow, error)
	ListProblems(ctx context.Context, arg sqlcgen.ListProblemsParams) ([]sqlcgen.ListProblemsRow, error)
	ProblemOrderTaken(ctx context.Context, arg sqlcgen.ProblemOrderTakenParams) (bool, error)
	InsertProblem(ctx context.Context, arg sqlcgen.InsertProblemParams) (sqlcgen.InsertProblemRow, error)
	SaveProblem(ctx context.Context, arg sqlcgen.SaveProblemParams) (sqlcgen.SaveProblemRow, error)
	DeleteProblem(ctx context.Context, problemID int64) (int64, error)
}

// ProblemRepository wraps sqlc queries for problem persistence.
type ProblemRepository struct {
	store problemStore
}

// NewProblemRepository wraps sqlc Queries for problem-specific operations.
func NewProblemRepository(store problemStore) *ProblemRepository {
	return &ProblemRepository{store: store}
}

// GetByID fetches a single problem including its answer.
func (r *ProblemRepository) GetByID(ctx context.Context, problemID int64) (sqlcgen.GetProblemByIDRow, error) {
	row, err := r.store.GetProblemByID(ctx, problemID)
	return row, translate(err)
}

// List returns the (id, topic, order) projection sorted by topic then order.
func (r *ProblemRepository) List(ctx context.Context, offset, limit int32) ([]sqlcgen.ListProblemsRow, error) {
	rows, err := r.store.ListProblems(ctx, sqlcgen.ListProblemsParams{Offset: offset, Limit: limit})
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

// OrderTaken reports whether another problem already sits at (topicID, order).
// Pass excludeID 0 when checking a problem that is not yet persisted.
func (r *ProblemRepository) OrderTaken(ctx context.Context, topicID int64, order int32, excludeID int64) (bool, error) {
	taken, err := r.store.ProblemOrderTaken(ctx, sqlcgen.ProblemOrderTakenParams{
		TopicID:   topicID,
		Order:     order,
		ProblemID: excludeID,
	})
	return taken, translate(err)
}

// Create inserts a problem. The (topic_id, order) constraint surfaces as ErrConflict.
func (r *ProblemRepository) Create(ctx context.Context, params sqlcgen.InsertProblemParams) (sqlcgen.InsertProblemRow, error) {
	row, err := r.store.InsertProblem(ctx, params)
	return row, translate(err)
}

// Save overwrites every mutable column of an existing problem.
func (r *ProblemRepository) Save(ctx context.Context, params sqlcgen.SaveProblemParams) (sqlcgen.SaveProblemRow, error) {
	row, err := r.store.SaveProblem(ctx, params)
	return row, translate(err)
}

// Delete removes a problem, returning ErrNotFound when nothing was deleted.
func (r *ProblemRepository) Delete(ctx context.Context, problemID int64) error {
	n, err := r.store.DeleteProblem(ctx, problemID)
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
