package problem

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/problem-bank/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/problem-bank/internal/db/sqlc"
	"github.com/gokatarajesh/problem-bank/internal/event"
	"github.com/gokatarajesh/problem-bank/internal/logging"
)

const defaultMaxPageSize = 100

// EventPublisher receives lifecycle events after a write succeeds.
type EventPublisher interface {
	Publish(ctx context.Context, evt event.ProblemEvent) error
}

// ServiceOptions configures optional collaborators. Nil fields are skipped.
type ServiceOptions struct {
	Cache       ProblemCache
	Events      EventPublisher
	Metrics     *Metrics
	MaxPageSize int
}

// Service holds the business rules for problems: topic existence, answer
// shape and per-topic order uniqueness.
type Service struct {
	problems    *repository.ProblemRepository
	topics      *repository.TopicRepository
	cache       ProblemCache
	events      EventPublisher
	metrics     *Metrics
	maxPageSize int
	logger      zerolog.Logger
}

func NewService(problems *repository.ProblemRepository, topics *repository.TopicRepository, opts ServiceOptions, logger zerolog.Logger) *Service {
	maxPage := opts.MaxPageSize
	if maxPage <= 0 {
		maxPage = defaultMaxPageSize
	}
	return &Service{
		problems:    problems,
		topics:      topics,
		cache:       opts.Cache,
		events:      opts.Events,
		metrics:     opts.Metrics,
		maxPageSize: maxPage,
		logger:      logger.With().Str("component", "problem_service").Logger(),
	}
}

// GetOne returns the problem with its answer.
func (s *Service) GetOne(ctx context.Context, id int64) (p Problem, err error) {
	defer s.track("get_one", &err)()
	return s.getOne(ctx, id)
}

// GetOneMasked is GetOne with every answer value hidden.
func (s *Service) GetOneMasked(ctx context.Context, id int64) (p Problem, err error) {
	defer s.track("get_one_masked", &err)()
	p, err = s.getOne(ctx, id)
	if err != nil {
		return Problem{}, err
	}
	return Mask(p), nil
}

func (s *Service) getOne(ctx context.Context, id int64) (Problem, error) {
	var (
		version int64
		fill    bool
	)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, id); err == nil && cached != nil {
			return *cached, nil
		} else if err != nil {
			s.log(ctx).Warn().Err(err).Int64("problem_id", id).Msg("problem cache read failed")
		}
		// The generation must be read before the row, never after.
		if v, err := s.cache.Version(ctx, id); err == nil {
			version, fill = v, true
		} else {
			s.log(ctx).Warn().Err(err).Int64("problem_id", id).Msg("problem cache version read failed")
		}
	}

	row, err := s.problems.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Problem{}, notFound(MsgProblemNotFound)
		}
		return Problem{}, fmt.Errorf("get problem %d: %w", id, err)
	}

	answer, err := decodeAnswer(row.Answer)
	if err != nil {
		return Problem{}, fmt.Errorf("decode answer of problem %d: %w", id, err)
	}
	p := Problem{ID: row.ProblemID, TopicID: row.TopicID, Order: row.Order, Answer: answer}

	if fill {
		if err := s.cache.Fill(ctx, p, version); err != nil {
			s.log(ctx).Warn().Err(err).Int64("problem_id", id).Msg("problem cache write failed")
		}
	}
	return p, nil
}

// GetAll lists problems without answers, ordered by topic then order.
// page is 1-based; a page past the end yields an empty list.
func (s *Service) GetAll(ctx context.Context, page, limit int) (problems []Problem, err error) {
	defer s.track("get_all", &err)()

	if page < 1 {
		page = 1
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	if limit < 1 {
		return []Problem{}, nil
	}

	if int64(page-1) > math.MaxInt32/int64(limit) {
		return []Problem{}, nil
	}
	offset := int64(page-1) * int64(limit)
	if offset > math.MaxInt32 {
		return []Problem{}, nil
	}

	rows, err := s.problems.List(ctx, int32(offset), int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}

	problems = make([]Problem, 0, len(rows))
	for _, row := range rows {
		problems = append(problems, Problem{ID: row.ProblemID, TopicID: row.TopicID, Order: row.Order})
	}
	return problems, nil
}

// Create validates and stores a new problem.
func (s *Service) Create(ctx context.Context, in CreateInput) (p Problem, err error) {
	defer s.track("create", &err)()

	if err := s.requireTopic(ctx, in.TopicID); err != nil {
		return Problem{}, err
	}

	answer, ok := ParseAnswer(in.Answer)
	if !ok {
		return Problem{}, invalid(MsgInvalidAnswer)
	}

	if err := s.requireFreeOrder(ctx, in.TopicID, in.Order, 0); err != nil {
		return Problem{}, err
	}

	encoded, err := encodeAnswer(answer)
	if err != nil {
		return Problem{}, fmt.Errorf("encode answer: %w", err)
	}

	row, err := s.problems.Create(ctx, sqlcgen.InsertProblemParams{
		TopicID: in.TopicID,
		Order:   in.Order,
		Answer:  encoded,
	})
	if err != nil {
		return Problem{}, s.writeError(err, 0)
	}

	stored, err := decodeAnswer(row.Answer)
	if err != nil {
		return Problem{}, fmt.Errorf("decode answer of problem %d: %w", row.ProblemID, err)
	}
	p = Problem{ID: row.ProblemID, TopicID: row.TopicID, Order: row.Order, Answer: stored}

	s.log(ctx).Info().Int64("problem_id", p.ID).Int64("topic_id", p.TopicID).Int32("order", p.Order).Msg("problem created")
	s.publish(ctx, event.NewProblemCreated(p.ID, p.TopicID, p.Order))
	return p, nil
}

// Update applies the fields present in in to problem id.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (ack Ack, err error) {
	defer s.track("update", &err)()

	current, err := s.problems.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Ack{}, problemNotFound(id)
		}
		return Ack{}, fmt.Errorf("get problem %d: %w", id, err)
	}

	if in.Empty() {
		return Ack{Status: StatusSuccess, Message: MsgUpdated}, nil
	}

	params := sqlcgen.SaveProblemParams{
		ProblemID: current.ProblemID,
		TopicID:   current.TopicID,
		Order:     current.Order,
		Answer:    current.Answer,
	}

	if in.TopicID != nil {
		if err := s.requireTopic(ctx, *in.TopicID); err != nil {
			return Ack{}, err
		}
		params.TopicID = *in.TopicID
	}
	if in.Order != nil {
		params.Order = *in.Order
	}
	if len(in.Answer) > 0 {
		answer, ok := ParseAnswer(in.Answer)
		if !ok {
			return Ack{}, invalid(MsgInvalidAnswer)
		}
		if params.Answer, err = encodeAnswer(answer); err != nil {
			return Ack{}, fmt.Errorf("encode answer: %w", err)
		}
	}

	if params.TopicID != current.TopicID || params.Order != current.Order {
		if err := s.requireFreeOrder(ctx, params.TopicID, params.Order, id); err != nil {
			return Ack{}, err
		}
	}

	if _, err := s.problems.Save(ctx, params); err != nil {
		return Ack{}, s.writeError(err, id)
	}

	s.invalidate(ctx, id)
	s.log(ctx).Info().Int64("problem_id", id).Int64("topic_id", params.TopicID).Int32("order", params.Order).Msg("problem updated")
	s.publish(ctx, event.NewProblemUpdated(id, params.TopicID, params.Order))
	return Ack{Status: StatusSuccess, Message: MsgUpdated}, nil
}

// Delete removes problem id.
func (s *Service) Delete(ctx context.Context, id int64) (ack Ack, err error) {
	defer s.track("delete", &err)()

	if err := s.problems.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Ack{}, problemNotFound(id)
		}
		return Ack{}, fmt.Errorf("delete problem %d: %w", id, err)
	}

	s.invalidate(ctx, id)
	s.log(ctx).Info().Int64("problem_id", id).Msg("problem deleted")
	s.publish(ctx, event.NewProblemDeleted(id))
	return Ack{Status: StatusSuccess, Message: MsgDeleted}, nil
}

// track records the outcome of an operation once it returns.
func (s *Service) track(op string, errp *error) func() {
	start := time.Now()
	return func() {
		s.metrics.observe(op, start, *errp)
	}
}

func (s *Service) requireTopic(ctx context.Context, topicID int64) error {
	if _, err := s.topics.GetByID(ctx, topicID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(MsgTopicNotFound)
		}
		return fmt.Errorf("get topic %d: %w", topicID, err)
	}
	return nil
}

func (s *Service) requireFreeOrder(ctx context.Context, topicID int64, order int32, excludeID int64) error {
	taken, err := s.problems.OrderTaken(ctx, topicID, order, excludeID)
	if err != nil {
		return fmt.Errorf("check order %d in topic %d: %w", order, topicID, err)
	}
	if taken {
		return invalid(MsgInvalidPlacement)
	}
	return nil
}

// writeError maps constraint violations raised by a racing writer onto the
// same errors the pre-checks produce.
func (s *Service) writeError(err error, id int64) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		return invalid(MsgInvalidPlacement)
	case errors.Is(err, repository.ErrMissingReference):
		return notFound(MsgTopicNotFound)
	case errors.Is(err, repository.ErrNotFound) && id != 0:
		return problemNotFound(id)
	default:
		return fmt.Errorf("save problem: %w", err)
	}
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log(ctx).Warn().Err(err).Int64("problem_id", id).Msg("problem cache invalidation failed")
	}
}

func (s *Service) publish(ctx context.Context, evt event.ProblemEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.log(ctx).Warn().Err(err).Str("event_type", string(evt.Type)).Int64("problem_id", evt.ProblemID).Msg("event publish failed")
	}
}

// log prefers the request-scoped logger so entries carry the request id.
func (s *Service) log(ctx context.Context) *zerolog.Logger {
	l := logging.FromContextOr(ctx, s.logger)
	return &l
}
