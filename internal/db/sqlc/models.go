package sqlcgen

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Problem struct {
	ProblemID int64
	TopicID   int64
	Order     int32
	Answer    []byte
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type Topic struct {
	TopicID   int64
	Title     string
	CreatedAt pgtype.Timestamptz
}
