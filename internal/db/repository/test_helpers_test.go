package repository

import "github.com/jackc/pgx/v5/pgconn"

func pgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: constraint, Message: "violation"}
}
