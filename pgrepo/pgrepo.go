// Package pgrepo stores competitions, leaderboards and submissions in
// PostgreSQL.
package pgrepo

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepo struct {
	pool *pgxpool.Pool
}

func NewPgRepo(pool *pgxpool.Pool) *PgRepo {
	return &PgRepo{pool: pool}
}
