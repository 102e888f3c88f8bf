package store

import (
	"context"
	"database/sql"
	"errors"
)

// ErrGiftClaimed is returned when a claim targets a gift somebody already took.
var ErrGiftClaimed = errors.New("gift already claimed")

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
