// server/store/postgres.go
package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vinizap/notas/server/domain"
)

// PostgresStore keeps notes in PostgreSQL through a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, storageFailure("open", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, storageFailure("open", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]domain.Note, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, titulo, texto FROM nota ORDER BY id`)
	if err != nil {
		return nil, classifyPostgres("list", err)
	}
	notes, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Note])
	if err != nil {
		return nil, classifyPostgres("list", err)
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (*domain.Note, error) {
	n := &domain.Note{}
	err := s.pool.QueryRow(ctx, `SELECT id, titulo, texto FROM nota WHERE id = $1`, id).
		Scan(&n.ID, &n.Title, &n.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyPostgres("get", err)
	}
	return n, nil
}

func (s *PostgresStore) Insert(ctx context.Context, title, body string) (*domain.Note, error) {
	n := &domain.Note{Title: title, Body: body}
	err := s.pool.QueryRow(ctx, `INSERT INTO nota (titulo, texto) VALUES ($1, $2) RETURNING id`, title, body).
		Scan(&n.ID)
	if err != nil {
		return nil, classifyPostgres("insert", err)
	}
	return n, nil
}

func (s *PostgresStore) Update(ctx context.Context, note *domain.Note, title, body string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE nota SET titulo = $1, texto = $2 WHERE id = $3`, title, body, note.ID)
	if err != nil {
		return classifyPostgres("update", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	note.Title = title
	note.Body = body
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, note *domain.Note) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM nota WHERE id = $1`, note.ID)
	if err != nil {
		return classifyPostgres("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
