// server/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vinizap/notas/server/domain"
)

// SQLiteStore keeps notes in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// sqliteDSN turns a file path into the URI both the migration and the
// store open, so that spaces, '%', '#' and '?' in the path name the same
// file for each of them.
func sqliteDSN(path string) string {
	u := url.URL{Path: path}
	return "file:" + u.EscapedPath() + "?_busy_timeout=5000"
}

// NewSQLiteStore opens the database file at path. The schema must already
// exist; Open takes care of that.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	return openSQLite(ctx, sqliteDSN(path))
}

func openSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storageFailure("open", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, storageFailure("open", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]domain.Note, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, titulo, texto FROM nota ORDER BY id`)
	if err != nil {
		return nil, classifySQLite("list", err)
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Body); err != nil {
			return nil, classifySQLite("list", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, classifySQLite("list", err)
	}
	return notes, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*domain.Note, error) {
	n := &domain.Note{}
	err := s.db.QueryRowContext(ctx, `SELECT id, titulo, texto FROM nota WHERE id = ?`, id).
		Scan(&n.ID, &n.Title, &n.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classifySQLite("get", err)
	}
	return n, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, title, body string) (*domain.Note, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO nota (titulo, texto) VALUES (?, ?)`, title, body)
	if err != nil {
		return nil, classifySQLite("insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, classifySQLite("insert", err)
	}
	return &domain.Note{ID: id, Title: title, Body: body}, nil
}

func (s *SQLiteStore) Update(ctx context.Context, note *domain.Note, title, body string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE nota SET titulo = ?, texto = ? WHERE id = ?`, title, body, note.ID)
	if err != nil {
		return classifySQLite("update", err)
	}
	if err := expectOneRow(res, "update"); err != nil {
		return err
	}
	note.Title = title
	note.Body = body
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, note *domain.Note) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM nota WHERE id = ?`, note.ID)
	if err != nil {
		return classifySQLite("delete", err)
	}
	return expectOneRow(res, "delete")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func expectOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storageFailure(op, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
