// server/store/store.go
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vinizap/notas/server/domain"
)

// Repository is the persistence boundary for notes.
//
// Get returns nil without error for a missing note. Update and Delete
// operate on a note previously returned by Get or Insert and report
// domain.ErrNotFound if its row has vanished in the meantime. List never
// returns nil.
type Repository interface {
	List(ctx context.Context) ([]domain.Note, error)
	Get(ctx context.Context, id int64) (*domain.Note, error)
	Insert(ctx context.Context, title, body string) (*domain.Note, error)
	Update(ctx context.Context, note *domain.Note, title, body string) error
	Delete(ctx context.Context, note *domain.Note) error
	Close() error
}

type backend string

const (
	backendSQLite   backend = "sqlite"
	backendPostgres backend = "postgres"
)

// parseDSN picks the backend from the URL scheme. Anything without a
// scheme is a SQLite file path.
func parseDSN(dsn string) (backend, string, error) {
	if dsn == "" {
		return "", "", fmt.Errorf("empty database url")
	}

	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return backendSQLite, dsn, nil
	}

	switch scheme {
	case "postgres", "postgresql":
		return backendPostgres, dsn, nil
	case "sqlite", "sqlite3":
		if rest == "" {
			return "", "", fmt.Errorf("missing sqlite file path in %q", dsn)
		}
		return backendSQLite, rest, nil
	default:
		return "", "", fmt.Errorf("unsupported database scheme %q", scheme)
	}
}

// Open connects to the database named by dsn, creates the schema if it
// does not exist yet and returns the matching Repository.
func Open(ctx context.Context, dsn string, log zerolog.Logger) (Repository, error) {
	kind, target, err := parseDSN(dsn)
	if err != nil {
		return nil, err
	}

	var (
		repo    Repository
		version uint
	)
	switch kind {
	case backendSQLite:
		uri := sqliteDSN(target)
		version, err = migrateSQLite(uri)
		if err != nil {
			return nil, err
		}
		repo, err = openSQLite(ctx, uri)
	case backendPostgres:
		_, rest, _ := strings.Cut(target, "://")
		version, err = migrateUp("migrations/postgres", "pgx5://"+rest)
		if err != nil {
			return nil, err
		}
		repo, err = NewPostgresStore(ctx, target)
	}
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("backend", string(kind)).
		Uint("schema_version", version).
		Msg("store ready")
	return repo, nil
}
