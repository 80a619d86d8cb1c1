package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinizap/notas/server/domain"
)

func TestParseDSN(t *testing.T) {
	cases := []struct {
		dsn     string
		kind    backend
		target  string
		wantErr bool
	}{
		{dsn: "nota.sqlite3", kind: backendSQLite, target: "nota.sqlite3"},
		{dsn: "/var/lib/notas/nota.db", kind: backendSQLite, target: "/var/lib/notas/nota.db"},
		{dsn: "sqlite://data/nota.db", kind: backendSQLite, target: "data/nota.db"},
		{dsn: "sqlite3:///tmp/nota.db", kind: backendSQLite, target: "/tmp/nota.db"},
		{dsn: "postgres://u:p@localhost:5432/notas", kind: backendPostgres, target: "postgres://u:p@localhost:5432/notas"},
		{dsn: "postgresql://localhost/notas", kind: backendPostgres, target: "postgresql://localhost/notas"},
		{dsn: "", wantErr: true},
		{dsn: "sqlite://", wantErr: true},
		{dsn: "mysql://localhost/notas", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.dsn, func(t *testing.T) {
			kind, target, err := parseDSN(tc.dsn)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.kind, kind)
			assert.Equal(t, tc.target, target)
		})
	}
}

func TestClassifyPostgres(t *testing.T) {
	truncated := &pgconn.PgError{Code: pgerrcode.StringDataRightTruncationDataException, Message: "value too long for type character varying(50)"}
	err := classifyPostgres("insert", truncated)
	assert.ErrorIs(t, err, domain.ErrMalformed)

	down := &pgconn.PgError{Code: pgerrcode.AdminShutdown, Message: "terminating connection"}
	err = classifyPostgres("insert", down)
	var se *domain.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert", se.Op)
	assert.ErrorIs(t, err, down)

	plain := errors.New("dial tcp: connection refused")
	err = classifyPostgres("list", plain)
	require.ErrorAs(t, err, &se)
	assert.NotErrorIs(t, err, domain.ErrMalformed)
}

func openTempSQLite(t *testing.T) Repository {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nota.sqlite3")
	repo, err := Open(context.Background(), path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	testRepository(t, openTempSQLite)
}

func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("NOTAS_TEST_POSTGRES_URL")
	if dsn == "" {
		t.Skip("NOTAS_TEST_POSTGRES_URL not set")
	}
	testRepository(t, func(t *testing.T) Repository {
		t.Helper()
		repo, err := Open(context.Background(), dsn, zerolog.Nop())
		require.NoError(t, err)
		pg := repo.(*PostgresStore)
		_, err = pg.pool.Exec(context.Background(), `TRUNCATE nota RESTART IDENTITY`)
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
		return repo
	})
}

func testRepository(t *testing.T, open func(t *testing.T) Repository) {
	ctx := context.Background()

	t.Run("empty list is not nil", func(t *testing.T) {
		repo := open(t)
		notes, err := repo.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, notes)
		assert.Empty(t, notes)
	})

	t.Run("insert assigns unique ids", func(t *testing.T) {
		repo := open(t)
		seen := map[int64]bool{}
		for i := 0; i < 5; i++ {
			n, err := repo.Insert(ctx, "t", "b")
			require.NoError(t, err)
			assert.False(t, seen[n.ID], "id %d reused", n.ID)
			seen[n.ID] = true
		}
	})

	t.Run("concurrent inserts get distinct ids", func(t *testing.T) {
		repo := open(t)
		const writers = 8

		var wg sync.WaitGroup
		ids := make(chan int64, writers)
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := repo.Insert(ctx, "t", "b")
				if err != nil {
					errs <- err
					return
				}
				ids <- n.ID
			}()
		}
		wg.Wait()
		close(ids)
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
		seen := map[int64]bool{}
		for id := range ids {
			assert.False(t, seen[id], "id %d reused", id)
			seen[id] = true
		}
		assert.Len(t, seen, writers)
	})

	t.Run("inserted note is listed once", func(t *testing.T) {
		repo := open(t)
		created, err := repo.Insert(ctx, "A", "B")
		require.NoError(t, err)

		notes, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, *created, notes[0])
	})

	t.Run("list follows insertion order", func(t *testing.T) {
		repo := open(t)
		first, err := repo.Insert(ctx, "first", "")
		require.NoError(t, err)
		second, err := repo.Insert(ctx, "second", "")
		require.NoError(t, err)

		notes, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.Note{*first, *second}, notes)
	})

	t.Run("get missing returns nil", func(t *testing.T) {
		repo := open(t)
		n, err := repo.Get(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, n)
	})

	t.Run("update keeps id", func(t *testing.T) {
		repo := open(t)
		created, err := repo.Insert(ctx, "A", "B")
		require.NoError(t, err)

		n, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, n)
		require.NoError(t, repo.Update(ctx, n, "C", "D"))
		assert.Equal(t, domain.Note{ID: created.ID, Title: "C", Body: "D"}, *n)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, *n, *got)
	})

	t.Run("empty strings are stored", func(t *testing.T) {
		repo := open(t)
		created, err := repo.Insert(ctx, "", "")
		require.NoError(t, err)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "", got.Title)
		assert.Equal(t, "", got.Body)
	})

	t.Run("delete removes the row", func(t *testing.T) {
		repo := open(t)
		created, err := repo.Insert(ctx, "A", "B")
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, created))

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		notes, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, notes)
	})

	t.Run("ids are not reused after delete", func(t *testing.T) {
		repo := open(t)
		first, err := repo.Insert(ctx, "A", "B")
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, first))

		second, err := repo.Insert(ctx, "C", "D")
		require.NoError(t, err)
		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("writes on a vanished row report not found", func(t *testing.T) {
		repo := open(t)
		created, err := repo.Insert(ctx, "A", "B")
		require.NoError(t, err)
		stale := *created
		require.NoError(t, repo.Delete(ctx, created))

		assert.ErrorIs(t, repo.Update(ctx, &stale, "X", "Y"), domain.ErrNotFound)
		assert.Equal(t, "A", stale.Title)
		assert.ErrorIs(t, repo.Delete(ctx, &stale), domain.ErrNotFound)
	})

	t.Run("over-long values are rejected by the schema", func(t *testing.T) {
		repo := open(t)
		_, err := repo.Insert(ctx, strings.Repeat("x", domain.MaxTitleLength+1), "")
		assert.ErrorIs(t, err, domain.ErrMalformed)
	})
}

func TestOpenIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nota.sqlite3")

	repo, err := Open(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	created, err := repo.Insert(ctx, "A", "B")
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = Open(ctx, "sqlite://"+path, zerolog.Nop())
	require.NoError(t, err)
	defer repo.Close()

	notes, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Note{*created}, notes)
}

func TestOpenPathWithReservedCharacters(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"my notes.db", "a#b.db", "a?b.db", "a%20b.db", "50%.db"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, name)

			repo, err := Open(ctx, path, zerolog.Nop())
			require.NoError(t, err)
			created, err := repo.Insert(ctx, "A", "B")
			require.NoError(t, err)
			notes, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.Note{*created}, notes)
			require.NoError(t, repo.Close())

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, name, entries[0].Name())

			repo, err = Open(ctx, "sqlite://"+path, zerolog.Nop())
			require.NoError(t, err)
			defer repo.Close()
			notes, err = repo.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []domain.Note{*created}, notes)
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "file:/tmp/nota.db?_busy_timeout=5000", sqliteDSN("/tmp/nota.db"))
	assert.Equal(t, "file:/tmp/my%20notes%23%3F%25.db?_busy_timeout=5000", sqliteDSN("/tmp/my notes#?%.db"))
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "mysql://localhost/notas", zerolog.Nop())
	assert.Error(t, err)
}
