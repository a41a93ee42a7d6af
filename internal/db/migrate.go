package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Versioned migrations live under migrations/ as
//
//	0001_name.up.sql / 0001_name.down.sql
//
// A file starting with "-- NO_TX" runs outside a transaction.

//go:embed migrations/*.sql
var migrationsFS embed.FS

type migration struct {
	version  int
	name     string
	upFile   string
	downFile string
}

var migFileRe = regexp.MustCompile(`^([0-9]{4})_(.+)\.(up|down)\.sql$`)

func loadMigrations(fsys fs.FS) ([]migration, error) {
	list, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[int]migration{}
	for _, de := range list {
		if de.IsDir() {
			continue
		}
		m := migFileRe.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		ver, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		item := byVersion[ver]
		item.version = ver
		item.name = m[2]
		p := "migrations/" + de.Name()
		if m[3] == "up" {
			item.upFile = p
		} else {
			item.downFile = p
		}
		byVersion[ver] = item
	}

	out := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.upFile == "" {
			return nil, fmt.Errorf("missing up migration for version %04d", m.version)
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

func ensureMigrationsTable(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if schema != "" {
		if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func appliedVersions(ctx context.Context, pool *pgxpool.Pool) (map[int]bool, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return nil, err
	}

	got := make(map[int]bool, len(versions))
	for _, v := range versions {
		got[int(v)] = true
	}
	return got, nil
}

// MigrateUp applies every migration that has not been applied yet, in
// version order, and returns how many ran.
func MigrateUp(ctx context.Context, pool *pgxpool.Pool, schema string, logger logrus.FieldLogger) (int, error) {
	migs, err := loadMigrations(migrationsFS)
	if err != nil {
		return 0, err
	}
	if err := ensureMigrationsTable(ctx, pool, schema); err != nil {
		return 0, err
	}
	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return 0, fmt.Errorf("load applied migrations: %w", err)
	}

	var count int
	for _, m := range migs {
		if applied[m.version] {
			continue
		}
		err := run(ctx, pool, m.upFile, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.version)
		if err != nil {
			return count, fmt.Errorf("migration %04d_%s failed: %w", m.version, m.name, err)
		}
		logger.WithField("version", m.version).WithField("name", m.name).Info("migration applied")
		count++
	}
	return count, nil
}

// RollbackLast reverts the most recently applied migration. It is a no-op
// when nothing has been applied.
func RollbackLast(ctx context.Context, pool *pgxpool.Pool, schema string, logger logrus.FieldLogger) error {
	if err := ensureMigrationsTable(ctx, pool, schema); err != nil {
		return err
	}

	var version int32
	err := pool.QueryRow(ctx, `SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load last migration: %w", err)
	}

	migs, err := loadMigrations(migrationsFS)
	if err != nil {
		return err
	}
	for _, m := range migs {
		if m.version != int(version) {
			continue
		}
		if m.downFile == "" {
			return fmt.Errorf("no down migration found for version %04d", version)
		}
		err := run(ctx, pool, m.downFile, `DELETE FROM schema_migrations WHERE version = $1`, m.version)
		if err != nil {
			return fmt.Errorf("rollback %04d_%s failed: %w", m.version, m.name, err)
		}
		logger.WithField("version", m.version).WithField("name", m.name).Info("migration rolled back")
		return nil
	}
	return fmt.Errorf("no migration found for version %04d", version)
}

func run(ctx context.Context, pool *pgxpool.Pool, file, bookkeeping string, version int) error {
	text, err := migrationsFS.ReadFile(file)
	if err != nil {
		return err
	}
	script := string(text)

	if strings.HasPrefix(strings.TrimSpace(script), "-- NO_TX") {
		if _, err := pool.Exec(ctx, script); err != nil {
			return err
		}
		_, err := pool.Exec(ctx, bookkeeping, version)
		return err
	}

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, script); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, bookkeeping, version)
		return err
	})
}
