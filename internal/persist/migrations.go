package persist

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// schema names a goose dialect and its migration directory.
type schema struct {
	dialect string
	dir     string
}

var (
	postgresSchema = schema{dialect: "postgres", dir: "migrations/postgres"}
	sqliteSchema   = schema{dialect: "sqlite3", dir: "migrations/sqlite"}
)

// RunMigrations brings the Postgres archive schema up to date.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return postgresSchema.apply(ctx, db, log)
}

func (s schema) apply(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(s.dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, s.dir); err != nil {
		return fmt.Errorf("migrate %s archive: %w", s.dialect, err)
	}
	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	log.Debug("archive schema ready", zap.String("dialect", s.dialect), zap.Int64("version", v))
	return nil
}
