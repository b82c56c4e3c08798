package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/novaengine/novasim/internal/replay"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// SQLiteArchive keeps traces in a local SQLite file.
type SQLiteArchive struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string, log *zap.Logger) (*SQLiteArchive, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// One writer; SQLite serializes anyway.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping archive: %w", err)
	}
	if err := sqliteSchema.apply(ctx, db, log); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteArchive{db: db, log: log}, nil
}

func (a *SQLiteArchive) Save(ctx context.Context, name string, tr *replay.Trace) error {
	r, err := encodeRow(name, tr)
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO replay_traces (name, seed, version, frame_count, final_checksum, body)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET
		   seed = excluded.seed, version = excluded.version, frame_count = excluded.frame_count,
		   final_checksum = excluded.final_checksum, body = excluded.body, created_at = CURRENT_TIMESTAMP`,
		r.name, r.seed, r.version, r.frameCount, r.finalChecksum, r.body,
	)
	if err != nil {
		return fmt.Errorf("save trace %q: %w", name, err)
	}
	a.log.Info("trace archived", zapName(name), zapFrames(r.frameCount))
	return nil
}

func (a *SQLiteArchive) Load(ctx context.Context, name string) (*replay.Trace, error) {
	var body string
	err := a.db.QueryRowContext(ctx,
		`SELECT body FROM replay_traces WHERE name = ?`, name,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrTraceNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load trace %q: %w", name, err)
	}
	return decodeBody(name, body)
}

func (a *SQLiteArchive) List(ctx context.Context) ([]TraceInfo, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT name, seed, version, frame_count, final_checksum, created_at
		 FROM replay_traces ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list traces: %w", err)
	}
	defer rows.Close()

	var out []TraceInfo
	for rows.Next() {
		var (
			info      TraceInfo
			seed      string
			createdAt any
		)
		if err := rows.Scan(&info.Name, &seed, &info.Version, &info.FrameCount, &info.FinalChecksum, &createdAt); err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		info.Seed = parseSeed(seed)
		// The driver yields time.Time or text depending on the column affinity.
		switch v := createdAt.(type) {
		case time.Time:
			info.CreatedAt = v
		case string:
			if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
				info.CreatedAt = parsed
			}
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (a *SQLiteArchive) Close() { a.db.Close() }

func zapName(name string) zap.Field { return zap.String("name", name) }
func zapFrames(n int) zap.Field     { return zap.Int("frames", n) }
