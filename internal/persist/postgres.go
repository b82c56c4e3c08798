package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/novaengine/novasim/internal/replay"
)

// PostgresArchive keeps traces in the replay_traces table.
type PostgresArchive struct {
	db *DB
}

func NewPostgresArchive(db *DB) *PostgresArchive {
	return &PostgresArchive{db: db}
}

func (a *PostgresArchive) Save(ctx context.Context, name string, tr *replay.Trace) error {
	r, err := encodeRow(name, tr)
	if err != nil {
		return err
	}
	_, err = a.db.Pool.Exec(ctx,
		`INSERT INTO replay_traces (name, seed, version, frame_count, final_checksum, body)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (name) DO UPDATE SET
		   seed = EXCLUDED.seed, version = EXCLUDED.version, frame_count = EXCLUDED.frame_count,
		   final_checksum = EXCLUDED.final_checksum, body = EXCLUDED.body, created_at = now()`,
		r.name, r.seed, r.version, r.frameCount, r.finalChecksum, r.body,
	)
	if err != nil {
		return fmt.Errorf("save trace %q: %w", name, err)
	}
	a.db.log.Info("trace archived", zapName(name), zapFrames(r.frameCount))
	return nil
}

func (a *PostgresArchive) Load(ctx context.Context, name string) (*replay.Trace, error) {
	var body string
	err := a.db.Pool.QueryRow(ctx,
		`SELECT body FROM replay_traces WHERE name = $1`, name,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrTraceNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load trace %q: %w", name, err)
	}
	return decodeBody(name, body)
}

func (a *PostgresArchive) List(ctx context.Context) ([]TraceInfo, error) {
	rows, err := a.db.Pool.Query(ctx,
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
			info    TraceInfo
			seed    string
			version int16
			frames  int32
			created time.Time
		)
		if err := rows.Scan(&info.Name, &seed, &version, &frames, &info.FinalChecksum, &created); err != nil {
			return nil, fmt.Errorf("scan trace: %w", err)
		}
		info.Seed = parseSeed(seed)
		info.Version = int(version)
		info.FrameCount = int(frames)
		info.CreatedAt = created
		out = append(out, info)
	}
	return out, rows.Err()
}

func (a *PostgresArchive) Close() { a.db.Close() }
