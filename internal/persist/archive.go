// Package persist archives replay traces in a SQL database.
package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/novaengine/novasim/internal/config"
	"github.com/novaengine/novasim/internal/replay"
	"go.uber.org/zap"
)

// ErrTraceNotFound is returned by Load for an unknown name.
var ErrTraceNotFound = errors.New("persist: trace not found")

// TraceInfo describes an archived trace without its frames.
type TraceInfo struct {
	Name          string
	Seed          uint64
	Version       int
	FrameCount    int
	FinalChecksum string
	CreatedAt     time.Time
}

// Archive stores encoded traces by name. Saving an existing name replaces it.
type Archive interface {
	Save(ctx context.Context, name string, tr *replay.Trace) error
	Load(ctx context.Context, name string) (*replay.Trace, error)
	List(ctx context.Context) ([]TraceInfo, error)
	Close()
}

// OpenArchive opens the backend named by cfg.Driver and applies migrations.
// An empty driver disables archiving and returns a nil Archive.
func OpenArchive(ctx context.Context, cfg config.ArchiveConfig, log *zap.Logger) (Archive, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Driver {
	case "":
		return nil, nil
	case "postgres":
		db, err := NewDB(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		if err := RunMigrations(ctx, db.Pool, log); err != nil {
			db.Close()
			return nil, err
		}
		return NewPostgresArchive(db), nil
	case "sqlite":
		a, err := OpenSQLite(ctx, cfg.DSN, log)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
	return nil, fmt.Errorf("unknown archive driver %q", cfg.Driver)
}

// row is the column set shared by both backends.
type row struct {
	name          string
	seed          string
	version       int
	frameCount    int
	finalChecksum string
	body          string
}

func encodeRow(name string, tr *replay.Trace) (row, error) {
	if tr == nil || len(tr.Frames) == 0 {
		return row{}, replay.ErrEmptyTrace
	}
	var buf bytes.Buffer
	if err := tr.Encode(&buf); err != nil {
		return row{}, fmt.Errorf("encode trace: %w", err)
	}
	version := tr.Version
	if version == 0 {
		version = replay.CurrentVersion
	}
	return row{
		name:          name,
		seed:          strconv.FormatUint(tr.Seed, 10),
		version:       version,
		frameCount:    len(tr.Frames),
		finalChecksum: tr.Frames[len(tr.Frames)-1].Checksum,
		body:          buf.String(),
	}, nil
}

func decodeBody(name, body string) (*replay.Trace, error) {
	tr, err := replay.Decode(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decode archived trace %q: %w", name, err)
	}
	return tr, nil
}

func parseSeed(s string) uint64 {
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}
