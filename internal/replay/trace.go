package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/novaengine/novasim/internal/core/ecs"
	"github.com/novaengine/novasim/internal/input"
)

// CurrentVersion is the trace version written by default. Version 2 adds
// the version line, the velocity flag on entity lines and per-frame checksums.
const CurrentVersion = 2

const magic = "#nova_replay"

var (
	ErrEmptyTrace         = errors.New("replay: trace has no frames")
	ErrMalformedTrace     = errors.New("replay: malformed trace")
	ErrUnsupportedVersion = errors.New("replay: unsupported trace version")
)

// Trace is a complete recorded run.
type Trace struct {
	Version int
	Seed    uint64
	Frames  []Frame
}

// Encode writes the trace in its textual form. A zero Version encodes as
// CurrentVersion.
func (t *Trace) Encode(w io.Writer) error {
	v := t.Version
	if v == 0 {
		v = CurrentVersion
	}
	if v < 1 || v > CurrentVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(magic + "\n")
	if v >= 2 {
		fmt.Fprintf(bw, "version %d\n", v)
	}
	fmt.Fprintf(bw, "seed %d\n", t.Seed)

	for i := range t.Frames {
		f := &t.Frames[i]
		fmt.Fprintf(bw, "frame %s %d %d\n", fmtFloat(f.T), f.RNG.Seed, f.RNG.Draws)

		bw.WriteString("input")
		for _, b := range f.Input.Bools() {
			bw.WriteString(" " + fmtBool(b))
		}
		bw.WriteString(" " + fmtFloat(f.Input.CameraYaw) + "\n")

		for _, e := range f.Entities {
			fmt.Fprintf(bw, "entity %d %s %s %s %s %s %s",
				e.ID,
				fmtFloat(e.Position.X), fmtFloat(e.Position.Y), fmtFloat(e.Position.Z),
				fmtFloat(e.Velocity.VX), fmtFloat(e.Velocity.VY), fmtFloat(e.Velocity.VZ))
			if v >= 2 {
				bw.WriteString(" " + fmtBool(e.HasVelocity))
			}
			bw.WriteString("\n")
		}
		if v >= 2 && f.Checksum != "" {
			fmt.Fprintf(bw, "checksum %s\n", f.Checksum)
		}
		bw.WriteString("endframe\n")
	}
	return bw.Flush()
}

// String renders the trace as text.
func (t *Trace) String() string {
	var sb strings.Builder
	if err := t.Encode(&sb); err != nil {
		return err.Error()
	}
	return sb.String()
}

// Decode parses a textual trace. A missing version line means version 1.
//
// Inside a frame an unknown token ends the frame; lines up to the next
// "frame" are then ignored. A frame still open at end of input is kept.
// Any unparseable line fails the whole decode with ErrMalformedTrace.
func Decode(r io.Reader) (*Trace, error) {
	tr := &Trace{Version: 1}
	var (
		cur     *Frame
		skip    bool
		lineNo  int
		scanner = bufio.NewScanner(r)
	)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	closeFrame := func() {
		if cur != nil {
			tr.Frames = append(tr.Frames, *cur)
			cur = nil
		}
	}
	malformed := func(format string, args ...any) error {
		return fmt.Errorf("%w: line %d: %s", ErrMalformedTrace, lineNo, fmt.Sprintf(format, args...))
	}

	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		tok, args := fields[0], fields[1:]

		if tok == "frame" {
			closeFrame()
			skip = false
			if len(args) != 3 {
				return nil, malformed("frame wants 3 fields, got %d", len(args))
			}
			f := Frame{}
			var err error
			if f.T, err = strconv.ParseFloat(args[0], 64); err != nil {
				return nil, malformed("frame time: %v", err)
			}
			if f.RNG.Seed, err = strconv.ParseUint(args[1], 10, 64); err != nil {
				return nil, malformed("frame seed: %v", err)
			}
			if f.RNG.Draws, err = strconv.ParseUint(args[2], 10, 64); err != nil {
				return nil, malformed("frame draws: %v", err)
			}
			cur = &f
			continue
		}

		if cur == nil {
			if skip {
				continue
			}
			switch tok {
			case magic:
			case "version":
				if len(args) != 1 {
					return nil, malformed("version wants 1 field")
				}
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return nil, malformed("version: %v", err)
				}
				if v < 1 || v > CurrentVersion {
					return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
				}
				tr.Version = v
			case "seed":
				if len(args) != 1 {
					return nil, malformed("seed wants 1 field")
				}
				s, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return nil, malformed("seed: %v", err)
				}
				tr.Seed = s
			}
			continue
		}

		switch tok {
		case "input":
			in, err := parseInput(args)
			if err != nil {
				return nil, malformed("input: %v", err)
			}
			cur.Input = in
		case "entity":
			e, err := parseEntity(args)
			if err != nil {
				return nil, malformed("entity: %v", err)
			}
			cur.Entities = append(cur.Entities, e)
		case "checksum":
			if len(args) != 1 {
				return nil, malformed("checksum wants 1 field")
			}
			cur.Checksum = args[0]
		case "endframe":
			closeFrame()
		default:
			closeFrame()
			skip = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	closeFrame()

	if len(tr.Frames) == 0 {
		return nil, ErrEmptyTrace
	}
	return tr, nil
}

func parseInput(args []string) (input.Snapshot, error) {
	if len(args) != input.Axes+1 {
		return input.Snapshot{}, fmt.Errorf("want %d fields, got %d", input.Axes+1, len(args))
	}
	var b [input.Axes]bool
	for i := range b {
		v, err := parseBool(args[i])
		if err != nil {
			return input.Snapshot{}, err
		}
		b[i] = v
	}
	yaw, err := strconv.ParseFloat(args[input.Axes], 64)
	if err != nil {
		return input.Snapshot{}, err
	}
	return input.FromBools(b, yaw), nil
}

// parseEntity accepts 7 fields (version 1, velocity implied) or 8 fields
// (version 2, trailing velocity flag).
func parseEntity(args []string) (EntitySnapshot, error) {
	if len(args) != 7 && len(args) != 8 {
		return EntitySnapshot{}, fmt.Errorf("want 7 or 8 fields, got %d", len(args))
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return EntitySnapshot{}, err
	}
	var v [6]float64
	for i := range v {
		if v[i], err = strconv.ParseFloat(args[1+i], 64); err != nil {
			return EntitySnapshot{}, err
		}
	}
	e := EntitySnapshot{ID: ecs.EntityID(id), HasVelocity: true}
	e.Position.X, e.Position.Y, e.Position.Z = v[0], v[1], v[2]
	e.Velocity.VX, e.Velocity.VY, e.Velocity.VZ = v[3], v[4], v[5]
	if len(args) == 8 {
		if e.HasVelocity, err = parseBool(args[7]); err != nil {
			return EntitySnapshot{}, err
		}
	}
	return e, nil
}

func parseBool(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, fmt.Errorf("bad flag %q", s)
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func fmtBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
