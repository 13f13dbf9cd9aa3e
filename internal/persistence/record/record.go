// Package record writes a growth run as a zstd-compressed JSONL event
// stream, one entry per attachment. It is a consumer of the engine's
// frame stream and holds no engine state of its own.
package record

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Header is the first line of every record file.
type Header struct {
	Version   int    `json:"version"`
	RunID     string `json:"run_id"`
	CreatedAt string `json:"created_at"`

	Dimensions    int     `json:"dimensions"`
	Lattice       string  `json:"lattice"`
	Attractor     string  `json:"attractor"`
	AttractorSize int     `json:"attractor_size"`
	Stickiness    float64 `json:"stickiness"`
	Seed          int64   `json:"seed"`
	Particles     int     `json:"particles"`
}

// Entry is one attachment event.
type Entry struct {
	Seq                int   `json:"seq"`
	Point              []int `json:"point"`
	StepsToStick       int   `json:"steps_to_stick"`
	BoundaryCollisions int   `json:"boundary_collisions"`
	SpawnDiameter      int   `json:"spawn_diameter"`
}

type Writer struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewWriter creates path (and its directory) and writes the header line.
func NewWriter(path string, h Header) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w := &Writer{
		f:   f,
		enc: enc,
		w:   bufio.NewWriterSize(enc, 128*1024),
	}
	if h.Version == 0 {
		h.Version = 1
	}
	if h.CreatedAt == "" {
		h.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if err := w.writeLine(h); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// Append records one attachment.
func (w *Writer) Append(e Entry) error { return w.writeLine(e) }

func (w *Writer) writeLine(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return errors.New("record: writer closed")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var err error
	if w.w != nil {
		err = w.w.Flush()
		w.w = nil
	}
	if w.enc != nil {
		if cerr := w.enc.Close(); err == nil {
			err = cerr
		}
		w.enc = nil
	}
	if w.f != nil {
		if cerr := w.f.Close(); err == nil {
			err = cerr
		}
		w.f = nil
	}
	return err
}

// Read decodes a record file back into its header and entries.
func Read(path string) (Header, []Entry, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, nil, err
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return h, nil, err
		}
		return h, nil, io.ErrUnexpectedEOF
	}
	if err := json.Unmarshal(sc.Bytes(), &h); err != nil {
		return h, nil, err
	}
	var entries []Entry
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			return h, entries, err
		}
		entries = append(entries, e)
	}
	return h, entries, sc.Err()
}
