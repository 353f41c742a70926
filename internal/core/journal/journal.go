package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/zeusync/cubewalk/internal/core/events/bus"
)

// Entry is one journal line.
type Entry struct {
	Seq    uint64    `json:"seq"`
	Time   time.Time `json:"time"`
	Type   string    `json:"type"`
	Source string    `json:"source"`
	Data   any       `json:"data,omitempty"`
}

// Record is an Entry read back; Data stays raw for the caller to decode.
type Record struct {
	Seq    uint64          `json:"seq"`
	Time   time.Time       `json:"time"`
	Type   string          `json:"type"`
	Source string          `json:"source"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Writer appends zstd-compressed JSONL entries. It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	closer io.Closer
	enc    *zstd.Encoder
	w      *bufio.Writer
	seq    uint64
	closed bool
}

// NewWriter compresses onto dst. Closing the writer closes dst if it is an io.Closer.
func NewWriter(dst io.Writer) (*Writer, error) {
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	w := &Writer{enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}
	if c, ok := dst.(io.Closer); ok {
		w.closer = c
	}
	return w, nil
}

// Create opens a new journal file <dir>/<prefix>-<utc time>.jsonl.zst.
func Create(dir, prefix string) (*Writer, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", err
	}
	name := fmt.Sprintf("%s-%s.jsonl.zst", prefix, time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, "", err
	}
	w, err := NewWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, "", err
	}
	return w, path, nil
}

var ErrClosed = errors.New("journal closed")

func (w *Writer) Write(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	w.seq++
	e.Seq = w.seq
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err = w.w.Write(b); err != nil {
		return err
	}
	if err = w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

// Record journals a bus event; it has the bus.EventHandler signature.
func (w *Writer) Record(ev bus.Event) error {
	return w.Write(Entry{Time: ev.Timestamp().UTC(), Type: ev.Type(), Source: ev.Source(), Data: ev.Data()})
}

// Attach journals every event published on b until the subscription is cancelled.
func (w *Writer) Attach(b bus.EventBus) (bus.Subscription, error) {
	return b.Subscribe(bus.Wildcard, w.Record)
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	errFlush := w.w.Flush()
	errEnc := w.enc.Close()
	var errFile error
	if w.closer != nil {
		errFile = w.closer.Close()
	}
	return errors.Join(errFlush, errEnc, errFile)
}

// Read decodes a compressed journal, calling fn for every record in order.
func Read(src io.Reader, fn func(Record) error) error {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var r Record
		if err = json.Unmarshal(sc.Bytes(), &r); err != nil {
			return fmt.Errorf("journal line: %w", err)
		}
		if err = fn(r); err != nil {
			return err
		}
	}
	return sc.Err()
}
