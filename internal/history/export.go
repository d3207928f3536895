// internal/history/export.go
package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/FairForge/wardkeeper/internal/fault"
	"github.com/golang/snappy"
)

// snapshotVersion identifies the export document layout. Bump it when the
// record shape changes; consumers key on it.
const snapshotVersion = 1

// Snapshot is the audit export document.
type Snapshot struct {
	Version    int            `json:"version"`
	ExportedAt time.Time      `json:"exported_at"`
	Faults     []fault.Record `json:"faults"`
}

// WriteSnapshot writes the snapshot document to w, faults in chronological
// order by creation time.
func (l *Log) WriteSnapshot(w io.Writer) error {
	faults := l.All()
	sort.SliceStable(faults, func(i, j int) bool {
		return faults[i].CreatedAt.Before(faults[j].CreatedAt)
	})

	doc := Snapshot{
		Version:    snapshotVersion,
		ExportedAt: time.Now().UTC(),
		Faults:     faults,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("history: encode snapshot: %w", err)
	}
	return nil
}

// Export writes the snapshot document to path.
func (l *Log) Export(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("history: create export %s: %w", path, err)
	}
	if err := l.WriteSnapshot(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("history: close export %s: %w", path, err)
	}
	return nil
}

// ExportCompressed writes the snapshot in snappy framing, for long histories
// shipped to archival storage.
func (l *Log) ExportCompressed(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("history: create export %s: %w", path, err)
	}
	sw := snappy.NewBufferedWriter(f)
	if err := l.WriteSnapshot(sw); err != nil {
		_ = sw.Close()
		_ = f.Close()
		return err
	}
	if err := sw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("history: flush compressed export %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("history: close export %s: %w", path, err)
	}
	return nil
}

// snappyMagic is the stream identifier chunk that opens every snappy framed
// stream.
var snappyMagic = []byte{0xff, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y'}

// ReadSnapshot decodes a snapshot document, transparently handling snappy
// framing. Exports are write-only for the framework; this reader exists for
// tooling and tests.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	buffered := bufio.NewReader(r)
	var src io.Reader = buffered
	if head, err := buffered.Peek(len(snappyMagic)); err == nil && bytes.Equal(head, snappyMagic) {
		src = snappy.NewReader(buffered)
	}

	var doc Snapshot
	if err := json.NewDecoder(src).Decode(&doc); err != nil {
		return nil, fmt.Errorf("history: decode snapshot: %w", err)
	}
	if doc.Version != snapshotVersion {
		return nil, fmt.Errorf("history: unsupported snapshot version %d", doc.Version)
	}
	return &doc, nil
}
