// Package snapshot writes and reads compressed registry checkpoints.
//
// A snapshot file is a zstd stream holding one JSON header line followed by
// a gob-encoded Snapshot.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"kitten-defense/internal/game"
)

// Version is the current snapshot format.
const Version = 1

// ErrUnsupportedVersion is returned for snapshots written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

// Header identifies a snapshot without decoding its body.
type Header struct {
	Version   int       `json:"version"`
	MatchID   string    `json:"match_id"`
	LayoutID  string    `json:"layout_id"`
	Tick      uint64    `json:"tick"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot is the full checkpoint of one match.
type Snapshot struct {
	Header      Header
	Config      game.Config
	Territories []game.Territory
}

// Write stores snap at path, replacing any previous file atomically.
func Write(path string, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if err := encode(f, snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func encode(f *os.File, snap Snapshot) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		enc.Close()
		return err
	}
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// Read loads a snapshot written by Write.
func Read(path string) (Snapshot, error) {
	var snap Snapshot
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	line, err := br.ReadBytes('\n')
	if err != nil {
		return snap, fmt.Errorf("read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return snap, fmt.Errorf("parse header: %w", err)
	}
	if h.Version > Version {
		return snap, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}

// Checkpointer writes registry checkpoints for one match to a fixed path.
type Checkpointer struct {
	Path     string
	MatchID  string
	LayoutID string
	Registry *game.Registry
}

// Checkpoint captures every territory at the given tick.
func (c *Checkpointer) Checkpoint(tick uint64) error {
	return Write(c.Path, Snapshot{
		Header: Header{
			Version:   Version,
			MatchID:   c.MatchID,
			LayoutID:  c.LayoutID,
			Tick:      tick,
			CreatedAt: time.Now().UTC(),
		},
		Config:      c.Registry.Config(),
		Territories: c.Registry.Territories(),
	})
}

// Restore loads the checkpoint at c.Path into the registry when it belongs
// to the same match. It returns the checkpoint's tick, or false when there
// was nothing to restore.
func (c *Checkpointer) Restore() (uint64, bool, error) {
	snap, err := Read(c.Path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if snap.Header.MatchID != c.MatchID {
		return 0, false, nil
	}
	if err := c.Registry.Restore(snap.Territories); err != nil {
		return 0, false, err
	}
	return snap.Header.Tick, true, nil
}
