// Package snapshot persists layout state so a session can resume where it
// left off. Snapshots are JSON compressed with snappy inside a small
// checksummed frame.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-forcegraph/pkg/viewport"
)

// Version is the snapshot schema version written by Encode
const Version = 1

var magic = [4]byte{'F', 'G', 'S', 'N'}

var (
	// ErrNotFound is returned by stores for a missing snapshot
	ErrNotFound = errors.New("snapshot not found")

	// ErrCorrupt is returned when a frame fails its checksum or is malformed
	ErrCorrupt = errors.New("snapshot is corrupt")

	// ErrUnsupportedVersion is returned for snapshots written by a newer schema
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
)

// NodeState is one node's saved kinematics
type NodeState struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Pinned bool    `json:"pinned,omitempty"`
}

// Snapshot is the saved state of a layout session
type Snapshot struct {
	Version       int             `json:"version"`
	SessionID     string          `json:"session_id"`
	TakenAt       time.Time       `json:"taken_at"`
	Width         float64         `json:"width"`
	Height        float64         `json:"height"`
	Camera        viewport.Camera `json:"camera"`
	FocusNodeID   string          `json:"focus_node_id,omitempty"`
	Iteration     int             `json:"iteration"`
	KineticEnergy float64         `json:"kinetic_energy"`
	Converged     bool            `json:"converged"`
	Nodes         []NodeState     `json:"nodes"`
}

// Encode writes snap as a frame:
// [magic:4][version:2][length:4][checksum:4][snappy(json):N]
func Encode(w io.Writer, snap *Snapshot) error {
	if snap == nil {
		return errors.New("snapshot cannot be nil")
	}
	out := *snap
	out.Version = Version

	data, err := json.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	compressed := snappy.Encode(nil, data)

	var header [14]byte
	copy(header[0:4], magic[:])
	binary.BigEndian.PutUint16(header[4:6], Version)
	binary.BigEndian.PutUint32(header[6:10], uint32(len(compressed)))
	binary.BigEndian.PutUint32(header[10:14], crc32.ChecksumIEEE(compressed))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	if _, err := w.Write(compressed); err != nil {
		return fmt.Errorf("failed to write snapshot body: %w", err)
	}
	return nil
}

// Decode reads a frame written by Encode
func Decode(r io.Reader) (*Snapshot, error) {
	var header [14]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrCorrupt, err)
	}
	if !bytes.Equal(header[0:4], magic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	version := binary.BigEndian.Uint16(header[4:6])
	if version == 0 || version > Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	length := binary.BigEndian.Uint32(header[6:10])
	checksum := binary.BigEndian.Uint32(header[10:14])

	compressed := make([]byte, length)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("%w: short body: %v", ErrCorrupt, err)
	}
	if crc32.ChecksumIEEE(compressed) != checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &snap, nil
}

// Marshal encodes snap into a byte slice
func Marshal(snap *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a byte slice produced by Marshal
func Unmarshal(data []byte) (*Snapshot, error) {
	return Decode(bytes.NewReader(data))
}
