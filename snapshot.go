package propgraph

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/propgraph/blobstore"
	"github.com/hupe1980/propgraph/codec"
	"github.com/hupe1980/propgraph/dictionary"
	"github.com/hupe1980/propgraph/engine"
	"github.com/hupe1980/propgraph/store"
)

// Compression selects how snapshot payloads are compressed.
type Compression uint8

const (
	// CompressionNone stores the codec payload verbatim.
	CompressionNone Compression = iota
	// CompressionZstd compresses with zstd. The default.
	CompressionZstd
	// CompressionLZ4 compresses with lz4, trading ratio for speed.
	CompressionLZ4
)

// snapshotMagic identifies propgraph snapshot files (ASCII "PGS1").
var snapshotMagic = [4]byte{'P', 'G', 'S', '1'}

const snapshotVersion = 1

var (
	// ErrInvalidSnapshot is returned when snapshot bytes do not start with
	// the expected magic or carry an unknown version.
	ErrInvalidSnapshot = errors.New("propgraph: invalid snapshot")
	// ErrUnknownCodec is returned when a snapshot names a codec this build
	// does not provide.
	ErrUnknownCodec = errors.New("propgraph: unknown snapshot codec")
)

// snapshotData is the codec-encoded snapshot payload.
type snapshotData struct {
	Version    int                               `json:"version"`
	Multigraph bool                              `json:"multigraph"`
	Store      store.Snapshot                    `json:"store"`
	LabelDicts map[string]*dictionary.Dictionary `json:"label_dicts,omitempty"`
	RelDicts   map[string]*dictionary.Dictionary `json:"rel_dicts,omitempty"`
	LabelFrame frame                             `json:"label_frame"`
	NodeProps  frame                             `json:"node_props"`
	RelFrame   frame                             `json:"rel_frame"`
	EdgeProps  frame                             `json:"edge_props"`
}

// SaveToWriter writes a snapshot of the graph to w.
//
// The snapshot captures the canonical universe, the dictionaries and the
// attribute tables; the backend handle is not portable and is rebuilt on
// load.
func (g *Graph) SaveToWriter(w io.Writer) error {
	payload, err := g.codec.Marshal(snapshotData{
		Version:    snapshotVersion,
		Multigraph: g.multigraph,
		Store:      g.canon.Snapshot(),
		LabelDicts: g.labelDicts,
		RelDicts:   g.relDicts,
		LabelFrame: g.labelFrame,
		NodeProps:  g.nodeProps,
		RelFrame:   g.relFrame,
		EdgeProps:  g.edgeProps,
	})
	if err != nil {
		return fmt.Errorf("propgraph: encode snapshot: %w", err)
	}

	payload, err = compress(g.compression, payload)
	if err != nil {
		return err
	}

	name := g.codec.Name()
	header := make([]byte, 0, len(snapshotMagic)+2+len(name)+4)
	header = append(header, snapshotMagic[:]...)
	header = append(header, byte(g.compression), byte(len(name)))
	header = append(header, name...)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(payload)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// SaveToFile writes a snapshot of the graph to a file.
func (g *Graph) SaveToFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := g.SaveToWriter(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveToBlob writes a snapshot of the graph to a blob store under name.
func (g *Graph) SaveToBlob(ctx context.Context, bs blobstore.BlobStore, name string) error {
	var buf bytes.Buffer
	if err := g.SaveToWriter(&buf); err != nil {
		return err
	}
	return bs.Put(ctx, name, buf.Bytes())
}

// NewFromReader restores a graph from snapshot bytes and replays the
// dictionary and property writes against the configured backend so the
// backend handle matches the restored state.
//
// The codec named in the snapshot header takes precedence over WithCodec.
func NewFromReader(ctx context.Context, r io.Reader, optFns ...Option) (*Graph, error) {
	g, err := New(optFns...)
	if err != nil {
		return nil, err
	}

	var head [6]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if !bytes.Equal(head[:4], snapshotMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidSnapshot)
	}
	compression := Compression(head[4])

	nameBytes := make([]byte, head[5])
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	c, ok := codec.ByName(string(nameBytes))
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, nameBytes)
	}
	g.codec = c

	var sizeBytes [4]byte
	if _, err := io.ReadFull(r, sizeBytes[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	payload := make([]byte, binary.LittleEndian.Uint32(sizeBytes[:]))
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	payload, err = decompress(compression, payload)
	if err != nil {
		return nil, err
	}

	var data snapshotData
	if err := c.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("propgraph: decode snapshot: %w", err)
	}
	if data.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d", ErrInvalidSnapshot, data.Version)
	}

	if err := g.canon.Restore(data.Store); err != nil {
		return nil, err
	}
	g.multigraph = data.Multigraph
	g.labelFrame = data.LabelFrame
	g.nodeProps = data.NodeProps
	g.relFrame = data.RelFrame
	g.edgeProps = data.EdgeProps
	if data.LabelDicts != nil {
		g.labelDicts = data.LabelDicts
	}
	if data.RelDicts != nil {
		g.relDicts = data.RelDicts
	}

	if err := g.rebuildBackend(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

// NewFromFile restores a graph from a snapshot file.
func NewFromFile(ctx context.Context, filename string, optFns ...Option) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return NewFromReader(ctx, f, optFns...)
}

// NewFromBlob restores a graph from a snapshot stored in a blob store.
func NewFromBlob(ctx context.Context, bs blobstore.BlobStore, name string, optFns ...Option) (*Graph, error) {
	data, err := bs.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return NewFromReader(ctx, bytes.NewReader(data), optFns...)
}

// rebuildBackend allocates a fresh handle and replays the restored label,
// relationship and property writes so backend state matches the snapshot.
func (g *Graph) rebuildBackend(ctx context.Context) error {
	if !g.canon.Populated() {
		return nil
	}
	if err := g.ensureHandle(ctx); err != nil {
		return err
	}

	if !g.labelFrame.empty() {
		if err := g.dispatchEncoded(ctx, engine.CmdAddNodeLabels, g.labelFrame.IDs, g.labelFrame.Table, g.labelDicts,
			engine.ArgLabelArrays, engine.ArgLabelMappers); err != nil {
			return err
		}
	}
	if !g.relFrame.empty() {
		if err := g.dispatchEncoded(ctx, engine.CmdAddEdgeRelationships, g.relFrame.IDs, g.relFrame.Table, g.relDicts,
			engine.ArgRelationshipArrays, engine.ArgRelationshipMappers); err != nil {
			return err
		}
	}
	if !g.nodeProps.empty() {
		if err := g.dispatchPlain(ctx, engine.CmdAddNodeProperties, g.nodeProps.IDs, g.nodeProps.Table); err != nil {
			return err
		}
	}
	if !g.edgeProps.empty() {
		if err := g.dispatchPlain(ctx, engine.CmdAddEdgeProperties, g.edgeProps.IDs, g.edgeProps.Table); err != nil {
			return err
		}
	}
	return nil
}

func compress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(data, nil), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("propgraph: unknown compression %d", c)
	}
}

func decompress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	case CompressionLZ4:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	default:
		return nil, fmt.Errorf("propgraph: unknown compression %d", c)
	}
}
