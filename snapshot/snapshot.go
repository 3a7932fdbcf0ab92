// Package snapshot persists an encoded record store to a self-describing
// binary envelope and restores it.
//
// The envelope records the codec and compression by name, so files written
// with older defaults remain loadable. Saving is deterministic: the same
// store always produces the same bytes, which makes "reloading an unchanged
// dataset yields an identical store" directly checkable.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/s2"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/sfindex/codec"
	"github.com/hupe1980/sfindex/store"
)

// Compression names accepted by WithCompression.
const (
	CompressionNone = "none"
	CompressionS2   = "s2"
	CompressionLZ4  = "lz4"
)

var magic = [4]byte{'S', 'F', 'I', 'S'}

const version uint16 = 1

// maxPayloadSize caps the compressed payload size a header may declare, so a
// corrupt length field cannot demand an arbitrarily large allocation before
// the checksum is verified.
const maxPayloadSize = 4 << 30

var (
	// ErrBadMagic is returned when the input is not a snapshot file.
	ErrBadMagic = errors.New("snapshot: bad magic")

	// ErrChecksum is returned when the payload checksum does not match.
	ErrChecksum = errors.New("snapshot: checksum mismatch")
)

// ErrUnsupportedVersion indicates a snapshot written by a newer format.
type ErrUnsupportedVersion struct {
	Version uint16
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("snapshot: unsupported format version %d", e.Version)
}

// ErrUnknownName indicates an unrecognized codec or compression name in the
// header.
type ErrUnknownName struct {
	Kind string
	Name string
}

func (e *ErrUnknownName) Error() string {
	return fmt.Sprintf("snapshot: unknown %s %q", e.Kind, e.Name)
}

// ErrPayloadTooLarge indicates a header declaring an implausible payload
// size, almost certainly corruption.
type ErrPayloadTooLarge struct {
	Size uint64
}

func (e *ErrPayloadTooLarge) Error() string {
	return fmt.Sprintf("snapshot: declared payload size %d exceeds limit %d", e.Size, uint64(maxPayloadSize))
}

type options struct {
	codec       codec.Codec
	compression string
}

// Option configures Save.
type Option func(*options)

// WithCodec sets the payload codec. Defaults to codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c != nil {
			o.codec = c
		}
	}
}

// WithCompression sets the payload compression: CompressionNone,
// CompressionS2 (default) or CompressionLZ4.
func WithCompression(name string) Option {
	return func(o *options) {
		o.compression = name
	}
}

// payload is the serialized store content.
type payload struct {
	Tiers   []string       `json:"tiers"`
	Records []store.Record `json:"records"`
}

// Save writes the store to w.
func Save(w io.Writer, s *store.Store, opts ...Option) error {
	o := options{codec: codec.Default, compression: CompressionS2}
	for _, opt := range opts {
		opt(&o)
	}
	if _, ok := codec.ByName(o.codec.Name()); !ok {
		return &ErrUnknownName{Kind: "codec", Name: o.codec.Name()}
	}

	plain, err := o.codec.Marshal(payload{Tiers: s.TierNames(), Records: s.Records()})
	if err != nil {
		return fmt.Errorf("snapshot: marshal payload: %w", err)
	}
	packed, err := compress(o.compression, plain)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Write(magic[:])
	if err := binary.Write(&buf, binary.LittleEndian, version); err != nil {
		return err
	}
	writeName(&buf, o.codec.Name())
	writeName(&buf, o.compression)
	if err := binary.Write(&buf, binary.LittleEndian, uint64(len(packed))); err != nil {
		return err
	}
	buf.Write(packed)
	if err := binary.Write(&buf, binary.LittleEndian, crc32.ChecksumIEEE(packed)); err != nil {
		return err
	}

	_, err = w.Write(buf.Bytes())
	return err
}

// Load reads a snapshot and rebuilds the store, including its per-tier
// encodable bitmaps.
func Load(r io.Reader) (*store.Store, error) {
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, fmt.Errorf("snapshot: read magic: %w", err)
	}
	if m != magic {
		return nil, ErrBadMagic
	}
	var v uint16
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return nil, fmt.Errorf("snapshot: read version: %w", err)
	}
	if v != version {
		return nil, &ErrUnsupportedVersion{Version: v}
	}
	codecName, err := readName(r)
	if err != nil {
		return nil, err
	}
	c, ok := codec.ByName(codecName)
	if !ok {
		return nil, &ErrUnknownName{Kind: "codec", Name: codecName}
	}
	compName, err := readName(r)
	if err != nil {
		return nil, err
	}
	var size uint64
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, fmt.Errorf("snapshot: read payload size: %w", err)
	}
	if size > maxPayloadSize {
		return nil, &ErrPayloadTooLarge{Size: size}
	}
	packed := make([]byte, size)
	if _, err := io.ReadFull(r, packed); err != nil {
		return nil, fmt.Errorf("snapshot: read payload: %w", err)
	}
	var sum uint32
	if err := binary.Read(r, binary.LittleEndian, &sum); err != nil {
		return nil, fmt.Errorf("snapshot: read checksum: %w", err)
	}
	if crc32.ChecksumIEEE(packed) != sum {
		return nil, ErrChecksum
	}

	plain, err := decompress(compName, packed)
	if err != nil {
		return nil, err
	}
	var p payload
	if err := c.Unmarshal(plain, &p); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal payload: %w", err)
	}
	return store.FromRecords(p.Tiers, p.Records)
}

func writeName(buf *bytes.Buffer, name string) {
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
}

func readName(r io.Reader) (string, error) {
	var n [1]byte
	if _, err := io.ReadFull(r, n[:]); err != nil {
		return "", fmt.Errorf("snapshot: read name length: %w", err)
	}
	b := make([]byte, n[0])
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("snapshot: read name: %w", err)
	}
	return string(b), nil
}

func compress(name string, data []byte) ([]byte, error) {
	switch name {
	case CompressionNone:
		return data, nil
	case CompressionS2:
		return s2.EncodeBetter(nil, data), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, fmt.Errorf("snapshot: lz4 compress: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("snapshot: lz4 compress: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, &ErrUnknownName{Kind: "compression", Name: name}
	}
}

func decompress(name string, data []byte) ([]byte, error) {
	switch name {
	case CompressionNone:
		return data, nil
	case CompressionS2:
		plain, err := s2.Decode(nil, data)
		if err != nil {
			return nil, fmt.Errorf("snapshot: s2 decompress: %w", err)
		}
		return plain, nil
	case CompressionLZ4:
		plain, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("snapshot: lz4 decompress: %w", err)
		}
		return plain, nil
	default:
		return nil, &ErrUnknownName{Kind: "compression", Name: name}
	}
}
