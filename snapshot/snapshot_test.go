package snapshot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sfindex/codec"
	"github.com/hupe1980/sfindex/prime"
	"github.com/hupe1980/sfindex/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	raw := prime.Raw{
		"color": {"red": 2, "blue": 3},
		"size":  {"S": 5, "M": 7},
	}
	d, _, err := prime.Load(raw, prime.SingleTier("attrs", []string{"color", "size"}))
	require.NoError(t, err)

	s, _ := store.Build([]store.RawRecord{
		{ID: "A", Attributes: map[string][]string{"color": {"red"}, "size": {"S"}}},
		{ID: "B", Attributes: map[string][]string{"color": {"blue"}, "size": {"M"}}},
		{ID: "C", Attributes: map[string][]string{"flavor": {"unmapped"}}},
	}, d, nil)
	return s
}

func TestRoundTrip(t *testing.T) {
	src := testStore(t)
	for _, compression := range []string{CompressionNone, CompressionS2, CompressionLZ4} {
		t.Run(compression, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Save(&buf, src, WithCompression(compression)))

			got, err := Load(&buf)
			require.NoError(t, err)
			assert.Equal(t, src.Records(), got.Records())
			assert.Equal(t, src.TierNames(), got.TierNames())
			assert.Equal(t, src.EncodableCount(0), got.EncodableCount(0))
		})
	}
}

func TestRoundTripCodecs(t *testing.T) {
	src := testStore(t)
	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		var buf bytes.Buffer
		require.NoError(t, Save(&buf, src, WithCodec(c)))

		got, err := Load(&buf)
		require.NoError(t, err)
		assert.Equal(t, src.Records(), got.Records(), c.Name())
	}
}

// The same store must always serialize to the same bytes, so an unchanged
// dataset reload can be verified byte for byte.
func TestSaveDeterministic(t *testing.T) {
	src := testStore(t)
	var a, b bytes.Buffer
	require.NoError(t, Save(&a, src))
	require.NoError(t, Save(&b, src))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestLoadBadMagic(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("NOPEnope")))
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestLoadChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, testStore(t), WithCompression(CompressionNone)))

	data := buf.Bytes()
	data[len(data)-6] ^= 0xff // flip a payload byte, checksum now stale
	_, err := Load(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrChecksum)
}

func TestLoadUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, testStore(t)))

	data := buf.Bytes()
	data[4] = 0xff // bump version field
	_, err := Load(bytes.NewReader(data))
	var uv *ErrUnsupportedVersion
	require.ErrorAs(t, err, &uv)
}

func TestSaveUnknownCompression(t *testing.T) {
	var buf bytes.Buffer
	err := Save(&buf, testStore(t), WithCompression("zip"))
	var un *ErrUnknownName
	require.ErrorAs(t, err, &un)
	assert.Equal(t, "compression", un.Kind)
}

func TestLoadPayloadSizeCapped(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, testStore(t), WithCompression(CompressionNone)))

	data := buf.Bytes()
	// Overwrite the declared payload size with an implausible value; Load
	// must reject it instead of allocating.
	off := 4 + 2 + 1 + len(codec.Default.Name()) + 1 + len(CompressionNone)
	for i := 0; i < 8; i++ {
		data[off+i] = 0xff
	}
	_, err := Load(bytes.NewReader(data))
	var tooLarge *ErrPayloadTooLarge
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, uint64(1<<64-1), tooLarge.Size)
}

func TestLoadTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Save(&buf, testStore(t)))
	_, err := Load(bytes.NewReader(buf.Bytes()[:10]))
	require.Error(t, err)
}
