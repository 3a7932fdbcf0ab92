package segment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sfindex/blobstore"
	"github.com/hupe1980/sfindex/codec"
)

const primesJSON = `{
  "attribute_to_prime": {
    "color": {"Red": 2, "Blue": 3},
    "size":  {"S": 5, "M": 7}
  }
}`

const inventoryJSON = `[
  {"id": "SKU00001", "name": "BrandA S Red Cotton T-Shirt",
   "attributes": {"brand": ["BrandA"], "color": ["Red"], "size": "S"}},
  {"id": "SKU00002",
   "attributes": {"brand": "BrandA", "color": ["Blue", "Red"], "size": ["M"]}}
]`

func TestParsePrimes(t *testing.T) {
	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		raw, warnings, err := ParsePrimes([]byte(primesJSON), c)
		require.NoError(t, err, c.Name())
		assert.Empty(t, warnings)
		assert.Equal(t, uint64(3), raw["color"]["Blue"])
		assert.Equal(t, uint64(7), raw["size"]["M"])
	}
}

func TestParsePrimesMissingSection(t *testing.T) {
	_, _, err := ParsePrimes([]byte(`{"primes": {}}`), nil)
	require.ErrorIs(t, err, ErrMissingSection)
}

func TestParsePrimesMalformedDocument(t *testing.T) {
	_, _, err := ParsePrimes([]byte(`{"attribute_to_prime": 42}`), nil)
	var bad *ErrBadDocument
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, "primes", bad.Doc)
}

func TestParsePrimesDropsBadEntries(t *testing.T) {
	doc := `{"attribute_to_prime": {
		"color": {"Red": 2, "Blue": -3, "Green": 1.5, "White": 1}
	}}`
	raw, warnings, err := ParsePrimes([]byte(doc), nil)
	require.NoError(t, err)
	assert.Len(t, warnings, 3)
	assert.Equal(t, map[string]uint64{"Red": 2}, raw["color"])
}

func TestValuesUnmarshal(t *testing.T) {
	var v Values
	require.NoError(t, v.UnmarshalJSON([]byte(`"single"`)))
	assert.Equal(t, Values{"single"}, v)

	require.NoError(t, v.UnmarshalJSON([]byte(`["a","b"]`)))
	assert.Equal(t, Values{"a", "b"}, v)

	assert.Error(t, v.UnmarshalJSON([]byte(`42`)))
}

func TestParseInventory(t *testing.T) {
	records, err := ParseInventory([]byte(inventoryJSON), nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "SKU00001", records[0].ID)
	assert.Equal(t, []string{"S"}, records[0].Attributes["size"])
	assert.Equal(t, []string{"Blue", "Red"}, records[1].Attributes["color"])
	assert.Equal(t, []string{"BrandA"}, records[1].Attributes["brand"])
}

func TestParseInventoryMalformed(t *testing.T) {
	_, err := ParseInventory([]byte(`{"not": "an array"}`), nil)
	var bad *ErrBadDocument
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, "inventory", bad.Doc)
}

func testStore(t *testing.T) *blobstore.MemoryStore {
	t.Helper()
	bs := blobstore.NewMemoryStore()
	for _, name := range []string{"BrandA", "BrandB"} {
		bs.Put(name+"/primes.json", []byte(primesJSON))
		bs.Put(name+"/inventory.json", []byte(inventoryJSON))
	}
	return bs
}

func TestLoaderLoad(t *testing.T) {
	loader := NewLoader(testStore(t))
	seg, err := loader.Load(context.Background(), "BrandA")
	require.NoError(t, err)
	assert.Equal(t, "BrandA", seg.Name)
	assert.Len(t, seg.Records, 2)
	assert.Equal(t, uint64(2), seg.Primes["color"]["Red"])
}

func TestLoaderMissingDocument(t *testing.T) {
	bs := blobstore.NewMemoryStore()
	bs.Put("BrandA/primes.json", []byte(primesJSON))
	// no inventory document

	loader := NewLoader(bs)
	_, err := loader.Load(context.Background(), "BrandA")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestLoaderDocumentNames(t *testing.T) {
	bs := blobstore.NewMemoryStore()
	bs.Put("X/p.json", []byte(primesJSON))
	bs.Put("X/i.json", []byte(inventoryJSON))

	loader := NewLoader(bs, WithDocumentNames("p.json", "i.json"))
	seg, err := loader.Load(context.Background(), "X")
	require.NoError(t, err)
	assert.Len(t, seg.Records, 2)
}

func TestLoadAll(t *testing.T) {
	loader := NewLoader(testStore(t), WithMaxConcurrent(2))
	segs, err := loader.LoadAll(context.Background(), []string{"BrandA", "BrandB"})
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "BrandA", segs[0].Name)
	assert.Equal(t, "BrandB", segs[1].Name)
}

func TestLoadAllPropagatesError(t *testing.T) {
	loader := NewLoader(testStore(t))
	_, err := loader.LoadAll(context.Background(), []string{"BrandA", "Missing"})
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}
