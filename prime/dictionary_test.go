package prime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	raw := Raw{
		"color": {"red": 2, "blue": 3},
		"size":  {"S": 5, "M": 7},
	}
	d, warnings, err := Load(raw, SingleTier("attrs", []string{"color", "size"}))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, uint64(2), d.Prime(0, "color", "red"))
	assert.Equal(t, uint64(7), d.Prime(0, "size", "M"))
	assert.Equal(t, 4, d.Len(0))
}

func TestLoadErrors(t *testing.T) {
	_, _, err := Load(nil, SingleTier("attrs", []string{"color"}))
	require.ErrorIs(t, err, ErrNilMapping)

	_, _, err = Load(Raw{}, nil)
	require.ErrorIs(t, err, ErrNoTiers)

	_, _, err = Load(Raw{}, []TierSpec{{Name: "a"}, {Name: "a"}})
	var dup *ErrDuplicateTier
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Name)
}

func TestLoadDropsInvalidEntries(t *testing.T) {
	raw := Raw{
		"color": {"red": 2, "blue": 1, "green": 0},
	}
	d, warnings, err := Load(raw, SingleTier("attrs", []string{"color"}))
	require.NoError(t, err)
	assert.Len(t, warnings, 2)
	assert.Equal(t, uint64(2), d.Prime(0, "color", "red"))
	assert.Equal(t, uint64(1), d.Prime(0, "color", "blue"))
	assert.Equal(t, 1, d.Len(0))
}

func TestLoadDropsDuplicatePrimes(t *testing.T) {
	raw := Raw{
		"color": {"red": 2},
		"size":  {"S": 2, "M": 5},
	}
	d, warnings, err := Load(raw, SingleTier("attrs", []string{"color", "size"}))
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "prime already assigned within tier", warnings[0].Reason)

	// color precedes size in the tier layout, so color/red keeps the prime.
	assert.Equal(t, "size", warnings[0].Key)
	assert.Equal(t, "S", warnings[0].Value)
	assert.Equal(t, uint64(2), d.Prime(0, "color", "red"))
	assert.Equal(t, uint64(1), d.Prime(0, "size", "S"))
}

// Colliding entries under one key resolve by value order, identically on
// every load of the same mapping.
func TestLoadDuplicatePrimesDeterministic(t *testing.T) {
	for i := 0; i < 50; i++ {
		raw := Raw{"color": {"red": 2, "blue": 2, "green": 2}}
		d, warnings, err := Load(raw, SingleTier("attrs", []string{"color"}))
		require.NoError(t, err)
		require.Len(t, warnings, 2)

		assert.Equal(t, uint64(2), d.Prime(0, "color", "blue"))
		assert.Equal(t, uint64(1), d.Prime(0, "color", "green"))
		assert.Equal(t, uint64(1), d.Prime(0, "color", "red"))
	}
}

// Uniqueness across tiers: the same prime may appear in two tiers, since
// tiers are queried independently.
func TestLoadTiersIndependent(t *testing.T) {
	raw := Raw{
		"color": {"red": 2},
		"size":  {"S": 2},
	}
	tiers := []TierSpec{
		{Name: "master", Keys: []string{"color"}},
		{Name: "local", Keys: []string{"size"}},
	}
	d, warnings, err := Load(raw, tiers)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, uint64(2), d.Prime(0, "color", "red"))
	assert.Equal(t, uint64(2), d.Prime(1, "size", "S"))
}

func TestLoadUniquenessWithinTier(t *testing.T) {
	raw := Raw{
		"color":    {"red": 2, "blue": 3, "green": 5},
		"size":     {"S": 7, "M": 11, "L": 13},
		"material": {"cotton": 17, "wool": 19},
	}
	d, warnings, err := Load(raw, SingleTier("attrs", []string{"color", "size", "material"}))
	require.NoError(t, err)
	require.Empty(t, warnings)

	seen := map[uint64]string{}
	for key, values := range raw {
		for value := range values {
			p := d.Prime(0, key, value)
			require.Greater(t, p, uint64(1))
			prev, dup := seen[p]
			require.False(t, dup, "prime %d assigned to both %s and %s/%s", p, prev, key, value)
			seen[p] = key + "/" + value
		}
	}
}

func TestPrimeUnknownReturnsIdentity(t *testing.T) {
	d, _, err := Load(Raw{"color": {"red": 2}}, SingleTier("attrs", []string{"color"}))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), d.Prime(0, "color", "nope"))
	assert.Equal(t, uint64(1), d.Prime(0, "nope", "red"))
	assert.Equal(t, uint64(1), d.Prime(5, "color", "red"))
	assert.Equal(t, uint64(1), d.Prime(-1, "color", "red"))
}

func TestTierView(t *testing.T) {
	raw := Raw{"color": {"red": 2}, "size": {"S": 5}}
	tiers := []TierSpec{
		{Name: "master", Keys: []string{"color"}},
		{Name: "local", Keys: []string{"size"}},
	}
	d, _, err := Load(raw, tiers)
	require.NoError(t, err)

	master := d.Tier(0)
	assert.Equal(t, uint64(2), master.Prime("color", "red"))
	assert.Equal(t, uint64(1), master.Prime("size", "S")) // not in this tier
	assert.Equal(t, []string{"color"}, master.Keys())
}
