package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/sfindex/codec"
	"github.com/hupe1980/sfindex/prime"
)

// Attribute pools for generated demo inventory.
var (
	genColors = []string{"Red", "Blue", "Green", "Yellow", "Black", "White", "Orange", "Purple", "Gray", "Pink", "Brown", "Cyan"}
	genSizes  = []string{"XS", "S", "M", "L", "XL", "XXL", "3XL"}
	genMats   = []string{"Cotton", "Polyester", "Wool", "Silk", "Rayon", "Spandex Blend", "Linen", "Denim", "Fleece", "Nylon", "Leatherette", "Corduroy"}
	genTypes  = []string{"T-Shirt", "Polo Shirt", "Blouse", "Long-Sleeve Shirt", "Tank Top", "Henley", "Dress Shirt", "Sweater"}
	genBrands = []string{"BrandA", "BrandB", "BrandC"}
)

type genRecord struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Attributes map[string][]string `json:"attributes"`
}

type genPrimesDoc struct {
	AttributeToPrime prime.Raw `json:"attribute_to_prime"`
}

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate brand-segmented demo inventory and primes documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("records")
		seed, _ := cmd.Flags().GetInt64("seed")
		out, _ := cmd.Flags().GetString("out")

		rng := rand.New(rand.NewSource(seed))
		byBrand := make(map[string][]genRecord, len(genBrands))
		for i := 1; i <= n; i++ {
			rec := generateRecord(rng, i)
			brand := rec.Attributes["brand"][0]
			byBrand[brand] = append(byBrand[brand], rec)
		}

		universe := map[string][]string{
			"color":    genColors,
			"size":     genSizes,
			"material": genMats,
		}
		universeSize := len(genColors) + len(genSizes) + len(genMats)

		c := codec.Default
		for bi, brand := range genBrands {
			// Each brand segment gets its own prime table, drawn from a
			// disjoint range of the prime sequence.
			primes := prime.AssignFrom(universe, bi*universeSize)

			dir := filepath.Join(out, brand)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			if err := writeDoc(c, filepath.Join(dir, "inventory.json"), byBrand[brand]); err != nil {
				return err
			}
			if err := writeDoc(c, filepath.Join(dir, "primes.json"), genPrimesDoc{AttributeToPrime: primes}); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "%s: %d records\n", brand, len(byBrand[brand]))
		}
		return nil
	},
}

func generateRecord(rng *rand.Rand, i int) genRecord {
	brand := genBrands[rng.Intn(len(genBrands))]
	colors := sampleValues(rng, genColors)
	materials := sampleValues(rng, genMats)
	size := genSizes[rng.Intn(len(genSizes))]
	itemType := genTypes[rng.Intn(len(genTypes))]

	return genRecord{
		ID:   fmt.Sprintf("SKU%05d", i),
		Name: fmt.Sprintf("%s %s %s %s %s", brand, size, colors[0], materials[0], itemType),
		Attributes: map[string][]string{
			"brand":    {brand},
			"color":    colors,
			"size":     {size},
			"material": materials,
		},
	}
}

// sampleValues picks one value 70% of the time, two distinct values 30%.
func sampleValues(rng *rand.Rand, pool []string) []string {
	first := rng.Intn(len(pool))
	if rng.Intn(10) < 7 {
		return []string{pool[first]}
	}
	second := rng.Intn(len(pool) - 1)
	if second >= first {
		second++
	}
	return []string{pool[first], pool[second]}
}

func writeDoc(c codec.Codec, path string, v any) error {
	data, err := c.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func init() {
	genCmd.Flags().Int("records", 20000, "number of records to generate")
	genCmd.Flags().Int64("seed", 1, "random seed")
	genCmd.Flags().String("out", "data/segments", "output directory")
}
