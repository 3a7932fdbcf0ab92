// Package testutil provides seeded random data generation for tests:
// attribute universes, prime mappings and multi-valued inventory records.
package testutil
