// Package random provides seed generation for reproducible dice rolls.
//
// Seeds come either from the caller, so a table roll can be replayed, or
// from crypto/rand when the caller leaves the seed unset.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// SeedSource records where a seed came from.
type SeedSource string

const (
	// SeedSourceClient marks a seed supplied by the caller.
	SeedSourceClient SeedSource = "CLIENT"
	// SeedSourceServer marks a seed generated by the engine.
	SeedSourceServer SeedSource = "SERVER"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ResolveSeed returns *requested when set, otherwise a fresh seed.
func ResolveSeed(requested *int64) (int64, SeedSource, error) {
	if requested != nil {
		return *requested, SeedSourceClient, nil
	}
	seed, err := NewSeed()
	if err != nil {
		return 0, "", err
	}
	return seed, SeedSourceServer, nil
}
