package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator creates opaque identifiers. Sweep and ingestion runs stamp one
// on every result so log lines from a single pass can be correlated.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator issues run-prefixed hex IDs from crypto/rand.
type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return "run_" + hex.EncodeToString(buf), nil
}
