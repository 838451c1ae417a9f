// Package image defines the request/result shapes shared by every image
// generation backend and the seed policy.
package image

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Request describes one image generation call after prompt resolution.
type Request struct {
	Prompt string
	Width  int
	Height int
	Steps  int
	Seed   uint32
	// OutputPath is where the backend writes the final artifact.
	OutputPath string
}

// Result is a finished artifact.
type Result struct {
	Path string
	Seed uint32
}

// GenerateSeed draws a seed uniformly from the full unsigned 32-bit range.
func GenerateSeed() (uint32, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(1<<32))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random seed: %w", err)
	}
	return uint32(seed.Uint64()), nil
}
